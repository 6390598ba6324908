package intelligence

// planSystemPrompt frames the planner role.
const planSystemPrompt = `You are a meticulous curriculum planner for self-paced study.
You design realistic, incremental plans and answer with JSON only.`

// planPromptTemplate is filled with goal, level, minutes, max_days and the anchor date.
const planPromptTemplate = `Given:
- Goal: %s
- Current level: %s
- Minutes per day: %d
- Deadline window (max days from today): %d
- Today (anchor date): %s

Design a plan that is realistic and incremental.

Return STRICT JSON with this exact schema:
{
  "milestones": ["string", "..."],
  "tasks": [
    {
      "title": "string (short, actionable)",
      "type": "lesson|video|reading|practice|project|quiz",
      "est_minutes": 30,
      "due_in_days": 0,
      "resource_ref": "optional URL"
    }
  ]
}

Rules:
- 'due_in_days' is an INTEGER offset from today (0=today, 1=tomorrow).
- All tasks must satisfy 0 <= due_in_days <= %d.
- 3+ milestones.
- 6-12 tasks total; respect daily minutes.
- est_minutes is an integer between 5 and 240.
- Only include resource_ref links you are confident exist; omit it otherwise.
- JSON only, no prose.`

// coachSystemPrompt frames the coach role.
const coachSystemPrompt = `You are a learning coach that adapts a study plan after each completed task.
You answer with JSON only.`

// coachPromptTemplate is filled with task metadata, the reflection and recent outcomes.
const coachPromptTemplate = `Inputs:
- Task just completed: %s (type=%s, est_minutes=%d, due_date=%s)
- Learner reflection:
    - confidence: %d/5
    - blockers: %s
    - took_minutes: %s
    - wants_more_practice: %t
- Recent outcomes (up to 5): %s

Output STRICT JSON with:
{
  "actions": [
    {
      "type": "add_task" | "reschedule_task" | "tip",
      "title": "for add_task only, short actionable title",
      "est_minutes": 30,
      "due_in_days": 2,
      "resource_ref": "optional URL",
      "target_task_id": 123,
      "push_days": 3,
      "tip": "for tip only"
    }
  ]
}

Rules:
- target_task_id and push_days apply to reschedule_task only.
- If confidence <= 2 or wants_more_practice=true, consider an "add_task" with small practice due soon.
- If blockers mention time or overwhelm, consider a "reschedule_task" pushing upcoming tasks by a few days.
- Always include at least one "tip" with a practical suggestion.
- JSON only.`
