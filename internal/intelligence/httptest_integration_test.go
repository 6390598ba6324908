package intelligence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTTPTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("skipping HTTP integration test: local listener unavailable (%v)", r)
			}
		}()
		srv = httptest.NewServer(handler)
	}()
	return srv
}

func testOllamaClient(url string) llm.LLMClient {
	cfg := llm.DefaultConfig()
	cfg.Endpoint = url
	cfg.Model = "test-model"
	return llm.NewOllamaClient(cfg, llm.NoopObserver{})
}

// TestPlanService_Generate_WithHTTPTestServer exercises the full path:
// httptest server → OllamaClient → PlanService retry loop → normalization.
// The first reply is unparseable, the second succeeds.
func TestPlanService_Generate_WithHTTPTestServer(t *testing.T) {
	var temps []float64
	calls := 0
	srv := newHTTPTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var body struct {
			Format  string `json:"format"`
			Stream  bool   `json:"stream"`
			Options struct {
				Temperature float64 `json:"temperature"`
				NumCtx      int     `json:"num_ctx"`
			} `json:"options"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "json", body.Format)
		assert.False(t, body.Stream)
		temps = append(temps, body.Options.Temperature)
		calls++

		content := "I'm sorry, I can't produce a plan."
		if calls > 1 {
			content = planJSON(7, func(i int) int { return i * 3 })
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"model": "test-model", "response": content})
	}))
	defer srv.Close()

	svc := NewPlanService(testOllamaClient(srv.URL), WithPlanClock(fixedClock))
	plan, err := svc.Generate(context.Background(), sqlRequest())
	require.NoError(t, err)

	assert.Equal(t, []float64{0.2, 0.1}, temps)
	require.Len(t, plan.Tasks, 7)
	assert.Equal(t, "2026-03-02", plan.Tasks[0].DueDate)
	assert.Equal(t, "2026-03-16", plan.Tasks[6].DueDate, "offset 18 clamps to 14")
}

func TestPlanService_Generate_WithHTTPTestServer_BothFail(t *testing.T) {
	srv := newHTTPTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewPlanService(testOllamaClient(srv.URL), WithPlanClock(fixedClock))
	_, err := svc.Generate(context.Background(), sqlRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlannerFailed)

	var be *llm.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusNotFound, be.StatusCode)
}

func TestCoachService_Decide_WithHTTPTestServer(t *testing.T) {
	srv := newHTTPTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Some models return an already-structured value.
		json.NewEncoder(w).Encode(map[string]any{
			"model": "test-model",
			"response": map[string]any{
				"actions": []map[string]any{
					{"type": "add_task", "title": "Drill WHERE clauses", "est_minutes": 15, "due_in_days": 1, "resource_ref": "http://127.0.0.1:1/x"},
					{"type": "tip", "tip": "Write queries by hand first."},
				},
			},
		})
	}))
	defer srv.Close()

	links := &stubLinks{}
	svc := NewCoachService(testOllamaClient(srv.URL), links, 8)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	decision, err := svc.Decide(ctx, lowConfidenceInput())
	require.NoError(t, err)

	require.Len(t, decision.Actions, 2)
	add := decision.Actions[0].(domain.AddTaskAction)
	assert.Nil(t, add.ResourceRef, "loopback ref must be scrubbed")
	assert.Equal(t, []string{"Write queries by hand first."}, decision.Tips())
}

// TestCoachService_Decide_Timeout verifies a slow backend surfaces as a
// timeout error within the configured coach budget instead of hanging.
func TestCoachService_Decide_Timeout(t *testing.T) {
	srv := newHTTPTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(10 * time.Second):
		case <-r.Context().Done():
			return
		}
	}))
	defer srv.Close()

	cfg := llm.DefaultConfig()
	cfg.Endpoint = srv.URL
	coachTask := cfg.Tasks[llm.TaskCoach]
	coachTask.TimeoutMs = 300
	cfg.Tasks[llm.TaskCoach] = coachTask

	svc := NewCoachService(llm.NewOllamaClient(cfg, llm.NoopObserver{}), nil, 0)

	start := time.Now()
	_, err := svc.Decide(context.Background(), lowConfidenceInput())
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrTimeout)
	assert.Less(t, elapsed, 3*time.Second)
}
