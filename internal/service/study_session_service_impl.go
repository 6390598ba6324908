package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/repository"
	"github.com/google/uuid"
)

type studySessionService struct {
	plans    repository.PlanRepo
	sessions repository.StudySessionRepo
	clock    Clock
	observer UseCaseObserver
}

func NewStudySessionService(
	plans repository.PlanRepo,
	sessions repository.StudySessionRepo,
	clock Clock,
	observers ...UseCaseObserver,
) StudySessionService {
	return &studySessionService{
		plans:    plans,
		sessions: sessions,
		clock:    clockOrDefault(clock),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *studySessionService) Start(ctx context.Context, planID int64) (sess *domain.StudySession, err error) {
	startedAt := time.Now()
	fields := map[string]any{"plan_id": planID}
	defer func() { observe(ctx, s.observer, "start-session", startedAt, err, fields) }()

	if _, err = s.plans.GetByID(ctx, planID); err != nil {
		return nil, err
	}

	sess, err = s.sessions.GetActive(ctx, planID)
	if err == nil {
		fields["resumed"] = true
		return sess, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	sess = &domain.StudySession{
		ID:        uuid.NewString(),
		PlanID:    planID,
		StartedAt: s.clock().UTC(),
	}
	if err = s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	fields["session_id"] = sess.ID
	return sess, nil
}

func (s *studySessionService) End(ctx context.Context, id string) (sess *domain.StudySession, err error) {
	startedAt := time.Now()
	defer func() { observe(ctx, s.observer, "end-session", startedAt, err, map[string]any{"session_id": id}) }()

	if err = s.sessions.End(ctx, id, s.clock().UTC()); err != nil {
		return nil, err
	}
	return s.sessions.GetByID(ctx, id)
}

func (s *studySessionService) Active(ctx context.Context, planID int64) (*domain.StudySession, error) {
	return s.sessions.GetActive(ctx, planID)
}
