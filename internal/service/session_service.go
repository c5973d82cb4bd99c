package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"predictbattle/internal/cache"
	"predictbattle/internal/model"
	"predictbattle/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionService is the session engine: creation, join, prediction
// submission, completion recomputation and visibility-gated reads. It
// is the sole mutator of session state.
type SessionService struct {
	sessions  repository.SessionRepo
	codes     cache.CodeIndex // optional, may be nil
	allocator *CodeAllocator
	logger    zerolog.Logger

	// Per-session locks keep the read-check-append-recompute sequence
	// atomic without serializing unrelated sessions.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSessionService creates the session engine.
func NewSessionService(sessions repository.SessionRepo, codes cache.CodeIndex, logger zerolog.Logger) *SessionService {
	return &SessionService{
		sessions:  sessions,
		codes:     codes,
		allocator: NewCodeAllocator(sessions, codes),
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// lock acquires the mutation lock for one session and returns the
// matching unlock.
func (s *SessionService) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Create opens a new session. The creator is the first participant.
func (s *SessionService) Create(ctx context.Context, actor model.Actor, title string, capacity int) (*model.SessionView, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if capacity < model.MinCapacity || capacity > model.MaxCapacity {
		return nil, fmt.Errorf("%w: maxPlayers must be between %d and %d", ErrInvalidInput, model.MinCapacity, model.MaxCapacity)
	}

	for attempts := 0; attempts < maxCodeAttempts; attempts++ {
		code, err := s.allocator.Allocate(ctx)
		if err != nil {
			return nil, err
		}

		session := &model.Session{
			ID:           uuid.New().String(),
			Title:        title,
			Code:         code,
			Capacity:     capacity,
			CreatorID:    actor.ID,
			Participants: []string{actor.ID},
			Predictions:  []model.Prediction{},
			CreatedAt:    time.Now().UTC(),
		}
		session.RecomputeComplete()

		err = s.sessions.Create(ctx, session)
		if errors.Is(err, repository.ErrCodeTaken) {
			// Lost a concurrent allocation race; redraw.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}

		if s.codes != nil {
			if err := s.codes.Set(ctx, code, session.ID); err != nil {
				s.logger.Warn().Err(err).Str("code", code).Msg("failed to index session code")
			}
		}

		s.logger.Info().
			Str("session", session.ID).
			Str("code", code).
			Str("creator", actor.ID).
			Int("maxPlayers", capacity).
			Msg("session created")

		return session.View(actor.ID), nil
	}
	return nil, fmt.Errorf("failed to create session: code space exhausted")
}

// Join adds the actor to the session identified by code. Joining a
// session the actor is already in is a no-op that returns the current
// view, so clients can safely retry.
func (s *SessionService) Join(ctx context.Context, actor model.Actor, code string) (*model.SessionView, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidInput)
	}

	id, err := s.resolveCode(ctx, code)
	if err != nil {
		return nil, err
	}

	unlock := s.lock(id)
	defer unlock()

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}

	if session.HasParticipant(actor.ID) {
		return session.View(actor.ID), nil
	}

	if len(session.Participants) >= session.Capacity {
		return nil, ErrSessionFull
	}

	session.Participants = append(session.Participants, actor.ID)
	session.RecomputeComplete()

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	s.logger.Info().
		Str("session", session.ID).
		Str("user", actor.ID).
		Int("participants", len(session.Participants)).
		Msg("participant joined")

	return session.View(actor.ID), nil
}

// SubmitPrediction records the actor's single prediction.
func (s *SessionService) SubmitPrediction(ctx context.Context, actor model.Actor, sessionID, content string) (*model.PredictionAck, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	unlock := s.lock(sessionID)
	defer unlock()

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}
	if !session.HasParticipant(actor.ID) {
		return nil, ErrForbidden
	}
	if session.HasPredicted(actor.ID) {
		return nil, ErrAlreadyPredicted
	}

	prediction := model.Prediction{
		ID:          uuid.New().String(),
		AuthorID:    actor.ID,
		AuthorName:  actor.Name,
		Content:     content,
		SubmittedAt: time.Now().UTC(),
	}
	session.Predictions = append(session.Predictions, prediction)
	session.RecomputeComplete()

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	s.logger.Info().
		Str("session", session.ID).
		Str("user", actor.ID).
		Int("predictions", len(session.Predictions)).
		Bool("complete", session.Complete).
		Msg("prediction submitted")

	return &model.PredictionAck{
		Prediction: model.PredictionView{
			ID:          prediction.ID,
			AuthorName:  prediction.AuthorName,
			Content:     prediction.Content,
			SubmittedAt: prediction.SubmittedAt,
			IsSelf:      true,
		},
		Complete: session.Complete,
	}, nil
}

// GetView returns the actor's projection of a session, with predictions
// gated by the reveal rule.
func (s *SessionService) GetView(ctx context.Context, actor model.Actor, sessionID string) (*model.SessionView, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}
	if !session.HasParticipant(actor.ID) {
		return nil, ErrForbidden
	}
	return session.View(actor.ID), nil
}

// ListForActor returns counts-only summaries of every session the actor
// participates in, newest first.
func (s *SessionService) ListForActor(ctx context.Context, actor model.Actor) ([]model.SessionSummary, error) {
	sessions, err := s.sessions.ListByParticipant(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	summaries := make([]model.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, session.Summary(actor.ID))
	}
	return summaries, nil
}

// resolveCode maps a code to a session id, trying the Redis index
// before the store.
func (s *SessionService) resolveCode(ctx context.Context, code string) (string, error) {
	if s.codes != nil {
		id, err := s.codes.Resolve(ctx, code)
		if err != nil {
			s.logger.Warn().Err(err).Str("code", code).Msg("code index lookup failed")
		} else if id != "" {
			return id, nil
		}
	}

	session, err := s.sessions.GetByCode(ctx, code)
	if err != nil {
		return "", fmt.Errorf("get session by code: %w", err)
	}
	if session == nil {
		return "", ErrNotFound
	}
	if s.codes != nil {
		if err := s.codes.Set(ctx, code, session.ID); err != nil {
			s.logger.Warn().Err(err).Str("code", code).Msg("failed to backfill code index")
		}
	}
	return session.ID, nil
}
