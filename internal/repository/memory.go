package repository

import (
	"context"
	"sort"
	"sync"

	"predictbattle/internal/model"
)

// In-memory drivers with the same contracts as the Mongo ones. Used by
// tests and by single-node runs without a configured Mongo URI. Values
// are copied on the way in and out so callers never share state with
// the store.

type memorySessionRepo struct {
	mu     sync.RWMutex
	byID   map[string]*model.Session
	byCode map[string]string // code -> session id
}

// NewMemorySessionRepo creates an in-memory session repository.
func NewMemorySessionRepo() SessionRepo {
	return &memorySessionRepo{
		byID:   make(map[string]*model.Session),
		byCode: make(map[string]string),
	}
}

func cloneSession(s *model.Session) *model.Session {
	c := *s
	c.Participants = append([]string(nil), s.Participants...)
	c.Predictions = append([]model.Prediction(nil), s.Predictions...)
	return &c
}

func (r *memorySessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byCode[session.Code]; ok {
		return ErrCodeTaken
	}
	r.byID[session.ID] = cloneSession(session)
	r.byCode[session.Code] = session.ID
	return nil
}

func (r *memorySessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneSession(s), nil
}

func (r *memorySessionRepo) GetByCode(ctx context.Context, code string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byCode[code]
	if !ok {
		return nil, nil
	}
	return cloneSession(r.byID[id]), nil
}

func (r *memorySessionRepo) Update(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[session.ID] = cloneSession(session)
	return nil
}

func (r *memorySessionRepo) ListByParticipant(ctx context.Context, userID string) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sessions []*model.Session
	for _, s := range r.byID {
		if s.HasParticipant(userID) {
			sessions = append(sessions, cloneSession(s))
		}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (r *memorySessionRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byCode[code]
	return ok, nil
}

type memoryUserRepo struct {
	mu         sync.RWMutex
	byID       map[string]*model.User
	byUsername map[string]string // username -> user id
}

// NewMemoryUserRepo creates an in-memory user repository.
func NewMemoryUserRepo() UserRepo {
	return &memoryUserRepo{
		byID:       make(map[string]*model.User),
		byUsername: make(map[string]string),
	}
}

func (r *memoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUsername[user.Username]; ok {
		return ErrUsernameTaken
	}
	c := *user
	r.byID[user.ID] = &c
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *memoryUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[username]
	if !ok {
		return nil, nil
	}
	c := *r.byID[id]
	return &c, nil
}
