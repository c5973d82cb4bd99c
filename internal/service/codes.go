package service

import (
	"context"
	"crypto/rand"
	"fmt"

	"predictbattle/internal/cache"
	"predictbattle/internal/repository"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6

	// 36^6 codes; hitting this bound means the keyspace is effectively
	// exhausted or the store is unreachable, not bad luck.
	maxCodeAttempts = 50
)

// CodeAllocator hands out session codes that no live session holds.
// The check here is a fast path; the store's unique index is the final
// arbiter, and the engine redraws when an insert loses that race.
type CodeAllocator struct {
	sessions repository.SessionRepo
	codes    cache.CodeIndex // optional fast path, may be nil
}

// NewCodeAllocator creates a code allocator backed by the session store
// and an optional Redis code index.
func NewCodeAllocator(sessions repository.SessionRepo, codes cache.CodeIndex) *CodeAllocator {
	return &CodeAllocator{sessions: sessions, codes: codes}
}

// Allocate draws random codes until one is unused.
func (a *CodeAllocator) Allocate(ctx context.Context) (string, error) {
	for attempts := 0; attempts < maxCodeAttempts; attempts++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}

		if a.codes != nil {
			cached, err := a.codes.Exists(ctx, code)
			if err == nil && cached {
				continue
			}
		}

		exists, err := a.sessions.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code existence: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to allocate a unique code after %d attempts", maxCodeAttempts)
}

func randomCode() (string, error) {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(code), nil
}
