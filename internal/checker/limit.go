package checker

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/JaimeStill/plagiat/internal/analysis"
)

type limited struct {
	next Client
	sem  *semaphore.Weighted
}

// Limit bounds the number of concurrent check and reformulate calls made
// through next. Callers beyond the limit wait for a slot or for their
// context to end. A non-positive n returns next unchanged.
func Limit(next Client, n int) Client {
	if n <= 0 {
		return next
	}
	return &limited{
		next: next,
		sem:  semaphore.NewWeighted(int64(n)),
	}
}

func (l *limited) CheckText(ctx context.Context, text string) (*analysis.Result, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.next.CheckText(ctx, text)
}

func (l *limited) CheckFile(ctx context.Context, filename string, data []byte) (*analysis.Result, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.next.CheckFile(ctx, filename, data)
}

func (l *limited) Reformulate(ctx context.Context, text string, useAI bool) (*analysis.Rewrite, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.next.Reformulate(ctx, text, useAI)
}

func (l *limited) Health(ctx context.Context) error {
	return l.next.Health(ctx)
}

func (l *limited) acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: wait for slot: %w", ErrTransport, err)
	}
	return nil
}
