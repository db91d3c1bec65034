package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

type handler struct {
	id int
	fn func(ctx context.Context, data []byte) error
}

// Local delivers events to in-process subscribers. It replaces NATS when
// NATS_URL is empty. Delivery is asynchronous and at most once.
type Local struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string][]handler
	wg       sync.WaitGroup
}

func NewLocal() *Local {
	return &Local{handlers: make(map[string][]handler)}
}

func (l *Local) Publish(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", subject, err)
	}

	l.mu.RLock()
	targets := append([]handler(nil), l.handlers[subject]...)
	l.mu.RUnlock()

	detached := context.WithoutCancel(ctx)
	for _, h := range targets {
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			if err := h.fn(detached, data); err != nil {
				log.Error().Err(err).Str("subject", subject).Msg("handle event")
			}
		}()
	}
	return nil
}

func (l *Local) Subscribe(_ context.Context, subject, _ string, fn func(ctx context.Context, data []byte) error) (io.Closer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	l.handlers[subject] = append(l.handlers[subject], handler{id: id, fn: fn})
	return closerFunc(func() error {
		l.mu.Lock()
		defer l.mu.Unlock()
		hs := l.handlers[subject]
		for i, h := range hs {
			if h.id == id {
				l.handlers[subject] = append(hs[:i], hs[i+1:]...)
				break
			}
		}
		return nil
	}), nil
}

// Wait blocks until every dispatched handler has returned.
func (l *Local) Wait() {
	l.wg.Wait()
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
