package testing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/livesync/internal/models"
)

// FakeTransport is an in-memory event transport.
//
// Every call to Subscribe reads from one shared feed, so messages emitted after a
// reconnect reach the newest subscriber.
type FakeTransport struct {
	feed chan models.Message

	mu     sync.Mutex
	subs   int
	active int
	err    error
}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{feed: make(chan models.Message)}
}

func (f *FakeTransport) Subscribe(ctx context.Context, out chan<- models.Message) error {
	f.mu.Lock()
	f.subs++
	f.active++
	err := f.err
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-f.feed:
			if !ok {
				return nil
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Fail makes subsequent subscriptions return err immediately.
func (f *FakeTransport) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Emit hands each message to the live subscriber, failing the test if none takes it.
func (f *FakeTransport) Emit(t *testing.T, msgs ...models.Message) {
	t.Helper()
	for _, msg := range msgs {
		select {
		case f.feed <- msg:
		case <-time.After(2 * time.Second):
			t.Fatalf("no subscriber took %v", msg)
		}
	}
}

// Subscriptions counts calls to Subscribe.
func (f *FakeTransport) Subscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs
}

// Active counts subscriptions that have not returned.
func (f *FakeTransport) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}
