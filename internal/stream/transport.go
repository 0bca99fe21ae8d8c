package stream

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/livesync/internal/models"
	"github.com/desertthunder/livesync/internal/shared"
	"github.com/r3labs/sse/v2"
	"gopkg.in/cenkalti/backoff.v1"
)

// Transport delivers pushed events.
//
// Subscribe sends messages on out in delivery order until ctx is done or the stream
// ends for good, and must not send after it returns.
type Transport interface {
	Subscribe(ctx context.Context, out chan<- models.Message) error
}

// SSETransportOpts configures an [SSETransport].
type SSETransportOpts struct {
	// HTTPClient must not set a Timeout, since the response never completes.
	HTTPClient *http.Client
	Headers    map[string]string
	Backoff    shared.StreamConfig
	Logger     *log.Logger
}

// SSETransport subscribes to a text/event-stream endpoint.
type SSETransport struct {
	url     string
	client  *http.Client
	headers map[string]string
	backoff shared.StreamConfig
	logger  *log.Logger
}

func NewSSETransport(url string, opts SSETransportOpts) *SSETransport {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &SSETransport{
		url:     url,
		client:  client,
		headers: opts.Headers,
		backoff: opts.Backoff,
		logger:  shared.WithLogger(logger, "transport", "sse"),
	}
}

// Subscribe connects and forwards every named event. Dropped connections are retried
// by the reconnect strategy until ctx is done; a stream the server closes cleanly ends
// the subscription.
func (t *SSETransport) Subscribe(ctx context.Context, out chan<- models.Message) error {
	client := sse.NewClient(t.url)
	client.Connection = t.client
	client.ReconnectStrategy = backoff.WithContext(t.newBackOff(), ctx)
	client.ReconnectNotify = func(err error, next time.Duration) {
		t.logger.Warn("event stream dropped, reconnecting", "err", err, "in", next)
	}
	for k, v := range t.headers {
		client.Headers[k] = v
	}
	client.OnConnect(func(*sse.Client) {
		t.logger.Info("event stream connected", "url", t.url)
	})
	client.OnDisconnect(func(*sse.Client) {
		t.logger.Debug("event stream disconnected", "url", t.url)
	})

	err := client.SubscribeRawWithContext(ctx, func(ev *sse.Event) {
		msg := models.Message{
			ID:   string(ev.ID),
			Kind: models.Kind(ev.Event),
			Data: string(ev.Data),
		}
		select {
		case out <- msg:
		case <-ctx.Done():
		}
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (t *SSETransport) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if t.backoff.InitialInterval > 0 {
		b.InitialInterval = t.backoff.InitialInterval
	}
	if t.backoff.MaxInterval > 0 {
		b.MaxInterval = t.backoff.MaxInterval
	}
	b.MaxElapsedTime = t.backoff.MaxElapsed
	b.Reset()
	return b
}
