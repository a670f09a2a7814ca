package bus

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/consignd/commerce-backend/pkg/logger"
)

const kindAttribute = "event_kind"

// PubSub carries events over a Google Pub/Sub topic so peers outside
// this process observe the same stream. Publishing is fire-and-forget:
// the publish result is checked off the hot path and only logged.
type PubSub struct {
	publisher  *pubsub.Publisher
	subscriber *pubsub.Subscriber
	logg       *logger.Logger

	mu       sync.Mutex
	handlers []Handler
	closed   bool

	receiveCancel context.CancelFunc
	receiveDone   chan struct{}
}

// NewPubSub builds a Pub/Sub bus. The subscriber may be nil for
// publish-only processes.
func NewPubSub(publisher *pubsub.Publisher, subscriber *pubsub.Subscriber, logg *logger.Logger) (*PubSub, error) {
	if publisher == nil {
		return nil, errors.New("pubsub publisher required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &PubSub{
		publisher:  publisher,
		subscriber: subscriber,
		logg:       logg,
	}, nil
}

func (p *PubSub) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.New("bus is shut down")
	}
	p.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{kindAttribute: event.Kind.String()},
	})
	go func() {
		if _, err := result.Get(context.WithoutCancel(ctx)); err != nil {
			logCtx := p.logg.WithField(context.Background(), "event_kind", event.Kind.String())
			p.logg.Error(logCtx, "event publish failed", err)
		}
	}()
	return nil
}

// Subscribe registers a handler and starts the receive loop on the
// first subscription.
func (p *PubSub) Subscribe(handler Handler) {
	if handler == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.handlers = append(p.handlers, handler)
	if p.subscriber != nil && p.receiveDone == nil {
		ctx, cancel := context.WithCancel(context.Background())
		p.receiveCancel = cancel
		p.receiveDone = make(chan struct{})
		go p.receive(ctx)
	}
}

func (p *PubSub) receive(ctx context.Context) {
	defer close(p.receiveDone)
	err := p.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		// Events are best-effort notifications; a malformed message is
		// dropped, never redelivered.
		defer msg.Ack()

		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			p.logg.Error(ctx, "failed to decode event", err)
			return
		}
		if !event.Kind.IsValid() {
			logCtx := p.logg.WithField(ctx, "event_kind", string(event.Kind))
			p.logg.Warn(logCtx, "skipping unknown event kind")
			return
		}

		p.mu.Lock()
		handlers := make([]Handler, len(p.handlers))
		copy(handlers, p.handlers)
		p.mu.Unlock()

		for _, handler := range handlers {
			handler(ctx, event)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		p.logg.Error(context.Background(), "event receive loop stopped", err)
	}
}

// Shutdown stops the receive loop and flushes pending publishes.
func (p *PubSub) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.handlers = nil
	cancel := p.receiveCancel
	done := p.receiveDone
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.publisher.Stop()
	return nil
}
