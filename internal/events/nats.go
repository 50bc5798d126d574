package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/coursesite/internal/config"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

// DefaultSubject is used when the configuration leaves the subject empty.
const DefaultSubject = "coursesite.content"

// NATSPublisher publishes events as JSON on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// NewPublisher returns a NATSPublisher when events are enabled and Noop otherwise.
func NewPublisher(cfg config.EventsConfig, logger *slog.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	p, err := NewNATSPublisher(cfg, logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NewNATSPublisher connects to cfg.NATSURL.
func NewNATSPublisher(cfg config.EventsConfig, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("coursesite"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryEvents, "failed to connect to NATS").
			WithContext("url", cfg.NATSURL).Retryable().Build()
	}

	subject := cfg.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	logger.Info("NATS event publisher initialized",
		slog.String("url", cfg.NATSURL),
		slog.String("subject", subject))
	return &NATSPublisher{conn: conn, subject: subject, logger: logger}, nil
}

// Subject returns the subject events are published on.
func (p *NATSPublisher) Subject() string { return p.subject }

// Publish sends e and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryEvents, "failed to marshal event").Build()
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return derrors.WrapError(err, derrors.CategoryEvents, "failed to publish event").
			WithContext("subject", p.subject).Retryable().Build()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return derrors.WrapError(err, derrors.CategoryEvents, "failed to flush event").
			WithContext("subject", p.subject).Retryable().Build()
	}
	p.logger.Debug("Published event",
		slog.String("type", string(e.Type)),
		slog.Uint64("generation", e.Generation))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
