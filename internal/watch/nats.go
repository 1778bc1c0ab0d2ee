package watch

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// NATSTrigger subscribes to a subject and calls invalidate for every message
// received. A CI pipeline or CMS webhook bridge publishes to the subject
// after pushing new content.
type NATSTrigger struct {
	conn *nats.Conn
	sub  *nats.Subscription
	log  *slog.Logger
}

// NewNATSTrigger connects to the NATS server at url and subscribes to subject.
func NewNATSTrigger(url, subject string, invalidate func(), log *slog.Logger) (*NATSTrigger, error) {
	if subject == "" {
		return nil, fmt.Errorf("nats subject is required")
	}
	if log == nil {
		log = slog.Default()
	}

	conn, err := nats.Connect(url, nats.Name("sitegen"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		log.Info("remote rebuild trigger received", logfields.Subject(msg.Subject))
		invalidate()
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}

	log.Info("remote rebuild trigger connected",
		logfields.URL(conn.ConnectedUrl()),
		logfields.Subject(subject))

	return &NATSTrigger{conn: conn, sub: sub, log: log}, nil
}

// Close unsubscribes and drains the connection.
func (t *NATSTrigger) Close() error {
	if err := t.sub.Unsubscribe(); err != nil {
		t.log.Warn("unsubscribe failed", logfields.Error(err))
	}
	return t.conn.Drain()
}
