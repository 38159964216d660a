package natsevents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
)

const (
	EventTeamSynced     = "team.synced"
	EventBatchCompleted = "batch.completed"
)

type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "competition.sync",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Publisher emits sync outcomes on core NATS subjects under SubjectPrefix.
type Publisher struct {
	conn   msgPublisher
	closer func()
	prefix string
	logger *logging.Logger
	clock  clockwork.Clock
}

var _ usecase.SyncEventPublisher = (*Publisher)(nil)

func Connect(cfg Config, logger *logging.Logger) (*Publisher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = defaults.URL
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = defaults.ReconnectWait
	}

	opts := []nats.Option{
		nats.Name("competition-sync"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, crerr.Wrapf(err, "connect to nats url=%s", cfg.URL)
	}

	p := newPublisher(nc, cfg.SubjectPrefix, logger, clockwork.NewRealClock())
	p.closer = nc.Close
	return p, nil
}

func newPublisher(conn msgPublisher, prefix string, logger *logging.Logger, clock clockwork.Clock) *Publisher {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultConfig().SubjectPrefix
	}
	return &Publisher{conn: conn, prefix: prefix, logger: logger, clock: clock}
}

func (p *Publisher) PublishTeamSynced(ctx context.Context, result usecase.TeamSyncResult) error {
	return p.publish(ctx, EventTeamSynced, map[string]string{"Team-ID": result.TeamID}, result)
}

func (p *Publisher) PublishBatchCompleted(ctx context.Context, result usecase.BatchSyncResult) error {
	return p.publish(ctx, EventBatchCompleted, nil, result)
}

func (p *Publisher) Close() {
	if p.closer != nil {
		p.closer()
	}
}

type envelope struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func (p *Publisher) publish(ctx context.Context, eventType string, headers map[string]string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	eventID, err := uuid.NewV7()
	if err != nil {
		return crerr.Wrap(err, "generate event id")
	}
	data, err := sonic.Marshal(envelope{
		EventID:    eventID.String(),
		EventType:  eventType,
		OccurredAt: p.clock.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return crerr.Wrapf(err, "marshal %s event", eventType)
	}

	msg := nats.NewMsg(p.prefix + "." + eventType)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, eventID.String())
	msg.Header.Set("Event-Type", eventType)
	for key, value := range headers {
		msg.Header.Set(key, value)
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	p.logger.DebugContext(ctx, "sync event published", "subject", msg.Subject, "event_id", eventID.String())
	return nil
}
