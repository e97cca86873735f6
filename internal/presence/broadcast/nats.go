package broadcast

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	id "meeshy/pkg/domain"
)

// StatusEvent is the wire payload published on status flips. Fanout services
// subscribe to presence.event.> and deliver to connected clients.
type StatusEvent struct {
	SubjectID   string `json:"subjectId"`
	IsAnonymous bool   `json:"isAnonymous"`
	IsOnline    bool   `json:"isOnline"`
	At          int64  `json:"at"`
}

// NATSPublisher adapts the broadcast callback to a NATS publish. Publishing is
// fire-and-forget; a failed publish is logged and dropped, the persisted
// presence state remains the source of truth.
type NATSPublisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

func NewNATSPublisher(nc *nats.Conn, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{nc: nc, logger: logger}
}

// Callback returns the function to register on the Hub.
func (p *NATSPublisher) Callback() Callback {
	return func(subject id.SubjectRef, online bool) {
		evt := StatusEvent{
			SubjectID:   subject.ID,
			IsAnonymous: subject.IsAnonymous(),
			IsOnline:    online,
			At:          time.Now().UnixMilli(),
		}
		data, err := json.Marshal(evt)
		if err != nil {
			p.logger.Warn("marshal status event failed", "subject", subject.Key(), "error", err)
			return
		}
		if err := p.nc.Publish(p.subjectFor(subject), data); err != nil {
			p.logger.Warn("publish status event failed", "subject", subject.Key(), "error", err)
		}
	}
}

func (p *NATSPublisher) subjectFor(subject id.SubjectRef) string {
	return "presence.event." + string(subject.Kind) + "." + subject.ID
}
