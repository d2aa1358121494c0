package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/md-rashed-zaman/tutorbook/libs/db"
	"github.com/md-rashed-zaman/tutorbook/libs/events"
	"github.com/md-rashed-zaman/tutorbook/services/notification-service/internal/dedupe"
	"github.com/md-rashed-zaman/tutorbook/services/notification-service/internal/email"
	"github.com/md-rashed-zaman/tutorbook/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
)

// Topics are the event streams the processor consumes.
var Topics = []string{events.BookingCreated, events.BookingStatusChanged, events.UserDeleted}

type Store interface {
	Insert(ctx context.Context, n *storage.Notification) error
}

type Processor struct {
	store   Store
	tracker dedupe.Tracker
	mailer  email.Sender
	logger  *slog.Logger
}

// NewProcessor wires the alert pipeline. mailer may be nil, in which case
// alerts are only stored.
func NewProcessor(store Store, tracker dedupe.Tracker, mailer email.Sender, logger *slog.Logger) *Processor {
	return &Processor{store: store, tracker: tracker, mailer: mailer, logger: logger}
}

// Handle is the consumer callback. Malformed payloads are logged and
// dropped; only transient failures are returned.
func (p *Processor) Handle(ctx context.Context, msg kafka.Message) error {
	switch msg.Topic {
	case events.BookingCreated, events.BookingStatusChanged:
		var b events.Booking
		if err := json.Unmarshal(msg.Value, &b); err != nil || b.BookingID == "" || b.Status == "" {
			p.logger.Error("invalid booking payload", "topic", msg.Topic, "err", err)
			return nil
		}
		_, err := p.Booking(ctx, b)
		return err
	case events.UserDeleted:
		var u events.User
		if err := json.Unmarshal(msg.Value, &u); err != nil || u.UserID == "" {
			p.logger.Error("invalid user payload", "topic", msg.Topic, "err", err)
			return nil
		}
		return p.tracker.Clear(ctx, u.UserID, string(Student), string(Tutor))
	default:
		p.logger.Warn("unexpected topic", "topic", msg.Topic)
		return nil
	}
}

// Booking records b.Status for both parties and stores an alert for each
// party that has not yet seen this status and cares about it.
func (p *Processor) Booking(ctx context.Context, b events.Booking) ([]storage.Notification, error) {
	var out []storage.Notification
	for _, r := range Recipients(b) {
		if r.Party.ID == "" {
			continue
		}
		prev, err := p.tracker.Swap(ctx, string(r.Audience), r.Party.ID, b.BookingID, b.Status)
		if err != nil {
			return out, fmt.Errorf("dedupe %s: %w", r.Audience, err)
		}
		if prev == b.Status {
			continue
		}
		text, ok := Message(r.Audience, b)
		if !ok {
			continue
		}
		n := storage.Notification{
			UserID:    r.Party.ID,
			BookingID: b.BookingID,
			Audience:  string(r.Audience),
			Status:    b.Status,
			Message:   text,
		}
		if err := p.store.Insert(ctx, &n); err != nil {
			if db.IsForeignKeyViolation(err) {
				p.logger.Info("recipient no longer exists", "user_id", r.Party.ID, "booking_id", b.BookingID)
				continue
			}
			// put back the previous status so a retry alerts again
			if _, rerr := p.tracker.Swap(ctx, string(r.Audience), r.Party.ID, b.BookingID, prev); rerr != nil {
				p.logger.Error("dedupe rollback failed", "err", rerr, "booking_id", b.BookingID)
			}
			return out, err
		}
		out = append(out, n)
		p.send(r.Party, b.Status, text)
	}
	return out, nil
}

func (p *Processor) send(to events.Party, status, text string) {
	if p.mailer == nil || to.Email == "" {
		return
	}
	if err := p.mailer.Send(to.Email, Subject(status), text); err != nil {
		p.logger.Error("email send failed", "err", err, "user_id", to.ID)
	}
}
