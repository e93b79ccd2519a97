package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/ithesk/qraxer/internal/qraxer/domain"
	"github.com/ithesk/qraxer/internal/qraxer/events"
	"github.com/ithesk/qraxer/internal/qraxer/notify"
	"github.com/ithesk/qraxer/pkg/idx"
	"github.com/ithesk/qraxer/pkg/slogx"
)

type CheckinEvents interface {
	PublishCheckin(ctx context.Context, e events.RepairCheckedIn) error
}

type CheckinObserver interface {
	ObserveCheckin()
}

// CheckinService lets technicians announce that they picked up a repair
// and lets the front desk acknowledge it.
type CheckinService struct {
	Repairs  *RepairService
	Ring     *notify.Ring
	Events   CheckinEvents
	Observer CheckinObserver
	Now      func() time.Time
}

func (s *CheckinService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Checkin resolves raw to a repair and records a notification.
func (s *CheckinService) Checkin(ctx context.Context, actor Actor, raw string) (domain.CheckinNotification, error) {
	repair, err := s.Repairs.Resolve(ctx, actor, raw)
	if err != nil {
		return domain.CheckinNotification{}, err
	}

	n := domain.CheckinNotification{
		ID:             idx.New().String(),
		RepairID:       repair.ID,
		RepairCode:     repair.Name,
		TechnicianID:   actor.ID,
		TechnicianName: actor.DisplayName(),
		Timestamp:      s.now().UTC(),
	}
	s.Ring.Push(n)

	l := slogx.FromContext(ctx).With(slog.Int64("repair_id", repair.ID))
	l.Info("repair checked in", slog.String("notification_id", n.ID))

	s.Repairs.postMessage(ctx, actor, repair.ID,
		fmt.Sprintf("Checked in by %s.", html.EscapeString(n.TechnicianName)))

	if s.Events != nil {
		err := s.Events.PublishCheckin(ctx, events.RepairCheckedIn{
			NotificationID: n.ID,
			RepairID:       n.RepairID,
			RepairCode:     n.RepairCode,
			TechnicianID:   n.TechnicianID,
			TechnicianName: n.TechnicianName,
			At:             n.Timestamp,
		})
		if err != nil {
			l.Warn("failed to publish checkin", slog.Any("error", err))
		}
	}
	if s.Observer != nil {
		s.Observer.ObserveCheckin()
	}
	return n, nil
}

// Pending lists unanswered notifications, newest first.
func (s *CheckinService) Pending() []domain.CheckinNotification {
	return s.Ring.Pending()
}

// Respond answers notification id.
func (s *CheckinService) Respond(ctx context.Context, actor Actor, id, response string) (domain.CheckinNotification, error) {
	id = strings.TrimSpace(id)
	response = strings.TrimSpace(response)
	if id == "" {
		return domain.CheckinNotification{}, invalidInput("notificationId", "is required")
	}
	if response == "" {
		return domain.CheckinNotification{}, invalidInput("response", "is required")
	}

	n, err := s.Ring.Respond(id, response, actor.DisplayName(), s.now().UTC())
	switch {
	case errors.Is(err, notify.ErrNotFound):
		return domain.CheckinNotification{}, notFound("notification %q", id)
	case errors.Is(err, notify.ErrAlreadyResponded):
		return n, fmt.Errorf("%w: notification %q already answered", ErrConflict, id)
	case err != nil:
		return domain.CheckinNotification{}, err
	}
	slogx.FromContext(ctx).Info("checkin answered", slog.String("notification_id", id))
	return n, nil
}
