package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ithesk/qraxer/internal/qraxer/domain"
	"github.com/ithesk/qraxer/internal/qraxer/events"
	"github.com/ithesk/qraxer/pkg/odoorpc"
	"github.com/ithesk/qraxer/pkg/qrsig"
	"github.com/ithesk/qraxer/pkg/slogx"
)

const (
	repairModel = "repair.order"

	DefaultRecentLimit = 20
	MaxListLimit       = 100
)

var repairFields = []string{
	"name", "state", "partner_id", "product_id", "lot_id", "user_id",
	"internal_notes", "schedule_date", "create_date", "write_date",
}

// StateEvents receives repair transitions.
type StateEvents interface {
	PublishStateChanged(ctx context.Context, e events.RepairStateChanged) error
}

// QRObserver is told about every validated code.
type QRObserver interface {
	ObserveQR(res qrsig.Result)
}

// RepairService resolves scanned codes to repair orders and moves them
// through their workflow. Calls run on the technician's Odoo session.
type RepairService struct {
	Proxy     *odoorpc.Proxy
	Validator *qrsig.Validator
	Events    StateEvents
	QR        QRObserver
	Now       func() time.Time
}

// ScanResult is a repair with the states it may move to.
type ScanResult struct {
	Repair          domain.Repair        `json:"repair"`
	AvailableStates []domain.StateOption `json:"availableStates"`
}

// GeneratedQR is freshly signed QR content.
type GeneratedQR struct {
	QRContent        string `json:"qrContent"`
	ExpiresInMinutes int    `json:"expiresInMinutes"`
}

func (s *RepairService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// States lists every repair state with its label.
func (s *RepairService) States() []domain.StateOption {
	return domain.Options(domain.AllStates())
}

// Scan validates raw QR content and loads the repair it names.
func (s *RepairService) Scan(ctx context.Context, actor Actor, raw string) (ScanResult, error) {
	repair, err := s.Resolve(ctx, actor, raw)
	if err != nil {
		return ScanResult{}, err
	}
	return ScanResult{Repair: repair, AvailableStates: domain.Options(repair.State.Next())}, nil
}

// UpdateState moves the repair named by raw to target. The chatter note
// and the event are best effort.
func (s *RepairService) UpdateState(ctx context.Context, actor Actor, raw string, target domain.RepairState, note string) (domain.StateChange, error) {
	if !target.Valid() {
		return domain.StateChange{}, invalidInput("newState", "unknown state %q", target)
	}

	repair, err := s.Resolve(ctx, actor, raw)
	if err != nil {
		return domain.StateChange{}, err
	}
	if !repair.State.CanTransitionTo(target) {
		return domain.StateChange{}, fmt.Errorf("%w: %s to %s", ErrTransitionNotAllowed, repair.State, target)
	}

	if err := s.Proxy.Write(ctx, actor.Login, repairModel, []int64{repair.ID}, map[string]any{"state": string(target)}); err != nil {
		return domain.StateChange{}, err
	}

	l := slogx.FromContext(ctx).With(slog.Int64("repair_id", repair.ID))
	l.Info("repair state changed", slog.String("from", string(repair.State)), slog.String("to", string(target)))

	body := fmt.Sprintf("State changed from <b>%s</b> to <b>%s</b> by %s via QR scan.",
		repair.State.Label(), target.Label(), html.EscapeString(actor.DisplayName()))
	if note = strings.TrimSpace(note); note != "" {
		body += "<br/>" + html.EscapeString(note)
	}
	s.postMessage(ctx, actor, repair.ID, body)

	if s.Events != nil {
		err := s.Events.PublishStateChanged(ctx, events.RepairStateChanged{
			RepairID:   repair.ID,
			RepairCode: repair.Name,
			OldState:   string(repair.State),
			NewState:   string(target),
			Note:       note,
			UserID:     actor.ID,
			At:         s.now().UTC(),
		})
		if err != nil {
			l.Warn("failed to publish state change", slog.Any("error", err))
		}
	}

	return domain.StateChange{Success: true, RepairID: repair.ID, OldState: repair.State, NewState: target}, nil
}

// GenerateQR signs code for printing.
func (s *RepairService) GenerateQR(code string) (GeneratedQR, error) {
	content, err := s.Validator.Generate(strings.TrimSpace(code))
	if errors.Is(err, qrsig.ErrInvalidCode) {
		return GeneratedQR{}, invalidInput("repairCode", "must be non-empty and must not contain '|'")
	}
	if err != nil {
		return GeneratedQR{}, err
	}
	return GeneratedQR{QRContent: content, ExpiresInMinutes: s.Validator.ExpiresInMinutes()}, nil
}

// Create opens a draft repair order.
func (s *RepairService) Create(ctx context.Context, actor Actor, in domain.NewRepair) (domain.Repair, error) {
	if in.PartnerID <= 0 {
		return domain.Repair{}, invalidInput("partnerId", "is required")
	}

	values := map[string]any{"partner_id": in.PartnerID}
	if in.ProductID > 0 {
		values["product_id"] = in.ProductID
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		values["internal_notes"] = notes
	}
	if in.ScheduleDate != "" {
		if _, err := time.Parse(time.DateTime, in.ScheduleDate); err != nil {
			return domain.Repair{}, invalidInput("scheduleDate", "must look like 2006-01-02 15:04:05")
		}
		values["schedule_date"] = in.ScheduleDate
	}

	id, err := s.Proxy.Create(ctx, actor.Login, repairModel, values)
	if err != nil {
		return domain.Repair{}, err
	}
	slogx.FromContext(ctx).Info("repair created", slog.Int64("repair_id", id))

	var rows []repairRecord
	if err := s.Proxy.Read(ctx, actor.Login, repairModel, []int64{id}, repairFields, &rows); err != nil {
		return domain.Repair{}, err
	}
	if len(rows) == 0 {
		return domain.Repair{}, notFound("repair %d", id)
	}
	return rows[0].toDomain(), nil
}

// Recent lists the most recently updated repairs.
func (s *RepairService) Recent(ctx context.Context, actor Actor, limit int) ([]domain.Repair, error) {
	limit = clampLimit(limit, DefaultRecentLimit)

	var rows []repairRecord
	err := s.Proxy.SearchRead(ctx, actor.Login, repairModel, nil, repairFields,
		odoorpc.SearchOptions{Limit: limit, Order: "write_date desc"}, &rows)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Repair, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// Resolve validates raw QR content and loads the repair it names. Invalid
// codes return a *qrsig.RejectError.
func (s *RepairService) Resolve(ctx context.Context, actor Actor, raw string) (domain.Repair, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.Repair{}, invalidInput("qrContent", "is required")
	}

	res := s.Validator.Validate(raw)
	if s.QR != nil {
		s.QR.ObserveQR(res)
	}
	if !res.Valid {
		slogx.FromContext(ctx).Info("rejected qr code", slog.String("reason", string(res.Reason)))
		return domain.Repair{}, res.Err()
	}
	return s.findByCode(ctx, actor, res.Code)
}

// findByCode looks the repair up by reference, then by id for numeric
// codes.
func (s *RepairService) findByCode(ctx context.Context, actor Actor, code string) (domain.Repair, error) {
	var rows []repairRecord
	err := s.Proxy.SearchRead(ctx, actor.Login, repairModel, []any{[]any{"name", "=", code}}, repairFields,
		odoorpc.SearchOptions{Limit: 1}, &rows)
	if err != nil {
		return domain.Repair{}, err
	}

	if len(rows) == 0 {
		if id, convErr := strconv.ParseInt(code, 10, 64); convErr == nil && id > 0 {
			err = s.Proxy.SearchRead(ctx, actor.Login, repairModel, []any{[]any{"id", "=", id}}, repairFields,
				odoorpc.SearchOptions{Limit: 1}, &rows)
			if err != nil {
				return domain.Repair{}, err
			}
		}
	}
	if len(rows) == 0 {
		return domain.Repair{}, notFound("repair %q", code)
	}
	return rows[0].toDomain(), nil
}

func (s *RepairService) postMessage(ctx context.Context, actor Actor, repairID int64, body string) {
	_, err := s.Proxy.Execute(ctx, actor.Login, repairModel, "message_post", []any{[]int64{repairID}},
		map[string]any{"body": body, "message_type": "comment", "subtype_xmlid": "mail.mt_note"})
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to post repair chatter message",
			slog.Int64("repair_id", repairID), slog.Any("error", err))
	}
}

type repairRecord struct {
	ID            int64            `json:"id"`
	Name          odoorpc.Text     `json:"name"`
	State         string           `json:"state"`
	PartnerID     odoorpc.Many2One `json:"partner_id"`
	ProductID     odoorpc.Many2One `json:"product_id"`
	LotID         odoorpc.Many2One `json:"lot_id"`
	UserID        odoorpc.Many2One `json:"user_id"`
	InternalNotes odoorpc.Text     `json:"internal_notes"`
	ScheduleDate  odoorpc.Text     `json:"schedule_date"`
	CreateDate    odoorpc.Text     `json:"create_date"`
	WriteDate     odoorpc.Text     `json:"write_date"`
}

func (r repairRecord) toDomain() domain.Repair {
	state := domain.RepairState(r.State)
	return domain.Repair{
		ID:           r.ID,
		Name:         r.Name.String(),
		State:        state,
		StateLabel:   state.Label(),
		Partner:      ref(r.PartnerID),
		Product:      ref(r.ProductID),
		Lot:          ref(r.LotID),
		Technician:   ref(r.UserID),
		Notes:        r.InternalNotes.String(),
		ScheduleDate: r.ScheduleDate.String(),
		CreatedAt:    r.CreateDate.String(),
		UpdatedAt:    r.WriteDate.String(),
	}
}

func ref(m odoorpc.Many2One) *domain.Ref {
	if !m.Valid() {
		return nil
	}
	return &domain.Ref{ID: m.ID, Name: m.Name}
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
