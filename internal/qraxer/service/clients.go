package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ithesk/qraxer/internal/qraxer/domain"
	"github.com/ithesk/qraxer/pkg/odoorpc"
	"github.com/ithesk/qraxer/pkg/slogx"
)

const partnerModel = "res.partner"

var partnerFields = []string{"name", "phone", "mobile", "email", "vat"}

// ClientService searches and creates customers as the technician.
type ClientService struct {
	Proxy *odoorpc.Proxy
}

type partnerRecord struct {
	ID     int64        `json:"id"`
	Name   odoorpc.Text `json:"name"`
	Phone  odoorpc.Text `json:"phone"`
	Mobile odoorpc.Text `json:"mobile"`
	Email  odoorpc.Text `json:"email"`
	VAT    odoorpc.Text `json:"vat"`
}

func (r partnerRecord) toDomain() domain.Client {
	return domain.Client{
		ID:     r.ID,
		Name:   r.Name.String(),
		Phone:  r.Phone.String(),
		Mobile: r.Mobile.String(),
		Email:  r.Email.String(),
		VAT:    r.VAT.String(),
	}
}

func (s *ClientService) Search(ctx context.Context, actor Actor, q string, limit int) ([]domain.Client, error) {
	var dom []any
	if q = strings.TrimSpace(q); q != "" {
		dom = []any{"|", "|", "|",
			[]any{"name", "ilike", q},
			[]any{"phone", "ilike", q},
			[]any{"mobile", "ilike", q},
			[]any{"email", "ilike", q},
		}
	}

	var rows []partnerRecord
	err := s.Proxy.SearchRead(ctx, actor.Login, partnerModel, dom, partnerFields,
		odoorpc.SearchOptions{Limit: clampLimit(limit, DefaultSearchLimit), Order: "name"}, &rows)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Client, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// Create adds a customer with the minimum a repair order needs.
func (s *ClientService) Create(ctx context.Context, actor Actor, in domain.NewClient) (domain.Client, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		return domain.Client{}, invalidInput("name", "is required")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return domain.Client{}, invalidInput("email", "is not an email address")
	}

	values := map[string]any{"name": in.Name, "customer_rank": 1}
	if in.Phone != "" {
		values["phone"] = in.Phone
	}
	if in.Email != "" {
		values["email"] = in.Email
	}

	id, err := s.Proxy.Create(ctx, actor.Login, partnerModel, values)
	if err != nil {
		return domain.Client{}, err
	}
	slogx.FromContext(ctx).Info("client created", slog.Int64("partner_id", id))
	return domain.Client{ID: id, Name: in.Name, Phone: in.Phone, Email: in.Email}, nil
}
