package odoorpc

import (
	"context"
	"encoding/json"
	"fmt"
)

// SearchOptions are the optional kwargs of search_read.
type SearchOptions struct {
	Limit  int
	Offset int
	Order  string
}

// SearchRead runs search_read on model and decodes the records into out,
// which should be a pointer to a slice.
func (p *Proxy) SearchRead(ctx context.Context, identity, model string, domain []any, fields []string, opts SearchOptions, out any) error {
	if domain == nil {
		domain = []any{}
	}
	kwargs := map[string]any{
		"domain": domain,
		"fields": fields,
	}
	if opts.Limit > 0 {
		kwargs["limit"] = opts.Limit
	}
	if opts.Offset > 0 {
		kwargs["offset"] = opts.Offset
	}
	if opts.Order != "" {
		kwargs["order"] = opts.Order
	}
	return p.ExecuteInto(ctx, identity, model, "search_read", nil, kwargs, out)
}

// Read reads fields of the records ids into out.
func (p *Proxy) Read(ctx context.Context, identity, model string, ids []int64, fields []string, out any) error {
	return p.ExecuteInto(ctx, identity, model, "read", []any{ids}, map[string]any{"fields": fields}, out)
}

// Create creates one record and returns its id.
func (p *Proxy) Create(ctx context.Context, identity, model string, values map[string]any) (int64, error) {
	var id int64
	if err := p.ExecuteInto(ctx, identity, model, "create", []any{values}, nil, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// Write updates the records ids with values.
func (p *Proxy) Write(ctx context.Context, identity, model string, ids []int64, values map[string]any) error {
	var ok bool
	if err := p.ExecuteInto(ctx, identity, model, "write", []any{ids, values}, nil, &ok); err != nil {
		return err
	}
	if !ok {
		return &RemoteError{Message: fmt.Sprintf("write on %s returned false", model)}
	}
	return nil
}

// Many2One is a relational field as Odoo returns it: [id, "display name"]
// or false when unset.
type Many2One struct {
	ID   int64
	Name string
}

func (m *Many2One) UnmarshalJSON(data []byte) error {
	if isFalsy(data) {
		*m = Many2One{}
		return nil
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("odoorpc: many2one: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("odoorpc: many2one: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &m.ID); err != nil {
		return fmt.Errorf("odoorpc: many2one id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &m.Name); err != nil {
		return fmt.Errorf("odoorpc: many2one name: %w", err)
	}
	return nil
}

// Valid reports whether the field is set.
func (m Many2One) Valid() bool { return m.ID != 0 }

// Text is a char or text field, which Odoo returns as false when empty.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	if isFalsy(data) {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("odoorpc: text: %w", err)
	}
	*t = Text(s)
	return nil
}

func (t Text) String() string { return string(t) }

func isFalsy(data []byte) bool {
	s := string(data)
	return s == "false" || s == "null"
}
