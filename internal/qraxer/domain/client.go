package domain

// Client is a customer (res.partner).
type Client struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Email  string `json:"email,omitempty"`
	VAT    string `json:"vat,omitempty"`
}

// NewClient is the input for quick client creation.
type NewClient struct {
	Name  string `json:"name" example:"Acme Repairs"`
	Phone string `json:"phone,omitempty" example:"+1 555 0100"`
	Email string `json:"email,omitempty" example:"front@acme.test"`
}
