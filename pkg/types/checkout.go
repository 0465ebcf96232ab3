package types

// Address is a Brazilian delivery address as captured by the checkout form.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

// IsZero reports whether no field was captured.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Customer is the buyer identity forwarded to the Pix gateway.
type Customer struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Cellphone string   `json:"cellphone"`
	TaxID     string   `json:"taxId"`
	Address   *Address `json:"address,omitempty"`
}

// Attribution carries the marketing context collected from the storefront visit.
type Attribution struct {
	UTM       map[string]string `json:"utm,omitempty"`
	Src       string            `json:"src,omitempty"`
	FBP       string            `json:"fbp,omitempty"`
	FBC       string            `json:"fbc,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
}

// SummaryLine is one priced row of an order summary snapshot.
type SummaryLine struct {
	Kind       string `json:"kind"`
	ProductID  string `json:"product_id,omitempty"`
	Label      string `json:"label"`
	PriceCents int    `json:"price_cents"`
}

// OrderSummary is the persisted snapshot of a computed checkout summary.
type OrderSummary struct {
	PaymentMethod string        `json:"payment_method"`
	SubtotalCents int           `json:"subtotal_cents"`
	DiscountCents int           `json:"discount_cents"`
	ShippingCents int           `json:"shipping_cents"`
	TotalCents    int           `json:"total_cents"`
	Lines         []SummaryLine `json:"lines"`
}

// PixCharge is the payment instrument returned by the gateway.
type PixCharge struct {
	QRCode string `json:"pix_qr_code"`
	Code   string `json:"pix_code"`
}
