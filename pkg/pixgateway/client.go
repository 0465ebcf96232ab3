package pixgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

const (
	defaultTimeout              = 15 * time.Second
	responseBodyReadLimit int64 = 64 * 1024

	// MessageRejected is shown when the gateway refuses a charge without saying why.
	MessageRejected = "Erro ao gerar Pix"
	// MessageTransport is shown when the gateway could not be reached.
	MessageTransport = "Erro na conexão com Pix"
)

// Client performs the single charge-creation call against the Pix provider.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAPIKey sends the key as a bearer token on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// NewClient builds a gateway client posting to endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("pix gateway url is required")
	}
	client := &Client{
		endpoint:   trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Tracking carries the visit attribution forwarded with a charge.
type Tracking struct {
	UTM map[string]string `json:"utm"`
	Src string            `json:"src"`
}

// Shipping is the selected shipping option, when the offer has any.
type Shipping struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
}

// ChargeRequest is the payload accepted by the charge endpoint.
type ChargeRequest struct {
	Amount      int            `json:"amount"`
	Description string         `json:"description"`
	Customer    types.Customer `json:"customer"`
	Tracking    Tracking       `json:"tracking"`
	Address     *types.Address `json:"address,omitempty"`
	Shipping    *Shipping      `json:"shipping,omitempty"`
	FBP         string         `json:"fbp"`
	FBC         string         `json:"fbc"`
	UserAgent   string         `json:"user_agent"`
}

// WithTaxID returns a copy of the request with only the customer's tax id replaced.
func (r ChargeRequest) WithTaxID(taxID string) ChargeRequest {
	out := r
	out.Customer.TaxID = taxID
	return out
}

// ChargeResult is the gateway's success payload.
type ChargeResult struct {
	PixQRCode string `json:"pix_qr_code"`
	PixCode   string `json:"pix_code"`
}

// Complete reports whether both the QR image reference and the copyable code are present.
func (r ChargeResult) Complete() bool {
	return strings.TrimSpace(r.PixQRCode) != "" && strings.TrimSpace(r.PixCode) != ""
}

// CreateCharge posts req once. Non-2xx answers become CodePaymentFailed carrying the
// provider's error text; network failures become CodeDependency.
func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, MessageTransport)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal charge request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, MessageTransport)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, MessageTransport)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, MessageTransport)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, rejection(resp.StatusCode, body)
	}

	var result ChargeResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePaymentFailed, err, MessageRejected).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}
	return &result, nil
}

func rejection(status int, body []byte) error {
	var apiErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &apiErr)

	msg := strings.TrimSpace(apiErr.Error)
	if msg == "" {
		msg = strings.TrimSpace(apiErr.Message)
	}
	if msg == "" {
		msg = MessageRejected
	}
	return pkgerrors.New(pkgerrors.CodePaymentFailed, msg).
		WithDetails(map[string]any{"status": status})
}
