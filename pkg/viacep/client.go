package viacep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://viacep.com.br"
	defaultTimeout              = 5 * time.Second
	responseBodyReadLimit int64 = 1024
)

// Client resolves Brazilian postal codes through the public ViaCEP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
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

// WithBaseURL points the client at another ViaCEP-compatible host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithRateLimit caps outbound requests per second. Zero or negative disables throttling.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient builds a ViaCEP client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Address is the subset of ViaCEP's payload the checkout uses.
type Address struct {
	CEP          string
	Street       string
	Complement   string
	Neighborhood string
	City         string
	State        string
}

// Complete reports whether street, city and state were all returned.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Street) != "" && strings.TrimSpace(a.City) != "" && strings.TrimSpace(a.State) != ""
}

type apiResponse struct {
	CEP         string    `json:"cep"`
	Logradouro  string    `json:"logradouro"`
	Complemento string    `json:"complemento"`
	Bairro      string    `json:"bairro"`
	Localidade  string    `json:"localidade"`
	UF          string    `json:"uf"`
	Erro        errorFlag `json:"erro"`
}

// errorFlag accepts both `"erro": true` and `"erro": "true"`; ViaCEP has shipped both.
type errorFlag bool

func (f *errorFlag) UnmarshalJSON(data []byte) error {
	v := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	*f = errorFlag(strings.EqualFold(v, "true"))
	return nil
}

// Lookup resolves an 8-digit CEP. A CEP ViaCEP does not know yields CodeNotFound;
// malformed input yields CodeValidation and network or upstream failures CodeDependency.
func (c *Client) Lookup(ctx context.Context, cep string) (*Address, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "viacep client not configured")
	}
	if !isEightDigits(cep) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cep must have exactly 8 digits")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "viacep rate limiter")
		}
	}

	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, cep)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build viacep request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute viacep request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "viacep rejected cep format")
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "viacep request failed")
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode viacep response")
	}
	if apiResp.Erro {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cep not found")
	}

	return &Address{
		CEP:          cep,
		Street:       strings.TrimSpace(apiResp.Logradouro),
		Complement:   strings.TrimSpace(apiResp.Complemento),
		Neighborhood: strings.TrimSpace(apiResp.Bairro),
		City:         strings.TrimSpace(apiResp.Localidade),
		State:        strings.TrimSpace(apiResp.UF),
	}, nil
}

func isEightDigits(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
