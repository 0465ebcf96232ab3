package pixgateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func sampleRequest() ChargeRequest {
	addr := &types.Address{CEP: "01310-100", Street: "Avenida Paulista", Number: "1000", City: "São Paulo", State: "SP", Country: "Brasil"}
	return ChargeRequest{
		Amount:      2533,
		Description: "Kit Essencial",
		Customer: types.Customer{
			Name: "Ana Souza", Email: "ana@example.com", Cellphone: "11999999999", TaxID: "12345678900", Address: addr,
		},
		Tracking:  Tracking{UTM: map[string]string{"utm_source": "ig"}, Src: "https://loja.test/checkout?utm_source=ig"},
		Address:   addr,
		FBP:       "fb.1.123",
		UserAgent: "Mozilla/5.0",
	}
}

func TestCreateChargeSendsPayload(t *testing.T) {
	var captured map[string]any
	var auth string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		auth = req.Header.Get("Authorization")
		raw, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &captured))
		return response(http.StatusOK, `{"pix_qr_code":"data:image/png;base64,AAA","pix_code":"000201010212"}`), nil
	})
	client, err := NewClient("http://pix.test/charges", WithHTTPClient(&http.Client{Transport: rt}), WithAPIKey("k"))
	require.NoError(t, err)

	result, err := client.CreateCharge(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.True(t, result.Complete())
	require.Equal(t, "Bearer k", auth)

	require.EqualValues(t, 2533, captured["amount"])
	customer := captured["customer"].(map[string]any)
	require.Equal(t, "12345678900", customer["taxId"])
	require.NotNil(t, customer["address"])
	tracking := captured["tracking"].(map[string]any)
	require.Equal(t, "ig", tracking["utm"].(map[string]any)["utm_source"])
	require.NotContains(t, captured, "shipping")
	require.Equal(t, "Mozilla/5.0", captured["user_agent"])
}

func TestCreateChargeRejectedCarriesProviderMessage(t *testing.T) {
	client, err := NewClient("http://pix.test/charges", WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return response(http.StatusUnprocessableEntity, `{"error":"CPF inválido"}`), nil
	})}))
	require.NoError(t, err)

	_, err = client.CreateCharge(context.Background(), sampleRequest())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodePaymentFailed, typed.Code())
	require.Equal(t, "CPF inválido", typed.Message())
	require.Equal(t, map[string]any{"status": http.StatusUnprocessableEntity}, typed.Details())
}

func TestCreateChargeRejectedWithoutBodyUsesDefault(t *testing.T) {
	client, err := NewClient("http://pix.test/charges", WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return response(http.StatusInternalServerError, `oops`), nil
	})}))
	require.NoError(t, err)

	_, err = client.CreateCharge(context.Background(), sampleRequest())
	require.Equal(t, MessageRejected, pkgerrors.As(err).Message())
}

func TestCreateChargeTransportError(t *testing.T) {
	client, err := NewClient("http://pix.test/charges", WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection reset")
	})}))
	require.NoError(t, err)

	_, err = client.CreateCharge(context.Background(), sampleRequest())
	typed := pkgerrors.As(err)
	require.Equal(t, pkgerrors.CodeDependency, typed.Code())
	require.Equal(t, MessageTransport, typed.Message())
}

func TestWithTaxIDOnlyChangesTaxID(t *testing.T) {
	req := sampleRequest()
	retry := req.WithTaxID("00000000191")
	require.Equal(t, "00000000191", retry.Customer.TaxID)
	require.Equal(t, "12345678900", req.Customer.TaxID)

	retry.Customer.TaxID = req.Customer.TaxID
	require.Equal(t, req, retry)
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	_, err := NewClient("  ")
	require.Error(t, err)
}
