package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loja-escolar/backend/internal/checkout"
)

func TestMain(m *testing.M) {
	// Same wire format main configures: money as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

type mockCheckoutService struct {
	confirmCartFunc func(ctx context.Context, cart checkout.Cart) (*checkout.OrderSummary, error)
}

func (m *mockCheckoutService) ConfirmCart(ctx context.Context, cart checkout.Cart) (*checkout.OrderSummary, error) {
	return m.confirmCartFunc(ctx, cart)
}

func confirmRequest(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	return confirmRequestWith(t, body, func(ctx context.Context, cart checkout.Cart) (*checkout.OrderSummary, error) {
		t.Fatal("service must not be called")
		return nil, nil
	})
}

func confirmRequestWith(t *testing.T, body string, fn func(ctx context.Context, cart checkout.Cart) (*checkout.OrderSummary, error)) *httptest.ResponseRecorder {
	t.Helper()

	h := NewCheckoutHandler(&mockCheckoutService{confirmCartFunc: fn})
	r := chi.NewRouter()
	r.Post("/carrinho/confirmar", h.ConfirmCart)

	req := httptest.NewRequest(http.MethodPost, "/carrinho/confirmar", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckoutHandler_ConfirmCart_Success(t *testing.T) {
	coupon := checkout.CouponCode
	summary := &checkout.OrderSummary{
		ID:         12,
		GrossTotal: decimal.RequireFromString("20.00"),
		Discount:   decimal.RequireFromString("2.00"),
		NetTotal:   decimal.RequireFromString("18.00"),
		Coupon:     &coupon,
		Date:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Items: []checkout.SummaryLine{
			{
				ProductID: 1,
				Name:      "Caderno",
				UnitPrice: decimal.RequireFromString("10.00"),
				Quantity:  2,
				Subtotal:  decimal.RequireFromString("20.00"),
			},
		},
	}

	var gotCart checkout.Cart
	w := confirmRequestWith(t,
		`{"itens":[{"produto_id":1,"quantidade":2}],"cupom":"aluno10"}`,
		func(ctx context.Context, cart checkout.Cart) (*checkout.OrderSummary, error) {
			gotCart = cart
			return summary, nil
		})

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, gotCart.Items, 1)
	assert.Equal(t, int64(1), gotCart.Items[0].ProductID)
	assert.Equal(t, 2, gotCart.Items[0].Quantity)
	assert.Equal(t, "aluno10", gotCart.Coupon)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(12), body["id"])
	assert.Equal(t, float64(20), body["total_bruto"])
	assert.Equal(t, float64(2), body["desconto"])
	assert.Equal(t, float64(18), body["total_final"])
	assert.Equal(t, "ALUNO10", body["cupom_usado"])

	items, ok := body["itens"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, float64(1), item["produto_id"])
	assert.Equal(t, "Caderno", item["nome"])
	assert.Equal(t, float64(10), item["preco_unitario"])
	assert.Equal(t, float64(2), item["quantidade"])
	assert.Equal(t, float64(20), item["subtotal"])
}

func TestCheckoutHandler_ConfirmCart_Errors(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		serviceErr      error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "empty_cart",
			body:            `{"itens":[],"cupom":null}`,
			serviceErr:      checkout.ErrEmptyCart,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Carrinho não pode estar vazio",
		},
		{
			name:            "product_not_found",
			body:            `{"itens":[{"produto_id":99,"quantidade":1}]}`,
			serviceErr:      &checkout.ProductNotFoundError{ProductID: 99},
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Produto com ID 99 não encontrado",
		},
		{
			name:            "insufficient_stock",
			body:            `{"itens":[{"produto_id":1,"quantidade":2}]}`,
			serviceErr:      &checkout.InsufficientStockError{ProductName: "Caderno", Available: 1, Requested: 2},
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "Estoque insuficiente para 'Caderno'. Disponível: 1, Solicitado: 2",
		},
		{
			name:            "storage_error_is_opaque",
			body:            `{"itens":[{"produto_id":1,"quantidade":2}]}`,
			serviceErr:      assert.AnError,
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Erro interno do servidor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := confirmRequestWith(t, tt.body, func(ctx context.Context, cart checkout.Cart) (*checkout.OrderSummary, error) {
				return nil, tt.serviceErr
			})

			assert.Equal(t, tt.expectedStatus, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedMessage, body["error"])
		})
	}
}

func TestCheckoutHandler_ConfirmCart_BadPayload(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{name: "invalid_json", body: `{invalid}`, expectedStatus: http.StatusBadRequest},
		{name: "unknown_field", body: `{"items":[{"produto_id":1,"quantidade":1}]}`, expectedStatus: http.StatusBadRequest},
		{name: "zero_quantity", body: `{"itens":[{"produto_id":1,"quantidade":0}]}`, expectedStatus: http.StatusUnprocessableEntity},
		{name: "negative_quantity", body: `{"itens":[{"produto_id":1,"quantidade":-3}]}`, expectedStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := confirmRequest(t, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
