package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/loja-escolar/backend/internal/checkout"
)

type ConfirmCartRequest struct {
	Itens []ConfirmCartItem `json:"itens" validate:"dive"`
	Cupom *string           `json:"cupom"`
}

type ConfirmCartItem struct {
	ProdutoID  int64 `json:"produto_id" validate:"required"`
	Quantidade int   `json:"quantidade" validate:"required,gt=0"`
}

type CheckoutHandler struct {
	svc      checkout.Service
	validate *validator.Validate
}

func NewCheckoutHandler(svc checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, validate: validator.New()}
}

// ConfirmCart turns a client cart into a persisted order.
func (h *CheckoutHandler) ConfirmCart(w http.ResponseWriter, r *http.Request) {
	var payload ConfirmCartRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode cart payload")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(payload); err != nil {
		if !respondWithValidationErrors(w, err) {
			log.Error().Err(err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return
	}

	cart := checkout.Cart{Items: make([]checkout.CartLine, 0, len(payload.Itens))}
	for _, item := range payload.Itens {
		cart.Items = append(cart.Items, checkout.CartLine{
			ProductID: item.ProdutoID,
			Quantity:  item.Quantidade,
		})
	}
	if payload.Cupom != nil {
		cart.Coupon = *payload.Cupom
	}

	summary, err := h.svc.ConfirmCart(r.Context(), cart)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func (h *CheckoutHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	statusCode := mapErrorToStatusCode(err)

	var (
		notFound      *checkout.ProductNotFoundError
		insufficient  *checkout.InsufficientStockError
		clientMessage string
	)

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		clientMessage = "Carrinho não pode estar vazio"
	case errors.Is(err, checkout.ErrInvalidQuantity):
		clientMessage = "Quantidade deve ser maior que zero"
	case errors.As(err, &notFound):
		clientMessage = fmt.Sprintf("Produto com ID %d não encontrado", notFound.ProductID)
	case errors.As(err, &insufficient):
		clientMessage = fmt.Sprintf("Estoque insuficiente para '%s'. Disponível: %d, Solicitado: %d",
			insufficient.ProductName, insufficient.Available, insufficient.Requested)
	default:
		// Storage internals never reach the client.
		log.Error().Err(err).Msg("Failed to confirm cart")
		clientMessage = "Erro interno do servidor"
	}

	respondWithError(w, statusCode, clientMessage)
}
