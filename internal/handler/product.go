package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/loja-escolar/backend/internal/catalog"
)

type ProductRequest struct {
	Nome           string          `json:"nome" validate:"required"`
	Descricao      *string         `json:"descricao"`
	Preco          decimal.Decimal `json:"preco"`
	Estoque        int             `json:"estoque" validate:"gte=0"`
	Categoria      string          `json:"categoria" validate:"required"`
	SKU            *string         `json:"sku"`
	ImagemFilename *string         `json:"imagem_filename"`
}

type ProductHandler struct {
	svc      catalog.Service
	validate *validator.Validate
}

func NewProductHandler(svc catalog.Service) *ProductHandler {
	return &ProductHandler{svc: svc, validate: validator.New()}
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := catalog.ListFilter{
		Search:    query.Get("search"),
		Category:  query.Get("categoria"),
		SortBy:    query.Get("sort"),
		SortOrder: query.Get("order"),
	}

	products, err := h.svc.ListProducts(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		respondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Produto não encontrado")
			return
		}
		log.Error().Err(err).Int64("product_id", id).Msg("Failed to get product")
		respondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	product := payload.toProduct()
	if err := h.svc.CreateProduct(r.Context(), product); err != nil {
		h.respondProductError(w, err, "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	payload, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	product := payload.toProduct()
	product.ID = id
	if err := h.svc.UpdateProduct(r.Context(), product); err != nil {
		h.respondProductError(w, err, "Failed to update product")
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		h.respondProductError(w, err, "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		respondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	respondWithJSON(w, http.StatusOK, categories)
}

func (h *ProductHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (*ProductRequest, bool) {
	var payload ProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode product payload")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return nil, false
	}

	if err := h.validate.Struct(payload); err != nil {
		if !respondWithValidationErrors(w, err) {
			log.Error().Err(err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return nil, false
	}

	return &payload, true
}

func (h *ProductHandler) respondProductError(w http.ResponseWriter, err error, logMessage string) {
	statusCode := mapErrorToStatusCode(err)

	var clientMessage string
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		clientMessage = "Produto não encontrado"
	case errors.Is(err, catalog.ErrSKUExists):
		clientMessage = "SKU já existe"
	case errors.Is(err, catalog.ErrInvalidProduct):
		clientMessage = err.Error()
	default:
		log.Error().Err(err).Msg(logMessage)
		clientMessage = "Erro interno do servidor"
	}

	respondWithError(w, statusCode, clientMessage)
}

func (p *ProductRequest) toProduct() *catalog.Product {
	return &catalog.Product{
		Name:          p.Nome,
		Description:   p.Descricao,
		Price:         p.Preco,
		Stock:         p.Estoque,
		Category:      p.Categoria,
		SKU:           p.SKU,
		ImageFilename: p.ImagemFilename,
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		log.Warn().Str("id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return 0, false
	}
	return id, true
}
