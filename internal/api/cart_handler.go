package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/moisesdreckmann/projetoreactnative/internal/cart"
	"github.com/moisesdreckmann/projetoreactnative/internal/catalog"
	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
)

type cartLineDTO struct {
	Product  productDTO `json:"product"`
	Quantity int        `json:"quantity"`
	Subtotal string     `json:"subtotal"`
}

type cartDTO struct {
	Lines []cartLineDTO `json:"lines"`
	Total string        `json:"total"`
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func convertCart(lines []domain.CartLine, store *cart.Store) cartDTO {
	dto := cartDTO{
		Lines: make([]cartLineDTO, 0, len(lines)),
		Total: store.Total().StringFixed(2),
	}
	for _, line := range lines {
		dto.Lines = append(dto.Lines, cartLineDTO{
			Product:  convertProduct(line.Product),
			Quantity: line.Quantity,
			Subtotal: line.Subtotal().StringFixed(2),
		})
	}
	return dto
}

// GET /api/v1/cart
func (s *Server) GetCart(w http.ResponseWriter, r *http.Request) {
	cs, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	respondJSON(w, http.StatusOK, convertCart(cs.Cart.Snapshot(), cs.Cart))
}

// POST /api/v1/cart/items
func (s *Server) AddItem(w http.ResponseWriter, r *http.Request) {
	cs, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	// Validate against the catalog so the cart snapshots a real product
	// with its price at add-time.
	product, err := s.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}

	if _, err := cs.Cart.Add(*product, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be greater than 0")
			return
		}
		respondError(w, http.StatusInternalServerError, "cart_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, convertCart(cs.Cart.Snapshot(), cs.Cart))
}

// PUT /api/v1/cart/items/{product_key}
func (s *Server) SetQuantity(w http.ResponseWriter, r *http.Request) {
	cs, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	productKey := chi.URLParam(r, "product_key")
	if productKey == "" {
		respondError(w, http.StatusBadRequest, "missing_product_key", "product_key is required")
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}

	cs.Cart.SetQuantity(productKey, req.Quantity)
	respondJSON(w, http.StatusOK, convertCart(cs.Cart.Snapshot(), cs.Cart))
}

// DELETE /api/v1/cart/items/{product_key}
func (s *Server) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cs, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	productKey := chi.URLParam(r, "product_key")
	if productKey == "" {
		respondError(w, http.StatusBadRequest, "missing_product_key", "product_key is required")
		return
	}

	cs.Cart.Remove(productKey)
	respondJSON(w, http.StatusOK, convertCart(cs.Cart.Snapshot(), cs.Cart))
}

// DELETE /api/v1/cart
func (s *Server) ClearCart(w http.ResponseWriter, r *http.Request) {
	cs, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	cs.Cart.Clear()
	respondJSON(w, http.StatusOK, convertCart(nil, cs.Cart))
}
