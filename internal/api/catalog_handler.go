package api

import (
	"net/http"

	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
)

type productDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UnitPrice   string `json:"unit_price"`
	ImageRef    string `json:"image_ref"`
	Category    string `json:"category"`
}

func convertProduct(p domain.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   p.UnitPrice.StringFixed(2),
		ImageRef:    p.ImageRef,
		Category:    p.Category,
	}
}

// GET /api/v1/products?category=pizzas
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = domain.CategoryPizzas
	}

	products, err := s.catalog.List(r.Context(), category)
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}

	dtos := make([]productDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, convertProduct(p))
	}
	respondJSON(w, http.StatusOK, dtos)
}
