package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/moisesdreckmann/projetoreactnative/internal/catalog"
	"github.com/moisesdreckmann/projetoreactnative/internal/docstore"
	"github.com/moisesdreckmann/projetoreactnative/internal/storage"
	"github.com/shopspring/decimal"
)

const maxUploadSize = 5 << 20 // 5MB

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UnitPrice   string `json:"unit_price"`
	ImageRef    string `json:"image_ref"`
	Category    string `json:"category"`
}

func (req *productRequest) toDocument() (docstore.Document, error) {
	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil || price.IsNegative() {
		return nil, errors.New("unit_price must be a non-negative decimal")
	}

	return docstore.Document{
		"name":        req.Name,
		"description": req.Description,
		"unit_price":  price.String(),
		"image_ref":   req.ImageRef,
		"category":    req.Category,
	}, nil
}

// POST /api/v1/admin/products
func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if req.Name == "" || req.Category == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "name and category are required")
		return
	}

	doc, err := req.toDocument()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price", err.Error())
		return
	}

	id, err := s.store.Create(r.Context(), catalog.Collection, doc)
	if err != nil {
		respondError(w, http.StatusBadGateway, "store_unavailable", err.Error())
		return
	}

	s.catalog.Invalidate(r.Context(), req.Category)
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// PUT /api/v1/admin/products/{product_id}
func (s *Server) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "product_id is required")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}

	doc, err := req.toDocument()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price", err.Error())
		return
	}

	if err := s.store.Update(r.Context(), catalog.Collection, productID, doc); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		respondError(w, http.StatusBadGateway, "store_unavailable", err.Error())
		return
	}

	s.catalog.Invalidate(r.Context(), req.Category)
	respondJSON(w, http.StatusOK, map[string]string{"id": productID})
}

// DELETE /api/v1/admin/products/{product_id}
func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "product_id is required")
		return
	}

	// Fetch first so the right category cache can be invalidated.
	product, err := s.catalog.Get(r.Context(), productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "product not found")
			return
		}
		respondError(w, http.StatusBadGateway, "store_unavailable", err.Error())
		return
	}

	if err := s.store.Delete(r.Context(), catalog.Collection, productID); err != nil {
		respondError(w, http.StatusBadGateway, "store_unavailable", err.Error())
		return
	}

	s.catalog.Invalidate(r.Context(), product.Category)
	respondJSON(w, http.StatusNoContent, nil)
}

// POST /api/v1/admin/images
func (s *Server) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_upload", "expected multipart form with a file field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_upload", "file field is required")
		return
	}
	defer file.Close()

	url, err := s.files.Put(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, http.StatusBadGateway, "storage_unavailable", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"download_url": url})
}

// GET /images/{image_id}
func (s *Server) DownloadImage(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "image_id")
	if imageID == "" {
		respondError(w, http.StatusBadRequest, "missing_image_id", "image_id is required")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	if err := s.files.Download(r.Context(), imageID, w); err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			respondError(w, http.StatusNotFound, "image_not_found", "image not found")
			return
		}
		respondError(w, http.StatusBadGateway, "storage_unavailable", err.Error())
	}
}
