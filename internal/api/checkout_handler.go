package api

import (
	"errors"
	"net/http"

	"github.com/moisesdreckmann/projetoreactnative/internal/checkout"
	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
)

type orderItemDTO struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type orderDTO struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Items     []orderItemDTO `json:"items"`
	Total     string         `json:"total"`
	CreatedAt string         `json:"created_at"`
}

func convertOrder(o domain.Order) orderDTO {
	dto := orderDTO{
		ID:        o.ID,
		UserID:    o.UserID,
		Total:     o.Total.StringFixed(2),
		CreatedAt: o.CreatedAt.Format(timeFormat),
		Items:     make([]orderItemDTO, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, orderItemDTO{
			Name:      item.Name,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
		})
	}
	return dto
}

// POST /api/v1/checkout
//
// An Idempotency-Key header makes repeated taps of the submit button
// safe: retrying with the same key can never create a second order.
func (s *Server) Checkout(w http.ResponseWriter, r *http.Request) {
	cs, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	sess, _ := cs.Gate.Current()
	snapshot := cs.Cart.Snapshot()

	submitter := checkout.NewSubmitter(s.store, cs.Cart, s.publisher)

	var (
		order *domain.Order
		err   error
	)
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		order, err = submitter.SubmitAttempt(r.Context(), snapshot, sess, key)
	} else {
		order, err = submitter.Submit(r.Context(), snapshot, sess)
	}

	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNotAuthenticated):
			respondError(w, http.StatusUnauthorized, "not_authenticated", "a verified signed-in user is required")
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusUnprocessableEntity, "empty_cart", "the cart has no items")
		case errors.Is(err, checkout.ErrDuplicateSubmission):
			respondError(w, http.StatusConflict, "duplicate_submission", "this submission attempt already created an order")
		default:
			respondError(w, http.StatusBadGateway, "submission_failed", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, convertOrder(*order))
}
