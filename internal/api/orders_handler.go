package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// GET /api/v1/orders
func (s *Server) ListOrders(w http.ResponseWriter, r *http.Request) {
	cs, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	sess, _ := cs.Gate.Current()
	orders, err := s.feed.List(r.Context(), sess.UserID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "orders_unavailable", err.Error())
		return
	}

	dtos := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, convertOrder(o))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/feed
//
// Server-sent events stream of the user's order history. Every event
// carries the full current set, newest first, exactly as the feed pushes
// it. The subscription is torn down when the client disconnects.
func (s *Server) OrderFeed(w http.ResponseWriter, r *http.Request) {
	cs, ok := sessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming_unsupported", "response writer does not support streaming")
		return
	}

	sess, _ := cs.Gate.Current()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	type push struct {
		orders []domain.Order
		err    error
	}
	pushes := make(chan push, 8)

	sub, err := s.feed.Subscribe(sess.UserID,
		func(orders []domain.Order) {
			select {
			case pushes <- push{orders: orders}:
			case <-r.Context().Done():
			}
		},
		func(err error) {
			select {
			case pushes <- push{err: err}:
			case <-r.Context().Done():
			}
		})
	if err != nil {
		log.Printf("order feed subscribe failed: %v", err)
		return
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case p := <-pushes:
			if p.err != nil {
				// Deliver the error once and stop; the client decides
				// whether to reconnect.
				fmt.Fprintf(w, "event: error\ndata: %q\n\n", p.err.Error())
				flusher.Flush()
				return
			}
			dtos := make([]orderDTO, 0, len(p.orders))
			for _, o := range p.orders {
				dtos = append(dtos, convertOrder(o))
			}
			data, err := json.Marshal(dtos)
			if err != nil {
				log.Printf("failed to marshal order feed push: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: orders\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
