package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moisesdreckmann/projetoreactnative/internal/docstore"
	"github.com/moisesdreckmann/projetoreactnative/internal/orders"
)

func TestListOrders_Empty(t *testing.T) {
	env := newTestEnv(t)
	cs := env.signIn(t, "ana@example.com")

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/orders", nil)
	request = request.WithContext(withSession(request.Context(), cs))

	env.server.ListOrders(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response []orderDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response) != 0 {
		t.Errorf("Expected no orders, got %d", len(response))
	}
}

func TestListOrders_SortedNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	cs := env.signIn(t, "ana@example.com")
	sess, _ := cs.Gate.Current()

	t1 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	seedOrder(t, env, sess.UserID, "19.90", t1)
	seedOrder(t, env, sess.UserID, "39.90", t2)
	seedOrder(t, env, "someone-else", "99.00", t2)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/orders", nil)
	request = request.WithContext(withSession(request.Context(), cs))

	env.server.ListOrders(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response []orderDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 orders for this user, got %d", len(response))
	}
	if response[0].Total != "39.90" {
		t.Errorf("Expected newest order first with total '39.90', got '%s'", response[0].Total)
	}
	if response[1].Total != "19.90" {
		t.Errorf("Expected oldest order last with total '19.90', got '%s'", response[1].Total)
	}
}

func TestListOrders_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/orders", nil)
	// No session in context

	env.server.ListOrders(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func seedOrder(t *testing.T, env *testEnv, userID, total string, createdAt time.Time) {
	t.Helper()

	_, err := env.store.Create(context.Background(), orders.Collection, docstore.Document{
		"user_id": userID,
		"items": []docstore.Document{
			{"name": "margherita", "unit_price": total, "quantity": 1},
		},
		"total":      total,
		"created_at": createdAt,
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
}
