package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/moisesdreckmann/projetoreactnative/internal/catalog"
	"github.com/moisesdreckmann/projetoreactnative/internal/checkout"
	"github.com/moisesdreckmann/projetoreactnative/internal/docstore"
	"github.com/moisesdreckmann/projetoreactnative/internal/identity"
	"github.com/moisesdreckmann/projetoreactnative/internal/orders"
	"github.com/moisesdreckmann/projetoreactnative/internal/session"
	"github.com/moisesdreckmann/projetoreactnative/internal/storage"
)

// Server holds the wired core components behind the HTTP surface: the
// customer app routes and the admin app routes share one server.
type Server struct {
	store        docstore.Store
	catalog      *catalog.Service
	feed         *orders.Feed
	publisher    checkout.Publisher
	files        storage.FileStore
	provider     identity.Provider
	sessionCache session.Cache
	sessions     *SessionManager
	adminKey     string
}

type Config struct {
	Store        docstore.Store
	Catalog      *catalog.Service
	Feed         *orders.Feed
	Publisher    checkout.Publisher // optional
	Files        storage.FileStore
	Provider     identity.Provider
	SessionCache session.Cache
	AdminKey     string
}

func NewServer(cfg Config) *Server {
	return &Server{
		store:        cfg.Store,
		catalog:      cfg.Catalog,
		feed:         cfg.Feed,
		publisher:    cfg.Publisher,
		files:        cfg.Files,
		provider:     cfg.Provider,
		sessionCache: cfg.SessionCache,
		sessions:     NewSessionManager(cfg.Provider, cfg.SessionCache),
		adminKey:     cfg.AdminKey,
	}
}

// Sessions exposes the session manager so main can run its event loop.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

func (s *Server) Router(requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/images/{image_id}", s.DownloadImage)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Post("/signin", s.SignIn)
			r.Post("/signup", s.SignUp)
			r.Post("/signout", s.SignOut)
			r.Post("/reset-password", s.ResetPassword)
			r.Post("/restore", s.Restore)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Get("/products", s.ListProducts)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)

			// The order feed outlives the request timeout on purpose;
			// everything else gets the standard deadline.
			r.Get("/orders/feed", s.OrderFeed)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(requestTimeout))
				r.Route("/cart", func(r chi.Router) {
					r.Get("/", s.GetCart)
					r.Delete("/", s.ClearCart)
					r.Post("/items", s.AddItem)
					r.Put("/items/{product_key}", s.SetQuantity)
					r.Delete("/items/{product_key}", s.RemoveItem)
				})
				r.Post("/checkout", s.Checkout)
				r.Get("/orders", s.ListOrders)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Use(s.AdminMiddleware)
			r.Post("/products", s.CreateProduct)
			r.Put("/products/{product_id}", s.UpdateProduct)
			r.Delete("/products/{product_id}", s.DeleteProduct)
			r.Post("/images", s.UploadImage)
		})
	})

	return r
}

// AdminMiddleware guards the admin app routes with a shared key.
func (s *Server) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Admin-Key")
		if s.adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.adminKey)) != 1 {
			respondError(w, http.StatusUnauthorized, "unauthorized", "invalid admin key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
