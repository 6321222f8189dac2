package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/playvault/server/events"
	"github.com/playvault/server/logger"
	"github.com/playvault/server/models"
	"github.com/playvault/server/monitor"
	"github.com/playvault/server/services"
	"github.com/playvault/server/session"
	"github.com/playvault/server/upload"
)

// Server is the storefront REST API.
type Server struct {
	addr       string
	sessions   *session.Manager
	hub        *events.Hub
	mon        *monitor.Monitor
	uploader   *upload.Client
	catalog    *services.CatalogService
	users      *services.UserService
	comments   *services.CommentService
	wishlist   *services.WishlistService
	cart       *services.CartService
	checkout   *services.CheckoutService
	stats      *services.StatsService
	httpServer *http.Server
}

// Deps bundles everything the server needs. Monitor and Uploader may be
// nil (tests run without them).
type Deps struct {
	Sessions *session.Manager
	Hub      *events.Hub
	Monitor  *monitor.Monitor
	Uploader *upload.Client
	Catalog  *services.CatalogService
	Users    *services.UserService
	Comments *services.CommentService
	Wishlist *services.WishlistService
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Stats    *services.StatsService
}

func New(addr string, deps Deps) *Server {
	s := &Server{
		addr:     addr,
		sessions: deps.Sessions,
		hub:      deps.Hub,
		mon:      deps.Monitor,
		uploader: deps.Uploader,
		catalog:  deps.Catalog,
		users:    deps.Users,
		comments: deps.Comments,
		wishlist: deps.Wishlist,
		cart:     deps.Cart,
		checkout: deps.Checkout,
		stats:    deps.Stats,
	}
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	return s
}

// Handler builds the full route table with common middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /games", s.handleListGames)
	mux.HandleFunc("GET /games/{id}", s.handleGetGame)
	mux.HandleFunc("POST /games", s.requireAuth(s.handleCreateGame))
	mux.HandleFunc("PUT /games/{id}", s.requireAuth(s.handleUpdateGame))

	mux.HandleFunc("POST /users", s.handleRegister)
	mux.HandleFunc("GET /users", s.requireAuth(s.handleListUsers))
	mux.HandleFunc("GET /users/{id}", s.requireAuth(s.handleGetUser))
	mux.HandleFunc("PUT /users/{id}", s.requireAuth(s.handleUpdateUser))
	mux.HandleFunc("DELETE /users/{id}", s.requireAuth(s.handleDeleteUser))

	mux.HandleFunc("GET /comments", s.handleListComments)
	mux.HandleFunc("POST /comments", s.requireAuth(s.handleAddComment))

	mux.HandleFunc("GET /wishlist", s.requireAuth(s.handleGetWishlist))
	mux.HandleFunc("POST /wishlist/toggle", s.requireAuth(s.handleToggleWishlist))

	mux.HandleFunc("GET /cart", s.requireAuth(s.handleGetCart))
	mux.HandleFunc("POST /cart", s.requireAuth(s.handleAddToCart))
	mux.HandleFunc("DELETE /cart/{gameID}", s.requireAuth(s.handleRemoveFromCart))
	mux.HandleFunc("POST /cart/checkout", s.requireAuth(s.handleCheckout))

	mux.HandleFunc("GET /purchases", s.requireAuth(s.handleGetPurchases))

	mux.HandleFunc("GET /statistics/current", s.requireAuth(s.handleCurrentStats))
	mux.HandleFunc("GET /statistics/previous", s.requireAuth(s.handlePreviousStats))

	mux.HandleFunc("POST /upload", s.requireAuth(s.handleUpload))

	if s.hub != nil {
		mux.HandleFunc("/ws", s.hub.Handle)
	}

	return s.withCommon(mux)
}

func (s *Server) Start() error {
	logger.Log.Infof("Storefront API listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// withCommon applies CORS, request logging and metrics to every route.
// CORS stays wide open, matching the json-server defaults the SPA
// developed against.
func (s *Server) withCommon(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		start := time.Now()
		next.ServeHTTP(w, r)

		if s.mon != nil {
			s.mon.IncRequests()
			s.mon.ObserveRequestLatency(time.Since(start))
			s.mon.SetActiveSessions(s.sessions.ActiveCount())
		}
		logger.Log.Infow("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Log.Errorf("Failed to encode response: %v", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, title, message string) {
	writeJSON(w, status, models.APIError{Error: title, Message: message})
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
