package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/projectstockmarket/stockmarket/internal/account"
	"github.com/projectstockmarket/stockmarket/internal/auth"
	"github.com/projectstockmarket/stockmarket/internal/market"
)

// Server wires the marketplace, account ledger and authenticator into
// an HTTP handler. Stream, when set, is mounted at GET /ws.
type Server struct {
	market *market.MarketPlace
	ledger *account.Ledger
	auth   *auth.Authenticator
	stream http.Handler
	logger *slog.Logger
}

// Option configures optional server behavior.
type Option func(*Server)

// WithStream mounts a live tick stream handler at GET /ws.
func WithStream(h http.Handler) Option {
	return func(s *Server) {
		s.stream = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer builds a server over the given domain components.
func NewServer(mp *market.MarketPlace, ledger *account.Ledger, authn *auth.Authenticator, opts ...Option) *Server {
	s := &Server{
		market: mp,
		ledger: ledger,
		auth:   authn,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the full route table as an http.Handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("PUT /logout", s.withAuth(s.handleLogout))
	mux.HandleFunc("GET /user", s.withAuth(s.handleUser))

	mux.HandleFunc("GET /products", s.handleProducts)
	mux.HandleFunc("GET /product/{id}", s.handleProduct)
	mux.HandleFunc("GET /product/{id}/records", s.handleRecords)
	mux.HandleFunc("GET /market", s.handleMarket)

	mux.HandleFunc("POST /product/{id}/buy", s.withAuth(s.handleBuy))
	mux.HandleFunc("POST /product/{id}/sell", s.withAuth(s.handleSell))

	if s.stream != nil {
		mux.Handle("GET /ws", s.stream)
	}

	return mux
}

// authedHandler is a handler that runs with a resolved user id.
type authedHandler func(w http.ResponseWriter, r *http.Request, userID int)

// withAuth resolves the bearer token before invoking the handler.
func (s *Server) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.writeError(w, r, auth.ErrInvalidToken)
			return
		}
		userID, err := s.auth.UserID(token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next(w, r, userID)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes with a JSON
// {"message"} body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, market.ErrProductNotFound),
		errors.Is(err, account.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrIncorrectCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrUserExists),
		errors.Is(err, market.ErrOutOfStock),
		errors.Is(err, market.ErrInvalidAmount),
		errors.Is(err, market.ErrInvalidRange),
		errors.Is(err, account.ErrInsufficientFunds),
		errors.Is(err, account.ErrInsufficientHoldings),
		errors.Is(err, account.ErrNoPrice),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}

	s.writeJSON(w, status, errorResponse{Message: err.Error()})
}
