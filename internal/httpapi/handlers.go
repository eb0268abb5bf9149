package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/projectstockmarket/stockmarket/internal/model"
)

// errBadRequest marks malformed client input.
var errBadRequest = errors.New("bad request")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentialsPayload
	if err := decodeBody(r, &creds); err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.auth.Login(creds.Username, creds.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentialsPayload
	if err := decodeBody(r, &creds); err != nil {
		s.writeError(w, r, err)
		return
	}
	if creds.Username == "" || creds.Password == "" {
		s.writeError(w, r, fmt.Errorf("%w: username and password are required", errBadRequest))
		return
	}

	userID, err := s.auth.Register(creds.Username, creds.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.ledger.Create(userID, creds.Username)

	token, err := s.auth.Login(creds.Username, creds.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ int) {
	if err := s.auth.Logout(bearerToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request, userID int) {
	user, err := s.ledger.Get(userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products := s.market.ListProducts()
	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, s.toProductResponse(p))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	product, err := s.market.GetProduct(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.toProductResponse(product))
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	from, err := queryTime(r, "from")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	records, err := s.market.Records(id, from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := recordsResponse{
		ProductID: id,
		Records:   make([]recordResponse, 0, len(records)),
		StartDate: from,
		EndDate:   to,
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, recordResponse{Date: rec.Timestamp, Value: rec.Price})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	items := s.market.Inventory()
	resp := make([]marketItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, marketItemResponse{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request, userID int) {
	s.handleTrade(w, r, userID, s.ledger.Buy)
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request, userID int) {
	s.handleTrade(w, r, userID, s.ledger.Sell)
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request, userID int, trade func(userID, productID, amount int) (model.Transaction, error)) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var payload amountPayload
	if err := decodeBody(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}

	tx, err := trade(userID, id, payload.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, tradeResponse{
		TransactionID: tx.ID.String(),
		ProductID:     tx.ProductID,
		Amount:        tx.Amount,
		UnitPrice:     tx.UnitPrice,
	})
}

func (s *Server) toProductResponse(p model.Product) productResponse {
	resp := productResponse{ProductID: p.ID, ProductName: p.Name}
	if latest, ok, err := s.market.Latest(p.ID); err == nil && ok {
		resp.CurrentValue = latest.Price
	}
	return resp
}

func toUserResponse(u model.User) userResponse {
	resp := userResponse{
		UserID:    u.ID,
		UserName:  u.Name,
		Balance:   u.Balance,
		Inventory: make([]inventoryItemResponse, 0, len(u.Inventory)),
	}
	for _, item := range u.Inventory {
		resp.Inventory = append(resp.Inventory, inventoryItemResponse{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return resp
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body", errBadRequest)
	}
	return nil
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid product id %q", errBadRequest, r.PathValue("id"))
	}
	return id, nil
}

func queryTime(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: query parameter %q is required", errBadRequest, key)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: query parameter %q must be RFC 3339", errBadRequest, key)
	}
	return t.UTC(), nil
}
