package api

import (
	"time"

	"github.com/projectstockmarket/stockmarket/internal/model"
)

// TokenResponse is returned by login and register.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ProductResponse is one catalog entry with its current price.
type ProductResponse struct {
	ProductID    int    `json:"product_id"`
	ProductName  string `json:"product_name"`
	CurrentValue int    `json:"current_value"`
}

// ToModel converts to the shared product type.
func (p ProductResponse) ToModel() model.Product {
	return model.Product{ID: p.ProductID, Name: p.ProductName}
}

// RecordResponse is one price sample on the wire.
type RecordResponse struct {
	Date  time.Time `json:"date"`
	Value int       `json:"value"`
}

// ToModel converts to the shared record type.
func (r RecordResponse) ToModel() model.PriceRecord {
	return model.PriceRecord{Timestamp: r.Date.UTC(), Price: r.Value}
}

// RecordsResponse is the windowed-query response.
type RecordsResponse struct {
	ProductID int              `json:"product_id"`
	Records   []RecordResponse `json:"records"`
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
}

// MarketItemResponse is one product's stock level.
type MarketItemResponse struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// InventoryItemResponse is one holding in a user's inventory.
type InventoryItemResponse struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// UserResponse is the authenticated user's account state.
type UserResponse struct {
	UserID    int                     `json:"user_id"`
	UserName  string                  `json:"user_name"`
	Balance   int                     `json:"balance"`
	Inventory []InventoryItemResponse `json:"inventory"`
}

// ToModel converts to the shared user type.
func (u UserResponse) ToModel() model.User {
	inv := make([]model.InventoryItem, len(u.Inventory))
	for i, item := range u.Inventory {
		inv[i] = model.InventoryItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return model.User{ID: u.UserID, Name: u.UserName, Balance: u.Balance, Inventory: inv}
}

// TradeResponse confirms an executed buy or sell.
type TradeResponse struct {
	TransactionID string `json:"transaction_id"`
	ProductID     int    `json:"product_id"`
	Amount        int    `json:"amount"`
	UnitPrice     int    `json:"unit_price"`
}

// amountPayload is the buy/sell request body.
type amountPayload struct {
	Amount int `json:"amount"`
}

// credentialsPayload is the login/register request body.
type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
