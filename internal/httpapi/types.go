package httpapi

import "time"

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type amountPayload struct {
	Amount int `json:"amount"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type productResponse struct {
	ProductID    int    `json:"product_id"`
	ProductName  string `json:"product_name"`
	CurrentValue int    `json:"current_value"`
}

type recordResponse struct {
	Date  time.Time `json:"date"`
	Value int       `json:"value"`
}

type recordsResponse struct {
	ProductID int              `json:"product_id"`
	Records   []recordResponse `json:"records"`
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
}

type marketItemResponse struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type inventoryItemResponse struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type userResponse struct {
	UserID    int                     `json:"user_id"`
	UserName  string                  `json:"user_name"`
	Balance   int                     `json:"balance"`
	Inventory []inventoryItemResponse `json:"inventory"`
}

type tradeResponse struct {
	TransactionID string `json:"transaction_id"`
	ProductID     int    `json:"product_id"`
	Amount        int    `json:"amount"`
	UnitPrice     int    `json:"unit_price"`
}

type errorResponse struct {
	Message string `json:"message"`
}
