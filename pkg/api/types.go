package api

// API request/response types for the checkout REST endpoints

// CreateTransactionRequest is the payload for POST /api/v1/transactions.
// Field names match what existing storefront clients already send.
type CreateTransactionRequest struct {
	Buyer   string `json:"buyer"`   // Buyer wallet address (base58)
	OrderID string `json:"orderID"` // Order reference, base58 public key shaped
	ItemID  string `json:"itemID"`  // Catalog item identifier
}

// CreateTransactionResponse carries the unsigned transaction for the wallet to sign
type CreateTransactionResponse struct {
	Transaction string `json:"transaction"` // Base64 wire-format transaction
}

// ItemInfo represents a catalog entry
type ItemInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	Price         string `json:"price"`         // Decimal string in payment-token units
	SellerAddress string `json:"sellerAddress"` // Base58 wallet address
}

// ErrorResponse is returned for all errors
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
