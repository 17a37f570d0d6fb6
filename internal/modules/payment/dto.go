package payment

import "time"

// Poll policy for the client-side fallback loop. A client that gives up
// after PollMaxAttempts reports a timeout to the user; the transaction
// itself stays pending server-side and may still complete via webhook.
const (
	PollInterval    = 3 * time.Second
	PollMaxAttempts = 20
)

type InitTransactionRequest struct {
	AdID          int64  `json:"ad_id" binding:"required" example:"12"`
	CategoryID    int64  `json:"category_id" binding:"required" example:"3"`
	Amount        string `json:"amount" binding:"required" example:"150.00"`
	ViewsRequired int64  `json:"views_required" binding:"required,gt=0" example:"1000"`
}

type InitTransactionResponse struct {
	TxRef       string `json:"tx_ref" example:"c7a1f3de-2f6b-4f6e-9c2a-8f1f4b8a1c01"`
	CheckoutURL string `json:"checkout_url" example:"https://checkout.paygate.example.com/pay?tx_ref=..."`
	Status      string `json:"status" example:"initiated"`
}

type VerifyRequest struct {
	TransactionID string `json:"transaction_id" binding:"required" example:"4136234"`
}

type CheckDirectRequest struct {
	TxRef string `json:"tx_ref" binding:"required" example:"c7a1f3de-2f6b-4f6e-9c2a-8f1f4b8a1c01"`
}

type CancelRequest struct {
	TxRef string `json:"tx_ref" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"invalid request"`
}

type VerifyResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"payment completed"`
}

type PollStatusResponse struct {
	Status string `json:"status" example:"pending"`
}

// GatewayVerification is the gateway's view of one payment attempt.
type GatewayVerification struct {
	TxRef         string `json:"tx_ref"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
}

// webhookEvent mirrors the gateway's push notification body.
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		ID     int64  `json:"id"`
		TxRef  string `json:"tx_ref"`
		Status string `json:"status"`
		Amount string `json:"amount"`
	} `json:"data"`
}
