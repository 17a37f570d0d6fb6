package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// httpGateway is the production GatewayClient. It queries the gateway's
// verification API with the merchant secret key.
type httpGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewHTTPGateway(baseURL, secretKey string) GatewayClient {
	return &httpGateway{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type gatewayEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID     int64  `json:"id"`
		TxRef  string `json:"tx_ref"`
		Status string `json:"status"`
		Amount string `json:"amount"`
	} `json:"data"`
}

func (g *httpGateway) VerifyByID(ctx context.Context, transactionID string) (*GatewayVerification, error) {
	endpoint := fmt.Sprintf("%s/transactions/%s/verify", g.baseURL, url.PathEscape(transactionID))
	return g.fetch(ctx, endpoint)
}

func (g *httpGateway) VerifyByReference(ctx context.Context, txRef string) (*GatewayVerification, error) {
	endpoint := fmt.Sprintf("%s/transactions/verify_by_reference?tx_ref=%s", g.baseURL, url.QueryEscape(txRef))
	return g.fetch(ctx, endpoint)
}

func (g *httpGateway) fetch(ctx context.Context, endpoint string) (*GatewayVerification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: gateway returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTransactionNotFound
	}

	var envelope gatewayEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decode failed: %v", ErrGatewayUnavailable, err)
	}
	if envelope.Status != "success" {
		return nil, fmt.Errorf("gateway verification rejected: %s", envelope.Message)
	}

	return &GatewayVerification{
		TxRef:         envelope.Data.TxRef,
		TransactionID: fmt.Sprintf("%d", envelope.Data.ID),
		Status:        envelope.Data.Status,
		Amount:        envelope.Data.Amount,
	}, nil
}
