// Package settlement talks to the external TON JSON-RPC endpoint that
// actually moves funds. A Buy sends from the platform wallet to the user;
// a Sell pulls from the user's wallet back to the platform.
package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/tonpilot/backend/internal/models"
)

// ErrSettlement tags transport-level failures reaching the endpoint.
var ErrSettlement = errors.New("settlement request failed")

// Client submits settlement requests over JSON-RPC 2.0.
type Client struct {
	url             string
	apiKey          string
	platformAddress string
	platformSecret  string
	http            *http.Client
	log             *zap.Logger
}

// NewClient builds a client for the given endpoint and platform wallet.
func NewClient(url, apiKey, platformAddress, platformSecret string, log *zap.Logger) *Client {
	return &Client{
		url:             url,
		apiKey:          apiKey,
		platformAddress: platformAddress,
		platformSecret:  platformSecret,
		http:            &http.Client{Timeout: 15 * time.Second},
		log:             log,
	}
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      int       `json:"id"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Value      string `json:"value"`
	PrivateKey string `json:"private_key"`
}

// Submit sends the request to the settlement endpoint. A non-2xx status is
// not an error from Go's point of view: it becomes a failed SettlementResult
// whose Details carry the endpoint's response body verbatim.
func (c *Client) Submit(ctx context.Context, req *models.TransactionRequest) (*models.SettlementResult, error) {
	method := "sendTransaction"
	from, to := c.platformAddress, req.CounterpartyAddress
	if req.Direction == models.Sell {
		method = "receiveTransaction"
		from, to = req.CounterpartyAddress, c.platformAddress
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params: rpcParams{
			From:       from,
			To:         to,
			Value:      req.NetAmount.String(),
			PrivateKey: c.platformSecret,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSettlement, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSettlement, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSettlement, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrSettlement, err)
	}

	result := &models.SettlementResult{
		OK:      resp.StatusCode >= 200 && resp.StatusCode < 300,
		Details: string(respBody),
	}

	// Addresses and amounts are loggable; key material never is.
	c.log.Info("settlement submitted",
		zap.String("request_id", req.ID.String()),
		zap.String("direction", string(req.Direction)),
		zap.String("method", method),
		zap.String("net_amount", req.NetAmount.String()),
		zap.Bool("ok", result.OK))

	return result, nil
}
