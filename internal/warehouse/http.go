package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/consignd/commerce-backend/internal/commerce"
	pkgerrors "github.com/consignd/commerce-backend/pkg/errors"
)

// HTTPConfig configures the vendor HTTP client.
type HTTPConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

// HTTP talks to the vendor's fulfillment API. Every call waits on the
// limiter first so the client stays under the vendor's request quota.
type HTTP struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter Limiter
}

type inventoryResponse struct {
	Items []commerce.Product `json:"items"`
}

type orderRequest struct {
	OrderID string `json:"order_id"`
}

// NewHTTP builds the vendor client.
func NewHTTP(cfg HTTPConfig, limiter Limiter) (*HTTP, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("warehouse base url required")
	}
	if limiter == nil {
		return nil, errors.New("rate limiter required")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTP{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}, nil
}

func (h *HTTP) FetchGrossInventory(ctx context.Context) ([]commerce.Product, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/v1/inventory", nil)
	if err != nil {
		return nil, err
	}
	h.setHeaders(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching warehouse inventory")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("warehouse inventory returned status %d", resp.StatusCode))
	}

	var payload inventoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding warehouse inventory")
	}
	return payload.Items, nil
}

func (h *HTTP) SubmitOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(orderRequest{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	h.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submitting warehouse order")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("warehouse order returned status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading warehouse order response")
	}
	return raw, nil
}

func (h *HTTP) setHeaders(req *http.Request) {
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}
}
