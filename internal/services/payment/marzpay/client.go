package marzpay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CollectionStatus is the gateway-side state of a collection.
type CollectionStatus string

const (
	CollectionStatusPending   CollectionStatus = "pending"
	CollectionStatusSuccess   CollectionStatus = "success"
	CollectionStatusFailed    CollectionStatus = "failed"
	CollectionStatusCancelled CollectionStatus = "cancelled"
)

// CollectionResult is the parsed outcome of a collect-money call or a
// status lookup.
type CollectionResult struct {
	Status            CollectionStatus
	TransactionID     string
	Reference         string
	ProviderReference string
	RawAmount         int64
	Currency          string
	Provider          Provider
	Message           string
}

// Service describes one mobile money service the gateway can collect through.
type Service struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Provider string `json:"provider"`
	Status   string `json:"status"`
}

// envelope is the gateway's standard response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type collectionData struct {
	Transaction *struct {
		UUID              string `json:"uuid"`
		Reference         string `json:"reference"`
		Status            string `json:"status"`
		ProviderReference string `json:"provider_reference"`
	} `json:"transaction"`
	Collection *struct {
		Amount struct {
			Formatted string `json:"formatted"`
			Raw       int64  `json:"raw"`
			Currency  string `json:"currency"`
		} `json:"amount"`
		Provider    string `json:"provider"`
		PhoneNumber string `json:"phone_number"`
		Mode        string `json:"mode"`
	} `json:"collection"`
}

type servicesData struct {
	Services []Service `json:"services"`
}

// Client talks to the MarzPay collection API.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	normalizer *PhoneNormalizer
	logger     *slog.Logger
}

// NewClient creates a MarzPay API client
func NewClient(baseURL, apiKey, apiSecret string, timeout time.Duration, normalizer *PhoneNormalizer, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: timeout},
		normalizer: normalizer,
		logger:     logger,
	}
}

// CollectMoney submits a collection request to the gateway and parses
// the response envelope. The raw response body is logged verbatim before
// parsing so failed reconciliations can be traced back to what the
// gateway actually said.
func (c *Client) CollectMoney(ctx context.Context, request *CollectionRequest) (*CollectionResult, error) {
	form := url.Values{}
	form.Set("phone_number", request.PhoneNumber)
	form.Set("amount", strconv.FormatInt(request.Amount, 10))
	form.Set("country", request.Country)
	form.Set("reference", request.Reference)
	form.Set("description", request.Description)
	if request.CallbackURL != "" {
		form.Set("callback_url", request.CallbackURL)
	}

	body, statusCode, err := c.do(ctx, http.MethodPost, "/collect-money", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}

	c.logger.Info("marzpay collect-money response",
		"reference", request.Reference,
		"status_code", statusCode,
		"body", string(body))

	return c.parseResult(body, statusCode, request.PhoneNumber)
}

// GetCollection fetches the current state of a collection by its gateway UUID.
func (c *Client) GetCollection(ctx context.Context, transactionID string) (*CollectionResult, error) {
	body, statusCode, err := c.do(ctx, http.MethodGet, "/collect-money/"+transactionID, nil, "")
	if err != nil {
		return nil, err
	}

	c.logger.Info("marzpay collection status response",
		"transaction_id", transactionID,
		"status_code", statusCode,
		"body", string(body))

	return c.parseResult(body, statusCode, "")
}

// GetAvailableServices lists the mobile money services the gateway
// account can collect through.
func (c *Client) GetAvailableServices(ctx context.Context) ([]Service, error) {
	body, statusCode, err := c.do(ctx, http.MethodGet, "/collect-money/services", nil, "")
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if statusCode < 200 || statusCode >= 300 {
			return nil, &GatewayError{StatusCode: statusCode, Message: truncate(string(body), 200)}
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, &GatewayError{StatusCode: statusCode, Message: env.Message}
	}

	var data servicesData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return data.Services, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, 0, ErrGatewayTimeout
		}
		return nil, 0, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

func (c *Client) parseResult(body []byte, statusCode int, requestPhone string) (*CollectionResult, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if statusCode < 200 || statusCode >= 300 {
			return nil, &GatewayError{StatusCode: statusCode, Message: truncate(string(body), 200)}
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if statusCode < 200 || statusCode >= 300 {
		return nil, &GatewayError{StatusCode: statusCode, Message: env.Message}
	}

	var data collectionData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if data.Transaction == nil || data.Collection == nil {
		return nil, fmt.Errorf("%w: missing transaction or collection", ErrMalformedResponse)
	}

	provider := ParseProvider(data.Collection.Provider)
	if provider == ProviderUnknown {
		phone := data.Collection.PhoneNumber
		if phone == "" {
			phone = requestPhone
		}
		provider = c.normalizer.DetectProvider(phone)
	}

	return &CollectionResult{
		Status:            mapGatewayStatus(env.Status, data.Transaction.Status),
		TransactionID:     data.Transaction.UUID,
		Reference:         data.Transaction.Reference,
		ProviderReference: data.Transaction.ProviderReference,
		RawAmount:         data.Collection.Amount.Raw,
		Currency:          data.Collection.Amount.Currency,
		Provider:          provider,
		Message:           env.Message,
	}, nil
}

// mapGatewayStatus collapses the envelope status and transaction status
// into a single collection state. The transaction status wins when it
// names a final state, since the envelope only reports call success.
func mapGatewayStatus(envStatus, txStatus string) CollectionStatus {
	switch strings.ToLower(txStatus) {
	case "successful", "success", "completed":
		return CollectionStatusSuccess
	case "failed":
		return CollectionStatusFailed
	case "cancelled":
		return CollectionStatusCancelled
	case "pending", "processing", "":
	}
	if strings.ToLower(envStatus) == "failed" {
		return CollectionStatusFailed
	}
	return CollectionStatusPending
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}
	return false
}
