package ercaspay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultBaseURL is the merchant staging environment.
const DefaultBaseURL = "https://api.merchant.staging.ercaspay.com/api/v1"

const (
	initiatePath = "/payment/initiate"
	cancelPath   = "/payment/cancel"
	verifyPath   = "/payment/transaction/verify"
	detailsPath  = "/payment/details"
	statusPath   = "/payment/status"
	ussdPath     = "/payment/ussd/request-ussd-code"
	bankPath     = "/payment/bank-transfer/request-bank-account"
	cardPath     = "/payment/cards/initialize"
)

var (
	// ErrMissingReference means a lifecycle call had no explicit transaction
	// reference and no prior Initiate cached one. This is a caller bug, not a
	// gateway failure.
	ErrMissingReference = errors.New("no transaction reference provided and none cached from a prior initiate")

	// ErrUnsupportedCurrency means the currency name is outside the fixed
	// table of recognized names.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrNoCardEncryptor means Card was called without a configured RSA
	// public key or encryptor.
	ErrNoCardEncryptor = errors.New("card encryption not configured: no public key")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Client issues transaction lifecycle operations against the gateway.
//
// The cached transaction reference from the last Initiate is shared state on
// the client: concurrent logical transactions on one Client race on it.
// Callers that need concurrency must pass explicit references to every call
// or use one Client per transaction.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	encryptor  CardEncryptor

	mu             sync.Mutex
	transactionRef string
}

// NewClient builds a Client from a credential config. A missing token is a
// fatal local configuration error. If the config carries an RSA public key it
// becomes the card encryptor; SetCardEncryptor can replace it.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingAuthorization
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		token:   cfg.Token,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	if cfg.PublicKey != "" {
		enc, err := NewRSACardEncryptor(cfg.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("parse card public key: %w", err)
		}
		c.encryptor = enc
	}
	return c, nil
}

// SetCardEncryptor replaces the encryption collaborator used by Card.
func (c *Client) SetCardEncryptor(enc CardEncryptor) {
	c.encryptor = enc
}

// CurrentReference returns the transaction reference cached by the last
// Initiate, or "" when none is cached.
func (c *Client) CurrentReference() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transactionRef
}

// InitiateRequest describes a new payment attempt.
type InitiateRequest struct {
	Amount              float64        `json:"amount" validate:"required,gt=0"`
	PaymentReference    string         `json:"paymentReference" validate:"required"`
	PaymentMethods      string         `json:"paymentMethods"`
	CustomerName        string         `json:"customerName" validate:"required"`
	Currency            string         `json:"currency"`
	CustomerEmail       string         `json:"customerEmail" validate:"required,email"`
	CustomerPhoneNumber string         `json:"customerPhoneNumber,omitempty"`
	RedirectURL         string         `json:"redirectUrl,omitempty"`
	Description         string         `json:"description,omitempty"`
	Metadata            map[string]any `json:"metadata,omitempty"`
	FeeBearer           string         `json:"feeBearer,omitempty"`
}

// Initiate starts a transaction. The currency name is resolved against the
// fixed table (defaulting to NGN) and the payment-method restriction is
// normalized before sending. On success the returned transaction reference is
// cached as the client's current reference for subsequent lifecycle calls.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (*GatewayResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid initiate request: %w", err)
	}
	currency := req.Currency
	if currency == "" {
		currency = "NGN"
	}
	code, err := ResolveCurrency(currency)
	if err != nil {
		return nil, err
	}

	payload := req
	payload.Currency = code
	payload.PaymentMethods = NormalizePaymentMethods(req.PaymentMethods)

	resp := c.send(ctx, initiatePath, payload)
	if resp.ResponseBody != nil && resp.ResponseBody.TransactionReference != "" {
		c.mu.Lock()
		c.transactionRef = resp.ResponseBody.TransactionReference
		c.mu.Unlock()
	}
	return resp, nil
}

// Cancel cancels an ongoing transaction. An empty ref falls back to the
// cached current reference.
func (c *Client) Cancel(ctx context.Context, ref string) (*GatewayResponse, error) {
	ref, err := c.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, cancelPath+"/"+ref, nil), nil
}

// Verify fetches the verified state of a transaction. An empty ref falls back
// to the cached current reference.
func (c *Client) Verify(ctx context.Context, ref string) (*GatewayResponse, error) {
	ref, err := c.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, verifyPath+"/"+ref, nil), nil
}

// Details retrieves full transaction details. An empty ref falls back to the
// cached current reference.
func (c *Client) Details(ctx context.Context, ref string) (*GatewayResponse, error) {
	ref, err := c.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, detailsPath+"/"+ref, nil), nil
}

type statusPayload struct {
	PaymentMethod string `json:"payment_method"`
	Reference     string `json:"reference"`
}

// Status checks the payment status of a transaction on a given rail. The
// payment method is lower-cased and trimmed; anything outside the supported
// set falls back to bank-transfer rather than failing, because the value
// often comes straight from a frontend.
func (c *Client) Status(ctx context.Context, ref, reference, paymentMethod string) (*GatewayResponse, error) {
	ref, err := c.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	payload := statusPayload{
		PaymentMethod: statusPaymentMethod(paymentMethod),
		Reference:     reference,
	}
	return c.send(ctx, statusPath+"/"+ref, payload), nil
}

type ussdPayload struct {
	Amount   float64 `json:"amount"`
	BankName string  `json:"bank_name"`
}

// USSD requests a USSD payment code for the given bank. When amount is zero
// it is looked up via Details first; if the details response carries no
// amount, that response is returned unchanged so the caller sees the
// underlying failure.
func (c *Client) USSD(ctx context.Context, bankName, ref string, amount float64) (*GatewayResponse, error) {
	ref, err := c.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		details, err := c.Details(ctx, ref)
		if err != nil {
			return nil, err
		}
		if details.ResponseBody == nil || details.ResponseBody.Amount == 0 {
			return details, nil
		}
		amount = details.ResponseBody.Amount
	}
	payload := ussdPayload{Amount: amount, BankName: bankName}
	return c.send(ctx, ussdPath+"/"+ref, payload), nil
}

// Bank requests bank-transfer account details for a transaction. An empty ref
// falls back to the cached current reference.
func (c *Client) Bank(ctx context.Context, ref string) (*GatewayResponse, error) {
	ref, err := c.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, bankPath+"/"+ref, nil), nil
}

func (c *Client) resolveRef(ref string) (string, error) {
	if ref != "" {
		return ref, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transactionRef == "" {
		return "", ErrMissingReference
	}
	return c.transactionRef, nil
}

// send performs one gateway round trip. A nil payload produces a body-less
// GET; anything else a JSON POST — several read operations are body-less
// requests by contract, so the payload drives the method. 200/201 bodies are
// returned as-is; other statuses go through the translator; transport
// failures become the RequestException class. Never returns nil.
func (c *Client) send(ctx context.Context, path string, payload any) *GatewayResponse {
	var body io.Reader
	method := http.MethodGet
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return requestException(fmt.Errorf("encode payload: %w", err))
		}
		method = http.MethodPost
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return requestException(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return requestException(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return requestException(err)
	}

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		var out GatewayResponse
		if err := json.Unmarshal(raw, &out); err != nil {
			return requestException(fmt.Errorf("decode response: %w", err))
		}
		return &out
	}
	return translateStatus(resp.StatusCode, raw)
}
