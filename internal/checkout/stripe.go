package checkout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.stripe.com/v1"

type stripeClient struct {
	apiKey        string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
}

// NewStripeClient builds a client for the Stripe checkout API. The timeout
// bounds every call; callers never hold a lock across these requests.
func NewStripeClient(apiKey, webhookSecret string, timeout time.Duration) Client {
	return &stripeClient{
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		baseURL:       defaultBaseURL,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

func (c *stripeClient) CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("customer_email", params.CustomerEmail)
	form.Set("expires_at", strconv.FormatInt(time.Now().Add(params.ExpiresIn).Unix(), 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", params.Description)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, processorError(resp)
	}

	var out struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	if out.ID == "" {
		return nil, errors.New("checkout: empty session id")
	}
	return &Session{ID: out.ID, URL: out.URL}, nil
}

func (c *stripeClient) GetSessionStatus(ctx context.Context, sessionID string) (SessionStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", processorError(resp)
	}

	var out struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode session status: %w", err)
	}

	switch {
	case out.PaymentStatus == "paid":
		return SessionStatusPaid, nil
	case out.Status == "expired":
		return SessionStatusExpired, nil
	default:
		return SessionStatusPending, nil
	}
}

// ParseEvent verifies the Stripe-Signature header (t=<unix>,v1=<hmac hex>,
// signed payload "<t>.<body>") before decoding anything.
func (c *stripeClient) ParseEvent(payload []byte, signatureHeader string) (*Event, error) {
	timestamp, signature, err := splitSignatureHeader(signatureHeader)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return nil, fmt.Errorf("%w: digest mismatch", ErrBadSignature)
	}

	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID string `json:"id"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	return &Event{ID: raw.ID, Kind: raw.Type, SessionID: raw.Data.Object.ID}, nil
}

func splitSignatureHeader(header string) (timestamp, signature string, err error) {
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signature = kv[1]
		}
	}
	if timestamp == "" || signature == "" {
		return "", "", fmt.Errorf("%w: malformed header", ErrBadSignature)
	}
	return timestamp, signature, nil
}

func processorError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	var out struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &out) == nil && out.Error.Message != "" {
		return fmt.Errorf("processor: %s (%s)", out.Error.Message, resp.Status)
	}
	return fmt.Errorf("processor: %s", resp.Status)
}
