package payments

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	config "github.com/noel1334/ums-backend-sub003/configs"
	"github.com/noel1334/ums-backend-sub003/models"
)

const defaultStripeAPIBase = "https://api.stripe.com"

type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

func stripeAPIBase() string {
	return config.ConfigOr("STRIPE_API_BASE_URL", defaultStripeAPIBase)
}

// CreateCheckoutSession opens a hosted Stripe checkout for the given
// amount (major units) and embeds the booking intent as session metadata
// so the completion callback can recover it without trusting the client.
func CreateCheckoutSession(amount float64, currency, reference string, metadata map[string]string) (*CheckoutSession, error) {
	secretKey := config.Config("STRIPE_SECRET_KEY")

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", reference)
	form.Set("success_url", config.Config("STRIPE_SUCCESS_URL"))
	form.Set("cancel_url", config.Config("STRIPE_CANCEL_URL"))
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(currency))
	form.Set("line_items[0][price_data][product_data][name]", "Hostel room booking")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(int64(math.Round(amount*100)), 10))
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequest("POST", stripeAPIBase()+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+secretKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Stripe: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Stripe response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stripe returned status %d: %s", resp.StatusCode, string(body))
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode Stripe session: %v", err)
	}
	return &session, nil
}

// StripeVerifier retrieves a checkout session by id. The session is paid
// when payment_status is "paid"; amount_total is in the currency's minor
// unit.
type StripeVerifier struct{}

func (StripeVerifier) Channel() string { return models.ProviderStripe }

func (StripeVerifier) Verify(sessionID string) (*VerificationResult, error) {
	secretKey := config.Config("STRIPE_SECRET_KEY")

	req, err := http.NewRequest("GET", fmt.Sprintf("%s/v1/checkout/sessions/%s", stripeAPIBase(), url.PathEscape(sessionID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create verify request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+secretKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Stripe: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Stripe response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stripe returned status %d: %s", resp.StatusCode, string(body))
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode Stripe session: %v", err)
	}

	txnID := session.PaymentIntent
	if txnID == "" {
		txnID = session.ID
	}

	return &VerificationResult{
		Success:       session.PaymentStatus == "paid",
		Amount:        float64(session.AmountTotal) / 100,
		TransactionID: txnID,
		Raw:           string(body),
		Metadata:      session.Metadata,
	}, nil
}
