package payments

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	config "github.com/noel1334/ums-backend-sub003/configs"
	"github.com/noel1334/ums-backend-sub003/models"
)

const defaultPaystackAPIBase = "https://api.paystack.co"

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID        int64   `json:"id"`
		Status    string  `json:"status"`
		Reference string  `json:"reference"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
	} `json:"data"`
}

// PaystackVerifier checks a transaction by the reference this system
// generated at quote time. Paystack reports amounts in kobo.
type PaystackVerifier struct{}

func (PaystackVerifier) Channel() string { return models.ProviderPaystack }

func (PaystackVerifier) Verify(reference string) (*VerificationResult, error) {
	secretKey := config.Config("PAYSTACK_SECRET_KEY")
	apiBase := config.ConfigOr("PAYSTACK_API_BASE_URL", defaultPaystackAPIBase)

	req, err := http.NewRequest("GET", fmt.Sprintf("%s/transaction/verify/%s", apiBase, url.PathEscape(reference)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create verify request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+secretKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Paystack: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Paystack response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack returned status %d: %s", resp.StatusCode, string(body))
	}

	var verifyResp paystackVerifyResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		return nil, fmt.Errorf("failed to decode Paystack response: %v", err)
	}
	if !verifyResp.Status {
		return nil, fmt.Errorf("paystack verification rejected: %s", verifyResp.Message)
	}

	return &VerificationResult{
		Success:       verifyResp.Data.Status == "success",
		Amount:        verifyResp.Data.Amount / 100,
		TransactionID: strconv.FormatInt(verifyResp.Data.ID, 10),
		Raw:           string(body),
	}, nil
}
