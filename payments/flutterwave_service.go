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

const defaultFlutterwaveAPIBase = "https://api.flutterwave.com"

type flutterwaveVerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID       int64   `json:"id"`
		TxRef    string  `json:"tx_ref"`
		Status   string  `json:"status"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"data"`
}

// FlutterwaveVerifier resolves a transaction by tx_ref. Unlike the other
// gateways Flutterwave already reports amounts in major units.
type FlutterwaveVerifier struct{}

func (FlutterwaveVerifier) Channel() string { return models.ProviderFlutterwave }

func (FlutterwaveVerifier) Verify(txRef string) (*VerificationResult, error) {
	secretKey := config.Config("FLUTTERWAVE_SECRET_KEY")
	apiBase := config.ConfigOr("FLUTTERWAVE_API_BASE_URL", defaultFlutterwaveAPIBase)

	endpoint := fmt.Sprintf("%s/v3/transactions/verify_by_reference?tx_ref=%s", apiBase, url.QueryEscape(txRef))
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create verify request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+secretKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Flutterwave: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Flutterwave response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flutterwave returned status %d: %s", resp.StatusCode, string(body))
	}

	var verifyResp flutterwaveVerifyResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		return nil, fmt.Errorf("failed to decode Flutterwave response: %v", err)
	}
	if verifyResp.Status != "success" {
		return nil, fmt.Errorf("flutterwave verification rejected: %s", verifyResp.Message)
	}

	return &VerificationResult{
		Success:       verifyResp.Data.Status == "successful",
		Amount:        verifyResp.Data.Amount,
		TransactionID: strconv.FormatInt(verifyResp.Data.ID, 10),
		Raw:           string(body),
	}, nil
}
