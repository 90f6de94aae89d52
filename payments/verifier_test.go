package payments

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStripeVerifierPaidSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions/cs_test_123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk_test_secret" {
			t.Errorf("missing bearer auth, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cs_test_123",
			"payment_status": "paid",
			"amount_total": 2500000,
			"currency": "ngn",
			"payment_intent": "pi_abc",
			"metadata": {"purpose": "hostel_booking", "student_id": "2"}
		}`))
	}))
	defer server.Close()
	t.Setenv("STRIPE_API_BASE_URL", server.URL)
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_secret")

	result, err := StripeVerifier{}.Verify("cs_test_123")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if !result.Success {
		t.Error("expected a paid session to verify as successful")
	}
	if result.Amount != 25000 {
		t.Errorf("expected minor units converted to 25000, got %.2f", result.Amount)
	}
	if result.TransactionID != "pi_abc" {
		t.Errorf("expected payment intent as transaction id, got %q", result.TransactionID)
	}
	if result.Metadata["student_id"] != "2" {
		t.Errorf("session metadata not carried through: %+v", result.Metadata)
	}
}

func TestStripeVerifierUnpaidSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "cs_test_456", "payment_status": "unpaid", "amount_total": 0}`))
	}))
	defer server.Close()
	t.Setenv("STRIPE_API_BASE_URL", server.URL)

	result, err := StripeVerifier{}.Verify("cs_test_456")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if result.Success {
		t.Error("an unpaid session must not verify as successful")
	}
	if result.TransactionID != "cs_test_456" {
		t.Errorf("expected fallback to session id, got %q", result.TransactionID)
	}
}

func TestCreateCheckoutSessionEmbedsMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("bad form body: %v", err)
		}
		if got := r.PostForm.Get("metadata[purpose]"); got != "hostel_booking" {
			t.Errorf("metadata[purpose] = %q", got)
		}
		if got := r.PostForm.Get("line_items[0][price_data][unit_amount]"); got != "2500000" {
			t.Errorf("unit_amount = %q, want minor units", got)
		}
		if got := r.PostForm.Get("client_reference_id"); got != "ref-1" {
			t.Errorf("client_reference_id = %q", got)
		}
		w.Write([]byte(`{"id": "cs_new", "url": "https://checkout.example/cs_new"}`))
	}))
	defer server.Close()
	t.Setenv("STRIPE_API_BASE_URL", server.URL)

	session, err := CreateCheckoutSession(25000, "NGN", "ref-1", map[string]string{"purpose": "hostel_booking"})
	if err != nil {
		t.Fatalf("create session error: %v", err)
	}
	if session.ID != "cs_new" || session.URL == "" {
		t.Errorf("unexpected session: %+v", session)
	}
}

func TestPaystackVerifierConvertsKobo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/HB-REF1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {"id": 7712, "status": "success", "reference": "HB-REF1", "amount": 2500000, "currency": "NGN"}
		}`))
	}))
	defer server.Close()
	t.Setenv("PAYSTACK_API_BASE_URL", server.URL)

	result, err := PaystackVerifier{}.Verify("HB-REF1")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if !result.Success {
		t.Error("expected success status to map to a successful verification")
	}
	if result.Amount != 25000 {
		t.Errorf("expected kobo converted to 25000, got %.2f", result.Amount)
	}
	if result.TransactionID != "7712" {
		t.Errorf("transaction id = %q", result.TransactionID)
	}
}

func TestPaystackVerifierFailedTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": true, "data": {"id": 1, "status": "failed", "amount": 2500000}}`))
	}))
	defer server.Close()
	t.Setenv("PAYSTACK_API_BASE_URL", server.URL)

	result, err := PaystackVerifier{}.Verify("HB-REF2")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if result.Success {
		t.Error("a failed transaction must not verify as successful")
	}
}

func TestPaystackVerifierRejectedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": false, "message": "Transaction reference not found"}`))
	}))
	defer server.Close()
	t.Setenv("PAYSTACK_API_BASE_URL", server.URL)

	if _, err := (PaystackVerifier{}).Verify("unknown"); err == nil {
		t.Fatal("expected an error for a rejected envelope")
	}
}

func TestFlutterwaveVerifierMajorUnits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/transactions/verify_by_reference" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("tx_ref"); got != "HB-REF3" {
			t.Errorf("tx_ref = %q", got)
		}
		w.Write([]byte(`{
			"status": "success",
			"data": {"id": 9001, "tx_ref": "HB-REF3", "status": "successful", "amount": 25000, "currency": "NGN"}
		}`))
	}))
	defer server.Close()
	t.Setenv("FLUTTERWAVE_API_BASE_URL", server.URL)

	result, err := FlutterwaveVerifier{}.Verify("HB-REF3")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if !result.Success {
		t.Error("expected a successful transaction")
	}
	if result.Amount != 25000 {
		t.Errorf("amount must pass through unscaled, got %.2f", result.Amount)
	}
	if result.TransactionID != "9001" {
		t.Errorf("transaction id = %q", result.TransactionID)
	}
}

func TestFlutterwaveVerifierGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()
	t.Setenv("FLUTTERWAVE_API_BASE_URL", server.URL)

	if _, err := (FlutterwaveVerifier{}).Verify("HB-REF4"); err == nil {
		t.Fatal("expected an error on a non-200 gateway response")
	}
}
