package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/noel1334/ums-backend-sub003/apperrors"
	"github.com/noel1334/ums-backend-sub003/payments"
)

type stubVerifier struct {
	channel string
	result  *payments.VerificationResult
	err     error
}

func (s stubVerifier) Channel() string { return s.channel }

func (s stubVerifier) Verify(reference string) (*payments.VerificationResult, error) {
	return s.result, s.err
}

func testIntent() *BookingIntent {
	return &BookingIntent{StudentID: 2, HostelID: 1, RoomID: 5, SeasonID: 3, FeeID: 8, AmountDue: 25000}
}

func TestCompleteGatewayPaymentCommitsBookingAndReceipt(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	// No prior receipt for this gateway transaction.
	mock.ExpectQuery(`SELECT \* FROM "payment_receipts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// No paid booking for the student this season.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "rooms" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hostel_id", "number", "capacity", "is_available"}).
			AddRow(5, 1, "A-12", 4, true))
	// Locked recount: one of four slots taken.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	// Reference uniqueness check.
	mock.ExpectQuery(`SELECT \* FROM "payment_receipts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "payment_receipts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	verifier := stubVerifier{channel: "paystack", result: &payments.VerificationResult{
		Success:       true,
		Amount:        25000,
		TransactionID: "7712",
		Raw:           `{"status":"success"}`,
	}}

	result, err := svc.CompleteGatewayPayment(context.Background(), verifier, "HB-REF1", testIntent())
	if err != nil {
		t.Fatalf("completion failed: %v", err)
	}
	if result.Replayed {
		t.Error("a first-time completion must not be marked replayed")
	}
	if result.Booking == nil || result.Booking.ID != 10 {
		t.Fatalf("unexpected booking: %+v", result.Booking)
	}
	if result.Booking.Status != "paid" || !result.Booking.IsActive {
		t.Errorf("booking must commit paid and active, got %+v", result.Booking)
	}
	if result.Receipt == nil || result.Receipt.ProviderTxnID == nil || *result.Receipt.ProviderTxnID != "7712" {
		t.Fatalf("unexpected receipt: %+v", result.Receipt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompleteGatewayPaymentReplayReturnsStoredPair(t *testing.T) {
	svc, mock := newMockService(t)

	bookingID := uint(4)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payment_receipts"`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "student_id", "booking_id", "season_id", "amount_paid", "status", "reference", "provider", "provider_txn_id"}).
			AddRow(9, 2, bookingID, 3, 25000.0, "paid", "HB-AAAA111122", "paystack", "7712"))
	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "room_id", "season_id", "status", "is_active"}).
			AddRow(4, 2, 5, 3, "paid", true))
	mock.ExpectCommit()

	verifier := stubVerifier{channel: "paystack", result: &payments.VerificationResult{
		Success:       true,
		Amount:        25000,
		TransactionID: "7712",
	}}

	result, err := svc.CompleteGatewayPayment(context.Background(), verifier, "HB-REF1", testIntent())
	if err != nil {
		t.Fatalf("replay must not fail: %v", err)
	}
	if !result.Replayed {
		t.Error("second completion of the same transaction must be marked replayed")
	}
	if result.Receipt.ID != 9 {
		t.Errorf("replay must return the stored receipt, got id %d", result.Receipt.ID)
	}
	if result.Booking == nil || result.Booking.ID != 4 {
		t.Errorf("replay must return the stored booking, got %+v", result.Booking)
	}
	// No inserts expected; any write would be an unfulfilled expectation
	// mismatch here.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompleteGatewayPaymentRejectsUnderpayment(t *testing.T) {
	svc, _ := newMockService(t)

	verifier := stubVerifier{channel: "paystack", result: &payments.VerificationResult{
		Success:       true,
		Amount:        100,
		TransactionID: "7712",
	}}

	_, err := svc.CompleteGatewayPayment(context.Background(), verifier, "HB-REF1", testIntent())
	if err == nil {
		t.Fatal("an underpayment must be rejected before touching storage")
	}
	if apperrors.Get(err).Code != apperrors.CodeAmountMismatch {
		t.Errorf("unexpected code: %s", apperrors.Get(err).Code)
	}
}

func TestCompleteGatewayPaymentRejectsFailedVerification(t *testing.T) {
	svc, _ := newMockService(t)

	verifier := stubVerifier{channel: "stripe", result: &payments.VerificationResult{
		Success:       false,
		Amount:        25000,
		TransactionID: "pi_abc",
	}}

	_, err := svc.CompleteGatewayPayment(context.Background(), verifier, "cs_1", testIntent())
	if err == nil {
		t.Fatal("a failed gateway verification must be rejected")
	}
	if apperrors.Get(err).Code != apperrors.CodePaymentNotSuccessful {
		t.Errorf("unexpected code: %s", apperrors.Get(err).Code)
	}
}

func TestCompleteGatewayPaymentRejectsMissingMetadata(t *testing.T) {
	svc, _ := newMockService(t)

	// Card path: no explicit intent and the session carries no booking
	// metadata.
	verifier := stubVerifier{channel: "stripe", result: &payments.VerificationResult{
		Success:       true,
		Amount:        25000,
		TransactionID: "pi_abc",
	}}

	_, err := svc.CompleteGatewayPayment(context.Background(), verifier, "cs_1", nil)
	if err == nil {
		t.Fatal("a session without booking metadata must be rejected")
	}
	if apperrors.Get(err).Code != apperrors.CodeMissingMetadata {
		t.Errorf("unexpected code: %s", apperrors.Get(err).Code)
	}
}

func TestCompleteGatewayPaymentRoomFullAfterPayment(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payment_receipts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "rooms" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hostel_id", "number", "capacity", "is_available"}).
			AddRow(5, 1, "A-12", 2, true))
	// The locked recount finds the room already full.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	verifier := stubVerifier{channel: "flutterwave", result: &payments.VerificationResult{
		Success:       true,
		Amount:        25000,
		TransactionID: "9001",
	}}

	_, err := svc.CompleteGatewayPayment(context.Background(), verifier, "HB-REF3", testIntent())
	if err == nil {
		t.Fatal("a full room must fail the completion")
	}
	appErr := apperrors.Get(err)
	if appErr.Code != apperrors.CodeRoomFullAfterPayment {
		t.Errorf("unexpected code: %s", appErr.Code)
	}
	if appErr.Kind != apperrors.KindConflict {
		t.Errorf("unexpected kind: %s", appErr.Kind)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
