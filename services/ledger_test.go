package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/noel1334/ums-backend-sub003/apperrors"
)

func expectBookingLookup(mock sqlmock.Sqlmock, amountPaid float64, status string) {
	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "student_id", "hostel_id", "room_id", "season_id", "fee_id", "amount_due", "amount_paid", "status", "is_active"}).
			AddRow(5, 2, 1, 5, 3, 8, 25000.0, amountPaid, status, true))
}

func expectLockedBookingLookup(mock sqlmock.Sqlmock, amountPaid float64, status string) {
	mock.ExpectQuery(`SELECT \* FROM "bookings" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "student_id", "hostel_id", "room_id", "season_id", "fee_id", "amount_due", "amount_paid", "status", "is_active"}).
			AddRow(5, 2, 1, 5, 3, 8, 25000.0, amountPaid, status, true))
}

func TestApplyPaymentPartialThenSettled(t *testing.T) {
	svc, mock := newMockService(t)
	student := Actor{ID: 2, Role: "student"}

	// First instalment covers less than the amount due.
	expectBookingLookup(mock, 0, "pending")
	mock.ExpectBegin()
	expectLockedBookingLookup(mock, 0, "pending")
	mock.ExpectQuery(`INSERT INTO "payment_receipts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	receipt, booking, err := svc.ApplyPayment(student, 5, LedgerInput{
		Amount:    10000,
		Reference: "BANK-001",
	})
	if err != nil {
		t.Fatalf("first instalment failed: %v", err)
	}
	if booking.Status != "partial" {
		t.Errorf("after a partial payment status = %s, want partial", booking.Status)
	}
	if booking.AmountPaid != 10000 {
		t.Errorf("cumulative paid = %.2f, want 10000", booking.AmountPaid)
	}
	if receipt.Provider != "bank_transfer" {
		t.Errorf("default provider = %s, want bank_transfer", receipt.Provider)
	}

	// Second instalment settles the booking exactly.
	expectBookingLookup(mock, 10000, "partial")
	mock.ExpectBegin()
	expectLockedBookingLookup(mock, 10000, "partial")
	mock.ExpectQuery(`INSERT INTO "payment_receipts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(22))
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, booking, err = svc.ApplyPayment(student, 5, LedgerInput{
		Amount:    15000,
		Reference: "BANK-002",
	})
	if err != nil {
		t.Fatalf("settling instalment failed: %v", err)
	}
	if booking.Status != "paid" {
		t.Errorf("after full settlement status = %s, want paid", booking.Status)
	}
	if booking.Balance() != 0 {
		t.Errorf("balance = %.2f, want 0", booking.Balance())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// A concurrent ledger entry can commit between the precondition read and
// the transaction. The total must come from the locked in-transaction
// row, never from the stale pre-image.
func TestApplyPaymentRecomputesTotalFromLockedRow(t *testing.T) {
	svc, mock := newMockService(t)
	student := Actor{ID: 2, Role: "student"}

	// Both calls observe amount_paid = 0 before their transactions.
	expectBookingLookup(mock, 0, "pending")
	mock.ExpectBegin()
	expectLockedBookingLookup(mock, 0, "pending")
	mock.ExpectQuery(`INSERT INTO "payment_receipts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(31))
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, booking, err := svc.ApplyPayment(student, 5, LedgerInput{Amount: 10000, Reference: "BANK-003"})
	if err != nil {
		t.Fatalf("first instalment failed: %v", err)
	}
	if booking.AmountPaid != 10000 {
		t.Errorf("first total = %.2f, want 10000", booking.AmountPaid)
	}

	// Stale pre-image again, but the row lock surfaces the committed
	// 10000 inside the transaction.
	expectBookingLookup(mock, 0, "pending")
	mock.ExpectBegin()
	expectLockedBookingLookup(mock, 10000, "partial")
	mock.ExpectQuery(`INSERT INTO "payment_receipts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(32))
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, booking, err = svc.ApplyPayment(student, 5, LedgerInput{Amount: 15000, Reference: "BANK-004"})
	if err != nil {
		t.Fatalf("second instalment failed: %v", err)
	}
	if booking.AmountPaid != 25000 {
		t.Errorf("cumulative paid = %.2f, want 25000 (first instalment lost)", booking.AmountPaid)
	}
	if booking.Status != "paid" {
		t.Errorf("status = %s, want paid", booking.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// The settled gate must hold against the locked row too, not just the
// pre-image: a payment landing between the two reads closes the door.
func TestApplyPaymentRejectsBookingSettledMidFlight(t *testing.T) {
	svc, mock := newMockService(t)

	expectBookingLookup(mock, 0, "pending")
	mock.ExpectBegin()
	expectLockedBookingLookup(mock, 25000, "paid")
	mock.ExpectRollback()

	_, _, err := svc.ApplyPayment(Actor{ID: 2, Role: "student"}, 5, LedgerInput{Amount: 5000, Reference: "BANK-005"})
	if err == nil {
		t.Fatal("a booking settled mid-flight must reject the ledger entry")
	}
	if apperrors.Get(err).Code != apperrors.CodeInvalidStatus {
		t.Errorf("unexpected code: %s", apperrors.Get(err).Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApplyPaymentRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newMockService(t)

	_, _, err := svc.ApplyPayment(Actor{ID: 2, Role: "student"}, 5, LedgerInput{Amount: 0})
	if err == nil {
		t.Fatal("a zero amount must be rejected")
	}
	if apperrors.Get(err).Code != apperrors.CodeInvalidInput {
		t.Errorf("unexpected code: %s", apperrors.Get(err).Code)
	}
}

func TestApplyPaymentForbidsOtherStudentsBooking(t *testing.T) {
	svc, mock := newMockService(t)

	expectBookingLookup(mock, 0, "pending")

	_, _, err := svc.ApplyPayment(Actor{ID: 99, Role: "student"}, 5, LedgerInput{Amount: 10000})
	if err == nil {
		t.Fatal("a student paying another student's booking must be rejected")
	}
	if apperrors.Get(err).Kind != apperrors.KindForbidden {
		t.Errorf("unexpected kind: %s", apperrors.Get(err).Kind)
	}
}

func TestApplyPaymentRejectsSettledBooking(t *testing.T) {
	svc, mock := newMockService(t)

	expectBookingLookup(mock, 25000, "paid")

	_, _, err := svc.ApplyPayment(Actor{ID: 2, Role: "student"}, 5, LedgerInput{Amount: 5000})
	if err == nil {
		t.Fatal("paying a settled booking must be rejected")
	}
	if apperrors.Get(err).Code != apperrors.CodeInvalidStatus {
		t.Errorf("unexpected code: %s", apperrors.Get(err).Code)
	}
}

func TestApplyPaymentSeasonMismatch(t *testing.T) {
	svc, mock := newMockService(t)

	expectBookingLookup(mock, 0, "pending")

	_, _, err := svc.ApplyPayment(Actor{ID: 1, Role: "staff"}, 5, LedgerInput{Amount: 10000, SeasonID: 99})
	if err == nil {
		t.Fatal("a season mismatch must be rejected")
	}
	if apperrors.Get(err).Code != apperrors.CodeSeasonMismatch {
		t.Errorf("unexpected code: %s", apperrors.Get(err).Code)
	}
}
