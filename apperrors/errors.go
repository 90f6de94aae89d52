package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a domain failure so the HTTP boundary can map it to a
// status code without inspecting messages.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindForbidden  Kind = "FORBIDDEN"
	KindConflict   Kind = "CONFLICT"
	KindInternal   Kind = "INTERNAL"
)

type ErrorCode string

const (
	// Lookup failures
	CodeStudentNotFound ErrorCode = "STUDENT_NOT_FOUND"
	CodeHostelNotFound  ErrorCode = "HOSTEL_NOT_FOUND"
	CodeRoomNotFound    ErrorCode = "ROOM_NOT_FOUND"
	CodeSeasonNotFound  ErrorCode = "SEASON_NOT_FOUND"
	CodeFeeNotFound     ErrorCode = "FEE_NOT_FOUND"
	CodeBookingNotFound ErrorCode = "BOOKING_NOT_FOUND"
	CodePaymentNotFound ErrorCode = "PAYMENT_NOT_FOUND"

	// Eligibility / authorization
	CodeStudentInactive  ErrorCode = "STUDENT_INACTIVE"
	CodeStudentGraduated ErrorCode = "STUDENT_GRADUATED"
	CodeProfileIncomplete ErrorCode = "PROFILE_INCOMPLETE"
	CodeTermFeeUnpaid    ErrorCode = "TERM_FEE_UNPAID"
	CodeGenderMismatch   ErrorCode = "GENDER_MISMATCH"
	CodeNotOwner         ErrorCode = "NOT_OWNER"
	CodeRoleDenied       ErrorCode = "ROLE_DENIED"

	// Booking conflicts
	CodeRoomFull           ErrorCode = "ROOM_FULL"
	CodeRoomUnavailable    ErrorCode = "ROOM_UNAVAILABLE"
	CodeDuplicateBooking   ErrorCode = "DUPLICATE_BOOKING"
	CodeDuplicateReference ErrorCode = "DUPLICATE_REFERENCE"
	// Payment captured at the gateway but the room filled up before
	// commit. Surfaced on its own code so operations can start a refund.
	CodeRoomFullAfterPayment ErrorCode = "ROOM_FULL_AFTER_PAYMENT"

	// Payment validation
	CodePaymentNotSuccessful ErrorCode = "PAYMENT_NOT_SUCCESSFUL"
	CodeAmountMismatch       ErrorCode = "AMOUNT_MISMATCH"
	CodeMissingMetadata      ErrorCode = "MISSING_METADATA"
	CodeInvalidStatus        ErrorCode = "INVALID_STATUS"
	CodeInvalidInput         ErrorCode = "INVALID_INPUT"
	CodeSeasonClosed         ErrorCode = "SEASON_CLOSED"
	CodeSeasonMismatch       ErrorCode = "SEASON_MISMATCH"

	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// AppError carries a taxonomy kind, a stable machine code and a safe
// user-facing message. Err holds the wrapped low-level cause, if any.
type AppError struct {
	Kind    Kind
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, code ErrorCode, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func Validation(code ErrorCode, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

func NotFound(code ErrorCode, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

func Forbidden(code ErrorCode, message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: code, Message: message}
}

func Conflict(code ErrorCode, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Code: CodeInternal, Message: "Something went wrong", Err: err}
}

// Get extracts an *AppError from err, unwrapping as needed. Anything that
// is not an AppError is treated as an Internal fault.
func Get(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// HTTPStatus maps a taxonomy kind to its transport status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	case KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
