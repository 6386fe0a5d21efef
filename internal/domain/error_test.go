package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  &Error{Code: EINVALID, Message: "Size is not available"},
			want: "Size is not available",
		},
		{
			name: "with operation",
			err:  &Error{Code: EINVALID, Op: "cart.add", Message: "Size is not available"},
			want: "cart.add: Size is not available",
		},
		{
			name: "with wrapped error",
			err: &Error{
				Code:    EINTERNAL,
				Op:      "order.create",
				Message: "failed to save order",
				Err:     errors.New("connection refused"),
			},
			want: "order.create: failed to save order: connection refused",
		},
		{
			name: "wrapped error without op",
			err: &Error{
				Code:    EINTERNAL,
				Message: "failed to save order",
				Err:     errors.New("connection refused"),
			},
			want: "failed to save order: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("deadlock detected")
	err := &Error{Code: EINTERNAL, Op: "order.status", Message: "update failed", Err: underlying}

	assert.Same(t, underlying, err.Unwrap())
	assert.ErrorIs(t, err, underlying)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "payment error", err: &Error{Code: EPAYMENT, Message: "card declined"}, want: EPAYMENT},
		{
			name: "wrapped domain error",
			err:  fmt.Errorf("handling webhook: %w", &Error{Code: EUNAUTHORIZED, Message: "bad signature"}),
			want: EUNAUTHORIZED,
		},
		{name: "plain error reads as internal", err: errors.New("redis timeout"), want: EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{
			name: "domain message passes through",
			err:  &Error{Code: ECONFLICT, Message: "This order has already been paid"},
			want: "This order has already been paid",
		},
		{
			name: "internal details stay hidden",
			err:  &Error{Code: EINTERNAL, Message: "dsn postgres://user:secret@db failed"},
			want: "An internal error occurred. Please try again later.",
		},
		{
			name: "plain error stays hidden",
			err:  errors.New("pgx: connection refused"),
			want: "An internal error occurred. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
		})
	}
}

func TestErrorOp(t *testing.T) {
	assert.Equal(t, "payment.intent", ErrorOp(&Error{Code: EPAYMENT, Op: "payment.intent", Message: "declined"}))
	assert.Equal(t, "", ErrorOp(&Error{Code: EPAYMENT, Message: "declined"}))
	assert.Equal(t, "", ErrorOp(errors.New("declined")))
	assert.Equal(t, "", ErrorOp(nil))
}

func TestErrorf(t *testing.T) {
	err := Errorf(EINVALID, "cart.add", "invalid quantity: %d", -3)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, EINVALID, e.Code)
	assert.Equal(t, "cart.add", e.Op)
	assert.Equal(t, "invalid quantity: -3", e.Message)
}

func TestWrapError(t *testing.T) {
	t.Run("wraps and keeps the cause", func(t *testing.T) {
		cause := errors.New("stripe: api unreachable")
		err := WrapError(cause, EPAYMENT, "payment.intent", "could not start payment")

		assert.True(t, IsCode(err, EPAYMENT))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("nil in, nil out", func(t *testing.T) {
		assert.NoError(t, WrapError(nil, EPAYMENT, "payment.intent", "could not start payment"))
	})
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(&Error{Code: ENOTFOUND, Message: "order not found"}, ENOTFOUND))
	assert.False(t, IsCode(&Error{Code: EINVALID, Message: "bad size"}, ENOTFOUND))
	assert.True(t, IsCode(errors.New("smtp down"), EINTERNAL))
}

func TestValidationError(t *testing.T) {
	t.Run("single field", func(t *testing.T) {
		err := NewValidationError("order.create", "Email", "Email must be a valid email address")

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "order.create", ve.Op)
		assert.Equal(t, "Email must be a valid email address", ve.Fields["Email"])
		assert.Equal(t, "order.create: Email: Email must be a valid email address", ve.Error())
	})

	t.Run("accumulates fields", func(t *testing.T) {
		err := NewValidationError("order.create", "FullName", "FullName is required")
		err = AddFieldError(err, "Phone", "Phone is required")

		fields := GetValidationFields(err)
		require.Len(t, fields, 2)
		assert.Equal(t, "Phone is required", fields["Phone"])
	})

	t.Run("starts fresh from nil", func(t *testing.T) {
		err := AddFieldError(nil, "ShippingAddress", "ShippingAddress is required")
		assert.True(t, IsValidationError(err))
		assert.Len(t, GetValidationFields(err), 1)
	})

	t.Run("detection", func(t *testing.T) {
		assert.False(t, IsValidationError(&Error{Code: EINVALID, Message: "bad size"}))
		assert.False(t, IsValidationError(errors.New("nope")))
		assert.False(t, IsValidationError(nil))
		assert.Nil(t, GetValidationFields(errors.New("nope")))
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{name: "NotFound", err: NotFound("order.get", "order", "3f1c"), code: ENOTFOUND},
		{name: "Unauthorized", err: Unauthorized("webhook.stripe", "signature verification failed"), code: EUNAUTHORIZED},
		{name: "Forbidden", err: Forbidden("admin.orders", "operator role required"), code: EFORBIDDEN},
		{name: "Invalid", err: Invalid("cart.add", "quantity must be positive"), code: EINVALID},
		{name: "Conflict", err: Conflict("payment.intent", "order already paid"), code: ECONFLICT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ErrorCode(tt.err))
		})
	}

	t.Run("Internal hides its message", func(t *testing.T) {
		cause := errors.New("tx rollback")
		err := Internal(cause, "order.create", "failed to save order")

		assert.Equal(t, EINTERNAL, ErrorCode(err))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "An internal error occurred. Please try again later.", ErrorMessage(err))
	})
}

func TestSentinelErrors(t *testing.T) {
	// The sentinels double as branch targets for errors.Is and carry
	// customer-safe messages.
	assert.Equal(t, EINVALID, ErrorCode(ErrEmptyCart))
	assert.Equal(t, "Your cart is empty", ErrorMessage(ErrEmptyCart))

	assert.Equal(t, ECONFLICT, ErrorCode(ErrAlreadyPaid))
	assert.Equal(t, "This order has already been paid", ErrorMessage(ErrAlreadyPaid))

	wrapped := fmt.Errorf("creating order: %w", ErrEmptyCart)
	assert.ErrorIs(t, wrapped, ErrEmptyCart)
	assert.Equal(t, EINVALID, ErrorCode(wrapped))
}
