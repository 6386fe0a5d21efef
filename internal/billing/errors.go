package billing

import "errors"

var (
	// ErrInvalidSignature means the webhook payload failed signature
	// verification. Deliveries carrying it must be rejected, not
	// retried.
	ErrInvalidSignature = errors.New("billing: invalid webhook signature")

	// ErrMalformedPayload means the webhook body could not be decoded.
	ErrMalformedPayload = errors.New("billing: malformed webhook payload")
)
