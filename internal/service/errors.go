package service

import (
	"github.com/dehaan/tannery/internal/domain"
)

// Lookup errors - use domain.ENOTFOUND
var (
	ErrProductNotFound = domain.Errorf(domain.ENOTFOUND, "", "Product not found")
	ErrOrderNotFound   = domain.Errorf(domain.ENOTFOUND, "", "Order not found")
)

// Validation errors - use domain.EINVALID
var (
	ErrInvalidQuantity = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
	ErrSizeUnavailable = domain.Errorf(domain.EINVALID, "", "Selected size is not available for this product")
)

// Payment errors
var (
	ErrEmptyCart   = domain.ErrEmptyCart
	ErrAlreadyPaid = domain.ErrAlreadyPaid
)
