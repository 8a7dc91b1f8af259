package errs

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	ErrStatusInternalServer  = http.StatusInternalServerError
	ErrStatusClient          = http.StatusBadRequest
	ErrStatusNotLoggedIn     = http.StatusUnauthorized
	ErrStatusNotFound        = http.StatusNotFound
	ErrStatusTooManyRequests = http.StatusTooManyRequests
	ErrStatusBadGateway      = http.StatusBadGateway
)

var (
	ErrInternalServer   = errors.New("Internal server error")
	ErrClient           = errors.New("Bad request")
	ErrNotLoggedIn      = errors.New("Invalid or expired JWT")
	ErrTooManyRequests  = errors.New("Too many cart requests, try again later")
	ErrUpstream         = errors.New("Upstream service unavailable")
	ErrProductRequired  = errors.New("Product ID is required")
	ErrInvalidQuantity  = errors.New("Quantity must be between 1 and 10")
	ErrInvalidSize      = errors.New("Selected size is not available")
	ErrOutOfStock       = errors.New("Product is out of stock")
	ErrStockExceeded    = errors.New("Requested quantity exceeds available stock")
	ErrQuantityLimit    = errors.New("Maximum 10 items allowed per product")
	ErrProductNotFound  = errors.New("Product not found or unavailable")
	ErrCartItemNotFound = errors.New("Cart item not found")
	ErrUserNotFound     = errors.New("User not found")
)

var errorMap = map[error]int{
	ErrInternalServer:   ErrStatusInternalServer,
	ErrClient:           ErrStatusClient,
	ErrNotLoggedIn:      ErrStatusNotLoggedIn,
	ErrTooManyRequests:  ErrStatusTooManyRequests,
	ErrUpstream:         ErrStatusBadGateway,
	ErrProductRequired:  ErrStatusClient,
	ErrInvalidQuantity:  ErrStatusClient,
	ErrInvalidSize:      ErrStatusClient,
	ErrOutOfStock:       ErrStatusClient,
	ErrStockExceeded:    ErrStatusClient,
	ErrQuantityLimit:    ErrStatusClient,
	ErrProductNotFound:  ErrStatusNotFound,
	ErrCartItemNotFound: ErrStatusNotFound,
	ErrUserNotFound:     ErrStatusNotFound,
}

// DetailedError carries a caller-facing message while still matching its
// sentinel through errors.Is.
type DetailedError struct {
	Kind   error
	Detail string
}

func (e *DetailedError) Error() string {
	return e.Detail
}

func (e *DetailedError) Unwrap() error {
	return e.Kind
}

func WithDetail(kind error, format string, args ...interface{}) error {
	return &DetailedError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func GetErrorStatusCode(err error) int {
	if errStatusCode, ok := errorMap[err]; ok {
		return errStatusCode
	}

	for target, errStatusCode := range errorMap {
		if errors.Is(err, target) {
			return errStatusCode
		}
	}

	return errorMap[ErrInternalServer]
}
