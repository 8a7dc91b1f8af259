package contract

import (
	"strings"

	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
)

type AddCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity,omitempty"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// RequestedQuantity returns the quantity to add, defaulting to one.
func (r AddCartItemRequest) RequestedQuantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

func (r AddCartItemRequest) Validate() error {
	if strings.TrimSpace(r.ProductID) == "" {
		return errs.ErrProductRequired
	}
	return ValidateQuantity(r.RequestedQuantity())
}

type UpdateCartItemRequest struct {
	Quantity *int    `json:"quantity,omitempty"`
	Size     *string `json:"size,omitempty"`
	Color    *string `json:"color,omitempty"`
}

func (r UpdateCartItemRequest) Validate() error {
	if r.Quantity != nil {
		return ValidateQuantity(*r.Quantity)
	}
	return nil
}

type WishlistRequest struct {
	ProductID string `json:"productId"`
}

func (r WishlistRequest) Validate() error {
	if strings.TrimSpace(r.ProductID) == "" {
		return errs.ErrProductRequired
	}
	return nil
}

type MoveToCartRequest struct {
	Quantity *int   `json:"quantity,omitempty"`
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
}

// CartRequest turns the move into the equivalent add-to-cart request.
func (r MoveToCartRequest) CartRequest(productID string) AddCartItemRequest {
	return AddCartItemRequest{
		ProductID: productID,
		Quantity:  r.Quantity,
		Size:      r.Size,
		Color:     r.Color,
	}
}

// IntPtr and StringPtr help build the optional fields above.
func IntPtr(v int) *int { return &v }

func StringPtr(v string) *string { return &v }
