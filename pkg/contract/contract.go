// Package contract holds the wire types shared by the cart HTTP API and its
// clients. Every response embeds Envelope so payload fields sit next to
// success and message in the encoded JSON.
package contract

import (
	"time"

	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
)

const (
	MaxLineQuantity       = 10
	FreeShippingThreshold = 999.0
	FlatShippingFee       = 99.0
)

// Payload is implemented by every response type through the embedded Envelope.
type Payload interface {
	SetEnvelope(success bool, message string)
}

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (e *Envelope) SetEnvelope(success bool, message string) {
	e.Success = success
	e.Message = message
}

type ProductSummary struct {
	ID            string  `json:"_id"`
	Name          string  `json:"name"`
	Slug          string  `json:"slug,omitempty"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice,omitempty"`
	Image         string  `json:"image,omitempty"`
	Stock         int     `json:"stock"`
}

type CartItem struct {
	ID        string         `json:"_id"`
	Product   ProductSummary `json:"product"`
	Quantity  int            `json:"quantity"`
	Size      string         `json:"size,omitempty"`
	Color     string         `json:"color,omitempty"`
	UnitPrice float64        `json:"unitPrice"`
	LineTotal float64        `json:"lineTotal"`
	AddedAt   time.Time      `json:"addedAt"`
}

type CartSummary struct {
	TotalItems int     `json:"totalItems"`
	Subtotal   float64 `json:"subtotal"`
	Shipping   float64 `json:"shipping"`
	Total      float64 `json:"total"`
}

type Cart struct {
	Items   []CartItem  `json:"items"`
	Summary CartSummary `json:"summary"`
}

type WishlistEntry struct {
	Product ProductSummary `json:"product"`
	AddedAt time.Time      `json:"addedAt"`
}

// Summarize derives the cart summary from its lines. Shipping is free only
// when the subtotal is strictly above the threshold.
func Summarize(items []CartItem) CartSummary {
	var summary CartSummary
	for _, item := range items {
		summary.TotalItems += item.Quantity
		summary.Subtotal += item.LineTotal
	}

	summary.Shipping = FlatShippingFee
	if summary.Subtotal > FreeShippingThreshold {
		summary.Shipping = 0
	}

	summary.Total = summary.Subtotal + summary.Shipping
	return summary
}

func ValidateQuantity(quantity int) error {
	if quantity < 1 || quantity > MaxLineQuantity {
		return errs.ErrInvalidQuantity
	}
	return nil
}
