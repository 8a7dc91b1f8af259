package contract

import (
	"encoding/json"
	"testing"

	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeShipping(t *testing.T) {
	type TestCase struct {
		Name     string
		Items    []CartItem
		Expected CartSummary
	}

	testCases := []TestCase{
		{
			Name:     "empty cart still charges flat fee",
			Items:    nil,
			Expected: CartSummary{TotalItems: 0, Subtotal: 0, Shipping: 99, Total: 99},
		},
		{
			Name:     "below threshold",
			Items:    []CartItem{{Quantity: 2, LineTotal: 800}},
			Expected: CartSummary{TotalItems: 2, Subtotal: 800, Shipping: 99, Total: 899},
		},
		{
			Name:     "exactly at threshold pays shipping",
			Items:    []CartItem{{Quantity: 1, LineTotal: 999}},
			Expected: CartSummary{TotalItems: 1, Subtotal: 999, Shipping: 99, Total: 1098},
		},
		{
			Name:     "above threshold ships free",
			Items:    []CartItem{{Quantity: 3, LineTotal: 600}, {Quantity: 1, LineTotal: 600}},
			Expected: CartSummary{TotalItems: 4, Subtotal: 1200, Shipping: 0, Total: 1200},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, Summarize(tc.Items))
		})
	}
}

func TestAddCartItemRequestValidate(t *testing.T) {
	assert.NoError(t, AddCartItemRequest{ProductID: "p1"}.Validate())
	assert.Equal(t, 1, AddCartItemRequest{ProductID: "p1"}.RequestedQuantity())
	assert.ErrorIs(t, AddCartItemRequest{}.Validate(), errs.ErrProductRequired)
	assert.ErrorIs(t, AddCartItemRequest{ProductID: "p1", Quantity: IntPtr(0)}.Validate(), errs.ErrInvalidQuantity)
	assert.ErrorIs(t, AddCartItemRequest{ProductID: "p1", Quantity: IntPtr(11)}.Validate(), errs.ErrInvalidQuantity)
	assert.NoError(t, AddCartItemRequest{ProductID: "p1", Quantity: IntPtr(10)}.Validate())
}

func TestUpdateCartItemRequestValidate(t *testing.T) {
	assert.NoError(t, UpdateCartItemRequest{Size: StringPtr("M")}.Validate())
	assert.ErrorIs(t, UpdateCartItemRequest{Quantity: IntPtr(11)}.Validate(), errs.ErrInvalidQuantity)
}

func TestEnvelopeFlattensPayload(t *testing.T) {
	resp := RemoveCartItemResponse{CartCount: 4}
	resp.SetEnvelope(true, "Item removed from cart")

	body, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, "Item removed from cart", decoded["message"])
	assert.Equal(t, float64(4), decoded["cartCount"])
	assert.NotContains(t, decoded, "Envelope")
}
