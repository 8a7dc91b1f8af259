package service

import (
	"time"

	"github.com/alimikegami/fashion-store/cart-service/internal/domain"
	"github.com/alimikegami/fashion-store/cart-service/pkg/contract"
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func checkAvailability(product domain.Product) error {
	if !product.IsActive {
		return errs.ErrProductNotFound
	}
	return nil
}

func checkStock(product domain.Product, quantity int) error {
	if product.Stock <= 0 {
		return errs.ErrOutOfStock
	}
	if quantity > product.Stock {
		return errs.WithDetail(errs.ErrStockExceeded, "Only %d items available in stock", product.Stock)
	}
	return nil
}

// checkMerged validates a quantity produced by merging two lines.
func checkMerged(product domain.Product, quantity int) error {
	if quantity > contract.MaxLineQuantity {
		return errs.ErrQuantityLimit
	}
	return checkStock(product, quantity)
}

// applyAdd returns a new cart with the request merged in. The input cart is
// never modified, so a failed validation leaves nothing half-applied.
func applyAdd(cart []domain.CartLine, product domain.Product, req contract.AddCartItemRequest, now time.Time) ([]domain.CartLine, domain.CartLine, error) {
	if err := req.Validate(); err != nil {
		return nil, domain.CartLine{}, err
	}
	if err := checkAvailability(product); err != nil {
		return nil, domain.CartLine{}, err
	}

	quantity := req.RequestedQuantity()
	if err := checkStock(product, quantity); err != nil {
		return nil, domain.CartLine{}, err
	}
	if !product.OffersSize(req.Size) {
		return nil, domain.CartLine{}, errs.ErrInvalidSize
	}

	next := make([]domain.CartLine, len(cart), len(cart)+1)
	copy(next, cart)

	for i, line := range next {
		if !line.SameKey(product.ID, req.Size, req.Color) {
			continue
		}

		merged := line.Quantity + quantity
		if err := checkMerged(product, merged); err != nil {
			return nil, domain.CartLine{}, err
		}

		next[i].Quantity = merged
		return next, next[i], nil
	}

	line := domain.CartLine{
		ID:       primitive.NewObjectID(),
		Product:  product.ID,
		Quantity: quantity,
		Size:     req.Size,
		Color:    req.Color,
		AddedAt:  now,
	}

	return append(next, line), line, nil
}

// applyUpdate edits the line at idx. Moving a line onto the key of another
// line folds both into that other line.
func applyUpdate(cart []domain.CartLine, idx int, product domain.Product, req contract.UpdateCartItemRequest) ([]domain.CartLine, domain.CartLine, error) {
	if err := req.Validate(); err != nil {
		return nil, domain.CartLine{}, err
	}
	if err := checkAvailability(product); err != nil {
		return nil, domain.CartLine{}, errs.WithDetail(errs.ErrProductNotFound, "Product not found for this cart item")
	}

	edited := cart[idx]
	if req.Quantity != nil {
		edited.Quantity = *req.Quantity
	}
	if req.Size != nil {
		edited.Size = *req.Size
	}
	if req.Color != nil {
		edited.Color = *req.Color
	}

	if err := checkStock(product, edited.Quantity); err != nil {
		return nil, domain.CartLine{}, err
	}
	if !product.OffersSize(edited.Size) {
		return nil, domain.CartLine{}, errs.ErrInvalidSize
	}

	next := make([]domain.CartLine, 0, len(cart))
	for i, line := range cart {
		if i == idx || !line.SameKey(edited.Product, edited.Size, edited.Color) {
			continue
		}

		merged := line.Quantity + edited.Quantity
		if err := checkMerged(product, merged); err != nil {
			return nil, domain.CartLine{}, err
		}

		line.Quantity = merged
		for j, other := range cart {
			switch {
			case j == idx:
			case j == i:
				next = append(next, line)
			default:
				next = append(next, other)
			}
		}
		return next, line, nil
	}

	next = append(next, cart...)
	next[idx] = edited
	return next, edited, nil
}

func removeLine(cart []domain.CartLine, idx int) []domain.CartLine {
	next := make([]domain.CartLine, 0, len(cart)-1)
	next = append(next, cart[:idx]...)
	return append(next, cart[idx+1:]...)
}

func cartCount(cart []domain.CartLine) int {
	count := 0
	for _, line := range cart {
		count += line.Quantity
	}
	return count
}

func toProductSummary(product domain.Product) contract.ProductSummary {
	return contract.ProductSummary{
		ID:            product.ID.Hex(),
		Name:          product.Name,
		Slug:          product.Slug,
		Price:         product.Price,
		OriginalPrice: product.OriginalPrice,
		Image:         product.PrimaryImage(),
		Stock:         product.Stock,
	}
}

func toCartItem(line domain.CartLine, product domain.Product) contract.CartItem {
	return contract.CartItem{
		ID:        line.ID.Hex(),
		Product:   toProductSummary(product),
		Quantity:  line.Quantity,
		Size:      line.Size,
		Color:     line.Color,
		UnitPrice: product.Price,
		LineTotal: product.Price * float64(line.Quantity),
		AddedAt:   line.AddedAt,
	}
}
