package usecase

import (
	"context"
	"fmt"
	"strings"

	"shop-chat-agent/internal/domain"
)

func (s *ChatService) addToCart(ctx context.Context, ci domain.ClassifiedIntent, rc RequestContext) domain.Reply {
	name := ci.Product.Name
	quantity := ci.Cart.Quantity
	if name == "" {
		return reply(ci, msgAddMissingProduct)
	}
	found := s.resolver.FindProduct(ctx, name)
	if !found.Found() {
		return reply(ci, fmt.Sprintf(msgProductNotFound, name))
	}
	product := found.Value
	if product.CountInStock < quantity {
		return reply(ci, fmt.Sprintf(msgAddNoStock, name, product.CountInStock, quantity))
	}

	var text string
	if rc.Authenticated() {
		if err := s.catalog.AddToCart(ctx, product.ID, quantity, rc.Token); err != nil {
			return reply(ci, fmt.Sprintf(msgAddFailed, err.Error()))
		}
		s.remember(ctx, rc.Token, ci.Intent, product)
		text = fmt.Sprintf(msgAdded, quantity, name, formatPrice(product.Price))
	} else {
		text = fmt.Sprintf(msgAvailableForGuest, name, orNA(product.Name), formatPrice(product.Price), product.CountInStock)
	}
	out := reply(ci, text)
	out.ProductInfo = resolvedRef(ci, product.ID)
	out.CartInfo = cartDelta(domain.CartActionAdd, quantity, name, product)
	return out
}

func (s *ChatService) removeFromCart(ctx context.Context, ci domain.ClassifiedIntent, rc RequestContext) domain.Reply {
	name := ci.Product.Name
	if name == "" {
		return reply(ci, msgRemoveMissingProduct)
	}

	if rc.Authenticated() {
		found := s.resolver.FindProduct(ctx, name)
		if !found.Found() {
			return reply(ci, fmt.Sprintf(msgProductNotInCatalog, name))
		}
		product := found.Value
		if err := s.catalog.RemoveFromCart(ctx, product.ID, rc.Token); err != nil {
			return reply(ci, fmt.Sprintf(msgRemoveFailed, err.Error()))
		}
		s.remember(ctx, rc.Token, ci.Intent, product)
		out := reply(ci, fmt.Sprintf(msgRemoved, name))
		out.ProductInfo = resolvedRef(ci, product.ID)
		out.CartInfo = &domain.CartInfo{Action: domain.CartActionRemove, Quantity: 1, ProductID: product.ID, ProductName: name}
		return out
	}

	if len(rc.ClientCart) == 0 {
		return reply(ci, msgRemoveEmptyCart)
	}
	kept := withoutMatching(rc.ClientCart, name)
	if len(kept) == len(rc.ClientCart) {
		return reply(ci, fmt.Sprintf(msgNotInCart, name))
	}
	out := reply(ci, fmt.Sprintf(msgRemovedFromGuestCart, name, len(kept)))
	out.ProductInfo = resolvedRef(ci, "")
	out.CartInfo = &domain.CartInfo{Action: domain.CartActionRemove, Quantity: 1, ProductName: name}
	out.UpdatedCart = kept
	return out
}

func (s *ChatService) updateCartQuantity(ctx context.Context, ci domain.ClassifiedIntent, rc RequestContext) domain.Reply {
	name := ci.Product.Name
	quantity := ci.Cart.Quantity
	if name == "" {
		return reply(ci, msgUpdateMissingProduct)
	}
	if quantity <= 0 {
		return reply(ci, msgUpdateBadQuantity)
	}

	// Both modes resolve the product first for the stock check.
	found := s.resolver.FindProduct(ctx, name)
	if !found.Found() {
		return reply(ci, fmt.Sprintf(msgProductNotInCatalog, name))
	}
	product := found.Value
	if product.CountInStock < quantity {
		return reply(ci, fmt.Sprintf(msgUpdateNoStock, name, product.CountInStock, quantity))
	}

	if rc.Authenticated() {
		if err := s.catalog.UpdateCartQuantity(ctx, product.ID, quantity, rc.Token); err != nil {
			return reply(ci, fmt.Sprintf(msgUpdateFailed, err.Error()))
		}
		s.remember(ctx, rc.Token, ci.Intent, product)
		out := reply(ci, fmt.Sprintf(msgUpdated, name, quantity, formatPrice(product.Price)))
		out.ProductInfo = resolvedRef(ci, product.ID)
		out.CartInfo = cartDelta(domain.CartActionUpdateQuantity, quantity, name, product)
		return out
	}

	if len(rc.ClientCart) == 0 {
		return reply(ci, msgUpdateEmptyCart)
	}
	updated, ok := withQuantity(rc.ClientCart, name, quantity)
	if !ok {
		return reply(ci, fmt.Sprintf(msgNotInCart, name))
	}
	out := reply(ci, fmt.Sprintf(msgUpdatedGuestCart, name, quantity, len(updated)))
	out.ProductInfo = resolvedRef(ci, product.ID)
	out.CartInfo = cartDelta(domain.CartActionUpdateQuantity, quantity, name, product)
	out.UpdatedCart = updated
	out.ShouldRefreshCart = true
	return out
}

// withoutMatching returns the items whose name does not contain name,
// case-insensitively. The result is never nil.
func withoutMatching(items []domain.CartItem, name string) []domain.CartItem {
	needle := strings.ToLower(name)
	kept := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}

// withQuantity copies items, setting quantity on every name match.
func withQuantity(items []domain.CartItem, name string, quantity int) ([]domain.CartItem, bool) {
	needle := strings.ToLower(name)
	out := make([]domain.CartItem, len(items))
	found := false
	for i, it := range items {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			it.Quantity = quantity
			found = true
		}
		out[i] = it
	}
	return out, found
}

func resolvedRef(ci domain.ClassifiedIntent, id domain.ID) *domain.ProductRef {
	return &domain.ProductRef{Name: ci.Product.Name, ID: id, Category: ci.Product.Category}
}

func cartDelta(action string, quantity int, name string, p domain.Product) *domain.CartInfo {
	return &domain.CartInfo{
		Action:       action,
		Quantity:     quantity,
		ProductID:    p.ID,
		ProductName:  name,
		ProductPrice: p.Price,
		ProductImage: p.Image,
		ProductBrand: p.Brand,
	}
}
