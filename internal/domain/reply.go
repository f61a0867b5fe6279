package domain

import "time"

// CartInfo is the structured cart delta attached to a reply. Anonymous
// clients apply it to the cart they hold.
type CartInfo struct {
	Action       string  `json:"action,omitempty"`
	Quantity     int     `json:"quantity"`
	ProductID    ID      `json:"product_id,omitempty"`
	ProductName  string  `json:"product_name,omitempty"`
	ProductPrice float64 `json:"product_price,omitempty"`
	ProductImage string  `json:"product_image,omitempty"`
	ProductBrand string  `json:"product_brand,omitempty"`
}

// Reply is the payload returned for every chat turn.
//
// UpdatedCart is nil unless the reply carries a recomputed client-owned cart;
// an empty non-nil slice means the client cart is now empty.
type Reply struct {
	Response              string      `json:"response"`
	Intent                Intent      `json:"intent"`
	Confidence            float64     `json:"confidence"`
	ProductInfo           *ProductRef `json:"product_info"`
	CartInfo              *CartInfo   `json:"cart_info"`
	ExtractedRequirements string      `json:"extracted_requirements"`
	UpdatedCart           []CartItem  `json:"updated_cart"`
	ShouldRefreshCart     bool        `json:"should_refresh_cart,omitempty"`
}

// SessionContext is the short-lived per-user conversation state.
type SessionContext struct {
	UserID  string         `json:"user_id"`
	Context map[string]any `json:"context"`
	SavedAt time.Time      `json:"saved_at"`
}
