package domain

// Intent is the action a chat utterance asks the assistant to perform.
type Intent string

const (
	IntentViewFeaturedProducts   Intent = "view_featured_products"
	IntentViewCategories         Intent = "view_categories"
	IntentViewProductsInCategory Intent = "view_products_in_category"
	IntentAddToCart              Intent = "add_to_cart"
	IntentRemoveFromCart         Intent = "remove_from_cart"
	IntentUpdateCartQuantity     Intent = "update_cart_quantity"
	IntentViewCart               Intent = "view_cart"
	IntentPlaceOrder             Intent = "place_order"
)

// KnownIntents lists every supported intent in prompt order.
var KnownIntents = []Intent{
	IntentViewFeaturedProducts,
	IntentViewCategories,
	IntentViewProductsInCategory,
	IntentAddToCart,
	IntentRemoveFromCart,
	IntentUpdateCartQuantity,
	IntentViewCart,
	IntentPlaceOrder,
}

// Valid reports whether i is one of KnownIntents.
func (i Intent) Valid() bool {
	for _, known := range KnownIntents {
		if i == known {
			return true
		}
	}
	return false
}

// Cart actions carried in CartRef.Action and CartInfo.Action.
const (
	CartActionAdd            = "add"
	CartActionRemove         = "remove"
	CartActionUpdate         = "update"
	CartActionUpdateQuantity = "update_quantity"
)

// ProductRef holds the product parameters extracted from an utterance, or the
// resolved product echoed back to the client.
type ProductRef struct {
	Name     string `json:"name,omitempty"`
	ID       ID     `json:"id,omitempty"`
	Category string `json:"category,omitempty"`
}

// CartRef holds the cart parameters extracted from an utterance.
type CartRef struct {
	Action   string `json:"action,omitempty"`
	Quantity int    `json:"quantity"`
}

// ClassifiedIntent is the structured reading of one utterance.
type ClassifiedIntent struct {
	Intent                Intent     `json:"intent"`
	Confidence            float64    `json:"confidence"`
	Product               ProductRef `json:"product_info"`
	Cart                  CartRef    `json:"cart_info"`
	ExtractedRequirements string     `json:"extracted_requirements"`
}
