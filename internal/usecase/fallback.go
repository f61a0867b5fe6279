package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"shop-chat-agent/internal/domain"
)

var (
	featuredKeywords       = []string{"nổi bật", "hot", "phổ biến", "bán chạy", "featured", "sản phẩm hot", "sản phẩm nổi bật", "xem sản phẩm"}
	categoryKeywords       = []string{"danh mục", "category", "loại", "phân loại", "xem danh mục"}
	cartKeywords           = []string{"giỏ hàng", "cart", "thêm vào", "add to", "thêm sản phẩm"}
	updateQuantityKeywords = []string{"chỉnh", "cập nhật", "thay đổi", "đổi", "sửa", "update", "change", "modify", "số lượng", "quantity"}
	removeCartKeywords     = []string{"xóa", "remove", "delete", "bỏ", "loại bỏ", "xóa khỏi"}
	viewCartKeywords       = []string{"xem giỏ hàng", "view cart", "giỏ hàng của tôi", "cart của tôi"}
	orderKeywords          = []string{"đặt hàng", "order", "thanh toán", "mua", "checkout"}

	productNamePattern  = regexp.MustCompile(`sản phẩm\s*([^,]+)`)
	categoryNamePattern = regexp.MustCompile(`danh mục\s*([^,]+)`)
	quantityPattern     = regexp.MustCompile(`(\d+)\s*cái|\s*(\d+)\s*sản phẩm`)
)

// maxQuantity is the largest quantity an utterance can request. Larger
// values are capped, not discarded, so they still fail the stock check.
const maxQuantity = 1_000_000

func clampQuantity(q float64) int {
	switch {
	case q != q, q < 0:
		return 0
	case q > maxQuantity:
		return maxQuantity
	}
	return int(q)
}

// FallbackClassify is the deterministic keyword classifier used whenever the
// language model is unavailable or returns something unusable.
func FallbackClassify(utterance string) domain.ClassifiedIntent {
	text := strings.ToLower(utterance)

	hasFeatured := containsAny(text, featuredKeywords)
	hasCategory := containsAny(text, categoryKeywords)
	hasCart := containsAny(text, cartKeywords)
	hasUpdate := containsAny(text, updateQuantityKeywords)
	hasRemove := containsAny(text, removeCartKeywords)
	hasViewCart := containsAny(text, viewCartKeywords)
	hasOrder := containsAny(text, orderKeywords)

	var product domain.ProductRef
	if m := productNamePattern.FindStringSubmatch(text); m != nil {
		product.Name = strings.TrimSpace(m[1])
	}
	if m := categoryNamePattern.FindStringSubmatch(text); m != nil {
		product.Category = strings.TrimSpace(m[1])
	}
	quantity := 1
	if m := quantityPattern.FindStringSubmatch(text); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		// digits only, so the one possible error is overflow
		n, err := strconv.Atoi(digits)
		if err != nil {
			n = maxQuantity
		}
		quantity = min(n, maxQuantity)
	}

	ci := domain.ClassifiedIntent{
		Product:               product,
		Cart:                  domain.CartRef{Action: domain.CartActionAdd, Quantity: quantity},
		ExtractedRequirements: utterance,
	}
	targetsCart := hasCart || product.Name != ""

	switch {
	case hasRemove && targetsCart:
		ci.Intent, ci.Confidence = domain.IntentRemoveFromCart, 0.9
		ci.Cart.Action = domain.CartActionRemove
	case hasUpdate && targetsCart:
		ci.Intent, ci.Confidence = domain.IntentUpdateCartQuantity, 0.8
		ci.Cart.Action = domain.CartActionUpdate
	case hasFeatured:
		ci.Intent, ci.Confidence = domain.IntentViewFeaturedProducts, 0.8
	case hasCategory:
		ci.Intent, ci.Confidence = domain.IntentViewCategories, 0.8
	case hasViewCart:
		ci.Intent, ci.Confidence = domain.IntentViewCart, 0.9
	case hasCart:
		ci.Intent, ci.Confidence = domain.IntentAddToCart, 0.7
	case hasOrder:
		ci.Intent, ci.Confidence = domain.IntentPlaceOrder, 0.8
	default:
		ci.Intent, ci.Confidence = domain.IntentViewFeaturedProducts, 0.6
	}
	return ci
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
