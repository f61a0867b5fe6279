package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"shop-chat-agent/internal/domain"
)

const (
	categoryListLimit = 10
	cartListLimit     = 5
)

// formatPrice renders a whole-dong amount with thousands separators, e.g. 25,990,000.
func formatPrice(v float64) string {
	return humanize.Comma(int64(math.RoundToEven(v)))
}

func renderCategoryProducts(categoryName string, products []domain.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📂 **Sản phẩm trong danh mục '%s':**\n\n", categoryName)
	for i, p := range products[:min(len(products), categoryListLimit)] {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, orNA(p.Name))
		fmt.Fprintf(&b, "   💰 Giá: %s VNĐ\n", formatPrice(p.Price))
		fmt.Fprintf(&b, "   🔗 ID: %s\n\n", domain.FormatID(p.ID))
	}
	b.WriteString(closingProductPrompt)
	return b.String()
}

// renderCartItems lists the first items and a total over all of them.
func renderCartItems(header string, items []domain.CartItem) string {
	var b strings.Builder
	b.WriteString(header)
	for i, it := range items[:min(len(items), cartListLimit)] {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, orNA(it.Name))
		fmt.Fprintf(&b, "   Số lượng: %d\n", it.Quantity)
		fmt.Fprintf(&b, "   Giá: %s VNĐ\n\n", formatPrice(it.Price))
	}
	fmt.Fprintf(&b, "💰 **Tổng tiền: %s VNĐ**\n\n", formatPrice(domain.Total(items)))
	return b.String()
}

func renderServerCart(items []domain.CartItem) string {
	return renderCartItems(fmt.Sprintf("🛒 **Giỏ hàng của quý khách có (%d sản phẩm):**\n\n", len(items)), items)
}

func renderClientCart(items []domain.CartItem) string {
	var b strings.Builder
	b.WriteString(renderCartItems(fmt.Sprintf("🛒 **Giỏ hàng của bạn (%d sản phẩm):**\n\n", len(items)), items))
	b.WriteString("Để xem chi tiết và thanh toán, hãy truy cập `/cart`\n\n")
	b.WriteString("💡 **Lưu ý:** Bạn chưa đăng nhập. Giỏ hàng sẽ được lưu trong trình duyệt.")
	return b.String()
}

// withClosing appends closing unless the generated text already ends with it.
func withClosing(text, closing string) string {
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, closing) {
		return text
	}
	return text + "\n\n" + closing
}
