package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shop-chat-agent/internal/domain"
)

const (
	closingProductPrompt  = "Bạn có muốn xem chi tiết sản phẩm nào hoặc thêm vào giỏ hàng không?"
	closingCategoryPrompt = "Bạn muốn xem sản phẩm trong danh mục nào?"
)

// classificationResponse mirrors the JSON the model is asked to return.
// Pointers distinguish absent or null fields from zero values.
type classificationResponse struct {
	Intent      string   `json:"intent"`
	Confidence  *float64 `json:"confidence"`
	ProductInfo *struct {
		Name     *string   `json:"name"`
		ID       domain.ID `json:"id"`
		Category *string   `json:"category"`
	} `json:"product_info"`
	CartInfo *struct {
		Action   *string      `json:"action"`
		Quantity *json.Number `json:"quantity"`
	} `json:"cart_info"`
	ExtractedRequirements *string `json:"extracted_requirements"`
}

func buildClassificationPrompt(utterance string) string {
	intents := make([]string, 0, len(domain.KnownIntents))
	for _, in := range domain.KnownIntents {
		intents = append(intents, fmt.Sprintf("%q", in))
	}
	return strings.Join([]string{
		"Bạn là một AI chuyên phân tích ý định của khách hàng trong lĩnh vực ecommerce.",
		"Hãy phân tích câu sau và trả về JSON với format chính xác:",
		"",
		fmt.Sprintf("INPUT: %q", utterance),
		"",
		"Hãy xác định:",
		"1. INTENT: một trong " + strings.Join(intents, ", "),
		"2. Trích xuất thông tin sản phẩm: tên sản phẩm, ID sản phẩm, danh mục",
		"3. Trích xuất thông tin giỏ hàng: số lượng, action (add/remove/update)",
		"4. Trích xuất yêu cầu chi tiết của khách hàng",
		"",
		"RULES:",
		classificationRules(),
		"",
		"Trả về JSON format:",
		classificationContract(),
	}, "\n")
}

func classificationRules() string {
	return strings.Join([]string{
		`- Nếu người dùng muốn xem sản phẩm nổi bật/hot/bán chạy → "view_featured_products"`,
		`- Nếu người dùng muốn xem danh mục/categories → "view_categories"`,
		`- Nếu người dùng muốn xem sản phẩm trong danh mục cụ thể → "view_products_in_category"`,
		`- Nếu người dùng muốn xóa/bỏ/loại bỏ khỏi giỏ hàng/cart → "remove_from_cart" (ưu tiên cao nhất)`,
		`- Nếu người dùng muốn thêm vào giỏ hàng/cart → "add_to_cart"`,
		`- Nếu người dùng muốn cập nhật/chỉnh sửa/thay đổi số lượng trong giỏ hàng → "update_cart_quantity"`,
		`- Nếu người dùng muốn xem giỏ hàng/cart → "view_cart"`,
		`- Nếu người dùng muốn đặt hàng/order/thanh toán → "place_order"`,
		`- Nếu người dùng chỉ định tên sản phẩm → trích xuất vào product_info.name`,
		`- Nếu người dùng chỉ định danh mục → trích xuất vào product_info.category`,
		`- Nếu người dùng nói số lượng → trích xuất vào cart_info.quantity`,
	}, "\n")
}

func classificationContract() string {
	return `{
    "intent": "<một intent ở trên>",
    "confidence": số từ 0.0 đến 1.0,
    "product_info": {
        "name": "tên sản phẩm nếu có",
        "id": "ID sản phẩm nếu có",
        "category": "tên danh mục nếu có"
    },
    "cart_info": {
        "action": "add" hoặc "remove" hoặc "update",
        "quantity": số lượng (mặc định 1)
    },
    "extracted_requirements": "yêu cầu chi tiết của khách hàng"
}`
}

// stripCodeFence removes markdown fences the model sometimes wraps JSON in.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.ReplaceAll(s, "```json", "")
		s = strings.ReplaceAll(s, "```", "")
	case strings.HasPrefix(s, "```"):
		s = strings.ReplaceAll(s, "```", "")
	}
	return strings.TrimSpace(s)
}

func parseClassification(raw string) (classificationResponse, error) {
	var out classificationResponse
	dec := json.NewDecoder(bytes.NewBufferString(stripCodeFence(raw)))
	if err := dec.Decode(&out); err != nil {
		return classificationResponse{}, fmt.Errorf("usecase: decode classification: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return classificationResponse{}, errors.New("usecase: decode classification: multiple JSON values")
		}
		return classificationResponse{}, fmt.Errorf("usecase: decode classification trailing data: %w", err)
	}
	if !domain.Intent(strings.TrimSpace(out.Intent)).Valid() {
		return classificationResponse{}, fmt.Errorf("usecase: unknown intent %q", out.Intent)
	}
	return out, nil
}

// toClassifiedIntent applies defaults and clamps: confidence into [0,1],
// quantity to at least 0 (1 when absent), action "add" when absent.
func (r classificationResponse) toClassifiedIntent(utterance string) (domain.ClassifiedIntent, error) {
	ci := domain.ClassifiedIntent{
		Intent:                domain.Intent(strings.TrimSpace(r.Intent)),
		Cart:                  domain.CartRef{Action: domain.CartActionAdd, Quantity: 1},
		ExtractedRequirements: utterance,
	}
	if r.Confidence != nil {
		ci.Confidence = clamp01(*r.Confidence)
	}
	if p := r.ProductInfo; p != nil {
		ci.Product.Name = trimmed(p.Name)
		ci.Product.ID = p.ID
		ci.Product.Category = trimmed(p.Category)
	}
	if c := r.CartInfo; c != nil {
		if a := trimmed(c.Action); a != "" {
			ci.Cart.Action = a
		}
		if c.Quantity != nil {
			q, err := c.Quantity.Float64()
			if err != nil && !errors.Is(err, strconv.ErrRange) {
				return domain.ClassifiedIntent{}, fmt.Errorf("usecase: classification quantity: %w", err)
			}
			ci.Cart.Quantity = clampQuantity(q)
		}
	}
	if req := trimmed(r.ExtractedRequirements); req != "" {
		ci.ExtractedRequirements = req
	}
	return ci, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func buildProductRecommendationPrompt(query, productData string) string {
	return strings.Join([]string{
		"Bạn là một chuyên gia tư vấn mua sắm chuyên nghiệp. Dựa trên yêu cầu của khách hàng và danh sách sản phẩm có sẵn, hãy đưa ra những gợi ý phù hợp nhất.",
		"",
		fmt.Sprintf("YÊU CẦU CỦA KHÁCH HÀNG: %q", query),
		"Dưới đây là danh sách sản phẩm hiện có trong hệ thống:",
		productData,
		"",
		"HƯỚNG DẪN TRẢ LỜI:",
		"- Phân tích yêu cầu của khách hàng",
		"- Đề xuất 2-3 sản phẩm phù hợp nhất",
		"- Giải thích lý do tại sao chọn những sản phẩm đó",
		"- Đưa ra thông tin chi tiết về từng sản phẩm được gợi ý",
		"- So sánh giá cả và đánh giá của các sản phẩm",
		fmt.Sprintf("- Kết thúc bằng câu: %q", closingProductPrompt),
		"- Trả lời bằng tiếng Việt một cách thân thiện và chuyên nghiệp.",
	}, "\n")
}

func buildCategoryRecommendationPrompt(query, categoryData string) string {
	return strings.Join([]string{
		"Bạn là chuyên gia tư vấn mua sắm. Dựa trên yêu cầu của khách hàng, hãy gợi ý các danh mục sản phẩm phù hợp.",
		"",
		fmt.Sprintf("YÊU CẦU: %q", query),
		categoryData,
		"",
		"HƯỚNG DẪN:",
		"- Phân tích nhu cầu của khách hàng",
		"- Đề xuất 2-3 danh mục phù hợp nhất",
		"- Giải thích lý do lựa chọn",
		fmt.Sprintf("- Kết thúc bằng: %q", closingCategoryPrompt),
		"- Trả lời bằng tiếng Việt thân thiện.",
	}, "\n")
}

func formatProductsForPrompt(products []domain.Product) string {
	var b strings.Builder
	b.WriteString("DANH SÁCH SẢN PHẨM:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "\n🛍️ **%s** (ID: %s)\n", orNA(p.Name), domain.FormatID(p.ID))
		fmt.Fprintf(&b, "💰 Giá: %s VNĐ\n", formatPrice(p.Price))
		fmt.Fprintf(&b, "📝 Mô tả: %s\n", orNA(p.Description))
		fmt.Fprintf(&b, "📁 Danh mục: %s\n", orNA(p.Category.Name))
		fmt.Fprintf(&b, "⭐ Đánh giá: %g/5 (%d đánh giá)\n---\n", p.Rating, p.NumReviews)
	}
	return strings.TrimSpace(b.String())
}

func formatCategoriesForPrompt(categories []domain.Category) string {
	var b strings.Builder
	b.WriteString("DANH SÁCH DANH MỤC:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "\n📂 **%s** (ID: %s)\n", orNA(c.Name), domain.FormatID(c.ID))
		fmt.Fprintf(&b, "📝 Mô tả: %s\n---\n", orNA(c.Description))
	}
	return strings.TrimSpace(b.String())
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
