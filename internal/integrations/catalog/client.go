package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shop-chat-agent/internal/domain"
)

const (
	defaultBaseURL = "http://localhost:1337/api"
	defaultTimeout = 10 * time.Second
)

// HTTPStatusError captures non-2xx backend responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("catalog: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Error is the uniform failure shape of every gateway call. Message is the
// user-facing text; Err is the underlying transport, status or decode error.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var errDecode = errors.New("catalog: decode response")

// Client talks to the shop backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a Client rooted at baseURL, e.g. http://localhost:1337/api.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("catalog: invalid base url %q: %w", baseURL, err)
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListFeaturedProducts returns the backend's top products.
func (c *Client) ListFeaturedProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.getJSON(ctx, "/products/top", "", &products); err != nil {
		return nil, wrap("list_featured_products", "Lỗi khi lấy sản phẩm nổi bật", err)
	}
	return products, nil
}

// ListCategories returns every category, normalized into canonical records.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/categories", "", &raw); err != nil {
		return nil, wrap("list_categories", "Lỗi khi lấy danh mục", err)
	}
	categories, err := decodeCategories(raw)
	if err != nil {
		return nil, wrap("list_categories", "Lỗi khi lấy danh mục", err)
	}
	return categories, nil
}

// ListProductsByCategory returns the products of one category.
func (c *Client) ListProductsByCategory(ctx context.Context, categoryID domain.ID) ([]domain.Product, error) {
	path := "/products?category=" + url.QueryEscape(categoryID.String())
	products, err := c.listProducts(ctx, path)
	if err != nil {
		return nil, wrap("list_products_by_category", "Lỗi khi lấy sản phẩm trong danh mục", err)
	}
	return products, nil
}

// GetAllProducts returns the full product list.
func (c *Client) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := c.listProducts(ctx, "/products")
	if err != nil {
		return nil, wrap("get_all_products", "Lỗi khi lấy danh sách sản phẩm", err)
	}
	return products, nil
}

type addToCartRequest struct {
	ProductID domain.ID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// AddToCart adds quantity units of a product to the token owner's cart.
func (c *Client) AddToCart(ctx context.Context, productID domain.ID, quantity int, token string) error {
	err := c.sendJSON(ctx, http.MethodPost, "/cart", token, addToCartRequest{ProductID: productID, Quantity: quantity}, nil)
	if err != nil {
		return cartError("add_to_cart", "Lỗi khi thêm vào giỏ hàng", "Lỗi phân tích phản hồi từ API giỏ hàng", err)
	}
	return nil
}

// GetCart returns the token owner's server-side cart.
func (c *Client) GetCart(ctx context.Context, token string) (domain.Cart, error) {
	var cart domain.Cart
	if err := c.getJSON(ctx, "/cart", token, &cart); err != nil {
		return domain.Cart{}, cartError("get_cart", "Lỗi khi lấy giỏ hàng", "Lỗi phân tích phản hồi từ API giỏ hàng", err)
	}
	return cart, nil
}

// RemoveFromCart deletes a product line from the token owner's cart.
func (c *Client) RemoveFromCart(ctx context.Context, productID domain.ID, token string) error {
	err := c.sendJSON(ctx, http.MethodDelete, "/cart/"+url.PathEscape(productID.String()), token, nil, nil)
	if err != nil {
		return cartError("remove_from_cart", "Lỗi khi xóa khỏi giỏ hàng", "Lỗi phân tích phản hồi từ API xóa giỏ hàng", err)
	}
	return nil
}

// UpdateCartQuantity sets the quantity of a product line in the token owner's cart.
func (c *Client) UpdateCartQuantity(ctx context.Context, productID domain.ID, quantity int, token string) error {
	err := c.sendJSON(ctx, http.MethodPut, "/cart/"+url.PathEscape(productID.String()), token, updateQuantityRequest{Quantity: quantity}, nil)
	if err != nil {
		return cartError("update_cart_quantity", "Lỗi khi cập nhật số lượng", "Lỗi phân tích phản hồi từ API cập nhật giỏ hàng", err)
	}
	return nil
}

// PlaceOrder turns the token owner's cart into an order.
func (c *Client) PlaceOrder(ctx context.Context, token string) (domain.Order, error) {
	var order domain.Order
	if err := c.sendJSON(ctx, http.MethodPost, "/orders", token, struct{}{}, &order); err != nil {
		return domain.Order{}, cartError("place_order", "Lỗi khi đặt hàng", "Lỗi phân tích phản hồi từ API đặt hàng", err)
	}
	return order, nil
}

func (c *Client) listProducts(ctx context.Context, path string) ([]domain.Product, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, path, "", &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var products []domain.Product
		if err := json.Unmarshal(raw, &products); err != nil {
			return nil, fmt.Errorf("%w: %v", errDecode, err)
		}
		return products, nil
	}
	var page struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", errDecode, err)
	}
	return page.Products, nil
}

func (c *Client) getJSON(ctx context.Context, path, token string, out any) error {
	return c.sendJSON(ctx, http.MethodGet, path, token, nil, out)
}

// sendJSON performs one request. With a nil out an empty body is accepted,
// but a non-empty one must still be valid JSON.
func (c *Client) sendJSON(ctx context.Context, method, path, token string, in, out any) error {
	u := c.baseURL + path

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("catalog: marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("catalog: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	raw, err := c.doJSONRequest(req, u)
	if err != nil {
		return err
	}

	if out == nil {
		if len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		out = &json.RawMessage{}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", errDecode, err)
	}
	return nil
}

func (c *Client) doJSONRequest(req *http.Request, u string) ([]byte, error) {
	res, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        u,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

func wrap(op, prefix string, err error) *Error {
	return &Error{Op: op, Message: fmt.Sprintf("%s: %v", prefix, err), Err: err}
}

// cartError maps decode failures to their fixed message and everything else
// to prefix plus the underlying error.
func cartError(op, prefix, decodeMessage string, err error) *Error {
	if errors.Is(err, errDecode) {
		return &Error{Op: op, Message: decodeMessage, Err: err}
	}
	return wrap(op, prefix, err)
}
