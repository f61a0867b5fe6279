package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"shop-chat-agent/internal/auth"
	"shop-chat-agent/internal/domain"
)

const (
	defaultMaxUtterance = 500
	confidenceThreshold = 0.5
)

// Catalog is the shop backend as seen by the dispatcher. Errors returned by
// the mutation calls carry a user-facing message in Error().
type Catalog interface {
	CatalogReader
	ListFeaturedProducts(ctx context.Context) ([]domain.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID domain.ID) ([]domain.Product, error)
	AddToCart(ctx context.Context, productID domain.ID, quantity int, token string) error
	GetCart(ctx context.Context, token string) (domain.Cart, error)
	RemoveFromCart(ctx context.Context, productID domain.ID, token string) error
	UpdateCartQuantity(ctx context.Context, productID domain.ID, quantity int, token string) error
	PlaceOrder(ctx context.Context, token string) (domain.Order, error)
}

// SessionStore keeps per-user conversation state. Get reports false for
// missing or expired entries.
type SessionStore interface {
	Get(ctx context.Context, userID string) (domain.SessionContext, bool, error)
	Save(ctx context.Context, userID string, values map[string]any) error
	Delete(ctx context.Context, userID string) error
}

type ChatService struct {
	model           LanguageModel
	catalog         Catalog
	sessions        SessionStore
	classifier      *Classifier
	resolver        *Resolver
	maxUtteranceLen int
	subject         func(token string) (string, bool)
}

type ChatInput struct {
	UserInput   string
	Token       string
	CurrentCart []domain.CartItem
}

// RequestContext decides the cart ownership mode of one request: a non-empty
// Token means the server owns the cart, otherwise ClientCart is used.
type RequestContext struct {
	Token      string
	ClientCart []domain.CartItem
}

func (rc RequestContext) Authenticated() bool {
	return rc.Token != ""
}

func NewChatService(model LanguageModel, catalog Catalog, sessions SessionStore, maxUtteranceLen int) (*ChatService, error) {
	if model == nil {
		return nil, errors.New("usecase: language model must not be nil")
	}
	if catalog == nil {
		return nil, errors.New("usecase: catalog must not be nil")
	}
	if sessions == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	if maxUtteranceLen <= 0 {
		maxUtteranceLen = defaultMaxUtterance
	}
	return &ChatService{
		model:           model,
		catalog:         catalog,
		sessions:        sessions,
		classifier:      NewClassifier(model),
		resolver:        NewResolver(catalog),
		maxUtteranceLen: maxUtteranceLen,
		subject:         auth.SubjectFromToken,
	}, nil
}

// Chat validates the input, classifies it and dispatches. The only error
// returned is ErrorInvalidInput; every other failure becomes the reply text.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (domain.Reply, error) {
	utterance := strings.TrimSpace(in.UserInput)
	if utterance == "" {
		return domain.Reply{}, newError(ErrorInvalidInput, "empty_user_input", nil)
	}
	if utf8.RuneCountInString(utterance) > s.maxUtteranceLen {
		return domain.Reply{}, newError(ErrorInvalidInput, "user_input_too_long", nil)
	}

	ci := s.classifier.Classify(ctx, utterance)
	rc := RequestContext{Token: auth.StripBearer(in.Token), ClientCart: in.CurrentCart}
	zerolog.Ctx(ctx).Info().
		Str("intent", string(ci.Intent)).
		Float64("confidence", ci.Confidence).
		Bool("authenticated", rc.Authenticated()).
		Int("client_cart_items", len(rc.ClientCart)).
		Msg("intent classified")

	return s.Dispatch(ctx, ci, rc), nil
}

// Dispatch runs the action for an already classified intent.
func (s *ChatService) Dispatch(ctx context.Context, ci domain.ClassifiedIntent, rc RequestContext) domain.Reply {
	if ci.Confidence < confidenceThreshold {
		return reply(ci, msgLowConfidence)
	}
	switch ci.Intent {
	case domain.IntentViewFeaturedProducts:
		return s.viewFeaturedProducts(ctx, ci)
	case domain.IntentViewCategories:
		return s.viewCategories(ctx, ci)
	case domain.IntentViewProductsInCategory:
		return s.viewProductsInCategory(ctx, ci)
	case domain.IntentAddToCart:
		return s.addToCart(ctx, ci, rc)
	case domain.IntentRemoveFromCart:
		return s.removeFromCart(ctx, ci, rc)
	case domain.IntentUpdateCartQuantity:
		return s.updateCartQuantity(ctx, ci, rc)
	case domain.IntentViewCart:
		return s.viewCart(ctx, ci, rc)
	case domain.IntentPlaceOrder:
		return s.placeOrder(ctx, ci, rc)
	default:
		return reply(ci, msgUnrecognized)
	}
}

func (s *ChatService) viewFeaturedProducts(ctx context.Context, ci domain.ClassifiedIntent) domain.Reply {
	products, err := s.catalog.ListFeaturedProducts(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("featured products unavailable")
	}
	if len(products) == 0 {
		return reply(ci, msgProductsUnavailable)
	}
	prompt := buildProductRecommendationPrompt(ci.ExtractedRequirements, formatProductsForPrompt(products))
	return s.recommend(ctx, ci, prompt, closingProductPrompt)
}

func (s *ChatService) viewCategories(ctx context.Context, ci domain.ClassifiedIntent) domain.Reply {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("categories unavailable")
	}
	if len(categories) == 0 {
		return reply(ci, msgCategoriesUnavailable)
	}
	prompt := buildCategoryRecommendationPrompt(ci.ExtractedRequirements, formatCategoriesForPrompt(categories))
	return s.recommend(ctx, ci, prompt, closingCategoryPrompt)
}

func (s *ChatService) recommend(ctx context.Context, ci domain.ClassifiedIntent, prompt, closing string) domain.Reply {
	text, err := s.model.GenerateText(ctx, prompt)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("intent", string(ci.Intent)).Msg("recommendation generation failed")
		return reply(ci, fmt.Sprintf(msgGenerationFailed, err.Error()))
	}
	return reply(ci, withClosing(text, closing))
}

func (s *ChatService) viewProductsInCategory(ctx context.Context, ci domain.ClassifiedIntent) domain.Reply {
	name := ci.Product.Category
	if name == "" {
		return reply(ci, msgMissingCategory)
	}
	found := s.resolver.FindCategory(ctx, name)
	if !found.Found() {
		return reply(ci, fmt.Sprintf(msgCategoryNotFound, name))
	}
	products, err := s.productsInCategory(ctx, found.Value)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("category_id", found.Value.ID.String()).Msg("category products unavailable")
	}
	if len(products) == 0 {
		return reply(ci, fmt.Sprintf(msgCategoryEmpty, name))
	}
	return reply(ci, renderCategoryProducts(name, products))
}

// productsInCategory lists by id when the category has one. Categories
// listed as bare names have no id, and an empty category filter makes the
// backend return every product, so those are matched by name instead.
func (s *ChatService) productsInCategory(ctx context.Context, c domain.Category) ([]domain.Product, error) {
	if c.ID != "" {
		return s.catalog.ListProductsByCategory(ctx, c.ID)
	}
	all, err := s.catalog.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, p := range all {
		if strings.EqualFold(p.Category.Name, c.Name) || strings.EqualFold(p.Category.ID.String(), c.Name) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ChatService) viewCart(ctx context.Context, ci domain.ClassifiedIntent, rc RequestContext) domain.Reply {
	if rc.Authenticated() {
		cart, err := s.catalog.GetCart(ctx, rc.Token)
		switch {
		case err == nil && len(cart.Items) > 0:
			return reply(ci, renderServerCart(cart.Items))
		case err == nil:
			return reply(ci, msgCartEmpty)
		}
		zerolog.Ctx(ctx).Warn().Err(err).Msg("server cart unavailable, using client cart")
		if len(rc.ClientCart) > 0 {
			return reply(ci, renderServerCart(rc.ClientCart))
		}
		return reply(ci, msgCartEmpty)
	}
	if len(rc.ClientCart) > 0 {
		return reply(ci, renderClientCart(rc.ClientCart))
	}
	return reply(ci, msgCartGuideline)
}

func (s *ChatService) placeOrder(ctx context.Context, ci domain.ClassifiedIntent, rc RequestContext) domain.Reply {
	if !rc.Authenticated() {
		return reply(ci, msgLoginToOrder)
	}
	order, err := s.catalog.PlaceOrder(ctx, rc.Token)
	if err != nil {
		return reply(ci, fmt.Sprintf(msgOrderFailed, err.Error()))
	}
	if userID, ok := s.subject(rc.Token); ok {
		if err := s.sessions.Delete(ctx, userID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("clear session context failed")
		}
	}
	return reply(ci, fmt.Sprintf(msgOrderPlaced, domain.FormatID(order.ID)))
}

// remember records the last cart action for the token subject. Failures
// never change the reply.
func (s *ChatService) remember(ctx context.Context, token string, intent domain.Intent, product domain.Product) {
	userID, ok := s.subject(token)
	if !ok {
		return
	}
	values := map[string]any{
		"last_intent":       string(intent),
		"last_product_id":   product.ID.String(),
		"last_product_name": product.Name,
	}
	if err := s.sessions.Save(ctx, userID, values); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("save session context failed")
	}
}

// reply echoes the classification metadata with the given text.
func reply(ci domain.ClassifiedIntent, text string) domain.Reply {
	product := ci.Product
	return domain.Reply{
		Response:              text,
		Intent:                ci.Intent,
		Confidence:            ci.Confidence,
		ProductInfo:           &product,
		CartInfo:              &domain.CartInfo{Action: ci.Cart.Action, Quantity: ci.Cart.Quantity},
		ExtractedRequirements: ci.ExtractedRequirements,
	}
}
