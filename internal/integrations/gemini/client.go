package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

const (
	defaultModel   = "gemini-2.0-flash-lite"
	defaultTimeout = 10 * time.Second
)

// contentGenerator is the slice of *genai.Models used by Client.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Getter reads a named secret, e.g. from SSM Parameter Store.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// tokenPayload is the JSON shape accepted for the API key stored in SSM.
type tokenPayload struct {
	Token string `json:"token"`
}

// Client generates text with Gemini. The API key is either supplied up front
// or fetched from the parameter store on first use; the genai client is built
// lazily from it.
type Client struct {
	getter    Getter
	paramName string
	apiKey    string
	model     string
	timeout   time.Duration
	connect   func(ctx context.Context, apiKey string) (contentGenerator, error)

	mu     sync.Mutex
	models contentGenerator
}

type Option func(*Client)

// WithAPIKey uses key directly instead of the parameter store.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithParamStore resolves the API key from the named parameter.
func WithParamStore(g Getter, name string) Option {
	return func(c *Client) {
		c.getter = g
		c.paramName = strings.TrimSpace(name)
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		if m := strings.TrimSpace(model); m != "" {
			c.model = m
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func withGenerator(g contentGenerator) Option {
	return func(c *Client) {
		c.connect = func(context.Context, string) (contentGenerator, error) { return g, nil }
	}
}

func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		model:   defaultModel,
		timeout: defaultTimeout,
		connect: connectGenAI,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.apiKey == "" && (c.getter == nil || c.paramName == "") {
		return nil, errors.New("gemini: an API key or a parameter store source is required")
	}
	return c, nil
}

func connectGenAI(ctx context.Context, apiKey string) (contentGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return client.Models, nil
}

// ClassifyIntent asks for a JSON-only answer at temperature 0.
func (c *Client) ClassifyIntent(ctx context.Context, prompt string) (string, error) {
	temp := float32(0)
	return c.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	})
}

// GenerateText returns free-form text for prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, nil)
}

func (c *Client) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("gemini: prompt must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	models, err := c.resolveModels(ctx)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	res, err := models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if res == nil {
		return "", errors.New("gemini: empty response")
	}
	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", errors.New("gemini: response contained no text")
	}
	return text, nil
}

// resolveModels connects on first use. A failed attempt is retried on the
// next call.
func (c *Client) resolveModels(ctx context.Context) (contentGenerator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.models != nil {
		return c.models, nil
	}

	key := c.apiKey
	if key == "" {
		var err error
		key, err = fetchAPIKey(ctx, c.getter, c.paramName)
		if err != nil {
			return nil, err
		}
	}

	models, err := c.connect(ctx, key)
	if err != nil {
		return nil, err
	}
	c.models = models
	return models, nil
}

// fetchAPIKey reads the key parameter. JSON values of the form {"token": "..."}
// are unwrapped; anything else is used verbatim.
func fetchAPIKey(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("gemini: paramstore getter is nil")
	}
	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("gemini: fetch api key from paramstore: %w", err)
	}
	raw = strings.TrimSpace(raw)

	var tp tokenPayload
	if strings.HasPrefix(raw, "{") {
		if err := json.Unmarshal([]byte(raw), &tp); err != nil {
			return "", fmt.Errorf("gemini: unmarshal paramstore api key: %w", err)
		}
		raw = strings.TrimSpace(tp.Token)
	}
	if raw == "" {
		return "", errors.New("gemini: API key is empty")
	}
	return raw, nil
}
