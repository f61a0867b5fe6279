package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a backend identifier. The shop backend emits ids as either JSON
// strings or numbers; both decode to the same string form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("domain: decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		// populated reference: take its id
		var ref struct {
			ID    *ID `json:"id"`
			MgoID *ID `json:"_id"`
		}
		if err := json.Unmarshal(data, &ref); err != nil {
			return fmt.Errorf("domain: decode id: %w", err)
		}
		switch {
		case ref.ID != nil:
			*id = *ref.ID
		case ref.MgoID != nil:
			*id = *ref.MgoID
		default:
			*id = ""
		}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("domain: decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// CategoryRef is the category embedded in a product.
type CategoryRef struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts a populated category object or a bare id string.
func (c *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = CategoryRef{}
		return nil
	case len(data) > 0 && data[0] == '{':
		type plain CategoryRef
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("domain: decode category ref: %w", err)
		}
		*c = CategoryRef(p)
		return nil
	default:
		var id ID
		if err := id.UnmarshalJSON(data); err != nil {
			return err
		}
		*c = CategoryRef{ID: id}
		return nil
	}
}

// Product is a read-only view of a catalog product.
type Product struct {
	ID           ID          `json:"id"`
	Name         string      `json:"name"`
	Price        float64     `json:"price"`
	Description  string      `json:"description"`
	Category     CategoryRef `json:"category"`
	Rating       float64     `json:"rating"`
	NumReviews   int         `json:"numReviews"`
	CountInStock int         `json:"countInStock"`
	Image        string      `json:"image"`
	Brand        string      `json:"brand"`
}

// Category is the canonical category record. Backends that list categories
// as bare names produce a Category with only Name set.
type Category struct {
	ID          ID     `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CartItem is one cart line, either returned by the backend cart endpoint or
// held by an anonymous client.
type CartItem struct {
	ID           ID      `json:"id,omitempty"`
	Product      ID      `json:"product,omitempty"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	Image        string  `json:"image,omitempty"`
	Brand        string  `json:"brand,omitempty"`
	CountInStock int     `json:"countInStock,omitempty"`

	// Extra holds the fields of the decoded object that CartItem does not
	// model. They are written back verbatim by MarshalJSON.
	Extra map[string]json.RawMessage `json:"-"`
}

var cartItemFields = map[string]bool{
	"id": true, "product": true, "name": true, "price": true,
	"quantity": true, "image": true, "brand": true, "countinstock": true,
}

// UnmarshalJSON defaults Quantity to 1 when the field is absent and keeps
// unknown fields in Extra.
func (c *CartItem) UnmarshalJSON(data []byte) error {
	type plain CartItem
	p := plain{Quantity: 1}
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("domain: decode cart item: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("domain: decode cart item: %w", err)
	}
	for k := range fields {
		if cartItemFields[strings.ToLower(k)] {
			delete(fields, k)
		}
	}
	p.Extra = nil
	if len(fields) > 0 {
		p.Extra = fields
	}
	*c = CartItem(p)
	return nil
}

// MarshalJSON writes the modelled fields merged over Extra.
func (c CartItem) MarshalJSON() ([]byte, error) {
	type plain CartItem
	known, err := json.Marshal(plain(c))
	if err != nil || len(c.Extra) == 0 {
		return known, err
	}
	merged := make(map[string]json.RawMessage, len(c.Extra)+len(cartItemFields))
	for k, v := range c.Extra {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, fmt.Errorf("domain: encode cart item: %w", err)
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Cart is the server-side cart of an authenticated user.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Order is the subset of a placed order the assistant reports back.
type Order struct {
	ID ID `json:"id"`
}

// Total sums price times quantity over every item.
func Total(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// FormatID renders an id for display, using "N/A" for missing ids.
func FormatID(id ID) string {
	if id == "" {
		return "N/A"
	}
	return string(id)
}
