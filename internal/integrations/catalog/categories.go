package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"shop-chat-agent/internal/domain"
)

// decodeCategories normalizes the category list payload. The backend may send
// a bare array or an object wrapping it under categories, data or results, and
// each element may be an object or a plain name.
func decodeCategories(raw json.RawMessage) ([]domain.Category, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty body", errDecode)
	}

	var elems []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, fmt.Errorf("%w: %v", errDecode, err)
		}
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", errDecode, err)
		}
		for _, key := range []string{"categories", "data", "results"} {
			inner, ok := wrapper[key]
			if !ok {
				continue
			}
			if err := json.Unmarshal(inner, &elems); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", errDecode, key, err)
			}
			break
		}
	default:
		return nil, nil
	}

	categories := make([]domain.Category, 0, len(elems))
	for _, elem := range elems {
		c, err := decodeCategory(elem)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, nil
}

func decodeCategory(raw json.RawMessage) (domain.Category, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var c domain.Category
		if err := json.Unmarshal(raw, &c); err != nil {
			return domain.Category{}, fmt.Errorf("%w: category: %v", errDecode, err)
		}
		return c, nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return domain.Category{}, fmt.Errorf("%w: category name: %v", errDecode, err)
		}
		return domain.Category{Name: name}, nil
	}
	// numbers and other scalars are kept by their literal text
	return domain.Category{Name: string(raw)}, nil
}
