// Package auth extracts the subject of a bearer token.
//
// The token signature is NOT verified. The subject is only used to key
// short-lived conversation state; the shop backend remains the authority
// that accepts or rejects the token on every cart and order call.
package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "bearer "

// SubjectFromToken returns the user id carried in the token payload: the
// "userId" claim (number or string), else "sub".
func SubjectFromToken(token string) (string, bool) {
	token = StripBearer(token)
	if token == "" {
		return "", false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithJSONNumber())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", false
	}
	if id, ok := claimString(claims["userId"]); ok {
		return id, true
	}
	if sub, err := claims.GetSubject(); err == nil && strings.TrimSpace(sub) != "" {
		return strings.TrimSpace(sub), true
	}
	return "", false
}

// StripBearer removes an optional "Bearer " scheme and surrounding spaces.
func StripBearer(token string) string {
	token = strings.TrimSpace(token)
	if strings.EqualFold(token, strings.TrimSpace(bearerPrefix)) {
		return ""
	}
	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = strings.TrimSpace(token[len(bearerPrefix):])
	}
	return token
}

func claimString(v any) (string, bool) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return strconv.FormatInt(i, 10), true
		}
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case string:
		t = strings.TrimSpace(t)
		return t, t != ""
	case nil:
		return "", false
	default:
		return fmt.Sprint(t), true
	}
}
