package paramstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ssmAPI is the part of *ssm.Client used here.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Store reads secrets such as the Gemini API key from SSM Parameter Store.
// Names starting with "/" are absolute; other names are resolved under the
// store prefix.
type Store struct {
	api    ssmAPI
	prefix string
}

// New creates a Store. prefix may be empty when only absolute names are used.
func New(api ssmAPI, prefix string) (*Store, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return &Store{api: api, prefix: prefix}, nil
}

// Resolve returns the fully qualified parameter name.
func (s *Store) Resolve(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "/") || s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// GetParameter returns the decrypted value of name.
func (s *Store) GetParameter(ctx context.Context, name string) (string, error) {
	if s == nil || s.api == nil {
		return "", errors.New("paramstore: store not initialized")
	}
	full := s.Resolve(name)
	if full == "" {
		return "", errors.New("paramstore: name is required")
	}

	withDecryption := true
	out, err := s.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &full,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		return "", fmt.Errorf("paramstore: get parameter %q: %w", full, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("paramstore: parameter %q missing value", full)
	}
	return *out.Parameter.Value, nil
}
