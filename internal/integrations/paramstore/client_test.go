package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	getOut *ssm.GetParameterOutput
	getErr error
	lastIn *ssm.GetParameterInput
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.lastIn = in
	return f.getOut, f.getErr
}

func strPtr(s string) *string { return &s }

func valueOutput(v string) *ssm.GetParameterOutput {
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: strPtr(v)}}
}

func TestGetParameter_ResolvesUnderPrefix(t *testing.T) {
	api := &fakeAPI{getOut: valueOutput(`{"token":"k"}`)}
	store, err := New(api, "shop-chat-agent/")
	require.NoError(t, err)

	v, err := store.GetParameter(context.Background(), "gemini-api-key")
	require.NoError(t, err)
	require.Equal(t, `{"token":"k"}`, v)
	require.Equal(t, "/shop-chat-agent/gemini-api-key", *api.lastIn.Name)
	require.True(t, *api.lastIn.WithDecryption)
}

func TestGetParameter_AbsoluteNameIgnoresPrefix(t *testing.T) {
	api := &fakeAPI{getOut: valueOutput("v")}
	store, err := New(api, "/shop-chat-agent")
	require.NoError(t, err)

	_, err = store.GetParameter(context.Background(), "/shared/gemini")
	require.NoError(t, err)
	require.Equal(t, "/shared/gemini", *api.lastIn.Name)
}

func TestResolve(t *testing.T) {
	withPrefix, err := New(&fakeAPI{}, "/app")
	require.NoError(t, err)
	noPrefix, err := New(&fakeAPI{}, "")
	require.NoError(t, err)

	require.Equal(t, "/app/key", withPrefix.Resolve(" key "))
	require.Equal(t, "/other/key", withPrefix.Resolve("/other/key"))
	require.Equal(t, "key", noPrefix.Resolve("key"))
	require.Equal(t, "", withPrefix.Resolve("  "))
}

func TestGetParameter_MissingValue(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: strPtr("p")}}}
	store, err := New(api, "")
	require.NoError(t, err)

	_, err = store.GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing value")
}

func TestGetParameter_APIError(t *testing.T) {
	store, err := New(&fakeAPI{getErr: errors.New("boom")}, "")
	require.NoError(t, err)

	_, err = store.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "boom")
}

func TestGetParameter_NotInitializedAndEmptyName(t *testing.T) {
	_, err := (&Store{}).GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "not initialized")

	store, err := New(&fakeAPI{}, "/app")
	require.NoError(t, err)
	_, err = store.GetParameter(context.Background(), "  ")
	require.ErrorContains(t, err, "required")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil, "/app")
	require.ErrorContains(t, err, "must not be nil")
}
