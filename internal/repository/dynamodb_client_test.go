package repository

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	getOut       *dynamodb.GetItemOutput
	getErr       error
	putErr       error
	deleteErr    error
	lastGetInput *dynamodb.GetItemInput
	lastPutInput *dynamodb.PutItemInput
	lastDeleteIn *dynamodb.DeleteItemInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.lastDeleteIn = in
	return &dynamodb.DeleteItemOutput{}, f.deleteErr
}

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func makeSessionItem(userID, raw string, savedAt time.Time) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":      &types.AttributeValueMemberS{Value: sessionPK(userID)},
		"SK":      &types.AttributeValueMemberS{Value: skContext},
		"userId":  &types.AttributeValueMemberS{Value: userID},
		"context": &types.AttributeValueMemberS{Value: raw},
		"savedAt": &types.AttributeValueMemberS{Value: savedAt.Format(time.RFC3339Nano)},
	}
}

func mustNewStore(t *testing.T, db *fakeDynamo) *DynamoStore {
	t.Helper()
	s, err := NewDynamoStore(db, "test-table", 0)
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestNewDynamoStore_Validation(t *testing.T) {
	_, err := NewDynamoStore(nil, "t", 0)
	require.Error(t, err)
	_, err = NewDynamoStore(&fakeDynamo{}, " ", 0)
	require.Error(t, err)

	s, err := NewDynamoStore(&fakeDynamo{}, "t", 0)
	require.NoError(t, err)
	require.Equal(t, DefaultTTL, s.ttl)
}

func TestDynamoStore_Save(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewStore(t, db)

	require.NoError(t, s.Save(context.Background(), "42", map[string]any{"last_intent": "add_to_cart"}))
	in := db.lastPutInput
	require.NotNil(t, in)
	require.Equal(t, "test-table", *in.TableName)
	require.Equal(t, "SESSION#42", in.Item["PK"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, skContext, in.Item["SK"].(*types.AttributeValueMemberS).Value)
	require.JSONEq(t, `{"last_intent":"add_to_cart"}`, in.Item["context"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, fixedNow.Format(time.RFC3339Nano), in.Item["savedAt"].(*types.AttributeValueMemberS).Value)
	wantTTL := strconv.FormatInt(fixedNow.Add(DefaultTTL).Unix(), 10)
	require.Equal(t, wantTTL, in.Item["ttl"].(*types.AttributeValueMemberN).Value)
}

func TestDynamoStore_SaveErrors(t *testing.T) {
	s := mustNewStore(t, &fakeDynamo{putErr: errors.New("throttled")})
	err := s.Save(context.Background(), "42", nil)
	require.ErrorContains(t, err, "throttled")

	require.Error(t, s.Save(context.Background(), " ", nil))
	require.Error(t, s.Save(context.Background(), "42", map[string]any{"bad": make(chan int)}))
}

func TestDynamoStore_GetHappyPath(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{
		Item: makeSessionItem("42", `{"last_product_id":"p1"}`, fixedNow.Add(-10*time.Minute)),
	}}
	s := mustNewStore(t, db)

	sc, ok, err := s.Get(context.Background(), "42")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "42", sc.UserID)
	require.Equal(t, "p1", sc.Context["last_product_id"])
	require.True(t, *db.lastGetInput.ConsistentRead)
	require.Equal(t, "SESSION#42", db.lastGetInput.Key["PK"].(*types.AttributeValueMemberS).Value)
}

func TestDynamoStore_GetExpiredOrMissing(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{
		Item: makeSessionItem("42", `{}`, fixedNow.Add(-DefaultTTL)),
	}}
	s := mustNewStore(t, db)
	_, ok, err := s.Get(context.Background(), "42")
	require.NoError(t, err)
	require.False(t, ok)

	db.getOut = &dynamodb.GetItemOutput{}
	_, ok, err = s.Get(context.Background(), "42")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDynamoStore_GetErrors(t *testing.T) {
	db := &fakeDynamo{getErr: errors.New("boom")}
	s := mustNewStore(t, db)
	_, _, err := s.Get(context.Background(), "42")
	require.ErrorContains(t, err, "boom")

	db.getErr = nil
	db.getOut = &dynamodb.GetItemOutput{Item: makeSessionItem("42", `not json`, fixedNow)}
	_, _, err = s.Get(context.Background(), "42")
	require.ErrorContains(t, err, `"context"`)

	item := makeSessionItem("42", `{}`, fixedNow)
	delete(item, "savedAt")
	db.getOut = &dynamodb.GetItemOutput{Item: item}
	_, _, err = s.Get(context.Background(), "42")
	require.ErrorContains(t, err, `missing attribute "savedAt"`)
}

func TestDynamoStore_Delete(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewStore(t, db)
	require.NoError(t, s.Delete(context.Background(), "42"))
	require.Equal(t, "SESSION#42", db.lastDeleteIn.Key["PK"].(*types.AttributeValueMemberS).Value)

	db.deleteErr = errors.New("denied")
	require.ErrorContains(t, s.Delete(context.Background(), "42"), "denied")
}
