package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"shop-chat-agent/internal/domain"
)

const skContext = "CONTEXT#"

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoStore keeps session contexts in a DynamoDB table, one item per user.
// The table's TTL attribute is "ttl"; since DynamoDB deletes expired items
// lazily, reads also check savedAt.
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

// NewDynamoStore creates a DynamoStore. A non-positive ttl uses DefaultTTL.
func NewDynamoStore(api dynamodbAPI, tableName string, ttl time.Duration) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &DynamoStore{api: api, tableName: tableName, ttl: ttl, now: time.Now}, nil
}

// sessionPK returns the DynamoDB partition key for a user's session.
func sessionPK(userID string) string {
	return "SESSION#" + userID
}

func (s *DynamoStore) key(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: sessionPK(userID)},
		"SK": &types.AttributeValueMemberS{Value: skContext},
	}
}

// Get returns the stored context, or false when absent or older than the TTL.
func (s *DynamoStore) Get(ctx context.Context, userID string) (domain.SessionContext, bool, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.SessionContext{}, false, fmt.Errorf("repository: Get get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.SessionContext{}, false, nil
	}

	sc, err := itemToSession(out.Item)
	if err != nil {
		return domain.SessionContext{}, false, fmt.Errorf("repository: Get decode: %w", err)
	}
	if expired(sc.SavedAt, s.now(), s.ttl) {
		return domain.SessionContext{}, false, nil
	}
	return sc, true, nil
}

// Save overwrites the user's context; the last write wins.
func (s *DynamoStore) Save(ctx context.Context, userID string, values map[string]any) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("repository: Save: user id is required")
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("repository: Save encode context: %w", err)
	}
	now := s.now().UTC()
	item := s.key(userID)
	item["userId"] = &types.AttributeValueMemberS{Value: userID}
	item["context"] = &types.AttributeValueMemberS{Value: string(raw)}
	item["savedAt"] = &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)}
	item["ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(s.ttl).Unix(), 10)}

	if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("repository: Save: %w", err)
	}
	return nil
}

// Delete removes the user's context. Deleting a missing entry is not an error.
func (s *DynamoStore) Delete(ctx context.Context, userID string) error {
	if _, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(userID),
	}); err != nil {
		return fmt.Errorf("repository: Delete: %w", err)
	}
	return nil
}

// itemToSession converts a DynamoDB attribute map to a SessionContext.
func itemToSession(item map[string]types.AttributeValue) (domain.SessionContext, error) {
	userID, err := strAttr(item, "userId")
	if err != nil {
		return domain.SessionContext{}, err
	}
	raw, err := strAttr(item, "context")
	if err != nil {
		return domain.SessionContext{}, err
	}
	savedAt, err := strAttr(item, "savedAt")
	if err != nil {
		return domain.SessionContext{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return domain.SessionContext{}, fmt.Errorf("repository: parse attribute %q: %w", "savedAt", err)
	}
	values := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return domain.SessionContext{}, fmt.Errorf("repository: parse attribute %q: %w", "context", err)
	}
	return domain.SessionContext{UserID: userID, Context: values, SavedAt: ts}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}
