// Package store provides a tenant-partitioned key-value store backed by
// DynamoDB. Every item's partition key is the tenant id; no operation in
// this package accepts a bare key without a tenant, so cross-tenant reads
// are structurally impossible rather than merely policy-forbidden.
package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	domainerrors "github.com/voyagio/mcp-tenant-server/internal/errors"
)

const domain = "store"

// partitionKeyAttr and sortKeyAttr name the table's key schema. The leading
// key is always the tenant id: every Query condition below is anchored on
// it, so a bug that forgets a tenant filter fails closed (DynamoDB rejects a
// Query with no partition key condition) rather than open.
const (
	partitionKeyAttr = "tenantId"
	sortKeyAttr      = "itemKey"
)

// Item is one tenant-scoped record.
type Item struct {
	TenantID string
	Key      string
	Value    map[string]interface{}
}

// dynamoAPI is the subset of the DynamoDB client the store calls.
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store reads and writes tenant-partitioned items.
type Store struct {
	client dynamoAPI
	table  string
}

// New builds a Store from ambient AWS configuration.
func New(ctx context.Context, region, table string) (*Store, error) {
	if table == "" {
		return nil, domainerrors.New(domain, "New", domainerrors.ErrBadRequest,
			fmt.Errorf("TABLE_NAME is required"))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, domainerrors.New(domain, "New", domainerrors.ErrInternal, err)
	}

	return &Store{client: dynamodb.NewFromConfig(awsCfg), table: table}, nil
}

// NewWithClient builds a Store around an already-configured client, used by
// tests to inject a fake.
func NewWithClient(client dynamoAPI, table string) *Store {
	return &Store{client: client, table: table}
}

// Put writes item, keyed by (tenantID, key).
func (s *Store) Put(ctx context.Context, tenantID, key string, value map[string]interface{}) error {
	if tenantID == "" {
		return domainerrors.New(domain, "Put", domainerrors.ErrBadRequest, fmt.Errorf("tenantID is required"))
	}

	av, err := attributevalue.MarshalMap(value)
	if err != nil {
		return domainerrors.New(domain, "Put", domainerrors.ErrInternal, err)
	}
	av[partitionKeyAttr] = &types.AttributeValueMemberS{Value: tenantID}
	av[sortKeyAttr] = &types.AttributeValueMemberS{Value: key}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return domainerrors.New(domain, "Put", domainerrors.ErrInternal, err).
			WithContext("tenantId", tenantID).WithContext("key", key)
	}
	return nil
}

// Get reads a single item scoped to tenantID. Returns (nil, nil) if absent.
func (s *Store) Get(ctx context.Context, tenantID, key string) (*Item, error) {
	if tenantID == "" {
		return nil, domainerrors.New(domain, "Get", domainerrors.ErrBadRequest, fmt.Errorf("tenantID is required"))
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			partitionKeyAttr: &types.AttributeValueMemberS{Value: tenantID},
			sortKeyAttr:      &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, domainerrors.New(domain, "Get", domainerrors.ErrInternal, err).
			WithContext("tenantId", tenantID).WithContext("key", key)
	}
	if out.Item == nil {
		return nil, nil
	}

	return itemFromAttributes(tenantID, key, out.Item)
}

// List returns every item belonging to tenantID, optionally restricted to
// keys sharing keyPrefix. The Query's KeyConditionExpression always pins
// tenantID as the partition key; there is no code path in this package that
// can issue a cross-tenant scan.
func (s *Store) List(ctx context.Context, tenantID, keyPrefix string) ([]Item, error) {
	if tenantID == "" {
		return nil, domainerrors.New(domain, "List", domainerrors.ErrBadRequest, fmt.Errorf("tenantID is required"))
	}

	keyCond := fmt.Sprintf("%s = :tid", partitionKeyAttr)
	exprValues := map[string]types.AttributeValue{
		":tid": &types.AttributeValueMemberS{Value: tenantID},
	}
	if keyPrefix != "" {
		keyCond += fmt.Sprintf(" AND begins_with(%s, :prefix)", sortKeyAttr)
		exprValues[":prefix"] = &types.AttributeValueMemberS{Value: keyPrefix}
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    aws.String(keyCond),
		ExpressionAttributeValues: exprValues,
	})
	if err != nil {
		return nil, domainerrors.New(domain, "List", domainerrors.ErrInternal, err).
			WithContext("tenantId", tenantID)
	}

	items := make([]Item, 0, len(out.Items))
	for _, raw := range out.Items {
		key, _ := raw[sortKeyAttr].(*types.AttributeValueMemberS)
		keyStr := ""
		if key != nil {
			keyStr = key.Value
		}
		item, err := itemFromAttributes(tenantID, keyStr, raw)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func itemFromAttributes(tenantID, key string, raw map[string]types.AttributeValue) (*Item, error) {
	delete(raw, partitionKeyAttr)
	delete(raw, sortKeyAttr)

	var value map[string]interface{}
	if err := attributevalue.UnmarshalMap(raw, &value); err != nil {
		return nil, domainerrors.New(domain, "itemFromAttributes", domainerrors.ErrInternal, err)
	}

	return &Item{TenantID: tenantID, Key: key, Value: value}, nil
}
