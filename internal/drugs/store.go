package drugs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rxline/pharmaflow/internal/aws"
)

// ErrBatchConflict indicates the owner already has a drug with the same batch number.
var ErrBatchConflict = errors.New("duplicate batch number for owner")

// ErrInsufficientStock indicates a stock decrement would drive stock negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// Store encapsulates operations on the drugs table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new drugs Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// batchGuardKey is the synthetic PK of the guard item that reserves the
// (owner, batch_no) pair. Guard items live in the drugs table alongside
// real records and carry nothing but their key.
func batchGuardKey(ownerID, batchNo string) string {
	return "BATCH#" + ownerID + "#" + batchNo
}

// Create persists a drug record atomically with its batch guard item.
// The guard put is conditional on attribute_not_exists(drug_id), so a second
// record with the same (owner, batch_no) cancels the whole transaction and
// surfaces as ErrBatchConflict. d.DrugID must be set by the caller.
func (s *Store) Create(ctx context.Context, d Drug) error {
	now := s.nowFunc()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return fmt.Errorf("marshal drug: %w", err)
	}

	guard := map[string]types.AttributeValue{
		"drug_id": &types.AttributeValueMemberS{Value: batchGuardKey(d.CreatedBy, d.BatchNo)},
	}

	input := &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           &s.tableName,
					Item:                guard,
					ConditionExpression: awsString("attribute_not_exists(drug_id)"),
				},
			},
			{
				Put: &types.Put{
					TableName: &s.tableName,
					Item:      item,
				},
			},
		},
	}

	if _, err := s.client.TransactWriteItems(ctx, input); err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return ErrBatchConflict
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// Get fetches a drug by drug_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, drugID string) (*Drug, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"drug_id": &types.AttributeValueMemberS{Value: drugID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var d Drug
	if err := attributevalue.UnmarshalMap(out.Item, &d); err != nil {
		return nil, fmt.Errorf("unmarshal drug: %w", err)
	}
	return &d, nil
}

// ListInStockByOwner returns the owner's records with stock > 0, the set the
// cart population endpoint serves. Guard items carry no created_by attribute
// and fall out of the filter.
func (s *Store) ListInStockByOwner(ctx context.Context, ownerID string) ([]Drug, error) {
	filter := "created_by = :owner AND stock > :zero"
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName:        &s.tableName,
		FilterExpression: &filter,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: ownerID},
			":zero":  &types.AttributeValueMemberN{Value: "0"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("scan drugs: %w", err)
	}
	var list []Drug
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &list); err != nil {
		return nil, fmt.Errorf("unmarshal drugs: %w", err)
	}
	return list, nil
}

// DecrementStock subtracts qty from the record's stock. The condition keeps
// stock non-negative; a conditional failure surfaces as ErrInsufficientStock.
func (s *Store) DecrementStock(ctx context.Context, drugID string, qty int) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"drug_id": &types.AttributeValueMemberS{Value: drugID},
		},
		UpdateExpression:    awsString("SET stock = stock - :q, updated_at = :ua"),
		ConditionExpression: awsString("stock >= :q"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q":  &types.AttributeValueMemberN{Value: strconv.Itoa(qty)},
			":ua": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrInsufficientStock
		}
		return fmt.Errorf("decrement stock: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
