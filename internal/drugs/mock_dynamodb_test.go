package drugs

import (
	"context"
	"errors"
	"strconv"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// simpleMock is a minimal in-memory drugs-table mock: one table keyed by
// drug_id, with just enough expression handling for the Store's calls.
type simpleMock struct {
	mu    sync.Mutex
	table map[string]map[string]types.AttributeValue

	transactCalls int
	updateCalls   int
}

func newSimpleMock() *simpleMock {
	return &simpleMock{table: map[string]map[string]types.AttributeValue{}}
}

func (m *simpleMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := params.Item["drug_id"].(*types.AttributeValueMemberS).Value
	m.table[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *simpleMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := params.Key["drug_id"].(*types.AttributeValueMemberS).Value
	item, ok := m.table[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *simpleMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	k := params.Key["drug_id"].(*types.AttributeValueMemberS).Value
	item, ok := m.table[k]
	if !ok {
		return nil, errors.New("item not found")
	}
	// stock decrement with "stock >= :q" condition
	if v, ok := params.ExpressionAttributeValues[":q"]; ok {
		q, _ := strconv.Atoi(v.(*types.AttributeValueMemberN).Value)
		stockAttr, ok := item["stock"].(*types.AttributeValueMemberN)
		if !ok {
			return nil, &types.ConditionalCheckFailedException{}
		}
		stock, _ := strconv.Atoi(stockAttr.Value)
		if stock < q {
			return nil, &types.ConditionalCheckFailedException{}
		}
		item["stock"] = &types.AttributeValueMemberN{Value: strconv.Itoa(stock - q)}
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updated_at"] = v
	}
	m.table[k] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *simpleMock) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactCalls++
	for _, it := range params.TransactItems {
		p := it.Put
		if p == nil || p.ConditionExpression == nil {
			continue
		}
		if *p.ConditionExpression == "attribute_not_exists(drug_id)" {
			k := p.Item["drug_id"].(*types.AttributeValueMemberS).Value
			if _, exists := m.table[k]; exists {
				return nil, &types.TransactionCanceledException{}
			}
		}
	}
	for _, it := range params.TransactItems {
		if p := it.Put; p != nil {
			k := p.Item["drug_id"].(*types.AttributeValueMemberS).Value
			m.table[k] = p.Item
		}
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

func (m *simpleMock) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []map[string]types.AttributeValue
	for _, item := range m.table {
		if v, ok := params.ExpressionAttributeValues[":owner"]; ok {
			want := v.(*types.AttributeValueMemberS).Value
			got, ok := item["created_by"].(*types.AttributeValueMemberS)
			if !ok || got.Value != want {
				continue
			}
		}
		if _, ok := params.ExpressionAttributeValues[":zero"]; ok {
			stockAttr, ok := item["stock"].(*types.AttributeValueMemberN)
			if !ok {
				continue
			}
			stock, _ := strconv.Atoi(stockAttr.Value)
			if stock <= 0 {
				continue
			}
		}
		items = append(items, item)
	}
	return &dyn.ScanOutput{Items: items}, nil
}
