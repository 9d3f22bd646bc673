/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory DynamoDB backend implementing ddb.API
// for tests: tables with hash keys and secondary indexes, equality key
// conditions and filters, SET update expressions, page cursors, and
// injectable per-operation failures.
package mock

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// Backend is an in-memory stand-in for the DynamoDB service. It is safe for
// concurrent use.
type Backend struct {
	mu       sync.Mutex
	tables   map[string]*table
	failures map[string][]error
	calls    map[string]int
}

type table struct {
	hashKey string
	indexes map[string]string // index name -> indexed attribute
	items   map[string]map[string]types.AttributeValue
}

// NewBackend creates an empty in-memory backend.
func NewBackend() *Backend {
	return &Backend{
		tables:   make(map[string]*table),
		failures: make(map[string][]error),
		calls:    make(map[string]int),
	}
}

// FailNext queues err to be returned by the next call to the named operation
// ("GetItem", "Query", ...). Multiple queued errors are consumed in order.
func (b *Backend) FailNext(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[op] = append(b.failures[op], err)
}

// Calls reports how many times the named operation was invoked, including
// calls that failed through FailNext.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// popFailure must be called with the lock held.
func (b *Backend) popFailure(op string) error {
	b.calls[op]++
	queue := b.failures[op]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	b.failures[op] = queue[1:]
	return err
}

func validationError(format string, args ...any) error {
	return &smithy.GenericAPIError{
		Code:    "ValidationException",
		Message: fmt.Sprintf(format, args...),
	}
}

// avKey renders an attribute value into a comparable string form.
func avKey(av types.AttributeValue) (string, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + v.Value, nil
	case *types.AttributeValueMemberN:
		return "N:" + v.Value, nil
	case *types.AttributeValueMemberB:
		return "B:" + base64.StdEncoding.EncodeToString(v.Value), nil
	case *types.AttributeValueMemberBOOL:
		return fmt.Sprintf("BOOL:%t", v.Value), nil
	case *types.AttributeValueMemberNULL:
		return "NULL", nil
	default:
		return "", validationError("unsupported key attribute value %T", av)
	}
}

func avEqual(a, b types.AttributeValue) bool {
	ka, errA := avKey(a)
	kb, errB := avKey(b)
	return errA == nil && errB == nil && ka == kb
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

// resolve translates an expression placeholder ("#0") or plain name through
// the expression attribute name map.
func resolve(name string, names map[string]string) string {
	if actual, ok := names[name]; ok {
		return actual
	}
	return name
}

// condition is an equality predicate parsed from an expression string.
type condition struct {
	attribute string
	value     types.AttributeValue
}

// parseEquality parses expressions of the form "#a = :v" or
// "#a = :v AND #b = :w" as produced by the SDK expression builder.
func parseEquality(expr string, names map[string]string, values map[string]types.AttributeValue) ([]condition, error) {
	var conds []condition
	for _, clause := range strings.Split(expr, " AND ") {
		parts := strings.Split(strings.TrimSpace(clause), " = ")
		if len(parts) != 2 {
			return nil, validationError("unsupported expression clause %q", clause)
		}
		value, ok := values[strings.TrimSpace(parts[1])]
		if !ok {
			return nil, validationError("expression value %q not supplied", parts[1])
		}
		conds = append(conds, condition{
			attribute: resolve(strings.TrimSpace(parts[0]), names),
			value:     value,
		})
	}
	return conds, nil
}

func matches(item map[string]types.AttributeValue, conds []condition) bool {
	for _, c := range conds {
		av, ok := item[c.attribute]
		if !ok || !avEqual(av, c.value) {
			return false
		}
	}
	return true
}

// lookupTable must be called with the lock held.
func (b *Backend) lookupTable(name *string) (*table, error) {
	if name == nil {
		return nil, validationError("table name is required")
	}
	t, ok := b.tables[*name]
	if !ok {
		return nil, &types.ResourceNotFoundException{}
	}
	return t, nil
}

func (b *Backend) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.popFailure("CreateTable"); err != nil {
		return nil, err
	}
	if params.TableName == nil {
		return nil, validationError("table name is required")
	}
	if _, exists := b.tables[*params.TableName]; exists {
		return nil, &types.ResourceInUseException{}
	}
	if len(params.KeySchema) == 0 {
		return nil, validationError("key schema is required")
	}

	t := &table{
		hashKey: *params.KeySchema[0].AttributeName,
		indexes: make(map[string]string),
		items:   make(map[string]map[string]types.AttributeValue),
	}
	for _, gsi := range params.GlobalSecondaryIndexes {
		if gsi.IndexName == nil || len(gsi.KeySchema) == 0 {
			return nil, validationError("malformed secondary index")
		}
		t.indexes[*gsi.IndexName] = *gsi.KeySchema[0].AttributeName
	}
	b.tables[*params.TableName] = t

	return &dynamodb.CreateTableOutput{
		TableDescription: &types.TableDescription{
			TableName:   params.TableName,
			TableStatus: types.TableStatusCreating,
		},
	}, nil
}

func (b *Backend) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.popFailure("DescribeTable"); err != nil {
		return nil, err
	}
	if _, err := b.lookupTable(params.TableName); err != nil {
		return nil, err
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:   params.TableName,
			TableStatus: types.TableStatusActive,
		},
	}, nil
}

func (t *table) itemKey(item map[string]types.AttributeValue) (string, error) {
	av, ok := item[t.hashKey]
	if !ok {
		return "", validationError("missing key attribute %q", t.hashKey)
	}
	return avKey(av)
}

func (b *Backend) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.popFailure("GetItem"); err != nil {
		return nil, err
	}
	t, err := b.lookupTable(params.TableName)
	if err != nil {
		return nil, err
	}
	key, err := t.itemKey(params.Key)
	if err != nil {
		return nil, err
	}

	item, ok := t.items[key]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (b *Backend) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.popFailure("PutItem"); err != nil {
		return nil, err
	}
	t, err := b.lookupTable(params.TableName)
	if err != nil {
		return nil, err
	}
	key, err := t.itemKey(params.Item)
	if err != nil {
		return nil, err
	}

	t.items[key] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (b *Backend) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.popFailure("UpdateItem"); err != nil {
		return nil, err
	}
	t, err := b.lookupTable(params.TableName)
	if err != nil {
		return nil, err
	}
	key, err := t.itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	if params.UpdateExpression == nil {
		return nil, validationError("update expression is required")
	}
	expr := strings.TrimSpace(*params.UpdateExpression)
	if !strings.HasPrefix(expr, "SET ") {
		return nil, validationError("unsupported update expression %q", expr)
	}

	item, ok := t.items[key]
	if !ok {
		// Upsert semantics: start from the key attributes.
		item = copyItem(params.Key)
	} else {
		item = copyItem(item)
	}

	for _, clause := range strings.Split(strings.TrimPrefix(expr, "SET "), ", ") {
		parts := strings.Split(clause, " = ")
		if len(parts) != 2 {
			return nil, validationError("unsupported update clause %q", clause)
		}
		name := resolve(strings.TrimSpace(parts[0]), params.ExpressionAttributeNames)
		value, ok := params.ExpressionAttributeValues[strings.TrimSpace(parts[1])]
		if !ok {
			return nil, validationError("expression value %q not supplied", parts[1])
		}
		if name == t.hashKey {
			return nil, validationError("cannot update key attribute %q", name)
		}
		item[name] = value
	}
	t.items[key] = item

	out := &dynamodb.UpdateItemOutput{}
	if params.ReturnValues == types.ReturnValueAllNew {
		out.Attributes = copyItem(item)
	}
	return out, nil
}

// sortedKeys returns the item keys in deterministic order so paging cursors
// are stable.
func (t *table) sortedKeys() []string {
	keys := make([]string, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// pageThrough applies Limit/ExclusiveStartKey paging over the matching items.
func (t *table) pageThrough(match func(map[string]types.AttributeValue) bool, limit *int32, startKey map[string]types.AttributeValue) ([]map[string]types.AttributeValue, map[string]types.AttributeValue, error) {
	start := ""
	if startKey != nil {
		cursor, err := t.itemKey(startKey)
		if err != nil {
			return nil, nil, err
		}
		start = cursor
	}

	var out []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	for _, k := range t.sortedKeys() {
		if start != "" && k <= start {
			continue
		}
		item := t.items[k]
		if limit != nil && int32(len(out)) == *limit {
			// More items remain past the page boundary.
			return out, lastKey, nil
		}
		if match(item) {
			out = append(out, copyItem(item))
		}
		lastKey = map[string]types.AttributeValue{t.hashKey: item[t.hashKey]}
	}
	return out, nil, nil
}

func (b *Backend) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.popFailure("Query"); err != nil {
		return nil, err
	}
	t, err := b.lookupTable(params.TableName)
	if err != nil {
		return nil, err
	}
	if params.KeyConditionExpression == nil {
		return nil, validationError("key condition expression is required")
	}

	keyAttr := t.hashKey
	if params.IndexName != nil {
		attr, ok := t.indexes[*params.IndexName]
		if !ok {
			return nil, validationError("index %q does not exist", *params.IndexName)
		}
		keyAttr = attr
	}

	keyConds, err := parseEquality(*params.KeyConditionExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	for _, c := range keyConds {
		if c.attribute != keyAttr {
			return nil, validationError("key condition targets %q, expected %q", c.attribute, keyAttr)
		}
	}

	var filterConds []condition
	if params.FilterExpression != nil {
		filterConds, err = parseEquality(*params.FilterExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
		if err != nil {
			return nil, err
		}
	}

	items, lastKey, err := t.pageThrough(func(item map[string]types.AttributeValue) bool {
		return matches(item, keyConds) && matches(item, filterConds)
	}, params.Limit, params.ExclusiveStartKey)
	if err != nil {
		return nil, err
	}

	return &dynamodb.QueryOutput{
		Items:            items,
		Count:            int32(len(items)),
		LastEvaluatedKey: lastKey,
	}, nil
}

func (b *Backend) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.popFailure("Scan"); err != nil {
		return nil, err
	}
	t, err := b.lookupTable(params.TableName)
	if err != nil {
		return nil, err
	}

	items, lastKey, err := t.pageThrough(func(map[string]types.AttributeValue) bool {
		return true
	}, params.Limit, params.ExclusiveStartKey)
	if err != nil {
		return nil, err
	}

	return &dynamodb.ScanOutput{
		Items:            items,
		Count:            int32(len(items)),
		LastEvaluatedKey: lastKey,
	}, nil
}
