/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/tablestore/datastore"
	"github.com/suparena/tablestore/errors"
	"github.com/suparena/tablestore/storagemodels"
)

// page is one backend response: a batch of raw items plus the cursor for the
// next call, nil when the sequence is exhausted.
type page struct {
	items   []map[string]types.AttributeValue
	lastKey map[string]types.AttributeValue
}

// fetchFunc retrieves the next page starting at the given cursor.
type fetchFunc func(ctx context.Context, startKey map[string]types.AttributeValue) (page, error)

// iterator is the pull-based record sequence returned by Query and Scan. It
// fetches pages lazily and cannot be restarted.
type iterator struct {
	fetch   fetchFunc
	current page
	idx     int
	done    bool
	rec     storagemodels.Record
	err     error
}

func (it *iterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	for {
		if it.idx < len(it.current.items) {
			item := it.current.items[it.idx]
			it.idx++

			rec := make(storagemodels.Record, len(item))
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				it.err = fmt.Errorf("failed to unmarshal item: %w", err)
				return false
			}
			it.rec = rec
			return true
		}
		if it.done {
			return false
		}

		next, err := it.fetch(ctx, it.current.lastKey)
		if err != nil {
			it.err = err
			return false
		}
		it.current = next
		it.idx = 0
		it.done = next.lastKey == nil
	}
}

func (it *iterator) Record() storagemodels.Record {
	return it.rec
}

func (it *iterator) Err() error {
	return it.err
}

// Query returns a lazy sequence of the records matching params. With an empty
// params.IndexName the primary key is queried; otherwise the name must refer
// to a secondary index on the table's schema. Results arrive in
// backend-defined order.
func (s *Store) Query(ctx context.Context, tableName string, params *storagemodels.QueryParams) (datastore.Iterator, error) {
	d, err := s.registry.Lookup(tableName)
	if err != nil {
		return nil, err
	}
	if params == nil {
		return nil, errors.NewValidationError("params", "query parameters are required")
	}

	// The key condition must target the key attribute of whichever access
	// path was selected.
	keyAttr := d.HashKey
	if params.IndexName != "" {
		idx, ok := d.Index(params.IndexName)
		if !ok {
			return nil, errors.NewUnknownIndexError(tableName, params.IndexName)
		}
		keyAttr = idx.Attribute
	}
	if params.KeyCondition.Attribute != keyAttr {
		return nil, errors.NewValidationError("keyCondition",
			fmt.Sprintf("key condition targets %q but the queried key attribute is %q",
				params.KeyCondition.Attribute, keyAttr))
	}

	builder := expression.NewBuilder().WithKeyCondition(
		expression.Key(params.KeyCondition.Attribute).Equal(expression.Value(params.KeyCondition.Value)),
	)
	if params.Filter != nil {
		builder = builder.WithFilter(
			expression.Name(params.Filter.Attribute).Equal(expression.Value(params.Filter.Value)),
		)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, errors.NewValidationError("keyCondition", fmt.Sprintf("cannot build query expression: %v", err))
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          params.ScanIndexForward,
	}
	if params.Filter != nil {
		input.FilterExpression = expr.Filter()
	}
	if params.IndexName != "" {
		input.IndexName = aws.String(params.IndexName)
	}
	if params.Limit > 0 {
		input.Limit = aws.Int32(params.Limit)
	}

	s.logger.Debug("querying",
		zap.String("table", tableName),
		zap.String("index", params.IndexName))

	return &iterator{fetch: func(ctx context.Context, startKey map[string]types.AttributeValue) (page, error) {
		input.ExclusiveStartKey = startKey

		var out *dynamodb.QueryOutput
		err := s.do(ctx, "Query", tableName, func(ctx context.Context) error {
			var callErr error
			out, callErr = s.api.Query(ctx, input)
			return callErr
		})
		if err != nil {
			return page{}, err
		}
		return page{items: out.Items, lastKey: out.LastEvaluatedKey}, nil
	}}, nil
}

// Scan returns every record in the table. It reads the whole table and may
// be arbitrarily slow and costly, which is why it lives on the
// datastore.Diagnostic interface rather than the production TableStore
// surface. Diagnostic and test use only.
func (s *Store) Scan(ctx context.Context, tableName string) (datastore.Iterator, error) {
	if _, err := s.registry.Lookup(tableName); err != nil {
		return nil, err
	}

	s.logger.Debug("scanning", zap.String("table", tableName))

	return &iterator{fetch: func(ctx context.Context, startKey map[string]types.AttributeValue) (page, error) {
		var out *dynamodb.ScanOutput
		err := s.do(ctx, "Scan", tableName, func(ctx context.Context) error {
			var callErr error
			out, callErr = s.api.Scan(ctx, &dynamodb.ScanInput{
				TableName:         aws.String(tableName),
				ExclusiveStartKey: startKey,
			})
			return callErr
		})
		if err != nil {
			return page{}, err
		}
		return page{items: out.Items, lastKey: out.LastEvaluatedKey}, nil
	}}, nil
}

var (
	_ datastore.TableStore = (*Store)(nil)
	_ datastore.Diagnostic = (*Store)(nil)
)
