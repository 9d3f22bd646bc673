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

	"github.com/suparena/tablestore/errors"
	"github.com/suparena/tablestore/schema"
	"github.com/suparena/tablestore/storagemodels"
)

// primaryKey marshals a caller-supplied key value into the table's key map.
func primaryKey(d *schema.Descriptor, key any) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.Marshal(key)
	if err != nil {
		return nil, errors.NewValidationError(d.HashKey, fmt.Sprintf("cannot marshal key: %v", err))
	}
	if _, isNull := av.(*types.AttributeValueMemberNULL); isNull {
		return nil, errors.NewValidationError(d.HashKey, "key must not be nil")
	}
	return map[string]types.AttributeValue{d.HashKey: av}, nil
}

// GetItem fetches one record by primary key. The second return value reports
// presence; an absent key is not an error.
func (s *Store) GetItem(ctx context.Context, tableName string, key any) (storagemodels.Record, bool, error) {
	d, err := s.registry.Lookup(tableName)
	if err != nil {
		return nil, false, err
	}
	keyMap, err := primaryKey(d, key)
	if err != nil {
		return nil, false, err
	}

	var out *dynamodb.GetItemOutput
	err = s.do(ctx, "GetItem", tableName, func(ctx context.Context) error {
		var callErr error
		out, callErr = s.api.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(tableName),
			Key:       keyMap,
		})
		return callErr
	})
	if err != nil {
		return nil, false, err
	}
	if out.Item == nil {
		return nil, false, nil
	}

	rec := make(storagemodels.Record, len(out.Item))
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal item from table %q: %w", tableName, err)
	}

	s.logger.Debug("got item", zap.String("table", tableName))
	return rec, true, nil
}

// PutItem is an unconditional upsert. The full item at the key is replaced:
// attributes stored previously but absent from rec are destroyed. The record
// must carry the table's hash key attribute.
func (s *Store) PutItem(ctx context.Context, tableName string, rec storagemodels.Record) error {
	d, err := s.registry.Lookup(tableName)
	if err != nil {
		return err
	}
	if _, ok := rec[d.HashKey]; !ok {
		return errors.NewValidationError(d.HashKey, "record is missing the hash key attribute")
	}

	item, err := attributevalue.MarshalMap(map[string]any(rec))
	if err != nil {
		return errors.NewValidationError("", fmt.Sprintf("cannot marshal record: %v", err))
	}

	err = s.do(ctx, "PutItem", tableName, func(ctx context.Context) error {
		_, callErr := s.api.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(tableName),
			Item:      item,
		})
		return callErr
	})
	if err != nil {
		return err
	}

	s.logger.Debug("put item", zap.String("table", tableName))
	return nil
}

// UpdateItem applies a partial, attribute-level update and returns the
// record as stored afterwards. A key that does not exist yet is created. The
// update may not touch the hash key attribute.
func (s *Store) UpdateItem(ctx context.Context, tableName string, key any, upd storagemodels.Update) (storagemodels.Record, error) {
	d, err := s.registry.Lookup(tableName)
	if err != nil {
		return nil, err
	}
	if len(upd.Set) == 0 {
		return nil, errors.NewValidationError("update", "no attribute assignments provided")
	}
	if _, ok := upd.Set[d.HashKey]; ok {
		return nil, errors.NewValidationError(d.HashKey, "update may not assign the hash key attribute")
	}
	keyMap, err := primaryKey(d, key)
	if err != nil {
		return nil, err
	}

	var update expression.UpdateBuilder
	for name, value := range upd.Set {
		update = update.Set(expression.Name(name), expression.Value(value))
	}
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, errors.NewValidationError("update", fmt.Sprintf("cannot build update expression: %v", err))
	}

	var out *dynamodb.UpdateItemOutput
	err = s.do(ctx, "UpdateItem", tableName, func(ctx context.Context) error {
		var callErr error
		out, callErr = s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(tableName),
			Key:                       keyMap,
			UpdateExpression:          expr.Update(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ReturnValues:              types.ReturnValueAllNew,
		})
		return callErr
	})
	if err != nil {
		return nil, err
	}

	rec := make(storagemodels.Record, len(out.Attributes))
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated item from table %q: %w", tableName, err)
	}

	s.logger.Debug("updated item",
		zap.String("table", tableName),
		zap.Int("attributes", len(upd.Set)))
	return rec, nil
}
