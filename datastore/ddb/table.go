/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/tablestore/errors"
	"github.com/suparena/tablestore/schema"
)

func scalarType(t schema.AttributeType) types.ScalarAttributeType {
	switch t {
	case schema.AttributeNumber:
		return types.ScalarAttributeTypeN
	case schema.AttributeBinary:
		return types.ScalarAttributeTypeB
	default:
		return types.ScalarAttributeTypeS
	}
}

func projectionType(p schema.Projection) types.ProjectionType {
	switch p {
	case schema.ProjectKeysOnly:
		return types.ProjectionTypeKeysOnly
	case schema.ProjectInclude:
		return types.ProjectionTypeInclude
	default:
		return types.ProjectionTypeAll
	}
}

// createTableInput translates a schema descriptor into the backend request.
func createTableInput(d *schema.Descriptor) *dynamodb.CreateTableInput {
	attrDefs := []types.AttributeDefinition{{
		AttributeName: aws.String(d.HashKey),
		AttributeType: scalarType(d.HashKeyType),
	}}

	provisioned := d.ReadCapacity > 0 || d.WriteCapacity > 0
	var throughput *types.ProvisionedThroughput
	if provisioned {
		throughput = &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(d.ReadCapacity),
			WriteCapacityUnits: aws.Int64(d.WriteCapacity),
		}
	}

	var gsis []types.GlobalSecondaryIndex
	for _, idx := range d.Indexes {
		attrDefs = append(attrDefs, types.AttributeDefinition{
			AttributeName: aws.String(idx.Attribute),
			AttributeType: scalarType(idx.Type),
		})

		projection := &types.Projection{ProjectionType: projectionType(idx.Projection)}
		if idx.Projection == schema.ProjectInclude {
			projection.NonKeyAttributes = idx.NonKeyAttributes
		}

		gsi := types.GlobalSecondaryIndex{
			IndexName: aws.String(idx.Name),
			KeySchema: []types.KeySchemaElement{{
				AttributeName: aws.String(idx.Attribute),
				KeyType:       types.KeyTypeHash,
			}},
			Projection: projection,
		}
		if provisioned {
			gsi.ProvisionedThroughput = throughput
		}
		gsis = append(gsis, gsi)
	}

	input := &dynamodb.CreateTableInput{
		TableName:            aws.String(d.TableName),
		AttributeDefinitions: attrDefs,
		KeySchema: []types.KeySchemaElement{{
			AttributeName: aws.String(d.HashKey),
			KeyType:       types.KeyTypeHash,
		}},
		GlobalSecondaryIndexes: gsis,
	}
	if provisioned {
		input.BillingMode = types.BillingModeProvisioned
		input.ProvisionedThroughput = throughput
	} else {
		input.BillingMode = types.BillingModePayPerRequest
	}
	return input
}

// EnsureTable idempotently creates the table described by d and blocks until
// it reports ready. "Already exists" is success; every other failure
// propagates. The wait is bounded by the store's provision wait, after which
// a TableProvisionError is returned.
func (s *Store) EnsureTable(ctx context.Context, d *schema.Descriptor) error {
	if d == nil {
		return errors.NewValidationError("descriptor", "descriptor is nil")
	}
	if err := d.Validate(); err != nil {
		return err
	}

	start := time.Now()

	err := s.do(ctx, "CreateTable", d.TableName, func(ctx context.Context) error {
		_, callErr := s.api.CreateTable(ctx, createTableInput(d))
		var inUse *types.ResourceInUseException
		if stderrors.As(callErr, &inUse) {
			s.logger.Debug("table already exists", zap.String("table", d.TableName))
			return nil
		}
		return callErr
	})
	if err != nil {
		return err
	}

	// Poll until the table transitions to ACTIVE. The waiter backs off
	// between polls and gives up at the overall provision wait.
	waiter := dynamodb.NewTableExistsWaiter(s.api, func(o *dynamodb.TableExistsWaiterOptions) {
		o.MinDelay = 2 * time.Second
		o.MaxDelay = 20 * time.Second
	})
	input := &dynamodb.DescribeTableInput{TableName: aws.String(d.TableName)}
	if err := waiter.Wait(ctx, input, s.provisionWait); err != nil {
		return errors.NewTableProvisionError(d.TableName, time.Since(start), err)
	}

	s.logger.Info("table ready",
		zap.String("table", d.TableName),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
