/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/suparena/tablestore/errors"
)

// mapError translates a raw DynamoDB failure into the tablestore taxonomy,
// attaching the operation and table name so the caller can diagnose the
// failure without re-deriving the request.
func mapError(op, table string, err error) error {
	var (
		throughput *types.ProvisionedThroughputExceededException
		reqLimit   *types.RequestLimitExceeded
		limit      *types.LimitExceededException
		internal   *types.InternalServerError
		notFound   *types.ResourceNotFoundException
	)

	switch {
	case stderrors.As(err, &throughput), stderrors.As(err, &reqLimit), stderrors.As(err, &limit):
		return errors.NewThrottledError(op, table, err)
	case stderrors.As(err, &internal):
		return errors.NewBackendUnavailableError(op, table, err)
	case stderrors.As(err, &notFound):
		return errors.NewValidationError("table", "table "+table+" does not exist; call EnsureTable first")
	}

	var api smithy.APIError
	if stderrors.As(err, &api) {
		switch api.ErrorCode() {
		case "ThrottlingException", "Throttling":
			return errors.NewThrottledError(op, table, err)
		case "ValidationException", "SerializationException":
			return errors.NewValidationError("", op+" on table "+table+": "+api.ErrorMessage())
		case "ServiceUnavailable", "RequestTimeout":
			return errors.NewBackendUnavailableError(op, table, err)
		}
	}

	// Connection resets, DNS failures and other transport errors surface
	// here without a service error code.
	return errors.NewBackendUnavailableError(op, table, err)
}
