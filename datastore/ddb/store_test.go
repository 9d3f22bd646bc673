/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb_test

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/tablestore"
	"github.com/suparena/tablestore/datastore"
	"github.com/suparena/tablestore/datastore/ddb"
	"github.com/suparena/tablestore/datastore/mock"
	"github.com/suparena/tablestore/datastore/testmodels"
	"github.com/suparena/tablestore/errors"
	"github.com/suparena/tablestore/storagemodels"
)

// fastRetry keeps retry tests out of real-time backoff territory.
func fastRetry() ddb.RetryConfig {
	rc := ddb.DefaultRetryConfig()
	rc.BaseDelay = time.Millisecond
	rc.MaxDelay = 5 * time.Millisecond
	return rc
}

// newJobsStore provisions a store and backend with the jobs table ready.
func newJobsStore(t *testing.T, opts ...ddb.Option) (*ddb.Store, *mock.Backend) {
	t.Helper()

	registry := tablestore.NewRegistry()
	require.NoError(t, registry.Register(testmodels.Jobs()))

	backend := mock.NewBackend()
	opts = append([]ddb.Option{ddb.WithRetryConfig(fastRetry())}, opts...)
	store := ddb.New(backend, registry, opts...)

	require.NoError(t, store.EnsureTable(context.Background(), testmodels.Jobs()))
	return store, backend
}

func TestEnsureTable(t *testing.T) {
	t.Run("Idempotent", func(t *testing.T) {
		store, backend := newJobsStore(t)

		// A second call must succeed even though the table exists.
		require.NoError(t, store.EnsureTable(context.Background(), testmodels.Jobs()))
		assert.Equal(t, 2, backend.Calls("CreateTable"))
	})

	t.Run("InvalidDescriptorRejected", func(t *testing.T) {
		registry := tablestore.NewRegistry()
		store := ddb.New(mock.NewBackend(), registry)

		err := store.EnsureTable(context.Background(), nil)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("RetriesTransientCreateFailure", func(t *testing.T) {
		registry := tablestore.NewRegistry()
		require.NoError(t, registry.Register(testmodels.Jobs()))

		backend := mock.NewBackend()
		store := ddb.New(backend, registry, ddb.WithRetryConfig(fastRetry()))

		backend.FailNext("CreateTable", &types.InternalServerError{})

		require.NoError(t, store.EnsureTable(context.Background(), testmodels.Jobs()))
		assert.Equal(t, 2, backend.Calls("CreateTable"),
			"table creation must retry transient failures like every other call")
	})

	t.Run("ProvisionTimeout", func(t *testing.T) {
		registry := tablestore.NewRegistry()
		require.NoError(t, registry.Register(testmodels.Jobs()))

		backend := mock.NewBackend()
		store := ddb.New(backend, registry, ddb.WithProvisionWait(10*time.Millisecond))

		// Report "already exists" without creating the table, so the
		// readiness poll never sees it and the wait deadline expires.
		backend.FailNext("CreateTable", &types.ResourceInUseException{})

		err := store.EnsureTable(context.Background(), testmodels.Jobs())
		require.Error(t, err)
		assert.True(t, errors.IsTableNotReady(err), "expected a provision error, got %v", err)

		var provErr *errors.TableProvisionError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "jobs", provErr.Table)
		assert.Greater(t, provErr.Elapsed, time.Duration(0))
	})
}

func TestPutGetRoundTrip(t *testing.T) {
	store, _ := newJobsStore(t)
	ctx := context.Background()

	rec := storagemodels.Record{
		"JobID":  "job-1",
		"Status": "pending",
		"Owner":  "alice",
	}
	require.NoError(t, store.PutItem(ctx, "jobs", rec))

	got, found, err := store.GetItem(ctx, "jobs", "job-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "pending", got["Status"])
	assert.Equal(t, "alice", got["Owner"])
}

func TestGetItemMissing(t *testing.T) {
	store, _ := newJobsStore(t)

	rec, found, err := store.GetItem(context.Background(), "jobs", "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rec)
}

func TestUnknownTable(t *testing.T) {
	store, _ := newJobsStore(t)

	_, _, err := store.GetItem(context.Background(), "orders", "o-1")
	assert.True(t, errors.IsUnknownSchema(err))

	err = store.PutItem(context.Background(), "orders", storagemodels.Record{"ID": "o-1"})
	assert.True(t, errors.IsUnknownSchema(err))
}

func TestPutItemValidation(t *testing.T) {
	store, _ := newJobsStore(t)

	err := store.PutItem(context.Background(), "jobs", storagemodels.Record{"Status": "pending"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err), "record without hash key must be rejected, got %v", err)
}

func TestGetItemNilKey(t *testing.T) {
	store, _ := newJobsStore(t)

	_, _, err := store.GetItem(context.Background(), "jobs", nil)
	assert.True(t, errors.IsValidation(err))
}

func TestPutItemReplacesWholeRecord(t *testing.T) {
	store, _ := newJobsStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutItem(ctx, "jobs", storagemodels.Record{
		"JobID": "job-1", "Status": "pending", "Owner": "alice",
	}))
	require.NoError(t, store.PutItem(ctx, "jobs", storagemodels.Record{
		"JobID": "job-1", "Status": "done",
	}))

	got, found, err := store.GetItem(ctx, "jobs", "job-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "done", got["Status"])
	_, hasOwner := got["Owner"]
	assert.False(t, hasOwner, "put must replace the whole item")
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesMissingRecord", func(t *testing.T) {
		store, _ := newJobsStore(t)

		got, err := store.UpdateItem(ctx, "jobs", "job-9", storagemodels.Update{
			Set: storagemodels.Record{"Status": "queued"},
		})
		require.NoError(t, err)
		assert.Equal(t, "job-9", got["JobID"])
		assert.Equal(t, "queued", got["Status"])
	})

	t.Run("PreservesOtherAttributes", func(t *testing.T) {
		store, _ := newJobsStore(t)

		require.NoError(t, store.PutItem(ctx, "jobs", storagemodels.Record{
			"JobID": "job-1", "Status": "pending", "Owner": "alice",
		}))

		got, err := store.UpdateItem(ctx, "jobs", "job-1", storagemodels.Update{
			Set: storagemodels.Record{"Status": "done"},
		})
		require.NoError(t, err)
		assert.Equal(t, "done", got["Status"])
		assert.Equal(t, "alice", got["Owner"])
	})

	t.Run("Idempotent", func(t *testing.T) {
		store, _ := newJobsStore(t)

		upd := storagemodels.Update{Set: storagemodels.Record{"Status": "done"}}
		first, err := store.UpdateItem(ctx, "jobs", "job-1", upd)
		require.NoError(t, err)
		second, err := store.UpdateItem(ctx, "jobs", "job-1", upd)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("RejectsEmptyUpdate", func(t *testing.T) {
		store, _ := newJobsStore(t)

		_, err := store.UpdateItem(ctx, "jobs", "job-1", storagemodels.Update{})
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("RejectsHashKeyAssignment", func(t *testing.T) {
		store, _ := newJobsStore(t)

		_, err := store.UpdateItem(ctx, "jobs", "job-1", storagemodels.Update{
			Set: storagemodels.Record{"JobID": "job-2"},
		})
		assert.True(t, errors.IsValidation(err))
	})
}

func TestRetryOnThrottle(t *testing.T) {
	store, backend := newJobsStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutItem(ctx, "jobs", storagemodels.Record{
		"JobID": "job-1", "Status": "pending",
	}))

	calls := backend.Calls("GetItem")
	backend.FailNext("GetItem", &types.ProvisionedThroughputExceededException{})

	_, found, err := store.GetItem(ctx, "jobs", "job-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, calls+2, backend.Calls("GetItem"), "throttle must be retried")
}

func TestRetryExhaustion(t *testing.T) {
	store, backend := newJobsStore(t)

	for i := 0; i < fastRetry().MaxAttempts; i++ {
		backend.FailNext("GetItem", &types.ProvisionedThroughputExceededException{})
	}

	_, _, err := store.GetItem(context.Background(), "jobs", "job-1")
	require.Error(t, err)
	assert.True(t, errors.IsThrottled(err), "expected a throttled error, got %v", err)
	assert.Equal(t, fastRetry().MaxAttempts, backend.Calls("GetItem"))
}

func TestNoRetryOnCallerError(t *testing.T) {
	store, backend := newJobsStore(t)

	backend.FailNext("GetItem", &smithy.GenericAPIError{
		Code:    "ValidationException",
		Message: "injected",
	})

	_, _, err := store.GetItem(context.Background(), "jobs", "job-1")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, 1, backend.Calls("GetItem"), "caller errors must not be retried")
}

func TestBackendUnavailable(t *testing.T) {
	store, backend := newJobsStore(t)

	for i := 0; i < fastRetry().MaxAttempts; i++ {
		backend.FailNext("GetItem", &types.InternalServerError{})
	}

	_, _, err := store.GetItem(context.Background(), "jobs", "job-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBackendUnavailable)
}

func putJobs(t *testing.T, store *ddb.Store, jobs ...storagemodels.Record) {
	t.Helper()
	for _, rec := range jobs {
		require.NoError(t, store.PutItem(context.Background(), "jobs", rec))
	}
}

func TestQueryPrimaryKey(t *testing.T) {
	store, _ := newJobsStore(t)
	ctx := context.Background()

	putJobs(t, store,
		storagemodels.Record{"JobID": "job-1", "Status": "pending"},
		storagemodels.Record{"JobID": "job-2", "Status": "done"},
	)

	it, err := store.Query(ctx, "jobs", &storagemodels.QueryParams{
		KeyCondition: storagemodels.Condition{Attribute: "JobID", Value: "job-1"},
	})
	require.NoError(t, err)

	var got []storagemodels.Record
	for it.Next(ctx) {
		got = append(got, it.Record())
	}
	require.NoError(t, it.Err())
	require.Len(t, got, 1)
	assert.Equal(t, "pending", got[0]["Status"])
}

func TestQuerySecondaryIndex(t *testing.T) {
	store, _ := newJobsStore(t)
	ctx := context.Background()

	putJobs(t, store,
		storagemodels.Record{"JobID": "job-1", "Status": "pending"},
		storagemodels.Record{"JobID": "job-2", "Status": "done"},
		storagemodels.Record{"JobID": "job-3", "Status": "pending"},
	)

	it, err := store.Query(ctx, "jobs", &storagemodels.QueryParams{
		IndexName:    "StatusIndex",
		KeyCondition: storagemodels.Condition{Attribute: "Status", Value: "pending"},
	})
	require.NoError(t, err)

	ids := map[string]bool{}
	for it.Next(ctx) {
		ids[it.Record()["JobID"].(string)] = true
	}
	require.NoError(t, it.Err())
	assert.Equal(t, map[string]bool{"job-1": true, "job-3": true}, ids)
}

func TestQueryWithFilter(t *testing.T) {
	store, _ := newJobsStore(t)
	ctx := context.Background()

	putJobs(t, store,
		storagemodels.Record{"JobID": "job-1", "Status": "pending", "Owner": "alice"},
		storagemodels.Record{"JobID": "job-2", "Status": "pending", "Owner": "bob"},
	)

	it, err := store.Query(ctx, "jobs", &storagemodels.QueryParams{
		IndexName:    "StatusIndex",
		KeyCondition: storagemodels.Condition{Attribute: "Status", Value: "pending"},
		Filter:       &storagemodels.Condition{Attribute: "Owner", Value: "bob"},
	})
	require.NoError(t, err)

	var got []storagemodels.Record
	for it.Next(ctx) {
		got = append(got, it.Record())
	}
	require.NoError(t, it.Err())
	require.Len(t, got, 1)
	assert.Equal(t, "job-2", got[0]["JobID"])
}

func TestQueryValidation(t *testing.T) {
	store, _ := newJobsStore(t)
	ctx := context.Background()

	t.Run("UnknownIndex", func(t *testing.T) {
		_, err := store.Query(ctx, "jobs", &storagemodels.QueryParams{
			IndexName:    "OwnerIndex",
			KeyCondition: storagemodels.Condition{Attribute: "Owner", Value: "alice"},
		})
		require.Error(t, err)
		assert.True(t, errors.IsUnknownIndex(err))
	})

	t.Run("MismatchedKeyAttribute", func(t *testing.T) {
		_, err := store.Query(ctx, "jobs", &storagemodels.QueryParams{
			KeyCondition: storagemodels.Condition{Attribute: "Status", Value: "pending"},
		})
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("NilParams", func(t *testing.T) {
		_, err := store.Query(ctx, "jobs", nil)
		assert.True(t, errors.IsValidation(err))
	})
}

func TestQueryPagination(t *testing.T) {
	store, backend := newJobsStore(t)
	ctx := context.Background()

	for _, id := range []string{"job-1", "job-2", "job-3", "job-4", "job-5"} {
		putJobs(t, store, storagemodels.Record{"JobID": id, "Status": "pending"})
	}

	before := backend.Calls("Query")
	it, err := store.Query(ctx, "jobs", &storagemodels.QueryParams{
		IndexName:    "StatusIndex",
		KeyCondition: storagemodels.Condition{Attribute: "Status", Value: "pending"},
		Limit:        2,
	})
	require.NoError(t, err)
	assert.Equal(t, before, backend.Calls("Query"), "query must not touch the backend before the first Next")

	count := 0
	for it.Next(ctx) {
		count++
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 5, count)
	assert.Greater(t, backend.Calls("Query")-before, 1, "limit 2 over 5 items must take multiple pages")

	// A drained iterator stays drained.
	assert.False(t, it.Next(ctx))
}

func TestQueryIteratorError(t *testing.T) {
	store, backend := newJobsStore(t)
	ctx := context.Background()

	for i := 0; i < fastRetry().MaxAttempts; i++ {
		backend.FailNext("Query", &types.InternalServerError{})
	}

	it, err := store.Query(ctx, "jobs", &storagemodels.QueryParams{
		KeyCondition: storagemodels.Condition{Attribute: "JobID", Value: "job-1"},
	})
	require.NoError(t, err)

	assert.False(t, it.Next(ctx))
	require.Error(t, it.Err())
	assert.ErrorIs(t, it.Err(), errors.ErrBackendUnavailable)

	// The error is sticky.
	assert.False(t, it.Next(ctx))
}

func TestScan(t *testing.T) {
	store, _ := newJobsStore(t)
	ctx := context.Background()

	putJobs(t, store,
		storagemodels.Record{"JobID": "job-1", "Status": "pending"},
		storagemodels.Record{"JobID": "job-2", "Status": "done"},
		storagemodels.Record{"JobID": "job-3", "Status": "failed"},
	)

	var diag datastore.Diagnostic = store
	it, err := diag.Scan(ctx, "jobs")
	require.NoError(t, err)

	count := 0
	for it.Next(ctx) {
		count++
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 3, count)

	_, err = diag.Scan(ctx, "orders")
	assert.True(t, errors.IsUnknownSchema(err))
}
