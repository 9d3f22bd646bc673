/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package accessor_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/tablestore/accessor"
	"github.com/suparena/tablestore/datastore"
	"github.com/suparena/tablestore/datastore/testmodels"
	"github.com/suparena/tablestore/errors"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestNewStatusUnknownIndex(t *testing.T) {
	store := newStore(t, testmodels.Jobs())

	_, err := accessor.NewStatus(store, testmodels.Jobs(), "NoSuchIndex")
	require.Error(t, err)
	assert.True(t, errors.IsUnknownIndex(err))
}

func TestStatusUpdate(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	store := newStore(t, testmodels.Jobs())
	st, err := accessor.NewStatus(store, testmodels.Jobs(), "StatusIndex",
		accessor.WithClock(fixedClock(at)))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.Update(ctx, "job-1", "running"))

	rec, found, err := st.Table().Get(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "running", rec["Status"])
	assert.Equal(t, strfmt.DateTime(at).String(), rec["UpdatedAt"])
}

func TestStatusUpdateRefreshesTimestamp(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	clock := at
	store := newStore(t, testmodels.Jobs())
	st, err := accessor.NewStatus(store, testmodels.Jobs(), "StatusIndex",
		accessor.WithClock(func() time.Time { return clock }))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.Update(ctx, "job-1", "running"))

	clock = at.Add(time.Hour)
	require.NoError(t, st.Update(ctx, "job-1", "done"))

	rec, _, err := st.Table().Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "done", rec["Status"])
	assert.Equal(t, strfmt.DateTime(at.Add(time.Hour)).String(), rec["UpdatedAt"])
}

func TestStatusCustomUpdatedAttribute(t *testing.T) {
	store := newStore(t, testmodels.Jobs())
	st, err := accessor.NewStatus(store, testmodels.Jobs(), "StatusIndex",
		accessor.WithUpdatedAttribute("ModifiedAt"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.Update(ctx, "job-1", "running"))

	rec, _, err := st.Table().Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Contains(t, rec, "ModifiedAt")
	assert.NotContains(t, rec, "UpdatedAt")
}

func drainIDs(t *testing.T, it datastore.Iterator) []string {
	t.Helper()
	var ids []string
	ctx := context.Background()
	for it.Next(ctx) {
		ids = append(ids, it.Record()["JobID"].(string))
	}
	require.NoError(t, it.Err())
	return ids
}

func TestStatusByStatus(t *testing.T) {
	store := newStore(t, testmodels.Jobs())
	st, err := accessor.NewStatus(store, testmodels.Jobs(), "StatusIndex")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.Update(ctx, "job-1", "running"))
	require.NoError(t, st.Update(ctx, "job-2", "done"))
	require.NoError(t, st.Update(ctx, "job-3", "running"))

	it, err := st.ByStatus(ctx, "running")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"job-1", "job-3"}, drainIDs(t, it))

	it, err = st.ByStatus(ctx, "failed")
	require.NoError(t, err)
	assert.Empty(t, drainIDs(t, it))
}

func TestStatusFilterByPrimary(t *testing.T) {
	store := newStore(t, testmodels.Jobs())
	st, err := accessor.NewStatus(store, testmodels.Jobs(), "StatusIndex")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.Update(ctx, "job-1", "running"))

	// Status matches: the record comes back.
	it, err := st.FilterByPrimary(ctx, "job-1", "running")
	require.NoError(t, err)
	assert.Equal(t, []string{"job-1"}, drainIDs(t, it))

	// Status differs: the filter removes it.
	it, err = st.FilterByPrimary(ctx, "job-1", "done")
	require.NoError(t, err)
	assert.Empty(t, drainIDs(t, it))
}
