/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/tablestore/schema"
	"github.com/suparena/tablestore/storagemodels"
)

// TableStore is the storage-client contract consumed by accessors. One
// implementation owns one backend session; implementations must be safe for
// concurrent callers.
type TableStore interface {
	// EnsureTable idempotently creates the table described by the schema if
	// it is absent and blocks until the table reports ready. A table that
	// already exists is success, not an error.
	EnsureTable(ctx context.Context, d *schema.Descriptor) error

	// GetItem fetches one record by primary key. An absent key is reported
	// through found == false, never through a nil-versus-empty record.
	GetItem(ctx context.Context, tableName string, key any) (rec storagemodels.Record, found bool, err error)

	// PutItem is an unconditional upsert with full-replace semantics:
	// attributes already stored but absent from rec are destroyed. Callers
	// needing a partial update must use UpdateItem.
	PutItem(ctx context.Context, tableName string, rec storagemodels.Record) error

	// UpdateItem applies a partial, attribute-level update and returns the
	// record as stored afterwards. The record is created when the key did
	// not previously exist.
	UpdateItem(ctx context.Context, tableName string, key any, upd storagemodels.Update) (storagemodels.Record, error)

	// Query returns a lazy, finite, non-restartable sequence of matching
	// records. With an empty params.IndexName the primary key is queried;
	// otherwise the name must refer to a secondary index registered on the
	// table's schema. Result ordering is backend-defined.
	Query(ctx context.Context, tableName string, params *storagemodels.QueryParams) (Iterator, error)
}

// Diagnostic extends TableStore with operations that are too expensive for
// production read paths. Scan is O(table size); production call sites should
// accept TableStore so they cannot reach it by accident.
type Diagnostic interface {
	TableStore

	// Scan returns every record in the table. Diagnostic and test use only.
	Scan(ctx context.Context, tableName string) (Iterator, error)
}

// Iterator is a pull-based sequence of records in bufio.Scanner style:
//
//	it, err := store.Query(ctx, "jobs", params)
//	for it.Next(ctx) {
//	    rec := it.Record()
//	    ...
//	}
//	if err := it.Err(); err != nil {
//	    ...
//	}
//
// Iterators are finite, non-restartable, and not safe for concurrent use.
type Iterator interface {
	// Next advances to the next record, fetching further pages from the
	// backend as needed. It returns false when the sequence is exhausted or
	// a fetch failed; the two are distinguished by Err.
	Next(ctx context.Context) bool

	// Record returns the record produced by the last successful Next.
	Record() storagemodels.Record

	// Err returns the first error encountered while iterating, if any.
	Err() error
}
