/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package accessor

import (
	"context"

	"github.com/suparena/tablestore/datastore"
	"github.com/suparena/tablestore/schema"
	"github.com/suparena/tablestore/storagemodels"
)

// Shaper is the capability extension point for specialized accessors: it may
// rewrite a record before a put and an update before it is applied. A Table
// without a shaper passes requests through unchanged.
type Shaper interface {
	// ShapePut returns the record to store for the given key. The hash key
	// attribute is stamped by the Table after shaping.
	ShapePut(key any, attrs storagemodels.Record) (storagemodels.Record, error)

	// ShapeUpdate returns the update to apply for the given key.
	ShapeUpdate(key any, upd storagemodels.Update) (storagemodels.Update, error)
}

// Table is the generic schema-bound accessor: CRUD and queries against one
// table, delegating backend calls to a datastore.TableStore. It holds no
// mutable state and is safe for concurrent use.
type Table struct {
	store  datastore.TableStore
	desc   *schema.Descriptor
	shaper Shaper
}

// Option configures a Table.
type Option func(*Table)

// WithShaper installs a record/update shaping strategy.
func WithShaper(sh Shaper) Option {
	return func(t *Table) { t.shaper = sh }
}

// New binds an accessor to one schema descriptor.
func New(store datastore.TableStore, desc *schema.Descriptor, opts ...Option) *Table {
	t := &Table{store: store, desc: desc}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Descriptor returns the schema the accessor is bound to.
func (t *Table) Descriptor() *schema.Descriptor {
	return t.desc
}

// Get fetches the record stored under key. Absence is reported through the
// second return value, not through an error.
func (t *Table) Get(ctx context.Context, key any) (storagemodels.Record, bool, error) {
	return t.store.GetItem(ctx, t.desc.TableName, key)
}

// Put stores attrs under key, always stamping the hash key attribute into
// the stored record. Full-replace semantics: attributes already stored but
// absent from attrs are destroyed. Use Update for partial writes.
func (t *Table) Put(ctx context.Context, key any, attrs storagemodels.Record) error {
	rec := make(storagemodels.Record, len(attrs)+1)
	for k, v := range attrs {
		rec[k] = v
	}

	if t.shaper != nil {
		shaped, err := t.shaper.ShapePut(key, rec)
		if err != nil {
			return err
		}
		rec = shaped
	}

	rec[t.desc.HashKey] = key
	return t.store.PutItem(ctx, t.desc.TableName, rec)
}

// Exists reports whether a record is stored under key. This is a fetch
// followed by a presence test, not a single atomic step: between Exists and
// a subsequent Put another writer may create or delete the record.
func (t *Table) Exists(ctx context.Context, key any) (bool, error) {
	_, found, err := t.store.GetItem(ctx, t.desc.TableName, key)
	return found, err
}

// Update applies a partial update to the record under key, creating it if
// absent, and returns the stored record afterwards.
func (t *Table) Update(ctx context.Context, key any, upd storagemodels.Update) (storagemodels.Record, error) {
	if t.shaper != nil {
		shaped, err := t.shaper.ShapeUpdate(key, upd)
		if err != nil {
			return nil, err
		}
		upd = shaped
	}
	return t.store.UpdateItem(ctx, t.desc.TableName, key, upd)
}

// Query runs a query against the table's primary key or one of its
// secondary indexes.
func (t *Table) Query(ctx context.Context, params *storagemodels.QueryParams) (datastore.Iterator, error) {
	return t.store.Query(ctx, t.desc.TableName, params)
}
