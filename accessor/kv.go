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

// DefaultValueAttribute is the attribute a KV accessor writes values to when
// none is configured.
const DefaultValueAttribute = "Value"

// KV is the simple specialized accessor: a single hash-key table holding an
// arbitrary payload under one value attribute, with no secondary indexes.
type KV struct {
	table     *Table
	valueAttr string
}

// NewKV binds a key/value accessor to the given schema.
func NewKV(store datastore.TableStore, desc *schema.Descriptor, opts ...KVOption) *KV {
	kv := &KV{
		table:     New(store, desc),
		valueAttr: DefaultValueAttribute,
	}
	for _, opt := range opts {
		opt(kv)
	}
	return kv
}

// KVOption configures a KV accessor.
type KVOption func(*KV)

// WithValueAttribute overrides the attribute the value is stored under.
func WithValueAttribute(name string) KVOption {
	return func(kv *KV) { kv.valueAttr = name }
}

// Table exposes the underlying generic accessor.
func (kv *KV) Table() *Table {
	return kv.table
}

// SetValue writes value under key as a one-attribute partial update, leaving
// any other attributes on the record untouched. The record is created when
// the key is new.
func (kv *KV) SetValue(ctx context.Context, key, value any) error {
	_, err := kv.table.Update(ctx, key, storagemodels.Update{
		Set: storagemodels.Record{kv.valueAttr: value},
	})
	return err
}

// Value reads the value stored under key. A missing record, or a record
// without the value attribute, is reported through found == false.
func (kv *KV) Value(ctx context.Context, key any) (any, bool, error) {
	rec, found, err := kv.table.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}
	value, ok := rec[kv.valueAttr]
	return value, ok, nil
}

// Exists reports whether any record is stored under key. See Table.Exists
// for the concurrency caveat.
func (kv *KV) Exists(ctx context.Context, key any) (bool, error) {
	return kv.table.Exists(ctx, key)
}
