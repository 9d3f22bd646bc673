/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package accessor

import (
	"context"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/tablestore/datastore"
	"github.com/suparena/tablestore/errors"
	"github.com/suparena/tablestore/schema"
	"github.com/suparena/tablestore/storagemodels"
)

// DefaultUpdatedAttribute is the attribute a Status accessor stamps with the
// last-update timestamp.
const DefaultUpdatedAttribute = "UpdatedAt"

// Status is the multi-index specialized accessor: a hash-key table with one
// secondary index on a status attribute, plus a last-updated attribute the
// accessor maintains automatically on every status change.
type Status struct {
	table       *Table
	index       schema.Index
	updatedAttr string
	now         func() time.Time
}

// StatusOption configures a Status accessor.
type StatusOption func(*Status)

// WithUpdatedAttribute overrides the last-updated attribute name.
func WithUpdatedAttribute(name string) StatusOption {
	return func(s *Status) { s.updatedAttr = name }
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) StatusOption {
	return func(s *Status) { s.now = now }
}

// NewStatus binds a status accessor to the given schema. indexName must be a
// secondary index registered on the descriptor; its indexed attribute is the
// status attribute.
func NewStatus(store datastore.TableStore, desc *schema.Descriptor, indexName string, opts ...StatusOption) (*Status, error) {
	idx, ok := desc.Index(indexName)
	if !ok {
		return nil, errors.NewUnknownIndexError(desc.TableName, indexName)
	}

	s := &Status{
		table:       New(store, desc),
		index:       idx,
		updatedAttr: DefaultUpdatedAttribute,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Table exposes the underlying generic accessor.
func (s *Status) Table() *Table {
	return s.table
}

// Update sets the status attribute and a fresh last-updated timestamp in a
// single backend call; the two assignments land together or not at all. The
// record is created when the key is new.
func (s *Status) Update(ctx context.Context, key any, status string) error {
	_, err := s.table.Update(ctx, key, storagemodels.Update{
		Set: storagemodels.Record{
			s.index.Attribute: status,
			s.updatedAttr:     strfmt.DateTime(s.now().UTC()).String(),
		},
	})
	return err
}

// FilterByPrimary queries the primary key and filters on the status
// attribute. The filter is applied by the backend after the read, so it does
// not reduce consumed read capacity; prefer ByStatus when selecting by
// status alone.
func (s *Status) FilterByPrimary(ctx context.Context, key any, status string) (datastore.Iterator, error) {
	return s.table.Query(ctx, &storagemodels.QueryParams{
		KeyCondition: storagemodels.Condition{Attribute: s.table.desc.HashKey, Value: key},
		Filter:       &storagemodels.Condition{Attribute: s.index.Attribute, Value: status},
	})
}

// ByStatus queries the secondary index directly for records with the given
// status. No filter expression is needed, so only matching items are read.
func (s *Status) ByStatus(ctx context.Context, status string) (datastore.Iterator, error) {
	return s.table.Query(ctx, &storagemodels.QueryParams{
		IndexName:    s.index.Name,
		KeyCondition: storagemodels.Condition{Attribute: s.index.Attribute, Value: status},
	})
}
