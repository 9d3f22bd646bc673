/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

// Record is one item's attribute map: attribute name to value. Values are
// marshaled to the backend's typed representation by the storage client, so
// strings, numbers, booleans, byte slices, nil, nested maps and slices are
// all acceptable. A record written to a table always carries the table's hash
// key attribute.
//
// Records are ephemeral value objects constructed per request; nothing in
// this library caches or shares them.
type Record map[string]any

// Update describes a partial, attribute-level update: every attribute in Set
// is written, attributes absent from Set are left untouched. An Update is
// built by an accessor, consumed by exactly one storage-client call, and then
// discarded.
type Update struct {
	Set Record
}

// Condition is an equality predicate on a single attribute. Query shapes are
// fixed per schema at configuration time, so equality is the only supported
// comparison.
type Condition struct {
	Attribute string
	Value     any
}

// QueryParams defines the parameters for a query operation.
type QueryParams struct {
	// IndexName selects a secondary index. Empty means the primary key.
	IndexName string

	// KeyCondition is the mandatory condition on the queried key attribute.
	KeyCondition Condition

	// Filter is an optional post-fetch predicate. The backend applies it
	// after reading, so it narrows the result set without reducing consumed
	// read capacity.
	Filter *Condition

	// Limit caps the page size per backend call. Zero uses the backend
	// default.
	Limit int32

	// ScanIndexForward sets the traversal direction where the backend
	// defines one. Nil uses the backend default. Result ordering is
	// otherwise unspecified.
	ScanIndexForward *bool
}
