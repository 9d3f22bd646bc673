/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package testmodels holds the shared schema fixtures used by tests across
// the tablestore packages.
package testmodels

import "github.com/suparena/tablestore/schema"

// Jobs returns a hash-key schema with a secondary index on the Status
// attribute, the shape exercised by the Status accessor tests.
func Jobs() *schema.Descriptor {
	return &schema.Descriptor{
		TableName:   "jobs",
		HashKey:     "JobID",
		HashKeyType: schema.AttributeString,
		Indexes: []schema.Index{{
			Name:       "StatusIndex",
			Attribute:  "Status",
			Type:       schema.AttributeString,
			Projection: schema.ProjectAll,
		}},
	}
}

// Settings returns a plain hash-key schema with no secondary indexes, the
// shape exercised by the KV accessor tests.
func Settings() *schema.Descriptor {
	return &schema.Descriptor{
		TableName:   "settings",
		HashKey:     "Name",
		HashKeyType: schema.AttributeString,
	}
}
