/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"github.com/suparena/tablestore/errors"
)

// AttributeType identifies the scalar type of a key attribute.
type AttributeType string

const (
	AttributeString AttributeType = "S"
	AttributeNumber AttributeType = "N"
	AttributeBinary AttributeType = "B"
)

// Projection controls which attributes a secondary index carries.
type Projection string

const (
	ProjectAll      Projection = "ALL"
	ProjectKeysOnly Projection = "KEYS_ONLY"
	ProjectInclude  Projection = "INCLUDE"
)

// Index describes one secondary index on a table: the indexed attribute,
// its type, and how much of the item the index projects.
type Index struct {
	Name             string        `yaml:"name"`
	Attribute        string        `yaml:"attribute"`
	Type             AttributeType `yaml:"type"`
	Projection       Projection    `yaml:"projection"`
	NonKeyAttributes []string      `yaml:"nonKeyAttributes,omitempty"`
}

// Descriptor is an immutable description of one table: its name, hash key,
// and zero or more secondary indexes. Descriptors are constructed at process
// start, validated on registration, and never change afterwards.
type Descriptor struct {
	TableName   string        `yaml:"table"`
	HashKey     string        `yaml:"hashKey"`
	HashKeyType AttributeType `yaml:"hashKeyType"`
	Indexes     []Index       `yaml:"indexes,omitempty"`

	// ReadCapacity and WriteCapacity are provisioned-throughput hints used
	// at table creation. Zero means on-demand billing.
	ReadCapacity  int64 `yaml:"readCapacity,omitempty"`
	WriteCapacity int64 `yaml:"writeCapacity,omitempty"`
}

func validAttributeType(t AttributeType) bool {
	switch t {
	case AttributeString, AttributeNumber, AttributeBinary:
		return true
	}
	return false
}

// Validate checks the descriptor invariants: non-empty names, known scalar
// types, index names unique within the schema, and no index attribute that
// shadows the hash key.
func (d *Descriptor) Validate() error {
	if d.TableName == "" {
		return errors.NewValidationError("table", "table name is required")
	}
	if d.HashKey == "" {
		return errors.NewValidationError("hashKey", "hash key attribute name is required")
	}
	if !validAttributeType(d.HashKeyType) {
		return errors.NewValidationError("hashKeyType", "hash key type must be one of S, N, B")
	}

	seen := make(map[string]struct{}, len(d.Indexes))
	for _, idx := range d.Indexes {
		if idx.Name == "" {
			return errors.NewValidationError("indexes", "index name is required")
		}
		if _, dup := seen[idx.Name]; dup {
			return errors.NewValidationError("indexes", "duplicate index name "+idx.Name)
		}
		seen[idx.Name] = struct{}{}

		if idx.Attribute == "" {
			return errors.NewValidationError("indexes", "index "+idx.Name+" has no attribute")
		}
		if idx.Attribute == d.HashKey {
			return errors.NewValidationError("indexes", "index "+idx.Name+" attribute collides with the hash key")
		}
		if !validAttributeType(idx.Type) {
			return errors.NewValidationError("indexes", "index "+idx.Name+" type must be one of S, N, B")
		}
		switch idx.Projection {
		case ProjectAll, ProjectKeysOnly:
			if len(idx.NonKeyAttributes) > 0 {
				return errors.NewValidationError("indexes", "index "+idx.Name+" lists non-key attributes without INCLUDE projection")
			}
		case ProjectInclude:
			if len(idx.NonKeyAttributes) == 0 {
				return errors.NewValidationError("indexes", "index "+idx.Name+" INCLUDE projection requires non-key attributes")
			}
		default:
			return errors.NewValidationError("indexes", "index "+idx.Name+" projection must be ALL, KEYS_ONLY or INCLUDE")
		}
	}
	return nil
}

// Index returns the secondary index with the given name, if present.
func (d *Descriptor) Index(name string) (Index, bool) {
	for _, idx := range d.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return Index{}, false
}
