/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tablestore

import (
	"sort"
	"sync"

	"github.com/suparena/tablestore/errors"
	"github.com/suparena/tablestore/schema"
)

// Registry holds the schema descriptors for every table the process works
// with. Descriptors are registered once during startup and are immutable
// afterwards; there is no mutation API beyond registration.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*schema.Descriptor
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*schema.Descriptor),
	}
}

// Register validates the descriptor and stores it under its table name.
// Registering the same table name twice fails with a DuplicateSchemaError.
func (r *Registry) Register(d *schema.Descriptor) error {
	if d == nil {
		return errors.NewValidationError("descriptor", "descriptor is nil")
	}
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[d.TableName]; exists {
		return errors.NewDuplicateSchemaError(d.TableName)
	}
	r.schemas[d.TableName] = d
	return nil
}

// Lookup returns the descriptor registered for the given table name, or an
// UnknownSchemaError if none was registered.
func (r *Registry) Lookup(tableName string) (*schema.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.schemas[tableName]
	if !exists {
		return nil, errors.NewUnknownSchemaError(tableName)
	}
	return d, nil
}

// Tables returns the registered table names in sorted order.
func (r *Registry) Tables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
