/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/suparena/tablestore/errors"
)

// schemaFile is the on-disk layout of a schema definition file.
type schemaFile struct {
	Tables []*Descriptor `yaml:"tables"`
}

// Load reads a YAML schema definition and returns the validated descriptors.
//
// Example file:
//
//	tables:
//	  - table: jobs
//	    hashKey: JobID
//	    hashKeyType: S
//	    indexes:
//	      - name: StatusIndex
//	        attribute: Status
//	        type: S
//	        projection: ALL
func Load(r io.Reader) ([]*Descriptor, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema definition: %w", err)
	}

	var file schemaFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schema definition: %w", err)
	}

	for i, d := range file.Tables {
		// A bare "-" list entry unmarshals to a nil descriptor.
		if d == nil {
			return nil, errors.NewValidationError("tables", fmt.Sprintf("entry %d is empty", i))
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("schema for table %q: %w", d.TableName, err)
		}
	}
	return file.Tables, nil
}

// LoadFile reads a YAML schema definition from disk.
func LoadFile(path string) ([]*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}
