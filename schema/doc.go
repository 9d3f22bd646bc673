/*
Package schema defines the table schema descriptors used throughout tablestore.

A Descriptor names a table, its hash key attribute, and any secondary indexes.
Descriptors are the only externally authored artifact besides connection
configuration; they can be built in code or loaded from a YAML file:

	descs, err := schema.LoadFile("tables.yaml")

Descriptors are validated once, registered once, and treated as immutable for
the process lifetime.
*/
package schema
