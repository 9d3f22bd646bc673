/*
Package tablestore provides a generic, schema-driven data-access layer over a
key/attribute storage service (AWS DynamoDB), with pluggable table schemas,
secondary-index queries, and safe partial updates.

The layers, from the caller down:

  - Specialized accessors (accessor.KV, accessor.Status) shape records and
    build update expressions for common table layouts.
  - accessor.Table is the generic schema-bound CRUD/query surface.
  - datastore/ddb.Store owns the backend session and translates abstract
    requests into DynamoDB calls, with retries and table provisioning.
  - Registry (this package) holds the immutable schema descriptors consulted
    by every layer above it.

Basic Usage:

	reg := tablestore.NewRegistry()
	desc := &schema.Descriptor{
	    TableName:   "jobs",
	    HashKey:     "JobID",
	    HashKeyType: schema.AttributeString,
	}
	if err := reg.Register(desc); err != nil {
	    log.Fatal(err)
	}

	client, err := ddb.NewClient(ctx, ddb.Config{Region: "us-east-1"})
	if err != nil {
	    log.Fatal(err)
	}
	store := ddb.New(client, reg)

	if err := store.EnsureTable(ctx, desc); err != nil {
	    log.Fatal(err)
	}

	jobs := accessor.New(store, desc)
	err = jobs.Put(ctx, "abc", storagemodels.Record{"Status": "queued"})

There is no ambient or global client: every Store is explicitly constructed,
so one process can talk to several independently configured backends (for
example, a local DynamoDB in tests alongside production).
*/
package tablestore
