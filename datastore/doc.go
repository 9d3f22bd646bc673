/*
Package datastore defines the storage-client contracts for tablestore.

TableStore is the production surface: table provisioning plus per-key reads,
writes, partial updates and index queries. Diagnostic adds the full-table
Scan, kept on a separate interface so production code that accepts a
TableStore cannot reach it.

Implementations:
  - ddb: AWS DynamoDB storage client
  - mock: in-memory backend fake for tests

Query results are consumed through the pull-based Iterator, which pages
through the backend lazily and is non-restartable.
*/
package datastore
