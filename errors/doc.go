/*
Package errors provides the semantic error taxonomy for the tablestore library.

Errors fall into two groups. Caller errors are never retried:

	ErrDuplicateSchema  - a table name was registered twice
	ErrUnknownSchema    - an operation referenced an unregistered table
	ErrUnknownIndex     - a query referenced an index the schema does not define
	ErrInvalidInput     - a malformed schema, key, record or update

Backend errors carry the operation and table name so the failure can be
diagnosed without re-deriving the request:

	ErrBackendUnavailable - transient failure, retry with backoff
	ErrThrottled          - capacity rejection, retry with backoff
	ErrTableNotReady      - table never reached the ready state

All types support errors.Is against their sentinel, and the transient group is
recognized by IsRetryable:

	rec, found, err := store.GetItem(ctx, "jobs", "abc")
	if errors.IsRetryable(err) {
	    // back off and try again
	}
*/
package errors
