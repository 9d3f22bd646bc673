/*
Package ddb implements the tablestore storage client on AWS DynamoDB.

A Store wraps a narrow slice of the DynamoDB API plus the process schema
registry. It translates Record and Update values into DynamoDB requests with
the SDK attributevalue and expression packages, maps service failures into
the tablestore error taxonomy, and retries transient failures with jittered
exponential backoff.

Construction is explicit; there is no package-level client:

	client, err := ddb.NewClient(ctx, ddb.Config{
	    Region:   "us-east-1",
	    Endpoint: "http://localhost:8000", // optional, e.g. DynamoDB Local
	})
	store := ddb.New(client, registry,
	    ddb.WithLogger(logger),
	    ddb.WithProvisionWait(time.Minute),
	)

EnsureTable provisions tables from schema descriptors, treating "already
exists" as success and waiting for the ACTIVE state with the SDK table
waiter.

Failure semantics: throttling and transient service failures are retried a
bounded number of times and surface as ThrottledError or
BackendUnavailableError; malformed requests surface as ValidationError and
are never retried.
*/
package ddb
