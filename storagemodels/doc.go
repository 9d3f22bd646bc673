/*
Package storagemodels defines the value types exchanged between accessors and
storage clients.

Key Types:

Record:
An item's attribute map, marshaled to the backend representation at the
storage-client boundary:

	rec := storagemodels.Record{"JobID": "abc", "Status": "queued"}

Update:
A partial update consumed by a single UpdateItem call:

	upd := storagemodels.Update{Set: storagemodels.Record{"Status": "done"}}

QueryParams:
A fixed query shape: an equality key condition, an optional secondary index
name, and an optional equality filter:

	params := &storagemodels.QueryParams{
	    IndexName:    "StatusIndex",
	    KeyCondition: storagemodels.Condition{Attribute: "Status", Value: "queued"},
	}

These types are storage-backend neutral; only the storage client translates
them into wire requests.
*/
package storagemodels
