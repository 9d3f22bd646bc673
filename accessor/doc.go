/*
Package accessor provides the schema-bound access surfaces over a
datastore.TableStore.

Table is the generic layer: Get, Put, Exists, Update and Query against one
registered schema, with an optional Shaper strategy for record and update
shaping. Two specialized accessors compose it:

KV stores an arbitrary payload under a single value attribute:

	kv := accessor.NewKV(store, desc)
	err := kv.SetValue(ctx, "feature-flag", "on")

Status maintains a status attribute backed by a secondary index and stamps a
last-updated timestamp on every change:

	st, err := accessor.NewStatus(store, desc, "StatusIndex")
	err = st.Update(ctx, "job-42", "done")
	it, err := st.ByStatus(ctx, "done")

Exists is a fetch followed by a presence test; check-then-act sequences such
as Exists followed by Put are not atomic under concurrent writers.
*/
package accessor
