// Package task owns the bucket list data model and its persistence.
//
// The whole list is stored as one JSON object under a single storage key
// (default "tasks"):
//
//	{
//	  "0190f1c2-...": {"id": "0190f1c2-...", "text": "buy milk", "completed": false},
//	  "0190f1c3-...": {"id": "0190f1c3-...", "text": "see the aurora", "completed": true}
//	}
//
// Every key equals the id of its value. Keys are written in insertion order,
// and the list is displayed newest first.
//
// # Transforms
//
// Add, Remove, ToggleCompleted, Update and RemoveAllCompleted never modify
// their input Collection; they return a new one. Persisting the result is a
// separate step (Store.Save).
//
// # Store
//
// Store mediates every read and write of the blob through a kv.Provider and
// keeps an in-memory mirror of the last collection that was loaded or saved
// successfully. A failed save leaves the mirror untouched.
//
// # Errors
//
//   - StorageReadError: the provider failed to read the key
//   - ParseError: the stored blob is present but malformed
//   - StorageWriteError: the provider failed to write the key
//   - NotFoundError: a toggle addressed an id that does not exist
//
// A missing key, an empty blob and a JSON null all load as an empty
// collection.
package task
