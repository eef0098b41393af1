// Package catalog implements the versioned local replica of the card price
// catalog.
//
// The replica advances through named sync versions. A full snapshot replaces
// every record for one version; a patch carries the previous version's rows
// forward and applies an add/update/remove delta on top. Either path is one
// transaction: the version pointer, the content hash and the price rows move
// together or not at all.
//
// # State Hash
//
// After every apply the content of the current version is reduced to a
// SHA-256 digest over a fixed row projection in printing-id order. The hash
// is stored next to the version pointer and compared against the hash a
// payload declares; a mismatch rolls the whole apply back. GET /catalog/verify
// recomputes it on demand to detect silent drift.
//
// # Components
//
//   - Service: snapshot/patch application, state queries, reset, storage
//     maintenance.
//   - Archive: best-effort copy of applied payloads in object storage.
//   - Handler: HTTP endpoints for the sync service and local tooling.
//
// # HTTP Endpoints
//
//   - GET  /catalog/state               : current version pointer and hash.
//   - GET  /catalog/verify              : recompute the hash, 409 on drift.
//   - POST /catalog/snapshot            : apply a full snapshot.
//   - POST /catalog/patch               : apply an incremental patch.
//   - GET  /catalog/trends/:printingID  : short-term price movement.
//   - POST /catalog/reset               : wipe the replica (test only).
package catalog
