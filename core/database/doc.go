// Package database provides the GORM connection layer for the catalog.
//
// The desktop deployment runs on an embedded SQLite file; the hosted sync
// service can run the same schema on MySQL. Connect selects the driver from
// configuration, defaulting to SQLite.
//
// SQLite connections are pinned to a single open connection because the
// catalog's consistency model assumes a single writer: the snapshot/patch
// applier and the vendor feed sync never execute concurrently.
package database
