// Package storage provides the S3/MinIO client used for archiving applied
// snapshot and patch payloads.
//
// Archiving is optional. When enabled, the catalog service uploads the raw
// payload of every applied snapshot/patch and records the resulting artifact
// URI on the audit row, so a replica's history can be replayed or audited
// against the exact bytes that were applied.
package storage
