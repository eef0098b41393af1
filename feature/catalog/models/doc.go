// Package models defines the persisted catalog schema and the DTOs exchanged
// with the sync service.
//
// The schema groups into three areas:
//   - sync bookkeeping: catalog_sync_states (the live version pointer),
//     catalog_dataset_versions (append-only history), catalog_patch_audits
//     (immutable apply log), catalog_sync_sources (feed registry)
//   - card identity: card_sets, cards, card_printings
//   - price facts: card_price_rows, compact per-printing/condition/finish
//     rows keyed by sync version with six independently nullable channels
//
// Version helpers derive the conventional date-based sync version labels
// ("vYYMMDD") and captured-date integers used throughout the sync cycle.
package models
