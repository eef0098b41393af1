// Package sources implements the external feed clients and the multi-source
// sync orchestrator.
//
// Three feeds contribute to one sync cycle, all tagged with the same version
// derived from the cycle's start time:
//
//  1. Tracker: per-set market prices (low/market from the pricing endpoint,
//     high from NM/EN skus).
//  2. Buylist: the vendor's full pricelist, split into buy and sell channels
//     per finish, cached on disk between cycles.
//  3. Oracle: the bulk card metadata dump, merged with change detection and
//     no price writes.
//
// Feed failures are localized. Each feed runs in its own transaction; a feed
// that fails contributes nothing to the cycle and its error is reported in
// the sync result while the other feeds proceed. Price observations from
// different feeds land on the same rows through the coalescing merge, so the
// order of the feeds within a cycle does not change the outcome.
//
// # Components
//
//   - TrackerClient / BuylistClient / OracleClient: HTTP feed clients.
//   - Orchestrator: runs one full cycle and advances the version pointer.
//   - Handler: exposes POST /sync/full.
package sources
