// Package prices implements the vendor price merge engine and the trend
// derivation over the compact price rows.
//
// # Merge model
//
// A price observation is a sparse six-channel tuple (tcg low/market/high,
// ck sell/buylist, buylist quantity cap) addressed at the key
// (printing, condition, finish, sync version). Multiple feeds report
// disjoint channel subsets for the same key within one sync cycle, so the
// upsert coalesces per channel: a present value wins, an absent one keeps
// the earlier feed's contribution. Only freshness metadata is always
// overwritten.
//
// # Trends
//
// TrendCalculator reads the two most recent observations of one channel,
// across sync versions, and reports up/down/flat movement with a ±0.009
// band that absorbs sub-cent rounding noise. It is a pure read and is cheap
// enough to call per displayed row.
package prices
