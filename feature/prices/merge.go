package prices

import (
	"math"
	"strings"

	"card-catalog/feature/catalog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Observation is one vendor price observation addressed at a merge key.
type Observation struct {
	PrintingID  string
	ConditionID int64
	FinishID    int64
	Channels    Channels
	SyncVersion string
	CapturedYMD int64
	CapturedAt  string
}

// UpsertObservation merges one observation into the compact price rows.
//
// Each channel is coalesced independently: a present value wins, an absent
// one keeps whatever an earlier feed wrote for the same key. Three feeds
// report disjoint channel subsets for the same sync version, so a
// destructive overwrite here would erase the other feeds' contributions
// within a cycle. Freshness metadata (captured_ymd/captured_at) is always
// taken from the latest call.
//
// Observations whose channels are all absent after cleaning are a silent
// no-op: no row is created or touched.
//
// The coalescing conflict clause relies on SQLite upsert semantics.
func UpsertObservation(tx *gorm.DB, obs Observation) error {
	channels := obs.Channels.Clean()
	if channels.Empty() {
		return nil
	}

	row := models.PriceRow{
		PrintingID:           strings.ToLower(strings.TrimSpace(obs.PrintingID)),
		ConditionID:          obs.ConditionID,
		FinishID:             obs.FinishID,
		SyncVersion:          obs.SyncVersion,
		TcgLow:               channels.TcgLow,
		TcgMarket:            channels.TcgMarket,
		TcgHigh:              channels.TcgHigh,
		CkSell:               channels.CkSell,
		CkBuylist:            channels.CkBuylist,
		CkBuylistQuantityCap: channels.CkBuylistQuantityCap,
		CapturedYMD:          obs.CapturedYMD,
		CapturedAt:           obs.CapturedAt,
		CreatedAt:            obs.CapturedAt,
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "printing_id"},
			{Name: "condition_id"},
			{Name: "finish_id"},
			{Name: "sync_version"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"tcg_low":                 gorm.Expr("COALESCE(excluded.tcg_low, card_price_rows.tcg_low)"),
			"tcg_market":              gorm.Expr("COALESCE(excluded.tcg_market, card_price_rows.tcg_market)"),
			"tcg_high":                gorm.Expr("COALESCE(excluded.tcg_high, card_price_rows.tcg_high)"),
			"ck_sell":                 gorm.Expr("COALESCE(excluded.ck_sell, card_price_rows.ck_sell)"),
			"ck_buylist":              gorm.Expr("COALESCE(excluded.ck_buylist, card_price_rows.ck_buylist)"),
			"ck_buylist_quantity_cap": gorm.Expr("COALESCE(excluded.ck_buylist_quantity_cap, card_price_rows.ck_buylist_quantity_cap)"),
			"captured_ymd":            gorm.Expr("excluded.captured_ymd"),
			"captured_at":             gorm.Expr("excluded.captured_at"),
			"created_at":              gorm.Expr("excluded.created_at"),
		}),
	}).Create(&row).Error
}

// Engine records ad-hoc vendor observations outside a sync cycle, deriving
// the sync version and captured date from the current time.
type Engine struct {
	db *gorm.DB
}

// NewEngine creates a merge engine bound to the catalog database.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// RecordVendorObservation classifies one scalar price into a channel from
// (vendor, channelHint) and merges it. Non-finite or negative prices are
// dropped silently.
func (e *Engine) RecordVendorObservation(printingID string, price float64, vendor, channelHint string) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return nil
	}

	now := models.NowISO()
	capturedYMD := models.CapturedYMDFromISO(now)
	if capturedYMD == 0 {
		capturedYMD = models.CurrentCapturedYMD()
	}

	return UpsertObservation(e.db, Observation{
		PrintingID:  printingID,
		ConditionID: ConditionNM,
		FinishID:    FinishNonfoil,
		Channels:    ClassifyVendorChannel(price, vendor, channelHint),
		SyncVersion: models.SyncVersionFromISO(now),
		CapturedYMD: capturedYMD,
		CapturedAt:  now,
	})
}
