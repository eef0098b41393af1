package models

import "gorm.io/gorm"

// All timestamps are stored as ISO-8601 UTC strings. Lexicographic order on
// these columns equals chronological order, which the trend queries and the
// state hash rely on.

// SyncState is the single "current version" pointer for one client+dataset.
// Mutated only by the patch applier and the full source sync.
type SyncState struct {
	ClientID       string  `gorm:"column:client_id;primaryKey"`
	DatasetName    string  `gorm:"column:dataset_name;primaryKey"`
	CurrentVersion *string `gorm:"column:current_version"`
	StateHash      *string `gorm:"column:state_hash"`
	SyncedAt       *string `gorm:"column:synced_at"`
	UpdatedAt      string  `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (SyncState) TableName() string {
	return "catalog_sync_states"
}

// DatasetVersion is one row of the append-only version history, keyed by
// source+dataset+version. It is an audit trail independent of the live
// pointer and is never deleted except by an explicit test reset.
type DatasetVersion struct {
	ID           string  `gorm:"column:id;primaryKey"` // source:dataset:version
	SourceID     string  `gorm:"column:source_id"`
	DatasetName  string  `gorm:"column:dataset_name"`
	BuildVersion string  `gorm:"column:build_version"`
	StateHash    *string `gorm:"column:state_hash"`
	RecordCount  int64   `gorm:"column:record_count"`
	CreatedAt    string  `gorm:"column:created_at"`
}

// TableName overrides the table name.
func (DatasetVersion) TableName() string {
	return "catalog_dataset_versions"
}

// PatchAudit is the immutable log of applied snapshots and patches.
type PatchAudit struct {
	ID           string  `gorm:"column:id;primaryKey"`
	SourceID     string  `gorm:"column:source_id"`
	DatasetName  string  `gorm:"column:dataset_name"`
	FromVersion  *string `gorm:"column:from_version"`
	ToVersion    string  `gorm:"column:to_version"`
	PatchHash    *string `gorm:"column:patch_hash"`
	Strategy     string  `gorm:"column:strategy"`
	AddedCount   int64   `gorm:"column:added_count"`
	UpdatedCount int64   `gorm:"column:updated_count"`
	RemovedCount int64   `gorm:"column:removed_count"`
	TotalRecords int64   `gorm:"column:total_records"`
	ArtifactURI  *string `gorm:"column:artifact_uri"`
	AppliedAt    string  `gorm:"column:applied_at"`
}

// TableName overrides the table name.
func (PatchAudit) TableName() string {
	return "catalog_patch_audits"
}

// SyncSource is the registry of known external feeds.
type SyncSource struct {
	ID               string  `gorm:"column:id;primaryKey"`
	Kind             string  `gorm:"column:kind"`
	BaseURL          string  `gorm:"column:base_url"`
	Enabled          bool    `gorm:"column:enabled"`
	RefreshWindowUTC *string `gorm:"column:refresh_window_utc"`
	UpdatedAt        string  `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (SyncSource) TableName() string {
	return "catalog_sync_sources"
}

// CardSet is the set a printing belongs to.
type CardSet struct {
	SetCode   string `gorm:"column:set_code;primaryKey"`
	SetName   string `gorm:"column:set_name"`
	UpdatedAt string `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (CardSet) TableName() string {
	return "card_sets"
}

// Card is the oracle-level card identity shared by its printings.
type Card struct {
	ID                string   `gorm:"column:id;primaryKey"`
	OracleID          *string  `gorm:"column:oracle_id"`
	Name              string   `gorm:"column:name"`
	ManaCost          *string  `gorm:"column:mana_cost"`
	Cmc               *float64 `gorm:"column:cmc"`
	TypeLine          *string  `gorm:"column:type_line"`
	OracleText        *string  `gorm:"column:oracle_text"`
	Reserved          bool     `gorm:"column:reserved"`
	KeywordsJSON      *string  `gorm:"column:keywords_json"`
	ColorsJSON        *string  `gorm:"column:colors_json"`
	ColorIdentityJSON *string  `gorm:"column:color_identity_json"`
	LatestReleasedAt  *string  `gorm:"column:latest_released_at"`
	CreatedAt         string   `gorm:"column:created_at"`
	UpdatedAt         string   `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (Card) TableName() string {
	return "cards"
}

// Printing is a specific card/set/collector-number combination that price
// data attaches to.
type Printing struct {
	ID                 string  `gorm:"column:id;primaryKey"`
	CardID             string  `gorm:"column:card_id;index"`
	OracleID           *string `gorm:"column:oracle_id"`
	SetCode            string  `gorm:"column:set_code;index:idx_card_printings_set_collector"`
	CollectorNumber    string  `gorm:"column:collector_number;index:idx_card_printings_set_collector"`
	Lang               string  `gorm:"column:lang"`
	Rarity             *string `gorm:"column:rarity"`
	Layout             *string `gorm:"column:layout"`
	ReleasedAt         *string `gorm:"column:released_at"`
	Artist             *string `gorm:"column:artist"`
	ImageNormalURL     *string `gorm:"column:image_normal_url"`
	ImageSmallURL      *string `gorm:"column:image_small_url"`
	ImageArtCropURL    *string `gorm:"column:image_art_crop_url"`
	IsDigital          bool    `gorm:"column:is_digital"`
	IsFoilAvailable    bool    `gorm:"column:is_foil_available"`
	IsNonfoilAvailable bool    `gorm:"column:is_nonfoil_available"`
	TcgplayerID        *int64  `gorm:"column:tcgplayer_id"`
	CardmarketID       *int64  `gorm:"column:cardmarket_id"`
	MtgoID             *int64  `gorm:"column:mtgo_id"`
	MtgoFoilID         *int64  `gorm:"column:mtgo_foil_id"`
	CreatedAt          string  `gorm:"column:created_at"`
	UpdatedAt          string  `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (Printing) TableName() string {
	return "card_printings"
}

// PriceRow is one compact price fact. Condition and finish default to 0 when
// a feed does not report them, so the composite key stays NOT NULL. The six
// value channels are independently nullable; a row is never persisted with
// all of them null.
type PriceRow struct {
	PrintingID           string   `gorm:"column:printing_id;primaryKey;index:idx_card_price_rows_printing_time,priority:1"`
	ConditionID          int64    `gorm:"column:condition_id;primaryKey"`
	FinishID             int64    `gorm:"column:finish_id;primaryKey"`
	SyncVersion          string   `gorm:"column:sync_version;primaryKey;index:idx_card_price_rows_sync_version"`
	TcgLow               *float64 `gorm:"column:tcg_low"`
	TcgMarket            *float64 `gorm:"column:tcg_market"`
	TcgHigh              *float64 `gorm:"column:tcg_high"`
	CkSell               *float64 `gorm:"column:ck_sell"`
	CkBuylist            *float64 `gorm:"column:ck_buylist"`
	CkBuylistQuantityCap *int64   `gorm:"column:ck_buylist_quantity_cap"`
	CapturedYMD          int64    `gorm:"column:captured_ymd"`
	CapturedAt           string   `gorm:"column:captured_at;index:idx_card_price_rows_printing_time,priority:2"`
	CreatedAt            string   `gorm:"column:created_at"`
}

// TableName overrides the table name.
func (PriceRow) TableName() string {
	return "card_price_rows"
}

// Migrate creates or updates the catalog schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&SyncState{},
		&DatasetVersion{},
		&PatchAudit{},
		&SyncSource{},
		&CardSet{},
		&Card{},
		&Printing{},
		&PriceRow{},
	)
}
