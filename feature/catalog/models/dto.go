package models

// PriceRecord is one catalog row as exchanged with the sync service.
type PriceRecord struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	SetCode         string   `json:"setCode"`
	CollectorNumber string   `json:"collectorNumber"`
	ImageURL        *string  `json:"imageUrl,omitempty"`
	MarketPrice     float64  `json:"marketPrice"`
	LowPrice        *float64 `json:"lowPrice,omitempty"`
	MidPrice        *float64 `json:"midPrice,omitempty"`
	HighPrice       *float64 `json:"highPrice,omitempty"`
	UpdatedAt       string   `json:"updatedAt"`
}

// SnapshotInput is a full-replacement catalog payload for one version.
type SnapshotInput struct {
	Dataset      *string       `json:"dataset,omitempty"`
	Version      string        `json:"version"`
	Records      []PriceRecord `json:"records"`
	SnapshotHash *string       `json:"snapshotHash,omitempty"`
	Strategy     *string       `json:"strategy,omitempty"`
}

// PatchInput is an incremental add/update/remove delta between two versions.
type PatchInput struct {
	Dataset     *string       `json:"dataset,omitempty"`
	FromVersion string        `json:"fromVersion"`
	ToVersion   string        `json:"toVersion"`
	Added       []PriceRecord `json:"added"`
	Updated     []PriceRecord `json:"updated"`
	Removed     []string      `json:"removed"`
	PatchHash   *string       `json:"patchHash,omitempty"`
	Strategy    *string       `json:"strategy,omitempty"`
}

// ApplyResult reports the outcome of one snapshot or patch application.
type ApplyResult struct {
	Dataset      string  `json:"dataset"`
	FromVersion  *string `json:"fromVersion,omitempty"`
	ToVersion    string  `json:"toVersion"`
	Strategy     string  `json:"strategy"`
	PatchHash    *string `json:"patchHash,omitempty"`
	StateHash    string  `json:"stateHash"`
	TotalRecords int64   `json:"totalRecords"`
	AddedCount   int64   `json:"addedCount"`
	UpdatedCount int64   `json:"updatedCount"`
	RemovedCount int64   `json:"removedCount"`
}

// SyncStateView is the sync-state query result.
type SyncStateView struct {
	Dataset        string  `json:"dataset"`
	CurrentVersion *string `json:"currentVersion,omitempty"`
	StateHash      *string `json:"stateHash,omitempty"`
	SyncedAt       *string `json:"syncedAt,omitempty"`
	TotalRecords   int64   `json:"totalRecords"`
}
