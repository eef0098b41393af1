package catalog

import (
	"errors"
	"fmt"
	"strings"

	"card-catalog/feature/catalog/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// readSyncRow loads the version pointer for a dataset, or nil when the
// replica has never synced it.
func readSyncRow(tx *gorm.DB, dataset string) (*models.SyncState, error) {
	var state models.SyncState
	err := tx.Where("client_id = ? AND dataset_name = ?", LocalClientID, dataset).
		Take(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("read sync state", err)
	}
	return &state, nil
}

// countRecordsForVersion counts the distinct printings that carry a market
// price under one sync version.
func countRecordsForVersion(tx *gorm.DB, syncVersion string) (int64, error) {
	var count int64
	err := tx.Table("card_price_rows").
		Where("sync_version = ? AND tcg_market IS NOT NULL", syncVersion).
		Distinct("printing_id").
		Count(&count).Error
	if err != nil {
		return 0, storageError("count version records", err)
	}
	return count, nil
}

// countRecords counts the records of the dataset's current version.
func countRecords(tx *gorm.DB, dataset string) (int64, error) {
	state, err := readSyncRow(tx, dataset)
	if err != nil {
		return 0, err
	}
	if state == nil || state.CurrentVersion == nil || strings.TrimSpace(*state.CurrentVersion) == "" {
		return 0, nil
	}
	return countRecordsForVersion(tx, *state.CurrentVersion)
}

// writeSyncState upserts the version pointer and, when a version is named,
// records its row count and hash in the append-only version history.
// The invariant: the stored hash always describes exactly the rows tagged
// with the stored version at write time.
func writeSyncState(tx *gorm.DB, dataset string, currentVersion, stateHash *string) error {
	now := models.NowISO()
	state := models.SyncState{
		ClientID:       LocalClientID,
		DatasetName:    dataset,
		CurrentVersion: currentVersion,
		StateHash:      stateHash,
		SyncedAt:       &now,
		UpdatedAt:      now,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "client_id"}, {Name: "dataset_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_version", "state_hash", "synced_at", "updated_at",
		}),
	}).Create(&state).Error
	if err != nil {
		return storageError("write sync state", err)
	}

	if currentVersion == nil {
		return nil
	}
	version := strings.TrimSpace(*currentVersion)
	if version == "" {
		return nil
	}

	recordCount, err := countRecordsForVersion(tx, version)
	if err != nil {
		return err
	}
	return appendDatasetVersion(tx, OracleSourceID, dataset, version, recordCount, stateHash)
}

// appendDatasetVersion upserts one row of the version history. Re-applying
// the same version refreshes its count and hash instead of duplicating.
func appendDatasetVersion(tx *gorm.DB, sourceID, dataset, buildVersion string, recordCount int64, stateHash *string) error {
	record := models.DatasetVersion{
		ID:           fmt.Sprintf("%s:%s:%s", sourceID, dataset, buildVersion),
		SourceID:     sourceID,
		DatasetName:  dataset,
		BuildVersion: buildVersion,
		StateHash:    stateHash,
		RecordCount:  recordCount,
		CreatedAt:    models.NowISO(),
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"state_hash", "record_count", "created_at",
		}),
	}).Create(&record).Error
	if err != nil {
		return storageError("append dataset version", err)
	}
	return nil
}

// appendAudit writes one immutable row to the patch audit log.
func appendAudit(tx *gorm.DB, dataset string, fromVersion *string, toVersion, strategy string, patchHash *string, added, updated, removed, total int64, artifactURI *string) error {
	audit := models.PatchAudit{
		ID:           uuid.New().String(),
		SourceID:     OracleSourceID,
		DatasetName:  dataset,
		FromVersion:  fromVersion,
		ToVersion:    toVersion,
		PatchHash:    patchHash,
		Strategy:     strategy,
		AddedCount:   added,
		UpdatedCount: updated,
		RemovedCount: removed,
		TotalRecords: total,
		ArtifactURI:  artifactURI,
		AppliedAt:    models.NowISO(),
	}
	if err := tx.Create(&audit).Error; err != nil {
		return storageError("append patch audit", err)
	}
	return nil
}

// EnsureSource registers or refreshes one feed in the source registry.
func EnsureSource(tx *gorm.DB, sourceID, kind, baseURL string, refreshWindowUTC *string) error {
	source := models.SyncSource{
		ID:               sourceID,
		Kind:             kind,
		BaseURL:          baseURL,
		Enabled:          true,
		RefreshWindowUTC: refreshWindowUTC,
		UpdatedAt:        models.NowISO(),
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"kind", "base_url", "enabled", "refresh_window_utc", "updated_at",
		}),
	}).Create(&source).Error
	if err != nil {
		return storageError("ensure sync source", err)
	}
	return nil
}

// WriteSourceSyncRecord records one feed's contribution to a sync cycle in
// the version history, keyed source:dataset:version.
func WriteSourceSyncRecord(tx *gorm.DB, sourceID, datasetName, buildVersion string, recordCount int64, stateHash *string) error {
	return appendDatasetVersion(tx, sourceID, datasetName, buildVersion, recordCount, stateHash)
}

// UpdateSyncPointer moves the dataset's live pointer to the given version
// without asserting a hash. The full source sync uses it at the end of a
// cycle; snapshot/patch application writes the pointer itself.
func UpdateSyncPointer(tx *gorm.DB, dataset, version string) error {
	normalized, err := NormalizeDataset(&dataset)
	if err != nil {
		return err
	}
	return writeSyncState(tx, normalized, &version, nil)
}
