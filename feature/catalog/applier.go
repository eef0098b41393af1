package catalog

import (
	"math"
	"strings"

	"card-catalog/feature/catalog/models"
	"card-catalog/feature/prices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplySnapshot replaces the dataset with a full catalog payload for one
// version. The whole application is one transaction: validation failures
// reject before any mutation, and a hash mismatch after recomputation rolls
// everything back, so a replica can never end up with a pointer that
// disagrees with its rows.
//
// Re-applying an identical snapshot is idempotent: rows already tagged with
// the target version are deleted first, and the recomputed hash lands on the
// same value.
func (s *Service) ApplySnapshot(input models.SnapshotInput) (*models.ApplyResult, error) {
	dataset, err := NormalizeDataset(input.Dataset)
	if err != nil {
		return nil, err
	}
	toVersion := strings.TrimSpace(input.Version)
	if toVersion == "" {
		return nil, validationErrorf("snapshot apply requires a version")
	}
	if err := validateRecords(input.Records); err != nil {
		return nil, err
	}
	strategy := normalizeStrategy(input.Strategy, "full")

	// Best effort: a missing archive must never fail the apply.
	artifactURI := s.archivePayload(dataset, toVersion, input)

	var result *models.ApplyResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		state, err := readSyncRow(tx, dataset)
		if err != nil {
			return err
		}
		var fromVersion *string
		if state != nil {
			fromVersion = state.CurrentVersion
		}

		// Clearing rows already tagged to_version makes re-application
		// idempotent.
		if err := tx.Where("sync_version = ?", toVersion).
			Delete(&models.PriceRow{}).Error; err != nil {
			return storageError("clear snapshot rows", err)
		}

		for i := range input.Records {
			if err := upsertCatalogRecord(tx, &input.Records[i], toVersion); err != nil {
				return err
			}
		}

		// The hash reads the pointer to find the current version, so the
		// pointer moves first and is finalized with the hash afterwards.
		if err := writeSyncState(tx, dataset, &toVersion, nil); err != nil {
			return err
		}
		computedHash, err := ComputeStateHash(tx, dataset)
		if err != nil {
			return err
		}
		if input.SnapshotHash != nil {
			expected := strings.TrimSpace(*input.SnapshotHash)
			if expected != "" && expected != computedHash {
				return &ConsistencyError{Kind: "state-hash", Expected: expected, Actual: computedHash}
			}
		}
		if err := writeSyncState(tx, dataset, &toVersion, &computedHash); err != nil {
			return err
		}

		total, err := countRecords(tx, dataset)
		if err != nil {
			return err
		}
		added := int64(len(input.Records))
		if err := appendAudit(tx, dataset, fromVersion, toVersion, strategy,
			input.SnapshotHash, added, 0, 0, total, artifactURI); err != nil {
			return err
		}

		result = &models.ApplyResult{
			Dataset:      dataset,
			FromVersion:  fromVersion,
			ToVersion:    toVersion,
			Strategy:     strategy,
			PatchHash:    input.SnapshotHash,
			StateHash:    computedHash,
			TotalRecords: total,
			AddedCount:   added,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyPatch applies an incremental delta between two named versions. The
// current pointer must match fromVersion exactly; otherwise the patch is
// rejected with a version-chain error and no state changes. Rows of the base
// version are carried forward to the target version first, because price
// rows are keyed per version: without the carry-forward, untouched printings
// would silently vanish from the new version.
//
// The patch hash is recorded in the audit log but not enforced.
func (s *Service) ApplyPatch(input models.PatchInput) (*models.ApplyResult, error) {
	dataset, err := NormalizeDataset(input.Dataset)
	if err != nil {
		return nil, err
	}
	fromVersion := strings.TrimSpace(input.FromVersion)
	toVersion := strings.TrimSpace(input.ToVersion)
	if fromVersion == "" || toVersion == "" {
		return nil, validationErrorf("patch apply requires fromVersion and toVersion")
	}
	if err := validateRecords(input.Added); err != nil {
		return nil, err
	}
	if err := validateRecords(input.Updated); err != nil {
		return nil, err
	}
	strategy := normalizeStrategy(input.Strategy, "chain")

	artifactURI := s.archivePayload(dataset, fromVersion+"-"+toVersion, input)

	var result *models.ApplyResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		state, err := readSyncRow(tx, dataset)
		if err != nil {
			return err
		}
		currentVersion := "none"
		if state != nil && state.CurrentVersion != nil {
			currentVersion = *state.CurrentVersion
		}
		if currentVersion != fromVersion {
			return &ConsistencyError{Kind: "version-chain", Expected: fromVersion, Actual: currentVersion}
		}

		toCapturedYMD := models.CapturedYMDFromSyncVersion(toVersion)
		if toCapturedYMD == 0 {
			toCapturedYMD = models.CurrentCapturedYMD()
		}
		toCapturedAt := models.NowISO()

		if err := tx.Where("sync_version = ?", toVersion).
			Delete(&models.PriceRow{}).Error; err != nil {
			return storageError("clear patch rows", err)
		}
		err = tx.Exec(`INSERT INTO card_price_rows (
			  printing_id, condition_id, finish_id,
			  tcg_low, tcg_market, tcg_high,
			  ck_sell, ck_buylist, ck_buylist_quantity_cap,
			  sync_version, captured_ymd, captured_at, created_at
			)
			SELECT
			  printing_id, condition_id, finish_id,
			  tcg_low, tcg_market, tcg_high,
			  ck_sell, ck_buylist, ck_buylist_quantity_cap,
			  ?, ?, ?, ?
			FROM card_price_rows
			WHERE sync_version = ?`,
			toVersion, toCapturedYMD, toCapturedAt, toCapturedAt, fromVersion).Error
		if err != nil {
			return storageError("carry forward rows", err)
		}

		for _, id := range input.Removed {
			id = strings.ToLower(strings.TrimSpace(id))
			if id == "" {
				continue
			}
			if err := tx.Where("sync_version = ? AND printing_id = ?", toVersion, id).
				Delete(&models.PriceRow{}).Error; err != nil {
				return storageError("delete removed rows", err)
			}
		}

		// Added and updated are behaviorally identical merges; the split is
		// informational for the audit counts.
		for i := range input.Added {
			if err := upsertCatalogRecord(tx, &input.Added[i], toVersion); err != nil {
				return err
			}
		}
		for i := range input.Updated {
			if err := upsertCatalogRecord(tx, &input.Updated[i], toVersion); err != nil {
				return err
			}
		}

		if err := writeSyncState(tx, dataset, &toVersion, nil); err != nil {
			return err
		}
		computedHash, err := ComputeStateHash(tx, dataset)
		if err != nil {
			return err
		}
		if err := writeSyncState(tx, dataset, &toVersion, &computedHash); err != nil {
			return err
		}

		total, err := countRecords(tx, dataset)
		if err != nil {
			return err
		}
		if err := appendAudit(tx, dataset, &fromVersion, toVersion, strategy,
			input.PatchHash, int64(len(input.Added)), int64(len(input.Updated)),
			int64(len(input.Removed)), total, artifactURI); err != nil {
			return err
		}

		result = &models.ApplyResult{
			Dataset:      dataset,
			FromVersion:  &fromVersion,
			ToVersion:    toVersion,
			Strategy:     strategy,
			PatchHash:    input.PatchHash,
			StateHash:    computedHash,
			TotalRecords: total,
			AddedCount:   int64(len(input.Added)),
			UpdatedCount: int64(len(input.Updated)),
			RemovedCount: int64(len(input.Removed)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validateRecords rejects a whole batch before any mutation happens.
func validateRecords(records []models.PriceRecord) error {
	for i := range records {
		record := &records[i]
		if strings.TrimSpace(record.ID) == "" {
			return validationErrorf("catalog record %d has an empty id", i)
		}
		if math.IsNaN(record.MarketPrice) || math.IsInf(record.MarketPrice, 0) || record.MarketPrice < 0 {
			return validationErrorf("catalog record %s has invalid marketPrice: %v", record.ID, record.MarketPrice)
		}
	}
	return nil
}

func normalizeStrategy(strategy *string, fallback string) string {
	if strategy == nil {
		return fallback
	}
	normalized := strings.ToLower(strings.TrimSpace(*strategy))
	if normalized == "" {
		return fallback
	}
	return normalized
}

// upsertCatalogRecord writes one snapshot/patch record: the set, card and
// printing identity rows, then the market price channels through the same
// coalescing merge the vendor feeds use.
func upsertCatalogRecord(tx *gorm.DB, record *models.PriceRecord, syncVersion string) error {
	printingID := strings.ToLower(strings.TrimSpace(record.ID))
	if printingID == "" {
		return validationErrorf("catalog record has an empty id")
	}
	if math.IsNaN(record.MarketPrice) || math.IsInf(record.MarketPrice, 0) || record.MarketPrice < 0 {
		return validationErrorf("catalog record %s has invalid marketPrice: %v", record.ID, record.MarketPrice)
	}

	setCode := strings.ToLower(strings.TrimSpace(record.SetCode))
	collectorNumber := strings.TrimSpace(record.CollectorNumber)
	name := strings.TrimSpace(record.Name)
	updatedAt := strings.TrimSpace(record.UpdatedAt)
	if updatedAt == "" {
		updatedAt = models.NowISO()
	}
	capturedYMD := models.CapturedYMDFromSyncVersion(syncVersion)
	if capturedYMD == 0 {
		capturedYMD = models.CapturedYMDFromISO(updatedAt)
	}
	if capturedYMD == 0 {
		capturedYMD = models.CurrentCapturedYMD()
	}
	setName := "UNKNOWN"
	if setCode != "" {
		setName = strings.ToUpper(setCode)
	}

	set := models.CardSet{SetCode: setCode, SetName: setName, UpdatedAt: updatedAt}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "set_code"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"set_name":   gorm.Expr("COALESCE(NULLIF(excluded.set_name, ''), card_sets.set_name)"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&set).Error
	if err != nil {
		return storageError("upsert card set", err)
	}

	// A printing created by the oracle feed already carries its card id;
	// snapshot records for unknown printings get a derived one.
	cardID := "card:" + printingID
	var existing models.Printing
	if err := tx.Select("card_id").Where("id = ?", printingID).Take(&existing).Error; err == nil {
		cardID = existing.CardID
	} else if err != gorm.ErrRecordNotFound {
		return storageError("read printing", err)
	}

	card := models.Card{ID: cardID, Name: name, CreatedAt: updatedAt, UpdatedAt: updatedAt}
	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":       gorm.Expr("excluded.name"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&card).Error
	if err != nil {
		return storageError("upsert card", err)
	}

	printing := models.Printing{
		ID:                 printingID,
		CardID:             cardID,
		SetCode:            setCode,
		CollectorNumber:    collectorNumber,
		Lang:               "en",
		ImageNormalURL:     record.ImageURL,
		IsFoilAvailable:    true,
		IsNonfoilAvailable: true,
		CreatedAt:          updatedAt,
		UpdatedAt:          updatedAt,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"card_id":          gorm.Expr("COALESCE(card_printings.card_id, excluded.card_id)"),
			"set_code":         gorm.Expr("excluded.set_code"),
			"collector_number": gorm.Expr("excluded.collector_number"),
			"image_normal_url": gorm.Expr("COALESCE(excluded.image_normal_url, card_printings.image_normal_url)"),
			"updated_at":       gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&printing).Error
	if err != nil {
		return storageError("upsert printing", err)
	}

	lowPrice := record.MarketPrice
	if record.LowPrice != nil {
		lowPrice = *record.LowPrice
	}
	highPrice := record.MarketPrice
	if record.HighPrice != nil {
		highPrice = *record.HighPrice
	}
	marketPrice := record.MarketPrice

	return prices.UpsertObservation(tx, prices.Observation{
		PrintingID:  printingID,
		ConditionID: prices.ConditionNM,
		FinishID:    prices.FinishNonfoil,
		Channels: prices.Channels{
			TcgLow:    &lowPrice,
			TcgMarket: &marketPrice,
			TcgHigh:   &highPrice,
		},
		SyncVersion: syncVersion,
		CapturedYMD: capturedYMD,
		CapturedAt:  updatedAt,
	})
}
