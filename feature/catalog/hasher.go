package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"gorm.io/gorm"
)

// hashedRow is the fixed projection fed into the state hash. Changing this
// projection silently breaks drift detection on every client, so it must be
// versioned explicitly if it ever changes.
type hashedRow struct {
	PrintingID      string
	Name            string
	SetCode         string
	CollectorNumber string
	ImageURL        string
	MarketPrice     float64
	CapturedAt      string
}

// ComputeStateHash computes the content digest of the dataset's current
// rows: one delimited line per row, ordered by printing id ascending so that
// two catalogs with the same content in different insertion order hash
// identically. Without a current version the hash covers the dataset name
// alone.
func ComputeStateHash(tx *gorm.DB, dataset string) (string, error) {
	hasher := sha256.New()
	hasher.Write([]byte(dataset))
	hasher.Write([]byte("\n"))

	state, err := readSyncRow(tx, dataset)
	if err != nil {
		return "", err
	}
	if state == nil || state.CurrentVersion == nil || *state.CurrentVersion == "" {
		return hex.EncodeToString(hasher.Sum(nil)), nil
	}

	var rows []hashedRow
	err = tx.Table("card_price_rows cp").
		Select(`p.id AS printing_id,
			c.name AS name,
			p.set_code AS set_code,
			p.collector_number AS collector_number,
			COALESCE(p.image_normal_url, '') AS image_url,
			cp.tcg_market AS market_price,
			cp.captured_at AS captured_at`).
		Joins("JOIN card_printings p ON p.id = cp.printing_id").
		Joins("JOIN cards c ON c.id = p.card_id").
		Where("cp.sync_version = ? AND cp.tcg_market IS NOT NULL", *state.CurrentVersion).
		Order("p.id").
		Scan(&rows).Error
	if err != nil {
		return "", storageError("hash state rows", err)
	}

	for _, row := range rows {
		line := fmt.Sprintf("%s|%s|%s|%s|%s|%.6f|%s\n",
			row.PrintingID, row.Name, row.SetCode, row.CollectorNumber,
			row.ImageURL, row.MarketPrice, row.CapturedAt)
		hasher.Write([]byte(line))
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
