package catalog

import (
	"card-catalog/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service owns the replica's catalog state: the snapshot/patch applier, the
// sync-state queries and the maintenance operations.
type Service struct {
	db      *gorm.DB
	logger  *zap.Logger
	archive *Archive // nil when artifact archiving is disabled
}

// NewService builds a catalog service on the given database handle.
func NewService(db *gorm.DB, logger *zap.Logger, archive *Archive) *Service {
	return &Service{db: db, logger: logger, archive: archive}
}

// State reports the dataset's current version pointer, hash and record count.
// A dataset that has never synced reports empty state rather than an error.
func (s *Service) State(dataset *string) (*models.SyncStateView, error) {
	normalized, err := NormalizeDataset(dataset)
	if err != nil {
		return nil, err
	}
	view := &models.SyncStateView{Dataset: normalized}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		state, err := readSyncRow(tx, normalized)
		if err != nil {
			return err
		}
		if state == nil {
			return nil
		}
		view.CurrentVersion = state.CurrentVersion
		view.StateHash = state.StateHash
		view.SyncedAt = state.SyncedAt
		total, err := countRecords(tx, normalized)
		if err != nil {
			return err
		}
		view.TotalRecords = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// VerifyState recomputes the content hash of the current rows and compares it
// with the stored one. A mismatch means the replica drifted and needs a full
// snapshot.
func (s *Service) VerifyState(dataset *string) (*models.SyncStateView, error) {
	normalized, err := NormalizeDataset(dataset)
	if err != nil {
		return nil, err
	}
	var view *models.SyncStateView
	err = s.db.Transaction(func(tx *gorm.DB) error {
		state, err := readSyncRow(tx, normalized)
		if err != nil {
			return err
		}
		computed, err := ComputeStateHash(tx, normalized)
		if err != nil {
			return err
		}
		if state != nil && state.StateHash != nil && *state.StateHash != computed {
			return &ConsistencyError{Kind: "state-hash", Expected: *state.StateHash, Actual: computed}
		}
		total, err := countRecords(tx, normalized)
		if err != nil {
			return err
		}
		view = &models.SyncStateView{Dataset: normalized, StateHash: &computed, TotalRecords: total}
		if state != nil {
			view.CurrentVersion = state.CurrentVersion
			view.SyncedAt = state.SyncedAt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ResetForTest wipes every catalog table for the dataset. Test harness only;
// nothing in the sync paths calls it.
func (s *Service) ResetForTest(dataset *string) (*models.SyncStateView, error) {
	normalized, err := NormalizeDataset(dataset)
	if err != nil {
		return nil, err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.PriceRow{},
			&models.Printing{},
			&models.Card{},
			&models.CardSet{},
			&models.PatchAudit{},
			&models.DatasetVersion{},
			&models.SyncState{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return storageError("reset catalog", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalog reset", zap.String("dataset", normalized))
	return &models.SyncStateView{Dataset: normalized}, nil
}

// Optimize reclaims storage after large patch churn. SQLite only.
func (s *Service) Optimize() error {
	for _, stmt := range []string{"PRAGMA optimize", "ANALYZE", "VACUUM"} {
		if err := s.db.Exec(stmt).Error; err != nil {
			return storageError("optimize storage", err)
		}
	}
	return nil
}

// DB exposes the underlying handle for callers that coordinate their own
// transactions, such as the source sync orchestrator.
func (s *Service) DB() *gorm.DB {
	return s.db
}
