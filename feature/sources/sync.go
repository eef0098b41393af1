package sources

import (
	"context"
	"strings"
	"time"

	"card-catalog/feature/catalog"
	"card-catalog/feature/catalog/models"
	"card-catalog/feature/prices"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Pacing for the bulk loops. The sync shares its SQLite handle with
// interactive queries, so long row streams yield the writer periodically.
const (
	syncYieldEveryRows = 500
	syncYieldSleep     = 2 * time.Millisecond
)

// Dataset labels for the per-feed rows in the version history.
const (
	oracleLiveDataset  = "default_cards_live"
	trackerLiveDataset = "tcgtracking_tcgplayer_live"
	buylistLiveDataset = "ck_pricelist_live"
)

type trackerFeed interface {
	SetIDs(ctx context.Context) ([]int64, error)
	SetProducts(ctx context.Context, setID int64) (map[ProductID]trackerProduct, error)
	SetPricing(ctx context.Context, setID int64) (map[ProductID]trackerPriceItem, error)
	SetSkus(ctx context.Context, setID int64) (map[ProductID][]trackerSku, error)
}

type buylistFeed interface {
	Pricelist(ctx context.Context) ([]buylistItem, error)
}

type oracleFeed interface {
	BulkCards(ctx context.Context) ([]OracleCard, error)
}

// FullSyncResult reports one complete sync cycle across all feeds. A feed
// that failed leaves its counters at zero and its error field set; the cycle
// itself still completes with the remaining feeds.
type FullSyncResult struct {
	StartedAt   string `json:"startedAt"`
	FinishedAt  string `json:"finishedAt"`
	SyncVersion string `json:"syncVersion"`

	OracleScanned   int64 `json:"oracleScanned"`
	OracleUpdated   int64 `json:"oracleUpdated"`
	OracleUnchanged int64 `json:"oracleUnchanged"`

	TrackerSetsScanned     int64 `json:"trackerSetsScanned"`
	TrackerProductsMatched int64 `json:"trackerProductsMatched"`
	TrackerPriceUpserts    int64 `json:"trackerPriceUpserts"`

	BuylistScanned     int64 `json:"buylistScanned"`
	BuylistBuyUpserts  int64 `json:"buylistBuyUpserts"`
	BuylistSellUpserts int64 `json:"buylistSellUpserts"`
	BuylistSkipped     int64 `json:"buylistSkipped"`

	TrackerError *string `json:"trackerError,omitempty"`
	BuylistError *string `json:"buylistError,omitempty"`
	OracleError  *string `json:"oracleError,omitempty"`
}

// Orchestrator runs the full multi-source sync: tracker market prices, the
// vendor buylist, then the bulk metadata dump, all tagged with one shared
// sync version derived from the cycle's start time.
type Orchestrator struct {
	db      *gorm.DB
	logger  *zap.Logger
	cfg     *Config
	tracker trackerFeed
	buylist buylistFeed
	oracle  oracleFeed
}

// NewOrchestrator wires the orchestrator with live feed clients.
func NewOrchestrator(db *gorm.DB, logger *zap.Logger, cfg *Config) *Orchestrator {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return &Orchestrator{
		db:      db,
		logger:  logger,
		cfg:     cfg,
		tracker: NewTrackerClient(cfg.TrackerBaseURL, timeout),
		buylist: NewBuylistClient(
			cfg.BuylistPricelistURL,
			cfg.BuylistCacheFile,
			time.Duration(cfg.BuylistCacheMaxAgeHours)*time.Hour,
			timeout,
			logger,
		),
		oracle: NewOracleClient(cfg.OracleBaseURL, catalog.DefaultDataset),
	}
}

// SyncAll runs one full sync cycle. Feed failures are localized: each feed
// writes inside its own transaction, a failed feed contributes nothing, and
// the result carries its error. The dataset's version pointer only advances
// when at least one feed landed rows.
func (o *Orchestrator) SyncAll(ctx context.Context) (*FullSyncResult, error) {
	startedAt := models.NowISO()
	syncVersion := models.SyncVersionFromISO(startedAt)
	capturedYMD := models.CapturedYMDFromISO(startedAt)
	if capturedYMD == 0 {
		capturedYMD = models.CurrentCapturedYMD()
	}
	result := &FullSyncResult{StartedAt: startedAt, SyncVersion: syncVersion}

	err := o.db.Transaction(func(tx *gorm.DB) error {
		oracleWindow := "22:00Z"
		if err := catalog.EnsureSource(tx, catalog.OracleSourceID, "snapshot",
			o.cfg.OracleBaseURL+"/cards/collection", &oracleWindow); err != nil {
			return err
		}
		if err := catalog.EnsureSource(tx, catalog.TrackerSourceID, "snapshot",
			o.cfg.TrackerBaseURL, nil); err != nil {
			return err
		}
		return catalog.EnsureSource(tx, catalog.BuylistSourceID, "snapshot",
			o.cfg.BuylistPricelistURL, nil)
	})
	if err != nil {
		return nil, err
	}

	if err := o.syncTracker(ctx, syncVersion, capturedYMD, startedAt, result); err != nil {
		o.logger.Warn("tracker feed failed", zap.Error(err))
		message := err.Error()
		result.TrackerError = &message
	}
	if err := o.syncBuylist(ctx, syncVersion, capturedYMD, startedAt, result); err != nil {
		o.logger.Warn("buylist feed failed", zap.Error(err))
		message := err.Error()
		result.BuylistError = &message
	}
	if err := o.syncOracle(ctx, result); err != nil {
		o.logger.Warn("metadata feed failed", zap.Error(err))
		message := err.Error()
		result.OracleError = &message
	}

	err = o.db.Transaction(func(tx *gorm.DB) error {
		if result.OracleError == nil {
			if err := catalog.WriteSourceSyncRecord(tx, catalog.OracleSourceID,
				oracleLiveDataset, syncVersion, result.OracleScanned, nil); err != nil {
				return err
			}
		}
		if result.TrackerError == nil {
			if err := catalog.WriteSourceSyncRecord(tx, catalog.TrackerSourceID,
				trackerLiveDataset, syncVersion, result.TrackerProductsMatched, nil); err != nil {
				return err
			}
		}
		if result.BuylistError == nil {
			if err := catalog.WriteSourceSyncRecord(tx, catalog.BuylistSourceID,
				buylistLiveDataset, syncVersion, result.BuylistScanned, nil); err != nil {
				return err
			}
		}
		if result.TrackerError == nil || result.BuylistError == nil || result.OracleError == nil {
			return catalog.UpdateSyncPointer(tx, catalog.DefaultDataset, syncVersion)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.FinishedAt = models.NowISO()
	o.logger.Info("full source sync finished",
		zap.String("sync_version", syncVersion),
		zap.Int64("tracker_products", result.TrackerProductsMatched),
		zap.Int64("buylist_scanned", result.BuylistScanned),
		zap.Int64("oracle_scanned", result.OracleScanned))
	return result, nil
}

// syncTracker walks every tracker set and merges low/market/high price points
// for products that map to a known printing. Per-set fetch failures skip the
// set; products without any price point are skipped silently.
func (o *Orchestrator) syncTracker(ctx context.Context, syncVersion string, capturedYMD int64, capturedAt string, result *FullSyncResult) error {
	setIDs, err := o.tracker.SetIDs(ctx)
	if err != nil {
		return transientError(catalog.TrackerSourceID, err)
	}

	return o.db.Transaction(func(tx *gorm.DB) error {
		for _, setID := range setIDs {
			if err := ctx.Err(); err != nil {
				return err
			}
			result.TrackerSetsScanned++
			products, err := o.tracker.SetProducts(ctx, setID)
			if err != nil {
				continue
			}
			pricing, err := o.tracker.SetPricing(ctx, setID)
			if err != nil {
				continue
			}
			skus, err := o.tracker.SetSkus(ctx, setID)
			if err != nil {
				continue
			}
			if result.TrackerSetsScanned%10 == 0 {
				time.Sleep(syncYieldSleep)
			}

			for _, product := range products {
				if product.PrintingID == nil {
					continue
				}
				printingID := strings.ToLower(strings.TrimSpace(*product.PrintingID))
				if printingID == "" {
					continue
				}
				known, err := printingExists(tx, printingID)
				if err != nil {
					return err
				}
				if !known {
					continue
				}
				result.TrackerProductsMatched++
				if result.TrackerProductsMatched%syncYieldEveryRows == 0 {
					time.Sleep(syncYieldSleep)
				}

				low, market := chooseTrackerPrices(pricing[ProductID(product.ID)])
				high := chooseSkuHigh(skus[ProductID(product.ID)])
				if low == nil && market == nil && high == nil {
					continue
				}

				err = prices.UpsertObservation(tx, prices.Observation{
					PrintingID:  printingID,
					ConditionID: prices.ConditionNM,
					FinishID:    prices.FinishNonfoil,
					Channels:    prices.Channels{TcgLow: low, TcgMarket: market, TcgHigh: high},
					SyncVersion: syncVersion,
					CapturedYMD: capturedYMD,
					CapturedAt:  capturedAt,
				})
				if err != nil {
					return err
				}
				for _, value := range []*float64{market, low, high} {
					if value != nil {
						result.TrackerPriceUpserts++
					}
				}
			}
		}
		return nil
	})
}

// chooseTrackerPrices picks the nonfoil price point when present, falling
// back to foil, and backfills low and market from each other so a product
// with either value yields both channels.
func chooseTrackerPrices(item trackerPriceItem) (low, market *float64) {
	if item.Tcg == nil {
		return nil, nil
	}
	chosen := item.Tcg.Normal
	if chosen == nil {
		chosen = item.Tcg.Foil
	}
	if chosen == nil {
		return nil, nil
	}
	market = chosen.Market
	if market == nil {
		market = chosen.Low
	}
	low = chosen.Low
	if low == nil {
		low = chosen.Market
	}
	return low, market
}

// chooseSkuHigh picks the high price from the product's NM/EN skus,
// preferring the nonfoil variant when one carries a value.
func chooseSkuHigh(skus []trackerSku) *float64 {
	var preferred *float64
	for i := range skus {
		sku := &skus[i]
		condition := strings.ToUpper(strings.TrimSpace(stringOrEmpty(sku.Condition)))
		language := strings.ToUpper(strings.TrimSpace(stringOrEmpty(sku.Language)))
		if condition != "NM" || language != "EN" {
			continue
		}
		if sku.High == nil {
			continue
		}
		variant := "N"
		if sku.Variant != nil {
			variant = strings.ToUpper(strings.TrimSpace(*sku.Variant))
		}
		if variant == "N" {
			return sku.High
		}
		preferred = sku.High
	}
	return preferred
}

// syncBuylist merges the vendor pricelist: buy prices land in the buylist
// channel with their quantity cap, sell prices in the sell channel, foil rows
// under the foil finish. Rows without a known printing or without any
// positive price count as skipped.
func (o *Orchestrator) syncBuylist(ctx context.Context, syncVersion string, capturedYMD int64, capturedAt string, result *FullSyncResult) error {
	rows, err := o.buylist.Pricelist(ctx)
	if err != nil {
		return transientError(catalog.BuylistSourceID, err)
	}
	if len(rows) == 0 {
		return nil
	}

	return o.db.Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := &rows[i]
			result.BuylistScanned++
			if result.BuylistScanned%syncYieldEveryRows == 0 {
				time.Sleep(syncYieldSleep)
			}

			printingID := strings.ToLower(strings.TrimSpace(stringOrEmpty(row.PrintingID)))
			if printingID == "" {
				result.BuylistSkipped++
				continue
			}
			known, err := printingExists(tx, printingID)
			if err != nil {
				return err
			}
			if !known {
				result.BuylistSkipped++
				continue
			}

			buyPrice := parseBuylistPrice(row.PriceBuy)
			sellPrice := parseBuylistPrice(row.sellPrice())
			finishID := prices.FinishNonfoil
			if parseBuylistBool(row.IsFoil) {
				finishID = prices.FinishFoil
			}

			if buyPrice > 0 {
				quantityCap := int64(0)
				if row.QtyBuying != nil {
					quantityCap = *row.QtyBuying
				}
				err = prices.UpsertObservation(tx, prices.Observation{
					PrintingID:  printingID,
					ConditionID: prices.ConditionNM,
					FinishID:    finishID,
					Channels:    prices.Channels{CkBuylist: &buyPrice, CkBuylistQuantityCap: &quantityCap},
					SyncVersion: syncVersion,
					CapturedYMD: capturedYMD,
					CapturedAt:  capturedAt,
				})
				if err != nil {
					return err
				}
				result.BuylistBuyUpserts++
			}
			if sellPrice > 0 {
				err = prices.UpsertObservation(tx, prices.Observation{
					PrintingID:  printingID,
					ConditionID: prices.ConditionNM,
					FinishID:    finishID,
					Channels:    prices.Channels{CkSell: &sellPrice},
					SyncVersion: syncVersion,
					CapturedYMD: capturedYMD,
					CapturedAt:  capturedAt,
				})
				if err != nil {
					return err
				}
				result.BuylistSellUpserts++
			}
			if buyPrice <= 0 && sellPrice <= 0 {
				result.BuylistSkipped++
			}
		}
		return nil
	})
}

// syncOracle merges the bulk metadata dump, counting updated versus
// unchanged cards. No price rows are written here.
func (o *Orchestrator) syncOracle(ctx context.Context, result *FullSyncResult) error {
	cards, err := o.oracle.BulkCards(ctx)
	if err != nil {
		return transientError(catalog.OracleSourceID, err)
	}

	return o.db.Transaction(func(tx *gorm.DB) error {
		for i := range cards {
			if err := ctx.Err(); err != nil {
				return err
			}
			result.OracleScanned++
			if result.OracleScanned%syncYieldEveryRows == 0 {
				time.Sleep(syncYieldSleep)
			}
			changed, err := UpsertOracleCardIfChanged(tx, &cards[i])
			if err != nil {
				return err
			}
			if changed {
				result.OracleUpdated++
			} else {
				result.OracleUnchanged++
			}
		}
		return nil
	})
}

func printingExists(tx *gorm.DB, printingID string) (bool, error) {
	var count int64
	err := tx.Model(&models.Printing{}).Where("id = ?", printingID).
		Limit(1).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
