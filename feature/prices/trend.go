package prices

import (
	"strings"

	"gorm.io/gorm"
)

// Trend directions reported to the UI.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"
	DirectionNone = "none"
)

// flatBand absorbs sub-cent rounding noise: deltas within ±0.009 are "flat".
const flatBand = 0.009

// Trend is the movement of one price channel for one printing.
type Trend struct {
	Current        *float64 `json:"current,omitempty"`
	Previous       *float64 `json:"previous,omitempty"`
	Delta          *float64 `json:"delta,omitempty"`
	Direction      string   `json:"direction"`
	LastObservedAt *string  `json:"lastObservedAt,omitempty"`
}

// channelColumns maps external channel keys to price row columns. The map is
// the only way a channel key reaches SQL, so unknown input can never inject.
var channelColumns = map[string]string{
	"tcg-low":    "tcg_low",
	"tcg-mid":    "tcg_market",
	"tcg-high":   "tcg_high",
	"ck-sell":    "ck_sell",
	"ck-buylist": "ck_buylist",
}

// ChannelColumn resolves a channel key to its column, defaulting to
// tcg_market for unknown keys.
func ChannelColumn(channelKey string) string {
	if col, ok := channelColumns[strings.ToLower(strings.TrimSpace(channelKey))]; ok {
		return col
	}
	return "tcg_market"
}

// TrendCalculator derives price movement from the observation history.
type TrendCalculator struct {
	db *gorm.DB
}

// NewTrendCalculator creates a trend calculator over the catalog database.
func NewTrendCalculator(db *gorm.DB) *TrendCalculator {
	return &TrendCalculator{db: db}
}

// ComputeTrend reads the two most recent non-null observations of the
// requested channel, across all sync versions, and derives the delta and
// direction. With fewer than two observations the direction is "none".
func (c *TrendCalculator) ComputeTrend(printingID, channelKey string) (*Trend, error) {
	column := ChannelColumn(channelKey)

	var rows []struct {
		Price      float64
		CapturedAt string
	}
	err := c.db.Table("card_price_rows").
		Select(column+" AS price, captured_at").
		Where("printing_id = ? AND "+column+" IS NOT NULL", strings.ToLower(strings.TrimSpace(printingID))).
		Order("captured_at DESC").
		Limit(2).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	trend := &Trend{Direction: DirectionNone}
	if len(rows) > 0 {
		trend.Current = &rows[0].Price
		trend.LastObservedAt = &rows[0].CapturedAt
	}
	if len(rows) > 1 {
		trend.Previous = &rows[1].Price
		delta := rows[0].Price - rows[1].Price
		trend.Delta = &delta
		switch {
		case delta > flatBand:
			trend.Direction = DirectionUp
		case delta < -flatBand:
			trend.Direction = DirectionDown
		default:
			trend.Direction = DirectionFlat
		}
	}

	return trend, nil
}
