package prices

import (
	"math"
	"strings"
)

// Condition and finish identifiers shared by every feed. Zero means the feed
// did not report the dimension.
const (
	ConditionNM   int64 = 1
	FinishNonfoil int64 = 1
	FinishFoil    int64 = 2
)

// Channels is one sparse price observation: up to six values reported by a
// vendor for the same printing/condition/finish. Nil means "not reported",
// which the merge keeps distinct from zero.
type Channels struct {
	TcgLow               *float64
	TcgMarket            *float64
	TcgHigh              *float64
	CkSell               *float64
	CkBuylist            *float64
	CkBuylistQuantityCap *int64
}

// Clean drops non-finite and negative values. Vendors occasionally report
// NaN or sentinel negatives for delisted items; those must never reach the
// merge where they would clobber a real price.
func (c Channels) Clean() Channels {
	return Channels{
		TcgLow:               cleanPrice(c.TcgLow),
		TcgMarket:            cleanPrice(c.TcgMarket),
		TcgHigh:              cleanPrice(c.TcgHigh),
		CkSell:               cleanPrice(c.CkSell),
		CkBuylist:            cleanPrice(c.CkBuylist),
		CkBuylistQuantityCap: c.CkBuylistQuantityCap,
	}
}

// Empty reports whether no channel carries a value.
func (c Channels) Empty() bool {
	return c.TcgLow == nil &&
		c.TcgMarket == nil &&
		c.TcgHigh == nil &&
		c.CkSell == nil &&
		c.CkBuylist == nil &&
		c.CkBuylistQuantityCap == nil
}

func cleanPrice(value *float64) *float64 {
	if value == nil {
		return nil
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) || *value < 0 {
		return nil
	}
	return value
}

// ClassifyVendorChannel maps a single scalar price into the channel slot
// implied by (vendor, hint). A market aggregator's low/mid/high hints map to
// the tcg channels; a buylist vendor's buy/sell hints map to the ck
// channels; anything unrecognized defaults to tcg_market.
func ClassifyVendorChannel(price float64, vendor, hint string) Channels {
	v := strings.ToLower(strings.TrimSpace(vendor))
	h := strings.ToLower(strings.TrimSpace(hint))

	switch v {
	case "tcgplayer":
		switch h {
		case "low":
			return Channels{TcgLow: &price}
		case "high":
			return Channels{TcgHigh: &price}
		default: // "mid", "market" and unknown hints
			return Channels{TcgMarket: &price}
		}
	case "ck", "cardkingdom", "card kingdom":
		if h == "buy" || h == "buylist" {
			return Channels{CkBuylist: &price}
		}
		return Channels{CkSell: &price}
	default:
		return Channels{TcgMarket: &price}
	}
}
