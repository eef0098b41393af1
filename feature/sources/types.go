package sources

import (
	"fmt"
	"strconv"
	"strings"
)

// ProductID is the tracker's numeric product identifier. The tracker keys its
// pricing and sku maps by the decimal string form of this id.
type ProductID int64

// ParseProductID parses the tracker's string map key.
func ParseProductID(key string) (ProductID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed product id %q: %w", key, err)
	}
	return ProductID(value), nil
}

func (p ProductID) String() string {
	return strconv.FormatInt(int64(p), 10)
}

// trackerSetList is the GET /sets response.
type trackerSetList struct {
	Sets []trackerSetListItem `json:"sets"`
}

type trackerSetListItem struct {
	ID int64 `json:"id"`
}

// trackerSetProducts is the GET /sets/{id} response. Product keys in the raw
// payload are decimal product ids; the boundary parse converts them.
type trackerSetProducts struct {
	SetID    int64                     `json:"set_id"`
	Products map[string]trackerProduct `json:"products"`
}

type trackerProduct struct {
	ID         int64   `json:"id"`
	PrintingID *string `json:"scryfall_id"`
}

type trackerSetPricing struct {
	SetID  int64                       `json:"set_id"`
	Prices map[string]trackerPriceItem `json:"prices"`
}

type trackerPriceItem struct {
	Tcg *trackerPriceByFinish `json:"tcg"`
}

type trackerPriceByFinish struct {
	Normal *trackerPricePoint `json:"Normal"`
	Foil   *trackerPricePoint `json:"Foil"`
}

type trackerPricePoint struct {
	Low    *float64 `json:"low"`
	Market *float64 `json:"market"`
}

// trackerSetSkus is the GET /sets/{id}/skus response: product id to sku id to
// sku attributes.
type trackerSetSkus struct {
	SetID    int64                            `json:"set_id"`
	Products map[string]map[string]trackerSku `json:"products"`
}

type trackerSku struct {
	Condition *string  `json:"cnd"`
	Variant   *string  `json:"var"`
	Language  *string  `json:"lng"`
	High      *float64 `json:"hi"`
}

// buylistItem is one row of the vendor's full pricelist. The sell-price field
// name varies across payload revisions.
type buylistItem struct {
	PrintingID *string `json:"scryfall_id"`
	IsFoil     *string `json:"is_foil"`
	PriceBuy   *string `json:"price_buy"`
	PriceSell  *string `json:"price_sell"`
	// Aliases seen in older pricelist revisions.
	SellPrice   *string `json:"sell_price"`
	PriceRetail *string `json:"price_retail"`
	RetailPrice *string `json:"retail_price"`
	QtyBuying   *int64  `json:"qty_buying"`
	URL         *string `json:"url"`
}

func (b *buylistItem) sellPrice() *string {
	for _, candidate := range []*string{b.PriceSell, b.SellPrice, b.PriceRetail, b.RetailPrice} {
		if candidate != nil {
			return candidate
		}
	}
	return nil
}

type buylistPayload struct {
	Data []buylistItem `json:"data"`
}

// parseBuylistBool accepts the vendor's loose truthy encodings.
func parseBuylistBool(value *string) bool {
	if value == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(*value)) {
	case "true", "1", "yes", "y":
		return true
	default:
		return false
	}
}

// parseBuylistPrice parses a price string like "$1.25"; anything unparseable
// is zero, which the callers treat as "no price".
func parseBuylistPrice(value *string) float64 {
	if value == nil {
		return 0
	}
	text := strings.ReplaceAll(strings.TrimSpace(*value), "$", "")
	parsed, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// oracleBulkIndex is the metadata provider's bulk-data listing.
type oracleBulkIndex struct {
	Data []oracleBulkItem `json:"data"`
}

type oracleBulkItem struct {
	Type        string  `json:"type"`
	DownloadURI *string `json:"download_uri"`
}

// OracleCard is one card object from the bulk default-cards dump.
type OracleCard struct {
	ID              string           `json:"id"`
	Name            *string          `json:"name"`
	OracleID        *string          `json:"oracle_id"`
	Set             *string          `json:"set"`
	SetName         *string          `json:"set_name"`
	CollectorNumber *string          `json:"collector_number"`
	ReleasedAt      *string          `json:"released_at"`
	Lang            *string          `json:"lang"`
	ManaCost        *string          `json:"mana_cost"`
	TypeLine        *string          `json:"type_line"`
	OracleText      *string          `json:"oracle_text"`
	Reserved        *bool            `json:"reserved"`
	Keywords        []string         `json:"keywords"`
	Colors          []string         `json:"colors"`
	ColorIdentity   []string         `json:"color_identity"`
	Cmc             *float64         `json:"cmc"`
	Rarity          *string          `json:"rarity"`
	Layout          *string          `json:"layout"`
	Artist          *string          `json:"artist"`
	TcgplayerID     *int64           `json:"tcgplayer_id"`
	CardmarketID    *int64           `json:"cardmarket_id"`
	MtgoID          *int64           `json:"mtgo_id"`
	MtgoFoilID      *int64           `json:"mtgo_foil_id"`
	Digital         *bool            `json:"digital"`
	Finishes        []string         `json:"finishes"`
	ImageUris       *oracleImageUris `json:"image_uris"`
	CardFaces       []oracleCardFace `json:"card_faces"`
}

type oracleImageUris struct {
	Normal  *string `json:"normal"`
	Small   *string `json:"small"`
	ArtCrop *string `json:"art_crop"`
}

type oracleCardFace struct {
	ImageUris *oracleImageUris `json:"image_uris"`
}

// imageURL picks a face-level image when the card has no top-level one, as
// happens for double-faced layouts.
func (c *OracleCard) imageURL(pick func(*oracleImageUris) *string) *string {
	if c.ImageUris != nil {
		if value := pick(c.ImageUris); value != nil {
			return value
		}
	}
	if len(c.CardFaces) > 0 && c.CardFaces[0].ImageUris != nil {
		return pick(c.CardFaces[0].ImageUris)
	}
	return nil
}
