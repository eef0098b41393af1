package sources

// Config holds configuration for the external price and metadata feeds.
type Config struct {
	// TrackerBaseURL is the base URL of the market price tracker API.
	TrackerBaseURL string `mapstructure:"tracker_base_url" default:"https://tcgtracking.com/tcgapi/v1/1"`
	// BuylistPricelistURL is the buylist vendor's full pricelist endpoint.
	BuylistPricelistURL string `mapstructure:"buylist_pricelist_url" default:"https://api.cardkingdom.com/api/v2/pricelist"`
	// BuylistCacheFile is the on-disk cache for the vendor pricelist.
	BuylistCacheFile string `mapstructure:"buylist_cache_file" default:"ck_pricelist_cache.json"`
	// BuylistCacheMaxAgeHours is how long a cached pricelist stays fresh.
	BuylistCacheMaxAgeHours int `mapstructure:"buylist_cache_max_age_hours" default:"12"`
	// OracleBaseURL is the card metadata provider's API base.
	OracleBaseURL string `mapstructure:"oracle_base_url" default:"https://api.scryfall.com"`
	// TimeoutSeconds is the per-request timeout for all feeds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
}
