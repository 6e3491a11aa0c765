package types

import (
	"strings"
	"time"
)

type AssetType string

const (
	AssetTypeStock  AssetType = "STOCK"
	AssetTypeCrypto AssetType = "CRYPTO"
	AssetTypeEtf    AssetType = "ETF"
)

// ParseAssetType normalizes a stored asset type. Unknown or empty values are
// treated as stocks, which is what the assets table defaults to.
func ParseAssetType(s string) AssetType {
	switch t := AssetType(strings.ToUpper(strings.TrimSpace(s))); t {
	case AssetTypeCrypto, AssetTypeEtf:
		return t
	default:
		return AssetTypeStock
	}
}

// Asset is a tradable symbol known to the candle database.
type Asset struct {
	Id         int       `json:"id"`
	Ticker     string    `json:"ticker"`
	Name       string    `json:"name"`
	Type       AssetType `json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}
