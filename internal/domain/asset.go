package domain

import "strings"

type AssetSymbol string

const (
	AssetBTC AssetSymbol = "BTC"
	AssetETH AssetSymbol = "ETH"
)

// SupportedAssets is ordered; menus and balance listings follow this order.
var SupportedAssets = []AssetSymbol{AssetBTC, AssetETH}

func ParseAsset(s string) AssetSymbol {
	return AssetSymbol(strings.ToUpper(strings.TrimSpace(s)))
}

func (a AssetSymbol) IsSupported() bool {
	for _, supported := range SupportedAssets {
		if a == supported {
			return true
		}
	}
	return false
}

func (a AssetSymbol) String() string {
	return string(a)
}
