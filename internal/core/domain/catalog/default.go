// internal/core/domain/catalog/default.go
package catalog

import "github.com/shopspring/decimal"

// DefaultWallet кошелек для приема оплаты по умолчанию
const DefaultWallet = "FispAYkU2pkBQiV4yd9hHmLAhzWUL3NKLrG5N6EzzmYm"

// DefaultTiers встроенный набор тарифов
func DefaultTiers() []ServiceTier {
	one := 1
	basic := decimal.RequireFromString("1.25")
	advanced := decimal.RequireFromString("2.75")
	premium := decimal.RequireFromString("16.0")

	return []ServiceTier{
		{
			ID:            "1",
			Name:          "🔹 Basic Volume Boost",
			Description:   "Steady volume boosting with buys larger than sells. *Includes all transaction fees.*",
			FixedDuration: &one,
			BasePrice:     &basic,
			BuyStrategy:   "1-2 buys per minute",
			SellStrategy:  "1 sell per minute",
			Wallet:        DefaultWallet,
			Benefits: []string{
				"⚡ Increased liquidity",
				"📈 Enhanced trading volume",
				"👁️ Improved market visibility",
			},
		},
		{
			ID:          "2",
			Name:        "🔸 Advanced Volume Boost",
			Description: "Enhanced volume boosting with strategic buy/sell activities.",
			Durations:   []int{3, 6, 12},
			BasePrice:   &advanced,
			PriceTable: map[int]decimal.Decimal{
				3:  decimal.RequireFromString("2.75"),
				6:  decimal.RequireFromString("5.5"),
				12: decimal.RequireFromString("10.5"),
			},
			BuyStrategy:  "2 buys per minute",
			SellStrategy: "1 sell per minute",
			Wallet:       DefaultWallet,
			Benefits: []string{
				"⚡ Enhanced liquidity",
				"📈 Boosted trading volume",
				"👁️ Elevated market presence",
			},
		},
		{
			ID:          "3",
			Name:        "🔺 Premium Volume Boost",
			Description: "Maximized volume boosting with aggressive buy/sell strategies.",
			Durations:   []int{24, 168},
			BasePrice:   &premium,
			PriceTable: map[int]decimal.Decimal{
				24:  decimal.RequireFromString("16.0"),
				168: decimal.RequireFromString("40.0"),
			},
			BuyStrategy:  "4 buys / 2 sells per minute",
			SellStrategy: "2 sells per minute",
			Wallet:       DefaultWallet,
			Benefits: []string{
				"⚡ Maximized liquidity",
				"📈 Significantly increased trading volume",
				"👁️ Dominant market visibility",
			},
		},
		{
			ID:           "4",
			Name:         "✨ Customizable Volume Boost",
			Description:  "Tailored buy/sell ratios and randomized intervals to fit your project needs.",
			Custom:       true,
			BuyStrategy:  "Custom",
			SellStrategy: "Custom",
			Wallet:       DefaultWallet,
			Benefits: []string{
				"⚡ Customized liquidity",
				"📈 Flexible trading volume",
				"👁️ Adaptable market strategies",
			},
		},
	}
}

// Default возвращает каталог со встроенными тарифами
func Default() *Catalog {
	c, err := New(DefaultTiers())
	if err != nil {
		panic(err)
	}
	return c
}
