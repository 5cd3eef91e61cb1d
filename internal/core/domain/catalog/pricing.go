// internal/core/domain/catalog/pricing.go
package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceFor считает цену тарифа за длительность в SOL.
// ok=false для индивидуального тарифа: цену сообщают вручную.
func PriceFor(tier *ServiceTier, hours int) (price decimal.Decimal, ok bool) {
	if tier == nil {
		return decimal.Zero, false
	}

	switch tier.Mode() {
	case ModeFixed:
		// фиксированная длительность важнее аргумента
		return tier.BasePrice.Mul(decimal.NewFromInt(int64(*tier.FixedDuration))), true
	case ModeSet:
		if p, found := tier.PriceTable[hours]; found {
			return p, true
		}
		return tier.BasePrice.Mul(decimal.NewFromInt(int64(hours))), true
	default:
		return decimal.Zero, false
	}
}

// FormatPrice форматирует цену с двумя знаками после запятой
func FormatPrice(price decimal.Decimal) string {
	return price.StringFixed(2)
}

// DurationLabel подпись длительности для кнопок и сообщений
func DurationLabel(hours int) string {
	switch {
	case hours == 168:
		return "7 Days 🗓️"
	case hours == 24:
		return "24 Hours ⏰"
	case hours == 1:
		return "1 Hour ⏰"
	default:
		return fmt.Sprintf("%d Hours ⏰", hours)
	}
}

// ModeName режим работы бота для выбранной длительности
func ModeName(tier *ServiceTier, hours int) string {
	if tier.Mode() == ModeFixed {
		return "Moderate Mode"
	}
	switch hours {
	case 3, 6, 12:
		return "Aggressive Mode"
	case 24:
		return "Turbo Mode"
	case 168:
		return "High Frequency Mode"
	default:
		return "Custom Mode"
	}
}
