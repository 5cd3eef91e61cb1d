// internal/core/domain/catalog/catalog.go
package catalog

import (
	"solboost-bot/internal/core/domain/validation"

	"github.com/shopspring/decimal"
)

// Catalog - неизменяемый набор тарифов. После New не модифицируется,
// поэтому безопасен для конкурентного чтения.
type Catalog struct {
	tiers []ServiceTier
	byID  map[string]int
}

// New проверяет тарифы и собирает каталог
func New(tiers []ServiceTier) (*Catalog, error) {
	if len(tiers) == 0 {
		return nil, newConfigError("", "нет ни одного тарифа")
	}

	c := &Catalog{
		tiers: make([]ServiceTier, 0, len(tiers)),
		byID:  make(map[string]int, len(tiers)),
	}

	for _, tier := range tiers {
		if err := checkTier(&tier); err != nil {
			return nil, err
		}
		if _, dup := c.byID[tier.ID]; dup {
			return nil, newConfigError(tier.ID, "повторяющийся идентификатор")
		}
		c.byID[tier.ID] = len(c.tiers)
		c.tiers = append(c.tiers, cloneTier(tier))
	}

	return c, nil
}

// Tier возвращает тариф по идентификатору
func (c *Catalog) Tier(id string) (*ServiceTier, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.tiers[idx], true
}

// Tiers возвращает тарифы в порядке объявления
func (c *Catalog) Tiers() []*ServiceTier {
	result := make([]*ServiceTier, len(c.tiers))
	for i := range c.tiers {
		result[i] = &c.tiers[i]
	}
	return result
}

// Len количество тарифов
func (c *Catalog) Len() int {
	return len(c.tiers)
}

func checkTier(t *ServiceTier) error {
	if t.ID == "" {
		return newConfigError("", "пустой идентификатор тарифа")
	}
	if t.Name == "" {
		return newConfigError(t.ID, "пустое название")
	}

	modes := 0
	if t.FixedDuration != nil {
		modes++
	}
	if len(t.Durations) > 0 {
		modes++
	}
	if t.Custom {
		modes++
	}
	if modes != 1 {
		return newConfigError(t.ID, "должен быть задан ровно один режим длительности (fixed/durations/custom)")
	}

	if t.FixedDuration != nil && *t.FixedDuration <= 0 {
		return newConfigError(t.ID, "фиксированная длительность должна быть положительной")
	}
	for _, d := range t.Durations {
		if d <= 0 {
			return newConfigError(t.ID, "длительность %d должна быть положительной", d)
		}
	}

	if t.Custom {
		if t.BasePrice != nil {
			return newConfigError(t.ID, "у индивидуального тарифа не может быть базовой цены")
		}
	} else {
		if t.BasePrice == nil {
			return newConfigError(t.ID, "не задана базовая цена")
		}
		if t.BasePrice.IsNegative() {
			return newConfigError(t.ID, "отрицательная базовая цена")
		}
	}
	for hours, price := range t.PriceTable {
		if price.IsNegative() {
			return newConfigError(t.ID, "отрицательная цена для %d ч", hours)
		}
	}

	if !validation.IsValidAddress(t.Wallet) {
		return newConfigError(t.ID, "некорректный адрес кошелька %q", t.Wallet)
	}
	return nil
}

func cloneTier(t ServiceTier) ServiceTier {
	if t.FixedDuration != nil {
		d := *t.FixedDuration
		t.FixedDuration = &d
	}
	if t.BasePrice != nil {
		p := *t.BasePrice
		t.BasePrice = &p
	}
	t.Durations = append([]int(nil), t.Durations...)
	t.Benefits = append([]string(nil), t.Benefits...)
	if t.PriceTable != nil {
		table := make(map[int]decimal.Decimal, len(t.PriceTable))
		for k, v := range t.PriceTable {
			table[k] = v
		}
		t.PriceTable = table
	}
	return t
}
