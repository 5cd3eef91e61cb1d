// internal/core/domain/catalog/types.go
package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DurationMode способ выбора длительности у тарифа
type DurationMode string

const (
	ModeFixed  DurationMode = "fixed"  // одна фиксированная длительность
	ModeSet    DurationMode = "set"    // выбор из списка
	ModeCustom DurationMode = "custom" // цена по запросу
)

// ServiceTier - тариф услуги
type ServiceTier struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`

	// Ровно одно из трех
	FixedDuration *int  `json:"fixed_duration,omitempty" validate:"omitempty,gt=0"`
	Durations     []int `json:"durations,omitempty" validate:"omitempty,dive,gt=0"`
	Custom        bool  `json:"custom,omitempty"`

	BasePrice  *decimal.Decimal        `json:"base_price,omitempty"`
	PriceTable map[int]decimal.Decimal `json:"price_table,omitempty"`

	BuyStrategy  string   `json:"buy_strategy" validate:"required"`
	SellStrategy string   `json:"sell_strategy" validate:"required"`
	Wallet       string   `json:"wallet" validate:"required,solana_address"`
	Benefits     []string `json:"benefits" validate:"dive,required"`
}

// Mode возвращает режим длительности тарифа
func (t *ServiceTier) Mode() DurationMode {
	switch {
	case t.Custom:
		return ModeCustom
	case t.FixedDuration != nil:
		return ModeFixed
	default:
		return ModeSet
	}
}

// AllowsDuration проверяет, можно ли выбрать длительность для тарифа
func (t *ServiceTier) AllowsDuration(hours int) bool {
	switch t.Mode() {
	case ModeFixed:
		return *t.FixedDuration == hours
	case ModeSet:
		for _, d := range t.Durations {
			if d == hours {
				return true
			}
		}
	}
	return false
}

// ConfigError ошибка конфигурации каталога
type ConfigError struct {
	TierID  string
	Message string
}

func (e *ConfigError) Error() string {
	if e.TierID == "" {
		return fmt.Sprintf("каталог: %s", e.Message)
	}
	return fmt.Sprintf("каталог: тариф %s: %s", e.TierID, e.Message)
}

func newConfigError(tierID, format string, args ...interface{}) *ConfigError {
	return &ConfigError{TierID: tierID, Message: fmt.Sprintf(format, args...)}
}
