package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Equal(t, 4, c.Len())

	ids := make([]string, 0, c.Len())
	for _, tier := range c.Tiers() {
		ids = append(ids, tier.ID)
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)

	basic, ok := c.Tier("1")
	require.True(t, ok)
	assert.Equal(t, ModeFixed, basic.Mode())

	advanced, _ := c.Tier("2")
	assert.Equal(t, ModeSet, advanced.Mode())

	custom, _ := c.Tier("4")
	assert.Equal(t, ModeCustom, custom.Mode())

	_, ok = c.Tier("9")
	assert.False(t, ok)
}

func TestPriceForTable(t *testing.T) {
	c := Default()
	advanced, _ := c.Tier("2")

	cases := map[int]string{3: "2.75", 6: "5.5", 12: "10.5"}
	for hours, want := range cases {
		got, ok := PriceFor(advanced, hours)
		require.True(t, ok)
		assert.True(t, got.Equal(dec(want)), "%d ч: ожидали %s, получили %s", hours, want, got)
	}

	// нет в таблице - base × duration
	got, ok := PriceFor(advanced, 5)
	require.True(t, ok)
	assert.True(t, got.Equal(dec("13.75")), "получили %s", got)

	premium, _ := c.Tier("3")
	got, _ = PriceFor(premium, 168)
	assert.True(t, got.Equal(dec("40")))
	got, _ = PriceFor(premium, 2)
	assert.True(t, got.Equal(dec("32")))
}

func TestPriceForFixedIgnoresArgument(t *testing.T) {
	basic, _ := Default().Tier("1")

	for _, hours := range []int{0, 1, 7, 100} {
		got, ok := PriceFor(basic, hours)
		require.True(t, ok)
		assert.True(t, got.Equal(dec("1.25")))
	}
}

func TestPriceForCustomHasNoPrice(t *testing.T) {
	custom, _ := Default().Tier("4")

	for _, hours := range []int{0, 1, 24, 168, -1} {
		_, ok := PriceFor(custom, hours)
		assert.False(t, ok)
	}

	_, ok := PriceFor(nil, 1)
	assert.False(t, ok)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1.25", FormatPrice(dec("1.25")))
	assert.Equal(t, "5.50", FormatPrice(dec("5.5")))
	assert.Equal(t, "40.00", FormatPrice(dec("40")))
}

func TestDurationLabelAndMode(t *testing.T) {
	assert.Equal(t, "7 Days 🗓️", DurationLabel(168))
	assert.Equal(t, "24 Hours ⏰", DurationLabel(24))
	assert.Equal(t, "1 Hour ⏰", DurationLabel(1))
	assert.Equal(t, "6 Hours ⏰", DurationLabel(6))

	c := Default()
	basic, _ := c.Tier("1")
	advanced, _ := c.Tier("2")
	premium, _ := c.Tier("3")

	assert.Equal(t, "Moderate Mode", ModeName(basic, 1))
	assert.Equal(t, "Aggressive Mode", ModeName(advanced, 6))
	assert.Equal(t, "Turbo Mode", ModeName(premium, 24))
	assert.Equal(t, "High Frequency Mode", ModeName(premium, 168))
}

func TestAllowsDuration(t *testing.T) {
	c := Default()
	basic, _ := c.Tier("1")
	advanced, _ := c.Tier("2")
	custom, _ := c.Tier("4")

	assert.True(t, basic.AllowsDuration(1))
	assert.False(t, basic.AllowsDuration(2))
	assert.True(t, advanced.AllowsDuration(12))
	assert.False(t, advanced.AllowsDuration(24))
	assert.False(t, custom.AllowsDuration(1))
}

func TestNewRejectsBrokenTiers(t *testing.T) {
	base := dec("1")
	two := 2

	tests := []struct {
		name string
		tier ServiceTier
	}{
		{"no mode", ServiceTier{ID: "a", Name: "A", BasePrice: &base, Wallet: DefaultWallet}},
		{"two modes", ServiceTier{ID: "a", Name: "A", FixedDuration: &two, Durations: []int{1}, BasePrice: &base, Wallet: DefaultWallet}},
		{"no base price", ServiceTier{ID: "a", Name: "A", Durations: []int{1}, Wallet: DefaultWallet}},
		{"custom with price", ServiceTier{ID: "a", Name: "A", Custom: true, BasePrice: &base, Wallet: DefaultWallet}},
		{"bad wallet", ServiceTier{ID: "a", Name: "A", Custom: true, Wallet: "0OIl"}},
		{"negative table", ServiceTier{ID: "a", Name: "A", Durations: []int{1}, BasePrice: &base,
			PriceTable: map[int]decimal.Decimal{1: dec("-1")}, Wallet: DefaultWallet}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]ServiceTier{tt.tier})
			require.Error(t, err)
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}

	_, err := New(nil)
	assert.Error(t, err)

	dup := ServiceTier{ID: "a", Name: "A", Custom: true, Wallet: DefaultWallet}
	_, err = New([]ServiceTier{dup, dup})
	assert.Error(t, err)
}

func TestCatalogIsNotAffectedByCallerMutation(t *testing.T) {
	tiers := DefaultTiers()
	c, err := New(tiers)
	require.NoError(t, err)

	tiers[1].PriceTable[3] = dec("999")
	tiers[1].Durations[0] = 99

	advanced, _ := c.Tier("2")
	got, _ := PriceFor(advanced, 3)
	assert.True(t, got.Equal(dec("2.75")))
	assert.True(t, advanced.AllowsDuration(3))
}

const catalogJSON = `{
  "tiers": [
    {
      "id": "fast",
      "name": "Fast",
      "description": "d",
      "durations": [2, 4],
      "base_price": "0.5",
      "price_table": {"4": "1.8"},
      "buy_strategy": "b",
      "sell_strategy": "s",
      "wallet": "FispAYkU2pkBQiV4yd9hHmLAhzWUL3NKLrG5N6EzzmYm",
      "benefits": ["x"]
    },
    {
      "id": "vip",
      "name": "VIP",
      "custom": true,
      "buy_strategy": "Custom",
      "sell_strategy": "Custom",
      "wallet": "FispAYkU2pkBQiV4yd9hHmLAhzWUL3NKLrG5N6EzzmYm",
      "benefits": []
    }
  ]
}`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	fast, ok := c.Tier("fast")
	require.True(t, ok)
	got, ok := PriceFor(fast, 4)
	require.True(t, ok)
	assert.True(t, got.Equal(dec("1.8")))
	got, _ = PriceFor(fast, 2)
	assert.True(t, got.Equal(dec("1")))

	vip, _ := c.Tier("vip")
	assert.Equal(t, ModeCustom, vip.Mode())
}

func TestLoadFileEmptyPathReturnsDefault(t *testing.T) {
	c, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())
}

func TestParseRejectsInvalidWallet(t *testing.T) {
	broken := strings.ReplaceAll(catalogJSON, "FispAYkU2pkBQiV4yd9hHmLAhzWUL3NKLrG5N6EzzmYm", "not-a-wallet")
	_, err := Parse(strings.NewReader(broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "валидации")
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"tiers": [], "extra": 1}`))
	assert.Error(t, err)
}
