// internal/core/domain/payment/units.go
package payment

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var lamportsPerSOL = decimal.NewFromInt(LamportsPerSOL)

// ToBaseUnits переводит сумму в SOL в лампорты с отбрасыванием дробной части
func ToBaseUnits(sol decimal.Decimal) (uint64, error) {
	if sol.IsNegative() {
		return 0, fmt.Errorf("отрицательная сумма: %s", sol.String())
	}

	lamports := sol.Mul(lamportsPerSOL).Truncate(0)
	if !lamports.BigInt().IsUint64() {
		return 0, fmt.Errorf("сумма %s SOL вне диапазона u64", sol.String())
	}
	return lamports.BigInt().Uint64(), nil
}

// FromBaseUnits переводит лампорты в SOL
func FromBaseUnits(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), 0).Div(lamportsPerSOL)
}
