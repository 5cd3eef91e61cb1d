// internal/core/domain/checkout/errors.go
package checkout

import "errors"

// Ошибки, о которых пользователю уже сообщено. Этап сессии при них не меняется.
var (
	ErrValidation          = errors.New("invalid input")
	ErrNotFound            = errors.New("transaction not found")
	ErrInsufficientPayment = errors.New("payment verification failed")
	ErrAlreadyUsed         = errors.New("transaction already used")
	ErrTransient           = errors.New("temporary verification failure")
	ErrUnauthorized        = errors.New("not authorized")
)

// IsUserFacing ошибка ввода пользователя, а не сбой бота
func IsUserFacing(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientPayment) ||
		errors.Is(err, ErrAlreadyUsed) ||
		errors.Is(err, ErrTransient) ||
		errors.Is(err, ErrUnauthorized)
}
