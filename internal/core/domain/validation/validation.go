// internal/core/domain/validation/validation.go
package validation

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// Адрес кошелька или токена: base58, 32-44 символа
	addressPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	// Подпись транзакции: base58, ровно 88 символов
	signaturePattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{88}$`)
)

// IsValidAddress проверяет формат Solana-адреса
func IsValidAddress(address string) bool {
	return addressPattern.MatchString(address)
}

// IsValidSignature проверяет формат подписи транзакции
func IsValidSignature(signature string) bool {
	return signaturePattern.MatchString(signature)
}

// IsURL сообщает, похож ли ввод на ссылку (например, на обозреватель блоков)
func IsURL(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ExtractSignature возвращает кандидата в подписи из ввода пользователя.
// Для ссылки берется последний сегмент пути, ok=false если ссылка битая.
func ExtractSignature(input string) (candidate string, ok bool) {
	input = strings.TrimSpace(input)
	if !strings.Contains(input, "://") {
		return input, true
	}

	u, err := url.Parse(input)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}

	path := strings.TrimRight(u.Path, "/")
	if path == "" {
		return "", false
	}

	segments := strings.Split(path, "/")
	return segments[len(segments)-1], true
}
