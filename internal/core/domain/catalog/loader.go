// internal/core/domain/catalog/loader.go
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"solboost-bot/internal/core/domain/validation"

	"github.com/go-playground/validator/v10"
)

// File формат JSON-файла каталога
type File struct {
	Tiers []ServiceTier `json:"tiers" validate:"required,min=1,dive"`
}

var fileValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("solana_address", func(fl validator.FieldLevel) bool {
		return validation.IsValidAddress(fl.Field().String())
	})
	return v
}

// LoadFile читает каталог из JSON-файла. Пустой путь - встроенный каталог.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла каталога %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse разбирает и проверяет каталог
func Parse(r io.Reader) (*Catalog, error) {
	var file File
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("ошибка разбора каталога: %w", err)
	}

	if err := fileValidator.Struct(file); err != nil {
		return nil, fmt.Errorf("ошибка валидации каталога: %w", err)
	}

	return New(file.Tiers)
}
