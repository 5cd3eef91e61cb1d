// internal/infrastructure/persistence/postgres/models/operator.go
package models

import "time"

// Operator строка таблицы operators
type Operator struct {
	UserID  int64     `db:"user_id" json:"user_id"`
	AddedAt time.Time `db:"added_at" json:"added_at"`
}
