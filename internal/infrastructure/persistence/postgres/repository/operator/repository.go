// internal/infrastructure/persistence/postgres/repository/operator/repository.go
package operator

import (
	"context"
	"fmt"

	"solboost-bot/internal/core/domain/operators"
	"solboost-bot/internal/infrastructure/persistence/postgres/models"

	"github.com/jmoiron/sqlx"
)

// OperatorRepository список админов в таблице operators
type OperatorRepository struct {
	db *sqlx.DB
}

var _ operators.Store = (*OperatorRepository)(nil)

// NewOperatorRepository создает репозиторий админов
func NewOperatorRepository(db *sqlx.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// Load все админы в порядке добавления
func (r *OperatorRepository) Load(ctx context.Context) ([]int64, error) {
	query := `SELECT user_id, added_at FROM operators ORDER BY added_at, user_id`

	var rows []models.Operator
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("ошибка загрузки админов: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	return ids, nil
}

func (r *OperatorRepository) Add(ctx context.Context, userID int64) error {
	query := `INSERT INTO operators (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("ошибка добавления админа %d: %w", userID, err)
	}
	return nil
}

func (r *OperatorRepository) Remove(ctx context.Context, userID int64) error {
	query := `DELETE FROM operators WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("ошибка удаления админа %d: %w", userID, err)
	}
	return nil
}
