// internal/infrastructure/persistence/postgres/factory/factory.go
package postgres_factory

import (
	"fmt"
	"sync"

	"solboost-bot/internal/infrastructure/persistence/postgres/database"
	"solboost-bot/internal/infrastructure/persistence/postgres/repository/operator"
	"solboost-bot/internal/infrastructure/persistence/postgres/repository/order"
	"solboost-bot/pkg/logger"
)

// RepositoryFactory лениво создает репозитории поверх DatabaseService
type RepositoryFactory struct {
	db                 *database.DatabaseService
	orderRepository    *order.OrderRepository
	operatorRepository *operator.OperatorRepository
	mu                 sync.Mutex
}

// RepositoryDependencies зависимости фабрики репозиториев
type RepositoryDependencies struct {
	DatabaseService *database.DatabaseService
}

// NewRepositoryFactory создает фабрику репозиториев
func NewRepositoryFactory(deps RepositoryDependencies) (*RepositoryFactory, error) {
	if deps.DatabaseService == nil {
		return nil, fmt.Errorf("DatabaseService не может быть nil")
	}
	return &RepositoryFactory{db: deps.DatabaseService}, nil
}

// CreateOrderRepository журнал заказов
func (rf *RepositoryFactory) CreateOrderRepository() (*order.OrderRepository, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.orderRepository != nil {
		return rf.orderRepository, nil
	}

	db := rf.db.GetDB()
	if db == nil {
		return nil, fmt.Errorf("соединение с базой данных не установлено")
	}

	rf.orderRepository = order.NewOrderRepository(db)
	logger.Debug("✅ OrderRepository создан")
	return rf.orderRepository, nil
}

// CreateOperatorRepository хранилище админов
func (rf *RepositoryFactory) CreateOperatorRepository() (*operator.OperatorRepository, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.operatorRepository != nil {
		return rf.operatorRepository, nil
	}

	db := rf.db.GetDB()
	if db == nil {
		return nil, fmt.Errorf("соединение с базой данных не установлено")
	}

	rf.operatorRepository = operator.NewOperatorRepository(db)
	logger.Debug("✅ OperatorRepository создан")
	return rf.operatorRepository, nil
}
