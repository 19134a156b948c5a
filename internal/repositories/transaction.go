package repositories

import (
	"context"

	"gorm.io/gorm"
)

// TxRepositories are repositories bound to one open transaction.
type TxRepositories struct {
	Products ProductRepository
	Orders   OrderRepository
}

// TxManager runs a function inside a database transaction. The transaction
// commits when fn returns nil and rolls back on any error.
type TxManager interface {
	Transaction(ctx context.Context, fn func(repos TxRepositories) error) error
}

// GORMTxManager is a GORM implementation of TxManager.
type GORMTxManager struct {
	db *gorm.DB
}

// NewGORMTxManager creates a new instance of GORMTxManager.
func NewGORMTxManager(db *gorm.DB) *GORMTxManager {
	return &GORMTxManager{db: db}
}

func (m *GORMTxManager) Transaction(ctx context.Context, fn func(repos TxRepositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Products: NewGORMProductRepository(tx),
			Orders:   NewGORMOrderRepository(tx),
		})
	})
}
