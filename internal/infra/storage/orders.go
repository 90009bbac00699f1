package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"settle_go/internal/domain"
)

// Storage is the SQLite-backed order store.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the order database at path.
func NewStorage(path string) (*Storage, error) {
	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Order{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Create persists a new order. A duplicate payment address violates
// the unique index and fails: addresses are never reused.
func (s *Storage) Create(ctx context.Context, order *domain.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

// GetByID retrieves an order by its id. Not found is not an error.
func (s *Storage) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByAddress retrieves an order by its payment address.
func (s *Storage) GetByAddress(ctx context.Context, address string) (*domain.Order, error) {
	var order domain.Order
	err := s.db.WithContext(ctx).First(&order, "payment_address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ConditionalUpdate applies patch only if the stored status still
// equals expectedStatus. Compiles to a single conditional UPDATE, so
// concurrent callers race on RowsAffected: exactly one wins.
func (s *Storage) ConditionalUpdate(ctx context.Context, address, expectedStatus string, patch map[string]any) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("payment_address = ? AND status = ?", address, expectedStatus).
		Updates(patch)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update applies patch unconditionally. Used for terminal writes
// after the PROCESSING lock is already held.
func (s *Storage) Update(ctx context.Context, address string, patch map[string]any) error {
	return s.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("payment_address = ?", address).
		Updates(patch).Error
}

// ListByStatus returns all orders in the given status, oldest first.
func (s *Storage) ListByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at asc").
		Find(&orders).Error
	return orders, err
}
