package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	applogger "StockPulse/pkg/logger"
)

var _ domrepo.InventoryStore = (*PGInventoryStore)(nil)

const inventorySchema = `
CREATE TABLE IF NOT EXISTS inventory_items (
    id            BIGINT PRIMARY KEY,
    name          TEXT NOT NULL,
    quantity      INTEGER NOT NULL DEFAULT 0,
    price         NUMERIC(12,2) NOT NULL DEFAULT 0,
    reorder_level INTEGER NOT NULL DEFAULT 0,
    category      TEXT NOT NULL DEFAULT ''
)`

const inventoryColumns = "id, name, quantity, price::float8, reorder_level, category"

// PGInventoryStore implements InventoryStore on PostgreSQL.
type PGInventoryStore struct {
	pool *pgxpool.Pool
	l    *applogger.Logger
}

// NewPGInventoryStore connects to url and pings the database.
func NewPGInventoryStore(ctx context.Context, url string, maxConns, minConns int32) (*PGInventoryStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &PGInventoryStore{pool: pool}, nil
}

// SetLogger injects a structured logger.
func (s *PGInventoryStore) SetLogger(l *applogger.Logger) { s.l = l }

// InitSchema creates the inventory table and, when it is empty, inserts seed.
func (s *PGInventoryStore) InitSchema(ctx context.Context, seed []models.InventoryItem) error {
	if _, err := s.pool.Exec(ctx, inventorySchema); err != nil {
		return fmt.Errorf("inventory schema: %w", err)
	}
	if len(seed) == 0 {
		return nil
	}

	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM inventory_items").Scan(&n); err != nil {
		return fmt.Errorf("inventory count: %w", err)
	}
	if n > 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, it := range seed {
		batch.Queue(`INSERT INTO inventory_items (id, name, quantity, price, reorder_level, category)
            VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
			it.ID, it.Name, it.Quantity, it.Price, it.ReorderLevel, it.Category)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inventory seed: %w", err)
	}
	return nil
}

func (s *PGInventoryStore) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	return s.queryItems(ctx, "SELECT "+inventoryColumns+" FROM inventory_items ORDER BY id")
}

func (s *PGInventoryStore) LowStockItems(ctx context.Context) ([]models.InventoryItem, error) {
	return s.queryItems(ctx, "SELECT "+inventoryColumns+" FROM inventory_items WHERE quantity <= reorder_level ORDER BY id")
}

func (s *PGInventoryStore) GetItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+inventoryColumns+" FROM inventory_items WHERE id = $1", id)
	var it models.InventoryItem
	if err := row.Scan(&it.ID, &it.Name, &it.Quantity, &it.Price, &it.ReorderLevel, &it.Category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %d: %w", id, domrepo.ErrItemNotFound)
		}
		s.logError("postgres get_item error", err)
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

func (s *PGInventoryStore) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	tag, err := s.pool.Exec(ctx, "UPDATE inventory_items SET quantity = $1 WHERE id = $2", quantity, id)
	if err != nil {
		s.logError("postgres update_quantity error", err)
		return fmt.Errorf("update quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d: %w", id, domrepo.ErrItemNotFound)
	}
	return nil
}

func (s *PGInventoryStore) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PGInventoryStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PGInventoryStore) queryItems(ctx context.Context, q string) ([]models.InventoryItem, error) {
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		s.logError("postgres list_items error", err)
		return nil, fmt.Errorf("list items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.InventoryItem, error) {
		var it models.InventoryItem
		err := row.Scan(&it.ID, &it.Name, &it.Quantity, &it.Price, &it.ReorderLevel, &it.Category)
		return it, err
	})
	if err != nil {
		s.logError("postgres scan items error", err)
		return nil, fmt.Errorf("scan items: %w", err)
	}
	return items, nil
}

func (s *PGInventoryStore) logError(msg string, err error) {
	if s.l != nil {
		s.l.Error(msg, applogger.Error(err))
	}
}
