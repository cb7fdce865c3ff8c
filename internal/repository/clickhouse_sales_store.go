package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgch "StockPulse/pkg/clickhouse"
	applogger "StockPulse/pkg/logger"
)

var _ domrepo.SalesStore = (*CHSalesStore)(nil)

// CHSalesStore implements SalesStore backed by ClickHouse.
type CHSalesStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHSalesStore(ch *pkgch.Client) *CHSalesStore {
	return &CHSalesStore{db: ch.DB(), table: pkgch.SalesTable(ch.Database())}
}

// SetLogger injects a structured logger.
func (s *CHSalesStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSalesStore) GetSalesHistory(ctx context.Context, itemID int64) ([]models.SalesRecord, error) {
	return s.QuerySales(ctx, itemID, time.Time{}, time.Time{})
}

func (s *CHSalesStore) QuerySales(ctx context.Context, itemID int64, from, to time.Time) ([]models.SalesRecord, error) {
	start := time.Now()
	var (
		where = []string{"item_id = ?"}
		args  = []interface{}{itemID}
	)
	if !from.IsZero() {
		where = append(where, "sale_date >= ?")
		args = append(args, from)
	}
	if !to.IsZero() {
		where = append(where, "sale_date <= ?")
		args = append(args, to)
	}
	q := fmt.Sprintf(`
        SELECT item_id, item_name, sale_date, quantity, revenue, remaining
        FROM %s
        WHERE %s
        ORDER BY sale_date ASC, seq ASC
    `, s.table, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.logError("clickhouse query_sales query error", itemID, err)
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	out := make([]models.SalesRecord, 0, 128)
	for rows.Next() {
		var (
			r         models.SalesRecord
			qty       uint32
			remaining sql.NullInt32
		)
		if err := rows.Scan(&r.ItemID, &r.ItemName, &r.Date, &qty, &r.Revenue, &remaining); err != nil {
			s.logError("clickhouse query_sales scan error", itemID, err)
			return nil, fmt.Errorf("scan sales record: %w", err)
		}
		r.Quantity = int(qty)
		if remaining.Valid {
			v := int(remaining.Int32)
			r.Remaining = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		s.logError("clickhouse query_sales rows error", itemID, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse query_sales ok",
			applogger.Int64("item_id", itemID),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHSalesStore) AppendSales(ctx context.Context, itemID int64, records []models.SalesRecord) error {
	if err := s.insert(ctx, itemID, records); err != nil {
		s.logError("clickhouse append_sales error", itemID, err)
		return fmt.Errorf("append sales: %w", err)
	}
	return nil
}

// ReplaceSales deletes the item's rows and inserts records. ClickHouse has no
// transactions, so a failed insert leaves the item empty until retried.
func (s *CHSalesStore) ReplaceSales(ctx context.Context, itemID int64, records []models.SalesRecord) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE item_id = ?", s.table)
	if _, err := s.db.ExecContext(ctx, q, itemID); err != nil {
		s.logError("clickhouse replace_sales delete error", itemID, err)
		return fmt.Errorf("replace sales: delete: %w", err)
	}
	if err := s.insert(ctx, itemID, records); err != nil {
		s.logError("clickhouse replace_sales insert error", itemID, err)
		return fmt.Errorf("replace sales: insert: %w", err)
	}
	return nil
}

func (s *CHSalesStore) insert(ctx context.Context, itemID int64, records []models.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}
	// multi-row VALUES, chunked to bound statement size
	const chunkSize = 2000
	seq := uint64(time.Now().UnixNano())
	for start := 0; start < len(records); start += chunkSize {
		end := start + chunkSize
		if end > len(records) {
			end = len(records)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, r := range records[start:end] {
			var remaining interface{}
			if r.Remaining != nil {
				remaining = int32(*r.Remaining)
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args, itemID, r.ItemName, r.Date, uint32(r.Quantity), r.Revenue, remaining, seq)
			seq++
		}
		q := fmt.Sprintf("INSERT INTO %s (item_id, item_name, sale_date, quantity, revenue, remaining, seq) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *CHSalesStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the connection pool belongs to pkg/clickhouse.Client.
func (s *CHSalesStore) Close() error {
	return nil
}

func (s *CHSalesStore) logError(msg string, itemID int64, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", s.table),
		applogger.Int64("item_id", itemID),
		applogger.Error(err),
	)
}
