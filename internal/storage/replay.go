package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectstockmarket/stockmarket/internal/model"
)

// LoadRecent reads the newest records for a product, oldest first, so
// the result can be replayed straight into a series.
func LoadRecent(ctx context.Context, pool *pgxpool.Pool, productID, limit int) ([]model.PriceRecord, error) {
	rows, err := pool.Query(ctx, `
		SELECT recorded_at, price
		FROM price_records
		WHERE product_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("load records for product %d: %w", productID, err)
	}
	defer rows.Close()

	var records []model.PriceRecord
	for rows.Next() {
		var ts time.Time
		var price int
		if err := rows.Scan(&ts, &price); err != nil {
			return nil, fmt.Errorf("scan record for product %d: %w", productID, err)
		}
		records = append(records, model.PriceRecord{Timestamp: ts.UTC(), Price: price})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read records for product %d: %w", productID, err)
	}

	// Newest-first from the query; flip to ascending.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return records, nil
}
