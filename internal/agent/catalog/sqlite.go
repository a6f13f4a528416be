package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/shopbot/assistant/internal/agent/model"
	errx "github.com/shopbot/assistant/internal/core/error"
)

const selectProducts = `SELECT id, name, description, price, stock_count FROM products ORDER BY rowid`

// LoadSQLite reads every row of the products table. The database is opened read-only.
func LoadSQLite(ctx context.Context, path string) ([]model.Product, error) {
	if path == "" {
		return nil, errx.Configuration(fmt.Errorf("CATALOG_PATH is required for the sqlite source"))
	}
	dsn, err := readOnlyDSN(path)
	if err != nil {
		return nil, errx.Configuration(err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite catalog: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, selectProducts)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var (
			p    model.Product
			desc sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &desc, &p.Price, &p.StockCount); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Description = desc.String
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// readOnlyDSN builds a SQLite URI for path; characters such as '?' and '#'
// are percent-encoded so they stay part of the file name.
func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve catalog path %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}
	return u.String(), nil
}
