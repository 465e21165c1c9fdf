package survey

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/signalsfoundry/starfield-simulator/model"
	_ "modernc.org/sqlite"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS cones (
	catalog    TEXT    NOT NULL,
	ra         REAL    NOT NULL,
	dec        REAL    NOT NULL,
	radius     REAL    NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (catalog, ra, dec, radius)
);
CREATE TABLE IF NOT EXISTS cone_rows (
	catalog     TEXT    NOT NULL,
	ra          REAL    NOT NULL,
	dec         REAL    NOT NULL,
	radius      REAL    NOT NULL,
	idx         INTEGER NOT NULL,
	star_ra     REAL,
	star_dec    REAL,
	pmra        REAL,
	pmdec       REAL,
	mag_primary REAL,
	mag_alt1    REAL,
	mag_alt2    REAL,
	PRIMARY KEY (catalog, ra, dec, radius, idx)
);
`

// SQLCache stores cone search results in a SQLite database. NaN cells
// are stored as NULL so a reload reproduces the table exactly.
type SQLCache struct {
	db *sql.DB
}

// OpenSQLCache opens (creating if needed) the cache database at path.
func OpenSQLCache(path string) (*SQLCache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cone cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping cone cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init cone cache schema: %w", err)
	}
	return &SQLCache{db: db}, nil
}

// Close closes the underlying database handle.
func (c *SQLCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Load returns the cached table for key, with ok=false on a miss.
func (c *SQLCache) Load(ctx context.Context, key Key) (*model.SurveyTable, bool, error) {
	var fetchedAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM cones WHERE catalog=? AND ra=? AND dec=? AND radius=?`,
		key.Catalog, key.Cone.RA, key.Cone.Dec, key.Cone.Radius,
	).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load cone cache entry: %w", err)
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT star_ra, star_dec, pmra, pmdec, mag_primary, mag_alt1, mag_alt2
		 FROM cone_rows WHERE catalog=? AND ra=? AND dec=? AND radius=? ORDER BY idx`,
		key.Catalog, key.Cone.RA, key.Cone.Dec, key.Cone.Radius,
	)
	if err != nil {
		return nil, false, fmt.Errorf("load cone cache rows: %w", err)
	}
	defer rows.Close()

	table := &model.SurveyTable{}
	for rows.Next() {
		var ra, dec, pmra, pmdec, primary, alt1, alt2 sql.NullFloat64
		if err := rows.Scan(&ra, &dec, &pmra, &pmdec, &primary, &alt1, &alt2); err != nil {
			return nil, false, fmt.Errorf("scan cone cache row: %w", err)
		}
		table.RA = append(table.RA, fromNull(ra))
		table.Dec = append(table.Dec, fromNull(dec))
		table.PMRA = append(table.PMRA, fromNull(pmra))
		table.PMDec = append(table.PMDec, fromNull(pmdec))
		table.Primary = append(table.Primary, fromNull(primary))
		table.Alt1 = append(table.Alt1, fromNull(alt1))
		table.Alt2 = append(table.Alt2, fromNull(alt2))
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate cone cache rows: %w", err)
	}
	return table, true, nil
}

// Store persists the table under key. A row for an existing key is left
// in place; the cache is write-once per key.
func (c *SQLCache) Store(ctx context.Context, key Key, table *model.SurveyTable) error {
	if err := table.Validate(); err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cone cache store: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO cones (catalog, ra, dec, radius, fetched_at) VALUES (?, ?, ?, ?, ?)`,
		key.Catalog, key.Cone.RA, key.Cone.Dec, key.Cone.Radius, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store cone cache entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// key exists already; keep the first write
		return nil
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cone_rows
		 (catalog, ra, dec, radius, idx, star_ra, star_dec, pmra, pmdec, mag_primary, mag_alt1, mag_alt2)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare cone cache rows: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < table.Len(); i++ {
		_, err := stmt.ExecContext(ctx,
			key.Catalog, key.Cone.RA, key.Cone.Dec, key.Cone.Radius, i,
			toNull(table.RA[i]), toNull(table.Dec[i]),
			toNull(table.PMRA[i]), toNull(table.PMDec[i]),
			toNull(table.Primary[i]), toNull(table.Alt1[i]), toNull(table.Alt2[i]),
		)
		if err != nil {
			return fmt.Errorf("store cone cache row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cone cache store: %w", err)
	}
	return nil
}

func toNull(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
