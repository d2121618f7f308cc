package marketdata

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cloudon7281/investment-reviews/date"
)

// Store persists normalized daily closes, so reviews keep working when the
// provider is unreachable and historical rows never need refetching.
type Store struct {
	db *sql.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS closes (
	symbol   TEXT NOT NULL,
	day      TEXT NOT NULL,
	close    REAL NOT NULL,
	currency TEXT NOT NULL,
	PRIMARY KEY (symbol, day)
);
`

// OpenStore opens (creating if needed) the close database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening close store %q: %w", path, err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing close store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save upserts a series of closes. Closes are stored in the reporting
// currency, after unit and FX normalization.
func (s *Store) Save(series *rawSeries) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO closes (symbol, day, close, currency)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (symbol, day) DO UPDATE SET close = excluded.close, currency = excluded.currency`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for i := range series.Closes {
		if !series.valid(i) {
			continue
		}
		if _, err := stmt.Exec(series.Symbol, series.Days[i].String(), series.Closes[i], series.Currency); err != nil {
			tx.Rollback()
			return fmt.Errorf("saving close %s %s: %w", series.Symbol, series.Days[i], err)
		}
	}
	return tx.Commit()
}

// Load returns the stored closes for symbol within [from, to], oldest first.
func (s *Store) Load(symbol string, from, to date.Date) (*rawSeries, error) {
	rows, err := s.db.Query(`SELECT day, close, currency FROM closes
		WHERE symbol = ? AND day >= ? AND day <= ? ORDER BY day`,
		symbol, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := &rawSeries{Symbol: symbol}
	for rows.Next() {
		var day string
		var close float64
		var currency string
		if err := rows.Scan(&day, &close, &currency); err != nil {
			return nil, err
		}
		d, err := date.Parse(day)
		if err != nil {
			return nil, fmt.Errorf("close store holds bad day %q for %s: %w", day, symbol, err)
		}
		series.Days = append(series.Days, d)
		series.Closes = append(series.Closes, close)
		series.Currency = currency
	}
	return series, rows.Err()
}
