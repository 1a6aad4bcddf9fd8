package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var createTable = map[string]string{
	"sqlite3": `CREATE TABLE IF NOT EXISTS repl_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	line TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL)`,
	"mysql": `CREATE TABLE IF NOT EXISTS repl_history (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	line TEXT NOT NULL,
	created_at DATETIME NOT NULL)`,
	"postgres": `CREATE TABLE IF NOT EXISTS repl_history (
	id BIGSERIAL PRIMARY KEY,
	line TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL)`,
}

// SQLStore keeps history in the repl_history table of a sqlite3, mysql or
// postgres database.
type SQLStore struct {
	driver string
	db     *sql.DB
	now    func() time.Time
}

// OpenSQL connects with driver and dsn and creates the history table when
// it is missing.
func OpenSQL(driver, dsn string) (*SQLStore, error) {
	ddl, ok := createTable[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported history driver '%s'", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s history: %w", driver, err)
	}
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare %s history table: %w", driver, err)
	}

	slog.Debug("history database ready", slog.String("driver", driver))
	return &SQLStore{driver: driver, db: db, now: time.Now}, nil
}

// placeholder renders the n-th bind parameter for the store's driver.
func (s *SQLStore) placeholder(n int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *SQLStore) Load(limit int) ([]string, error) {
	var rows *sql.Rows
	var err error
	if limit > 0 {
		query := fmt.Sprintf(`SELECT line FROM (
	SELECT id, line FROM repl_history ORDER BY id DESC LIMIT %s) recent
ORDER BY id`, s.placeholder(1))
		rows, err = s.db.Query(query, limit)
	} else {
		rows, err = s.db.Query(`SELECT line FROM repl_history ORDER BY id`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s history: %w", s.driver, err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("failed to read %s history: %w", s.driver, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s history: %w", s.driver, err)
	}

	slog.Debug("history loaded", slog.String("driver", s.driver), slog.Int("lines", len(lines)))
	return lines, nil
}

func (s *SQLStore) Append(line string) error {
	line = clean(line)
	if line == "" {
		return nil
	}
	query := fmt.Sprintf("INSERT INTO repl_history (line, created_at) VALUES (%s, %s)",
		s.placeholder(1), s.placeholder(2))
	if _, err := s.db.Exec(query, line, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to save %s history: %w", s.driver, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
