// Package history persists the lines entered at the REPL prompt.
package history

import (
	"fmt"
	"strings"
)

// Store keeps REPL history between sessions.
type Store interface {
	// Load returns up to limit of the most recent lines, oldest first.
	Load(limit int) ([]string, error)
	Append(line string) error
	Close() error
}

// Target prefixes accepted by Open. The postgres forms are handed to the
// driver unchanged.
const (
	sqlitePrefix     = "sqlite3://"
	mysqlPrefix      = "mysql://"
	postgresPrefix   = "postgres://"
	postgresqlPrefix = "postgresql://"
)

// Open picks a store from target: sqlite3://<path>, mysql://<dsn>,
// postgres://<url>, or otherwise a plain file path.
func Open(target string) (Store, error) {
	switch {
	case target == "":
		return nil, fmt.Errorf("empty history target")
	case strings.HasPrefix(target, sqlitePrefix):
		return openSQL("sqlite3", strings.TrimPrefix(target, sqlitePrefix))
	case strings.HasPrefix(target, mysqlPrefix):
		return openSQL("mysql", strings.TrimPrefix(target, mysqlPrefix))
	case strings.HasPrefix(target, postgresPrefix), strings.HasPrefix(target, postgresqlPrefix):
		return openSQL("postgres", target)
	default:
		return NewFileStore(target), nil
	}
}

func openSQL(driver, dsn string) (Store, error) {
	store, err := OpenSQL(driver, dsn)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// tail keeps the last limit entries; a non-positive limit keeps them all.
func tail(lines []string, limit int) []string {
	if limit <= 0 || len(lines) <= limit {
		return lines
	}
	return lines[len(lines)-limit:]
}

// clean flattens a line so it stays a single history entry.
func clean(line string) string {
	return strings.TrimSpace(strings.ReplaceAll(line, "\n", " "))
}
