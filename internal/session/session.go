// Package session owns the single database session handle every component
// receives explicitly. The session is used strictly sequentially: one
// operation commits or rolls back before the next begins.
package session

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/dynoquery/dynoquery/internal/config"
)

// Session wraps one PostgreSQL connection with query helpers and
// transaction boundaries.
type Session struct {
	DB       *sql.DB
	Database string
	Logger   *logrus.Logger

	dsn string
}

// New creates an unopened session from connection settings
func New(cfg config.Config, logger *logrus.Logger) *Session {
	return &Session{
		Database: cfg.Database,
		Logger:   logger,
		dsn:      cfg.DSN(),
	}
}

// FromDB wraps an already opened database handle. Used by tests.
func FromDB(db *sql.DB, logger *logrus.Logger) *Session {
	return &Session{DB: db, Logger: logger}
}

// Open connects to PostgreSQL and verifies the connection
func (s *Session) Open() error {
	if s.Database == "" {
		return fmt.Errorf("database name must be provided via configuration or the PG_DATABASE environment variable")
	}

	db, err := sql.Open("pgx", s.dsn)
	if err != nil {
		s.Logger.Errorf("Error connecting to PostgreSQL database: %v", err)
		return err
	}

	if err := db.Ping(); err != nil {
		s.Logger.Errorf("Error pinging PostgreSQL database: %v", err)
		return err
	}

	s.DB = db
	s.Logger.Infof("Connected to PostgreSQL database: %s", s.Database)
	return nil
}

// Close closes the database connection
func (s *Session) Close() {
	if s.DB == nil {
		return
	}
	if err := s.DB.Close(); err != nil {
		s.Logger.Errorf("Error closing database connection: %v", err)
	} else {
		s.Logger.Info("PostgreSQL connection closed")
	}
}

// Query executes a read-only statement and returns the column names and
// all rows, with []byte values converted to strings for display.
func (s *Session) Query(query string, args ...interface{}) ([]string, [][]interface{}, error) {
	rows, err := s.DB.Query(query, args...)
	if err != nil {
		s.Logger.Errorf("Error executing query: %v", err)
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var results [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			s.Logger.Errorf("Error scanning row: %v", err)
			return nil, nil, err
		}

		for i, val := range values {
			if b, ok := val.([]byte); ok {
				values[i] = string(b)
			}
		}
		results = append(results, values)
	}

	if err := rows.Err(); err != nil {
		s.Logger.Errorf("Error iterating rows: %v", err)
		return nil, nil, err
	}

	return columns, results, nil
}

// Exec executes a statement outside any explicit transaction and returns
// the number of affected rows.
func (s *Session) Exec(query string, args ...interface{}) (int64, error) {
	result, err := s.DB.Exec(query, args...)
	if err != nil {
		s.Logger.Errorf("Error executing statement: %v", err)
		return 0, err
	}
	return result.RowsAffected()
}

// WithTx runs fn inside a transaction. Any error from fn or from the
// commit rolls back and is returned unmodified; success commits.
func (s *Session) WithTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.Begin()
	if err != nil {
		s.Logger.Errorf("Error starting transaction: %v", err)
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.Logger.Errorf("Error rolling back transaction: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		s.Logger.Errorf("Error committing transaction: %v", err)
		return err
	}
	return nil
}
