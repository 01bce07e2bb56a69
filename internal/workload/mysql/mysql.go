// Package mysql implements the qbench workload for MySQL via
// database/sql and the go-sql-driver, against the imdb sample schema.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/wesleyorama2/qbench/internal/bench"
	"github.com/wesleyorama2/qbench/internal/config"
)

const idLoadLimit = 25000

const (
	getMovieSQL = `
		SELECT m.id, m.title, m.year, m.description, AVG(r.rating)
		FROM movies m
		LEFT JOIN reviews r ON r.movie_id = m.id
		WHERE m.id = ?
		GROUP BY m.id`

	getPersonSQL = `
		SELECT p.id, p.first_name, p.last_name, p.bio,
		       GROUP_CONCAT(m.title ORDER BY m.year)
		FROM persons p
		LEFT JOIN actors a ON a.person_id = p.id
		LEFT JOIN movies m ON m.id = a.movie_id
		WHERE p.id = ?
		GROUP BY p.id`

	getUserSQL = `
		SELECT u.id, u.name, u.image, r.rating, m.title
		FROM users u
		LEFT JOIN reviews r ON r.author_id = u.id
		LEFT JOIN movies m ON m.id = r.movie_id
		WHERE u.id = ?
		ORDER BY r.creation_time DESC
		LIMIT 10`
)

var querySQL = map[string]string{
	"get_movie":  getMovieSQL,
	"get_person": getPersonSQL,
	"get_user":   getUserSQL,
}

var idSQL = map[string]string{
	"get_movie":  "SELECT id FROM movies LIMIT ?",
	"get_person": "SELECT id FROM persons LIMIT ?",
	"get_user":   "SELECT id FROM users LIMIT ?",
}

// Workload drives point-lookup queries against MySQL. database/sql
// hands out pooled handles, so Connect returns a *sql.DB pinned to a
// single connection to keep the one-connection-per-worker ownership
// rule. Blocking model.
type Workload struct {
	cfg config.DBConfig
}

// New creates the MySQL workload from connection settings.
func New(cfg config.DBConfig) *Workload {
	return &Workload{cfg: cfg}
}

func (w *Workload) Name() string      { return "mysql" }
func (w *Workload) Cooperative() bool { return false }

func (w *Workload) dsn() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		w.cfg.User, w.cfg.Password, w.cfg.Host, w.cfg.Port, w.cfg.Database)
}

// Connect opens a single-connection handle and verifies it.
func (w *Workload) Connect(ctx context.Context) (bench.Conn, error) {
	db, err := sql.Open("mysql", w.dsn())
	if err != nil {
		return nil, fmt.Errorf("mysql open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql connect: %w", err)
	}
	return db, nil
}

// Close releases a handle from Connect.
func (w *Workload) Close(ctx context.Context, conn bench.Conn) error {
	return conn.(*sql.DB).Close()
}

// LoadIDs fetches the candidate id sequence for every supported query.
func (w *Workload) LoadIDs(ctx context.Context, conn bench.Conn) (bench.IDSet, error) {
	db := conn.(*sql.DB)
	ids := make(bench.IDSet, len(idSQL))

	for query, stmt := range idSQL {
		rows, err := db.QueryContext(ctx, stmt, idLoadLimit)
		if err != nil {
			return nil, fmt.Errorf("load ids for %s: %w", query, err)
		}

		var queryIDs []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("load ids for %s: %w", query, err)
			}
			queryIDs = append(queryIDs, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("load ids for %s: %w", query, err)
		}

		ids[query] = queryIDs
	}
	return ids, nil
}

// Query issues one named point lookup and discards the rows.
func (w *Workload) Query(ctx context.Context, conn bench.Conn, query string, id int64) error {
	stmt, ok := querySQL[query]
	if !ok {
		return fmt.Errorf("mysql: unknown query %q", query)
	}

	rows, err := conn.(*sql.DB).QueryContext(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("mysql %s: %w", query, err)
	}
	defer rows.Close()

	if err := drainRows(rows); err != nil {
		return fmt.Errorf("mysql %s: %w", query, err)
	}
	return nil
}

// drainRows reads every row into throwaway buffers so the full result
// set crosses the wire before the latency clock stops.
func drainRows(rows *sql.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	values := make([]any, len(cols))
	for i := range values {
		values[i] = new(sql.RawBytes)
	}

	for rows.Next() {
		if err := rows.Scan(values...); err != nil {
			return err
		}
	}
	return rows.Err()
}

var _ bench.Workload = (*Workload)(nil)
