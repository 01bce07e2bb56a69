// Package postgres implements the qbench workload for PostgreSQL via
// the pgx driver, against the imdb sample schema.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wesleyorama2/qbench/internal/bench"
	"github.com/wesleyorama2/qbench/internal/config"
)

// idLoadLimit caps how many candidate ids are fetched per query.
const idLoadLimit = 25000

const (
	getMovieSQL = `
		SELECT m.id, m.title, m.year, m.description, avg(r.rating)
		FROM movies m
		LEFT JOIN reviews r ON r.movie_id = m.id
		WHERE m.id = $1
		GROUP BY m.id`

	getPersonSQL = `
		SELECT p.id, p.first_name, p.last_name, p.bio,
		       array_agg(m.title ORDER BY m.year)
		FROM persons p
		LEFT JOIN actors a ON a.person_id = p.id
		LEFT JOIN movies m ON m.id = a.movie_id
		WHERE p.id = $1
		GROUP BY p.id`

	getUserSQL = `
		SELECT u.id, u.name, u.image, r.rating, m.title
		FROM users u
		LEFT JOIN reviews r ON r.author_id = u.id
		LEFT JOIN movies m ON m.id = r.movie_id
		WHERE u.id = $1
		ORDER BY r.creation_time DESC
		LIMIT 10`
)

var querySQL = map[string]string{
	"get_movie":  getMovieSQL,
	"get_person": getPersonSQL,
	"get_user":   getUserSQL,
}

var idSQL = map[string]string{
	"get_movie":  "SELECT id FROM movies LIMIT $1",
	"get_person": "SELECT id FROM persons LIMIT $1",
	"get_user":   "SELECT id FROM users LIMIT $1",
}

// Workload drives point-lookup queries against PostgreSQL. Each worker
// holds one dedicated *pgx.Conn; the driver blocks the calling thread,
// so the workload declares the blocking model.
type Workload struct {
	cfg config.DBConfig
}

// New creates the PostgreSQL workload from connection settings.
func New(cfg config.DBConfig) *Workload {
	return &Workload{cfg: cfg}
}

func (w *Workload) Name() string      { return "postgres" }
func (w *Workload) Cooperative() bool { return false }

func (w *Workload) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		w.cfg.User, w.cfg.Password, w.cfg.Host, w.cfg.Port, w.cfg.Database, w.cfg.SSLMode)
}

// Connect opens one dedicated connection.
func (w *Workload) Connect(ctx context.Context) (bench.Conn, error) {
	conn, err := pgx.Connect(ctx, w.dsn())
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	return conn, nil
}

// Close releases a connection from Connect.
func (w *Workload) Close(ctx context.Context, conn bench.Conn) error {
	return conn.(*pgx.Conn).Close(ctx)
}

// LoadIDs fetches the candidate id sequence for every supported query.
func (w *Workload) LoadIDs(ctx context.Context, conn bench.Conn) (bench.IDSet, error) {
	c := conn.(*pgx.Conn)
	ids := make(bench.IDSet, len(idSQL))

	for query, sql := range idSQL {
		rows, err := c.Query(ctx, sql, idLoadLimit)
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

// Query issues one named point lookup. The rows are drained and
// discarded; only the call's latency matters to the caller.
func (w *Workload) Query(ctx context.Context, conn bench.Conn, query string, id int64) error {
	sql, ok := querySQL[query]
	if !ok {
		return fmt.Errorf("postgres: unknown query %q", query)
	}

	rows, err := conn.(*pgx.Conn).Query(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("postgres %s: %w", query, err)
	}
	defer rows.Close()

	for rows.Next() {
		if _, err := rows.Values(); err != nil {
			return fmt.Errorf("postgres %s: %w", query, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("postgres %s: %w", query, err)
	}
	return nil
}

var _ bench.Workload = (*Workload)(nil)
