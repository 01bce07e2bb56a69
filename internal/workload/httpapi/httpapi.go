// Package httpapi implements the qbench workload for a JSON-over-HTTP
// backend serving the imdb sample dataset.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/qbench/internal/bench"
	"github.com/wesleyorama2/qbench/internal/config"
)

// queries the HTTP backend serves, mirrored by the SQL workloads.
var queryNames = []string{"get_movie", "get_person", "get_user"}

// responseSchema is the envelope every query endpoint must satisfy.
// Checked once per query during LoadIDs, never during measurement:
// validating on the hot path would distort recorded latency.
var responseSchema = jsonschema.MustCompileString("response.schema.json", `{
	"type": "object",
	"required": ["id"],
	"properties": {
		"id": {"type": "integer"}
	}
}`)

// Workload drives GET requests against a JSON API. net/http parks the
// goroutine on the scheduler rather than the thread, so the workload
// declares the cooperative model.
type Workload struct {
	cfg config.HTTPConfig
}

// New creates the HTTP workload from connection settings.
func New(cfg config.HTTPConfig) *Workload {
	return &Workload{cfg: cfg}
}

func (w *Workload) Name() string      { return "http" }
func (w *Workload) Cooperative() bool { return true }

// Connect builds one client with its own transport. Workers must not
// share a connection pool, so each client keeps exactly one idle
// connection of its own.
func (w *Workload) Connect(ctx context.Context) (bench.Conn, error) {
	transport := &http.Transport{
		MaxIdleConns:        1,
		MaxIdleConnsPerHost: 1,
		MaxConnsPerHost:     1,
		IdleConnTimeout:     90 * time.Second,
	}
	client := &http.Client{Transport: transport}

	// Probe the backend so a bad base URL fails at connect time, not
	// mid-measurement.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.BaseURL+"/ids", nil)
	if err != nil {
		return nil, fmt.Errorf("http connect: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http connect: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http connect: %s returned %s", w.cfg.BaseURL, resp.Status)
	}

	return client, nil
}

// Close releases the client's idle connections.
func (w *Workload) Close(ctx context.Context, conn bench.Conn) error {
	conn.(*http.Client).CloseIdleConnections()
	return nil
}

// LoadIDs fetches the candidate ids for every query from the backend's
// /ids endpoint, then validates one sample response per query against
// the response schema so a misconfigured server fails before any
// timing begins.
func (w *Workload) LoadIDs(ctx context.Context, conn bench.Conn) (bench.IDSet, error) {
	client := conn.(*http.Client)

	body, err := w.get(ctx, client, w.cfg.BaseURL+"/ids")
	if err != nil {
		return nil, fmt.Errorf("load ids: %w", err)
	}

	ids := make(bench.IDSet, len(queryNames))
	for _, query := range queryNames {
		var queryIDs []int64
		for _, v := range gjson.GetBytes(body, query).Array() {
			queryIDs = append(queryIDs, v.Int())
		}
		ids[query] = queryIDs
	}

	for _, query := range queryNames {
		if len(ids[query]) == 0 {
			continue
		}
		if err := w.checkSample(ctx, client, query, ids[query][0]); err != nil {
			return nil, fmt.Errorf("sample check for %s: %w", query, err)
		}
	}
	return ids, nil
}

// checkSample issues one request and validates the response envelope.
func (w *Workload) checkSample(ctx context.Context, client *http.Client, query string, id int64) error {
	body, err := w.get(ctx, client, w.queryURL(query, id))
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	if err := responseSchema.Validate(doc); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	if got := gjson.GetBytes(body, "id").Int(); got != id {
		return fmt.Errorf("response id = %d, want %d", got, id)
	}
	return nil
}

// Query issues one GET and discards the body after draining it, so the
// full response crosses the wire inside the measured window.
func (w *Workload) Query(ctx context.Context, conn bench.Conn, query string, id int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.queryURL(query, id), nil)
	if err != nil {
		return fmt.Errorf("http %s: %w", query, err)
	}

	resp, err := conn.(*http.Client).Do(req)
	if err != nil {
		return fmt.Errorf("http %s: %w", query, err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("http %s: %w", query, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %s: unexpected status %s", query, resp.Status)
	}
	return nil
}

func (w *Workload) queryURL(query string, id int64) string {
	return fmt.Sprintf("%s/%s?id=%d", w.cfg.BaseURL, query, id)
}

func (w *Workload) get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

var _ bench.Workload = (*Workload)(nil)
