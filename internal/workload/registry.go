// Package workload builds concrete benchmark backends by name.
package workload

import (
	"fmt"
	"strings"

	"github.com/wesleyorama2/qbench/internal/bench"
	"github.com/wesleyorama2/qbench/internal/config"
	"github.com/wesleyorama2/qbench/internal/workload/httpapi"
	"github.com/wesleyorama2/qbench/internal/workload/mysql"
	"github.com/wesleyorama2/qbench/internal/workload/postgres"
)

// Names returns the known benchmark names in their canonical order.
func Names() []string {
	return []string{"postgres", "mysql", "http"}
}

// Queries returns the query names every backend serves, in their
// canonical order.
func Queries() []string {
	return []string{"get_movie", "get_person", "get_user"}
}

// Build constructs the workload for one benchmark name.
func Build(name string, cfg *config.Config) (bench.Workload, error) {
	switch name {
	case "postgres":
		return postgres.New(cfg.Postgres), nil
	case "mysql":
		return mysql.New(cfg.MySQL), nil
	case "http":
		return httpapi.New(cfg.HTTP), nil
	default:
		return nil, fmt.Errorf("unknown benchmark %q (known: %s)",
			name, strings.Join(Names(), ", "))
	}
}

// BuildAll constructs workloads for every requested benchmark,
// preserving request order.
func BuildAll(names []string, cfg *config.Config) ([]bench.Workload, error) {
	workloads := make([]bench.Workload, 0, len(names))
	for _, name := range names {
		w, err := Build(name, cfg)
		if err != nil {
			return nil, err
		}
		workloads = append(workloads, w)
	}
	return workloads, nil
}
