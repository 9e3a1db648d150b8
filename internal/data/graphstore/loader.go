// Package graphstore exports analysis results into Neo4j.
package graphstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"rbgraph/internal/engine/analysis"
)

const (
	namespaceLabel   = "RubyNamespace"
	defaultBatchSize = 500
)

// relationshipTypes maps each reference kind to its Neo4j relationship type.
var relationshipTypes = map[analysis.ReferenceKind]string{
	analysis.SubclassOf: "SUBCLASS_OF",
	analysis.NestedIn:   "NESTED_IN",
	analysis.Includes:   "INCLUDES",
	analysis.BelongsTo:  "BELONGS_TO",
	analysis.HasMany:    "HAS_MANY",
}

// runFunc executes one Cypher statement.
type runFunc func(ctx context.Context, cypher string, params map[string]any) error

// Loader writes namespaces and references using batched UNWIND queries.
type Loader struct {
	driver    neo4j.DriverWithContext
	batchSize int
	run       runFunc
}

type Options struct {
	URI       string
	User      string
	Password  string
	Database  string
	BatchSize int
}

// NewLoader connects to Neo4j and verifies connectivity.
func NewLoader(ctx context.Context, opts Options) (*Loader, error) {
	driver, err := neo4j.NewDriverWithContext(opts.URI, neo4j.BasicAuth(opts.User, opts.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j %s: %w", opts.URI, err)
	}

	var configurers []neo4j.ExecuteQueryConfigurationOption
	if db := strings.TrimSpace(opts.Database); db != "" {
		configurers = append(configurers, neo4j.ExecuteQueryWithDatabase(db))
	}
	l := newLoader(func(ctx context.Context, cypher string, params map[string]any) error {
		_, err := neo4j.ExecuteQuery(ctx, driver, cypher, params, neo4j.EagerResultTransformer, configurers...)
		return err
	}, opts.BatchSize)
	l.driver = driver
	return l, nil
}

func newLoader(run runFunc, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Loader{run: run, batchSize: batchSize}
}

func (l *Loader) Close(ctx context.Context) error {
	if l.driver == nil {
		return nil
	}
	return l.driver.Close(ctx)
}

// CreateIndexes ensures the identifier lookup index exists.
func (l *Loader) CreateIndexes(ctx context.Context) error {
	return l.run(ctx, fmt.Sprintf(
		"CREATE INDEX ruby_namespace_identifier IF NOT EXISTS FOR (n:%s) ON (n.identifier)", namespaceLabel), nil)
}

// CleanGraph removes every node previously written by the loader.
func (l *Loader) CleanGraph(ctx context.Context) error {
	slog.Debug("cleaning neo4j graph", "label", namespaceLabel)
	return l.run(ctx, fmt.Sprintf("MATCH (n:%s) DETACH DELETE n", namespaceLabel), nil)
}

// LoadNamespaces merges one node per distinct identifier.
func (l *Loader) LoadNamespaces(ctx context.Context, res *analysis.Result) error {
	rows := namespaceRows(res)
	slog.Debug("loading namespaces into neo4j", "count", len(rows))
	cypher := fmt.Sprintf(`UNWIND $batch AS row
 MERGE (n:%s {identifier: row.identifier})
 SET n.kind = row.kind, n.local_name = row.local_name, n.files = row.files,
     n.parent = row.parent, n.external = false`, namespaceLabel)
	return l.runBatches(ctx, cypher, rows)
}

// LoadReferences writes one relationship type per kind. Targets that were
// never defined are created as external nodes so no edge is dropped.
func (l *Loader) LoadReferences(ctx context.Context, res *analysis.Result) error {
	grouped := referenceRows(res)
	for _, kind := range analysis.AllReferenceKinds() {
		rows := grouped[kind]
		if len(rows) == 0 {
			continue
		}
		slog.Debug("loading references into neo4j", "kind", kind.String(), "count", len(rows))
		cypher := fmt.Sprintf(`UNWIND $batch AS row
 MATCH (from:%[1]s {identifier: row.from})
 MERGE (to:%[1]s {identifier: row.to})
 ON CREATE SET to.external = true
 MERGE (from)-[r:%[2]s]->(to)
 SET r.count = row.count`, namespaceLabel, relationshipTypes[kind])
		if err := l.runBatches(ctx, cypher, rows); err != nil {
			return fmt.Errorf("load %s references: %w", kind, err)
		}
	}
	return nil
}

// Export runs the full load sequence for one analysis result.
func (l *Loader) Export(ctx context.Context, res *analysis.Result, clean bool) error {
	if err := l.CreateIndexes(ctx); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if clean {
		if err := l.CleanGraph(ctx); err != nil {
			return fmt.Errorf("clean graph: %w", err)
		}
	}
	if err := l.LoadNamespaces(ctx, res); err != nil {
		return fmt.Errorf("load namespaces: %w", err)
	}
	return l.LoadReferences(ctx, res)
}

func (l *Loader) runBatches(ctx context.Context, cypher string, rows []map[string]any) error {
	for start := 0; start < len(rows); start += l.batchSize {
		end := min(start+l.batchSize, len(rows))
		if err := l.run(ctx, cypher, map[string]any{"batch": rows[start:end]}); err != nil {
			return err
		}
	}
	return nil
}

func namespaceRows(res *analysis.Result) []map[string]any {
	if res == nil {
		return nil
	}
	type entry struct {
		ns    analysis.Namespace
		files []string
	}
	byID := make(map[string]*entry)
	var order []string
	for _, ns := range res.Namespaces {
		e, ok := byID[ns.Identifier]
		if !ok {
			e = &entry{ns: ns}
			byID[ns.Identifier] = e
			order = append(order, ns.Identifier)
		}
		if ns.File != "" && !contains(e.files, ns.File) {
			e.files = append(e.files, ns.File)
		}
		if e.ns.DeclaredParent == "" {
			e.ns.DeclaredParent = ns.DeclaredParent
		}
	}

	rows := make([]map[string]any, 0, len(order))
	for _, id := range order {
		e := byID[id]
		sort.Strings(e.files)
		rows = append(rows, map[string]any{
			"identifier": id,
			"kind":       e.ns.Kind.String(),
			"local_name": e.ns.LocalName,
			"parent":     e.ns.DeclaredParent,
			"files":      e.files,
		})
	}
	return rows
}

// referenceRows groups references by kind and collapses duplicates into a
// count property.
func referenceRows(res *analysis.Result) map[analysis.ReferenceKind][]map[string]any {
	out := make(map[analysis.ReferenceKind][]map[string]any)
	if res == nil {
		return out
	}
	index := make(map[analysis.Reference]map[string]any)
	for _, ref := range res.References {
		if row, ok := index[ref]; ok {
			row["count"] = row["count"].(int) + 1
			continue
		}
		row := map[string]any{"from": ref.From, "to": ref.To, "count": 1}
		index[ref] = row
		out[ref.Kind] = append(out[ref.Kind], row)
	}
	return out
}

func contains(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
