package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/patternmatch/strusmatch/internal/queryir"
	"github.com/patternmatch/strusmatch/internal/querysql"
)

// Reads over the seq-ordered stream tables (tokens, results, bindings)
// are expressed as queryir queries and compiled through querysql
// rather than written as SQL strings, so every stream read inherits
// the compiler's parameterization and mandatory-ORDER BY rules from
// one place.

// columnDests maps a table's column names to the scan destinations a
// row's values land in. One columnDests value serves both halves of a
// query: bindings() produces the queryir column selection, and
// orderedDests() produces the Scan argument list in the same sorted
// column order the SQL compiler emits SELECT lists in.
type columnDests map[string]any

func (c columnDests) bindings() map[string]string {
	out := make(map[string]string, len(c))
	for k := range c {
		out[k] = k
	}
	return out
}

func (c columnDests) orderedDests() []any {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	dests := make([]any, len(names))
	for i, n := range names {
		dests[i] = c[n]
	}
	return dests
}

// queryStream compiles a Select over one stream table and executes
// it, invoking each after every successful row scan into cols'
// destinations. params supplies the values for the filter's
// BoundEquals variables.
func (s *Store) queryStream(ctx context.Context, from string, filter queryir.Predicate, cols columnDests, params map[string]any, each func() error) error {
	comp := querysql.NewSQLCompiler()
	for k, v := range params {
		comp.BoundValues[k] = v
	}

	sqlStr, args, err := comp.Compile(queryir.Select{From: from, Filter: filter, Bindings: cols.bindings()})
	if err != nil {
		return fmt.Errorf("compile %s query: %w", from, err)
	}

	rows, err := s.Query(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("query %s: %w", from, err)
	}
	defer rows.Close()

	dests := cols.orderedDests()
	for rows.Next() {
		if err := rows.Scan(dests...); err != nil {
			return fmt.Errorf("scan %s row: %w", from, err)
		}
		if err := each(); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s: %w", from, err)
	}
	return nil
}

// sessionFilter is the one predicate every per-session stream read
// shares.
func sessionFilter() queryir.Predicate {
	return queryir.BoundEquals{Field: "session_id", BoundVar: "param.sessionID"}
}
