package querysql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/patternmatch/strusmatch/internal/queryir"
)

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// CRITICAL: ALL queries include ORDER BY for deterministic results.
// CRITICAL: All values are parameterized (never interpolated).
type SQLCompiler struct {
	// BoundValues holds the values for BoundEquals predicates.
	// Must be set by the caller before compilation.
	BoundValues map[string]any
}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{
		BoundValues: make(map[string]any),
	}
}

// Compile converts a QueryIR query to parameterized SQL.
// Returns (sql, params, error) tuple.
//
// MANDATORY: Every query includes ORDER BY with a deterministic tiebreaker.
// MANDATORY: All values are parameterized (never interpolated).
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	case queryir.Join:
		return c.compileJoin(query)
	case *queryir.Join:
		return c.compileJoin(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// compileSelect compiles a queryir.Select to SQL.
// MANDATORY: Includes ORDER BY.
func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	selectClause := c.compileBindings(q.Bindings)
	fromClause := q.From

	var whereClause string
	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	// MANDATORY: Always add ORDER BY
	orderByClause := " ORDER BY " + c.stableOrderKey(q)

	sql := fmt.Sprintf("SELECT %s FROM %s%s%s",
		selectClause,
		fromClause,
		whereClause,
		orderByClause)

	return sql, params, nil
}

// compileBindings converts a bindings map to a SELECT column list.
// Example: {"pattern_name": "name"} → "pattern_name AS name"
// Keys are sorted for deterministic output.
func (c *SQLCompiler) compileBindings(bindings map[string]string) string {
	if len(bindings) == 0 {
		return "*"
	}

	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, sourceColumn := range keys {
		outputName := bindings[sourceColumn]
		if sourceColumn == outputName {
			parts = append(parts, sourceColumn)
		} else {
			parts = append(parts, fmt.Sprintf("%s AS %s", sourceColumn, outputName))
		}
	}

	return strings.Join(parts, ", ")
}

// stableOrderKey returns the ORDER BY clause for a query. The stream
// tables (tokens, results, bindings) carry a seq column that determines
// emission order, so that is the deterministic tiebreaker rather than an
// independent row id. The sessions table has no seq column; a Select
// over it compiles to SQL that SQLite rejects.
func (c *SQLCompiler) stableOrderKey(q queryir.Select) string {
	return "seq ASC"
}

// compilePredicate compiles a queryir.Predicate to a SQL WHERE clause
// fragment. Returns (sql, params, error).
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil // Always true
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		return c.compileEquals(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	case queryir.BoundEquals:
		return c.compileBoundEquals(pred)
	case *queryir.BoundEquals:
		return c.compileBoundEquals(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEquals compiles an Equals predicate to "field = ?".
// CRITICAL: Value is NEVER interpolated - always parameterized.
func (c *SQLCompiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	param, err := queryValueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}

	sql := fmt.Sprintf("%s = ?", eq.Field)
	params := []any{param}

	return sql, params, nil
}

// compileAnd compiles an And predicate to a conjunction with AND.
func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // Always true (vacuous truth)
	}

	var sqlParts []string
	var allParams []any

	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	sql := strings.Join(sqlParts, " AND ")

	return sql, allParams, nil
}

// compileBoundEquals compiles a BoundEquals predicate.
// BoundEquals references a caller-supplied parameter.
// The bound value is looked up from BoundValues.
// CRITICAL: Value is NEVER interpolated - always parameterized.
func (c *SQLCompiler) compileBoundEquals(beq queryir.BoundEquals) (string, []any, error) {
	sql := fmt.Sprintf("%s = ?", beq.Field)

	var params []any
	if c.BoundValues != nil {
		if val, ok := c.BoundValues[beq.BoundVar]; ok {
			params = []any{val}
		}
	}
	// If no bound value is found, params remains empty; the caller is
	// responsible for having supplied every parameter the query references.

	return sql, params, nil
}

// compileJoin compiles a queryir.Join to a SQL INNER JOIN.
// MANDATORY: Includes ORDER BY.
func (c *SQLCompiler) compileJoin(j queryir.Join) (string, []any, error) {
	leftTable, leftOK := getSelectFrom(j.Left)
	if !leftOK {
		return "", nil, fmt.Errorf("join left must be Select")
	}

	rightTable, rightOK := getSelectFrom(j.Right)
	if !rightOK {
		return "", nil, fmt.Errorf("join right must be Select")
	}

	var allParams []any

	leftSelect := getSelect(j.Left)
	if leftSelect != nil && leftSelect.Filter != nil {
		_, leftParams, err := c.compilePredicate(leftSelect.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile left filter: %w", err)
		}
		allParams = append(allParams, leftParams...)
	}

	rightSelect := getSelect(j.Right)
	if rightSelect != nil && rightSelect.Filter != nil {
		_, rightParams, err := c.compilePredicate(rightSelect.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile right filter: %w", err)
		}
		allParams = append(allParams, rightParams...)
	}

	var onSQL string
	if j.On != nil {
		sql, onParams, err := c.compilePredicate(j.On)
		if err != nil {
			return "", nil, fmt.Errorf("compile join ON: %w", err)
		}
		onSQL = sql
		allParams = append(allParams, onParams...)
	} else {
		onSQL = "1 = 1" // Cross join (no condition)
	}

	sql := fmt.Sprintf("%s INNER JOIN %s ON %s",
		leftTable,
		rightTable,
		onSQL)

	// For joins, order by the left table's seq column.
	sql += " ORDER BY " + leftTable + ".seq ASC"

	return sql, allParams, nil
}

// getSelectFrom extracts the table name from a Query if it's a Select.
func getSelectFrom(q queryir.Query) (string, bool) {
	switch query := q.(type) {
	case queryir.Select:
		return query.From, true
	case *queryir.Select:
		return query.From, true
	default:
		return "", false
	}
}

// getSelect extracts the Select from a Query if it's a Select.
func getSelect(q queryir.Query) *queryir.Select {
	switch query := q.(type) {
	case queryir.Select:
		return &query
	case *queryir.Select:
		return query
	default:
		return nil
	}
}

// queryValueToParam converts a queryir.Value to a Go native type for a
// SQL parameter.
func queryValueToParam(v queryir.Value) (any, error) {
	switch val := v.(type) {
	case queryir.QString:
		return string(val), nil
	case queryir.QInt:
		return int64(val), nil
	default:
		return nil, fmt.Errorf("unsupported Value type for SQL parameter: %T", v)
	}
}
