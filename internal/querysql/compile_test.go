package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternmatch/strusmatch/internal/queryir"
)

func TestCompile_SimpleSelect(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{
		From: "results",
		Bindings: map[string]string{
			"pattern_name":  "name",
			"result_handle": "handle",
		},
		Filter: queryir.Equals{
			Field: "pattern_name",
			Value: queryir.QString("checkout_seq"),
		},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.Contains(t, sql, "SELECT")
	assert.Contains(t, sql, "FROM results")
	assert.Contains(t, sql, "WHERE pattern_name = ?")
	assert.Contains(t, sql, "ORDER BY") // MANDATORY

	assert.NotContains(t, sql, "checkout_seq") // Value NOT in SQL
	assert.Equal(t, []any{"checkout_seq"}, params)
}

func TestCompile_SimpleSelectPointer(t *testing.T) {
	compiler := NewSQLCompiler()

	query := &queryir.Select{
		From: "results",
		Bindings: map[string]string{
			"pattern_name": "name",
		},
		Filter: &queryir.Equals{
			Field: "pattern_name",
			Value: queryir.QString("checkout_seq"),
		},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM results")
	assert.Contains(t, sql, "WHERE pattern_name = ?")
	assert.Equal(t, []any{"checkout_seq"}, params)
}

func TestCompile_OrderByMandatory(t *testing.T) {
	compiler := NewSQLCompiler()

	testCases := []struct {
		name  string
		query queryir.Query
	}{
		{
			name: "select with filter",
			query: queryir.Select{
				From:     "results",
				Bindings: map[string]string{"id": "id"},
				Filter:   queryir.Equals{Field: "pattern_name", Value: queryir.QString("a")},
			},
		},
		{
			name: "select without filter",
			query: queryir.Select{
				From:     "results",
				Bindings: map[string]string{"id": "id"},
			},
		},
		{
			name: "join",
			query: queryir.Join{
				Left:  queryir.Select{From: "results", Bindings: map[string]string{"id": "id"}},
				Right: queryir.Select{From: "bindings", Bindings: map[string]string{"result_id": "result_id"}},
				On:    queryir.Equals{Field: "result_id", Value: queryir.QInt(1)},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, _, err := compiler.Compile(tc.query)
			require.NoError(t, err)
			assert.Contains(t, sql, "ORDER BY")
		})
	}
}

func TestCompile_IntValue(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{
		From:     "results",
		Bindings: map[string]string{"id": "id"},
		Filter:   queryir.Equals{Field: "result_handle", Value: queryir.QInt(3)},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Contains(t, sql, "result_handle = ?")
	assert.Equal(t, []any{int64(3)}, params)
}

func TestCompile_EmptyBindingsIsWildcard(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{From: "results"}
	sql, _, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Contains(t, sql, "SELECT * FROM results")
}

func TestCompile_AndConjoinsPredicates(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{
		From:     "results",
		Bindings: map[string]string{"id": "id"},
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "pattern_name", Value: queryir.QString("a")},
			queryir.Equals{Field: "result_handle", Value: queryir.QInt(2)},
		}},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Contains(t, sql, "pattern_name = ? AND result_handle = ?")
	assert.Equal(t, []any{"a", int64(2)}, params)
}

func TestCompile_AndEmptyIsVacuousTrue(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{
		From:     "results",
		Bindings: map[string]string{"id": "id"},
		Filter:   queryir.And{},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE 1 = 1")
	assert.Empty(t, params)
}

func TestCompile_BoundEqualsLooksUpBoundValues(t *testing.T) {
	compiler := NewSQLCompiler()
	compiler.BoundValues["param.sessionID"] = "sess1"

	query := queryir.Select{
		From:     "results",
		Bindings: map[string]string{"id": "id"},
		Filter:   queryir.BoundEquals{Field: "session_id", BoundVar: "param.sessionID"},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Contains(t, sql, "session_id = ?")
	assert.Equal(t, []any{"sess1"}, params)
}

func TestCompile_BoundEqualsMissingValueOmitsParam(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{
		From:     "results",
		Bindings: map[string]string{"id": "id"},
		Filter:   queryir.BoundEquals{Field: "session_id", BoundVar: "param.sessionID"},
	}

	_, params, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestCompile_Join(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Join{
		Left:  queryir.Select{From: "results", Bindings: map[string]string{"id": "resultID"}},
		Right: queryir.Select{From: "bindings", Bindings: map[string]string{"variable_name": "name"}},
		On:    queryir.Equals{Field: "result_id", Value: queryir.QInt(1)},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Contains(t, sql, "results INNER JOIN bindings ON result_id = ?")
	assert.Contains(t, sql, "ORDER BY results.seq ASC")
	assert.Equal(t, []any{int64(1)}, params)
}

func TestCompile_JoinRequiresSelectOperands(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Join{
		Left:  queryir.Join{},
		Right: queryir.Select{From: "bindings"},
	}

	_, _, err := compiler.Compile(query)
	assert.Error(t, err)
}

func TestCompile_NilQueryErrors(t *testing.T) {
	compiler := NewSQLCompiler()
	_, _, err := compiler.Compile(nil)
	assert.Error(t, err)
}

func TestCompile_UnsupportedPredicateErrors(t *testing.T) {
	compiler := NewSQLCompiler()
	type fakePredicate struct{ queryir.Predicate }

	query := queryir.Select{
		From:     "results",
		Bindings: map[string]string{"id": "id"},
		Filter:   fakePredicate{},
	}

	_, _, err := compiler.Compile(query)
	assert.Error(t, err)
}
