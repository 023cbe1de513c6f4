package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// Set sets a column value for the UPDATE.
func (q *UpdateQuery[T]) Set(column string, value interface{}) *UpdateQuery[T] {
	if _, seen := q.sets[column]; !seen {
		if _, raw := q.exprs[column]; !raw {
			q.setOrder = append(q.setOrder, column)
		}
	}
	delete(q.exprs, column)
	q.sets[column] = value
	return q
}

// SetMap sets multiple column values from a map.
func (q *UpdateQuery[T]) SetMap(values map[string]interface{}) *UpdateQuery[T] {
	for col, val := range values {
		q.Set(col, val)
	}
	return q
}

// SetExpr sets a column to a raw SQL expression evaluated server-side.
// Used for atomic counter arithmetic:
//
//	builder.Update[Post](db).SetExpr("likes", "likes + 1")
//
// The expression must not contain user-supplied input.
func (q *UpdateQuery[T]) SetExpr(column string, expr string) *UpdateQuery[T] {
	if _, seen := q.exprs[column]; !seen {
		if _, plain := q.sets[column]; !plain {
			q.setOrder = append(q.setOrder, column)
		}
	}
	delete(q.sets, column)
	q.exprs[column] = expr
	return q
}

// Where adds a WHERE condition.
func (q *UpdateQuery[T]) Where(condition Condition) *UpdateQuery[T] {
	q.where = append(q.where, condition)
	return q
}

// And adds an AND condition.
func (q *UpdateQuery[T]) And(condition Condition) *UpdateQuery[T] {
	condition.Logic = LogicAnd
	return q.Where(condition)
}

// Or adds an OR condition.
func (q *UpdateQuery[T]) Or(condition Condition) *UpdateQuery[T] {
	condition.Logic = LogicOr
	return q.Where(condition)
}

// Returning specifies columns to return after update.
func (q *UpdateQuery[T]) Returning(columns ...string) *UpdateQuery[T] {
	q.returning = columns
	return q
}

// ToSQL generates the UPDATE SQL and arguments.
func (q *UpdateQuery[T]) ToSQL() (string, []interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if q.table == nil {
		return "", nil, fmt.Errorf("table metadata not available")
	}

	if len(q.sets) == 0 && len(q.exprs) == 0 {
		return "", nil, fmt.Errorf("no columns to update")
	}

	var sql strings.Builder
	var args []interface{}
	paramNum := 1

	sql.WriteString("UPDATE ")
	sql.WriteString(quoteIdent(q.table.Name))
	sql.WriteString(" SET ")

	setClauses := make([]string, 0, len(q.setOrder))
	for _, col := range q.setOrder {
		if expr, ok := q.exprs[col]; ok {
			setClauses = append(setClauses, fmt.Sprintf("%s = %s", col, expr))
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, paramNum))
		args = append(args, q.sets[col])
		paramNum++
	}
	sql.WriteString(strings.Join(setClauses, ", "))

	if len(q.where) > 0 {
		whereBuilder := NewWhereBuilderWithStart(paramNum)
		whereBuilder.conditions = q.where
		whereSql, whereArgs, err := whereBuilder.Build()
		if err != nil {
			return "", nil, fmt.Errorf("failed to build WHERE clause: %w", err)
		}

		if whereSql != "" {
			sql.WriteString(" ")
			sql.WriteString(whereSql)
			args = append(args, whereArgs...)
		}
	}

	if len(q.returning) > 0 {
		sql.WriteString(" RETURNING ")
		sql.WriteString(strings.Join(q.returning, ", "))
	}

	return sql.String(), args, nil
}

// Exec executes the UPDATE query and returns the number of affected rows.
func (q *UpdateQuery[T]) Exec(ctx context.Context) (int64, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return 0, err
	}

	if len(q.returning) == 0 {
		return q.db.db.Exec(ctx, sql, args...)
	}

	rows, err := q.db.db.Query(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		count++
	}

	return count, runtime.MapError(rows.Err())
}

// ExecReturning executes the UPDATE and returns the updated rows.
func (q *UpdateQuery[T]) ExecReturning(ctx context.Context) ([]T, error) {
	if len(q.returning) == 0 {
		q.Returning("*")
	}

	sql, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := q.db.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		var item T
		if err := scanIntoStruct(rows, &item, q.table); err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, runtime.MapError(err)
	}

	return results, nil
}
