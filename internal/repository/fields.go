package repository

import (
	"fmt"
	"sort"

	"github.com/huandu/go-sqlbuilder"
)

// Fields is a partial update keyed by column name.
type Fields map[string]any

// buildUpdate renders an UPDATE for the whitelisted columns of table. updated_at is always bumped.
func buildUpdate(table string, allowed map[string]bool, id string, fields Fields) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("update %s: no fields", table)
	}
	columns := make([]string, 0, len(fields))
	for column := range fields {
		if !allowed[column] {
			return "", nil, fmt.Errorf("update %s: column %q not updatable", table, column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(table)
	sets := make([]string, 0, len(columns)+1)
	for _, column := range columns {
		sets = append(sets, ub.Assign(column, fields[column]))
	}
	sets = append(sets, ub.Assign("updated_at", sqlbuilder.Raw("NOW()")))
	ub.Set(sets...)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	return query, args, nil
}
