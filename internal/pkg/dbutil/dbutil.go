package dbutil

import (
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// In expands a query with IN-lists and rebinds placeholders for postgres.
func In(query string, args ...interface{}) (string, []interface{}, error) {
	q, expanded, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return sqlx.Rebind(sqlx.DOLLAR, q), expanded, nil
}

func IsConflict(err error) bool {
	if pgErr, ok := err.(*pq.Error); ok {
		return pgErr.Code == "23505"
	}
	return false
}
