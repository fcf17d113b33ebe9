package psqlbuilder

import "github.com/Masterminds/squirrel"

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Select построитель SELECT с плейсхолдерами PostgreSQL ($1, $2, ...)
func Select(columns ...string) squirrel.SelectBuilder {
	return builder.Select(columns...)
}

// Insert построитель INSERT
func Insert(table string) squirrel.InsertBuilder {
	return builder.Insert(table)
}

// Update построитель UPDATE
func Update(table string) squirrel.UpdateBuilder {
	return builder.Update(table)
}

// Delete построитель DELETE
func Delete(table string) squirrel.DeleteBuilder {
	return builder.Delete(table)
}
