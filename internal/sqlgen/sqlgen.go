// Package sqlgen projects a schema document onto SQL DDL text.
// The projection is pure and deterministic; it does not validate
// referential integrity beyond what the document already guarantees.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/sqlizer/sqlizer/internal/schema"
)

// Translate renders the document as CREATE/ALTER statements, one per line.
func Translate(doc *schema.Document) string {
	var statements []string

	statements = append(statements,
		fmt.Sprintf("CREATE DATABASE %s;", doc.DBName),
		fmt.Sprintf("USE %s;", doc.DBName),
	)

	for _, table := range doc.Tables {
		statements = append(statements, createTable(table))
	}

	for _, rel := range doc.Relations {
		statements = append(statements,
			fmt.Sprintf("ALTER TABLE %s ADD FOREIGN KEY (%s) REFERENCES %s(%s);",
				rel.From.Table, rel.From.Field, rel.To.Table, rel.To.Field))
	}

	return strings.Join(statements, "\n")
}

func createTable(table schema.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (", table.Name)

	var primaryKeys []string
	for i, field := range table.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", field.Name, field.Type)
		if field.Autoincrement {
			b.WriteString(" AUTO_INCREMENT")
		}
		if !field.Nullable {
			b.WriteString(" NOT NULL")
		}
		if field.DefaultValue != nil {
			fmt.Fprintf(&b, " DEFAULT '%s'", *field.DefaultValue)
		}
		if field.PK {
			primaryKeys = append(primaryKeys, field.Name)
		}
	}

	// Composite primary keys are collected into a trailing clause.
	if len(primaryKeys) > 0 {
		fmt.Fprintf(&b, ", PRIMARY KEY (%s)", strings.Join(primaryKeys, ", "))
	}

	b.WriteString(");")
	return b.String()
}
