package sqlstore

import (
	"embed"
	"fmt"
	"slices"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Dialect names a SQL flavor supported by the store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// dialectSpec holds the statements that differ between SQL flavors.
type dialectSpec struct {
	drivers []string // first entry is the default

	insert        string
	guardedInsert string
	// lockTable runs at the start of a guarded commit. Empty when the
	// guarded insert alone serializes concurrent seeders.
	lockTable string
	// returning is set when inserts report the new id through RETURNING
	// instead of sql.Result.LastInsertId.
	returning bool

	selectAll  string
	selectByID string
	count      string
}

var dialects = map[Dialect]dialectSpec{
	DialectSQLite: {
		drivers:       []string{"sqlite", "sqlite3"},
		insert:        `INSERT INTO products (name, color) VALUES (?, ?)`,
		guardedInsert: `INSERT INTO products (name, color) SELECT ?, ? WHERE NOT EXISTS (SELECT 1 FROM products)`,
		selectAll:     `SELECT id, name, color FROM products ORDER BY id`,
		selectByID:    `SELECT id, name, color FROM products WHERE id = ?`,
		count:         `SELECT COUNT(*) FROM products`,
	},
	DialectPostgres: {
		drivers:       []string{"pgx", "postgres"},
		insert:        `INSERT INTO products (name, color) VALUES ($1, $2) RETURNING id`,
		guardedInsert: `INSERT INTO products (name, color) SELECT $1::text, $2::text WHERE NOT EXISTS (SELECT 1 FROM products) RETURNING id`,
		lockTable:     `LOCK TABLE products IN SHARE ROW EXCLUSIVE MODE`,
		returning:     true,
		selectAll:     `SELECT id, name, color FROM products ORDER BY id`,
		selectByID:    `SELECT id, name, color FROM products WHERE id = $1`,
		count:         `SELECT COUNT(*) FROM products`,
	},
	DialectMySQL: {
		drivers:       []string{"mysql"},
		insert:        `INSERT INTO products (name, color) VALUES (?, ?)`,
		guardedInsert: `INSERT INTO products (name, color) SELECT ?, ? FROM DUAL WHERE NOT EXISTS (SELECT 1 FROM products)`,
		selectAll:     `SELECT id, name, color FROM products ORDER BY id`,
		selectByID:    `SELECT id, name, color FROM products WHERE id = ?`,
		count:         `SELECT COUNT(*) FROM products`,
	},
}

// Dialects lists the supported dialects.
func Dialects() []Dialect {
	return []Dialect{DialectSQLite, DialectPostgres, DialectMySQL}
}

// Drivers returns the database/sql driver names usable with d. The first one
// is the default.
func (d Dialect) Drivers() []string {
	return slices.Clone(dialects[d].drivers)
}

// Validate checks that d is supported and, when driver is not empty, that
// driver can serve it.
func (d Dialect) Validate(driver string) error {
	spec, ok := dialects[d]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", d)
	}
	if driver != "" && !slices.Contains(spec.drivers, driver) {
		return fmt.Errorf("driver %q cannot be used with dialect %q (supported: %v)", driver, d, spec.drivers)
	}
	return nil
}

func (d Dialect) schemaSQL() (string, error) {
	b, err := schemaFS.ReadFile("schema/" + string(d) + ".sql")
	if err != nil {
		return "", fmt.Errorf("read %s schema: %w", d, err)
	}
	return string(b), nil
}
