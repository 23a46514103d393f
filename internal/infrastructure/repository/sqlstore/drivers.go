package sqlstore

// Every driver a Dialect can name is linked in here.
import (
	_ "github.com/go-sql-driver/mysql"       // "mysql"
	_ "github.com/jackc/pgx/v5/stdlib"       // "pgx"
	_ "github.com/lib/pq"                    // "postgres"
	_ "github.com/ncruces/go-sqlite3/driver" // "sqlite3"
	_ "github.com/ncruces/go-sqlite3/embed"  // SQLite WASM binary for "sqlite3"
	_ "modernc.org/sqlite"                   // "sqlite"
)
