package sqldb

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"                   // Postgres driver
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/wadjakorntonsri/studio-site/pkg/ports"
)

var logger = loggo.GetLogger("studio.repository")

// sqliteTimeLayout has a fixed-width fraction so stored values compare correctly as text.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000"

type dialect struct {
	name       string
	driver     string
	positional bool // $1, $2 ... instead of ?
	schema     string
	singleConn bool
}

var (
	sqliteDialect   = dialect{name: "sqlite", driver: "sqlite", schema: sqliteSchema, singleConn: true}
	libsqlDialect   = dialect{name: "libsql", driver: "libsql", schema: sqliteSchema}
	postgresDialect = dialect{name: "postgres", driver: "pgx", positional: true, schema: postgresSchema}
)

func dialectFor(dbURL string) dialect {
	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		return postgresDialect
	case strings.Contains(dbURL, "libsql://"), strings.Contains(dbURL, "wss://"):
		return libsqlDialect
	default:
		return sqliteDialect
	}
}

// Repository implements the analytics, content and user stores on top of
// database/sql. It speaks SQLite, libSQL (Turso) and Postgres.
type Repository struct {
	db      *sql.DB
	dialect dialect
}

// NewRepository opens the database named by dbURL and applies the schema.
func NewRepository(dbURL string) (*Repository, error) {
	d := dialectFor(dbURL)

	db, err := sql.Open(d.driver, dbURL)
	if err != nil {
		return nil, errors.Annotatef(err, "opening %s database", d.name)
	}
	if d.singleConn {
		// SQLite allows one writer; a single connection also keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Annotatef(err, "connecting to %s database", d.name)
	}

	r := &Repository{db: db, dialect: d}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, errors.Annotate(err, "migrating schema")
	}

	logger.Infof("connected to %s database", d.name)
	return r, nil
}

func (r *Repository) migrate() error {
	_, err := r.db.Exec(r.dialect.schema)
	return err
}

// Dialect names the SQL dialect in use.
func (r *Repository) Dialect() string {
	return r.dialect.name
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping checks the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// rebind rewrites ? placeholders into the dialect's form.
func (r *Repository) rebind(query string) string {
	if !r.dialect.positional {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// timeArg converts t into the value stored in timestamp columns.
func (r *Repository) timeArg(t time.Time) interface{} {
	if r.dialect.positional {
		return t.UTC()
	}
	return t.UTC().Format(sqliteTimeLayout)
}

func (r *Repository) nullTimeArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return r.timeArg(*t)
}

func (r *Repository) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return r.db.ExecContext(ctx, r.rebind(query), args...)
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, r.rebind(query), args...)
}

func (r *Repository) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return r.db.QueryRowContext(ctx, r.rebind(query), args...)
}

// insert runs an INSERT ... RETURNING id statement.
func (r *Repository) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	err := r.queryRow(ctx, query+" RETURNING id", args...).Scan(&id)
	return id, err
}

// Ensure interface compliance
var (
	_ ports.AnalyticsRepository = (*Repository)(nil)
	_ ports.ContentRepository   = (*Repository)(nil)
	_ ports.UserRepository      = (*Repository)(nil)
)
