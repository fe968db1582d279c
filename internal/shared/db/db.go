package db

import (
	"context"
	"embed"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// goose guarda dialeto e FS em estado global
var gooseMu sync.Mutex

func init() {
	// queries do repo são escritas com "?" e reescritas via Rebind
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Pool dimensiona o pool de conexões do Postgres; zero usa o padrão
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
}

// DefaultPool: liquidação e placement seguram a conexão durante a Tx inteira
var DefaultPool = Pool{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxIdleTime: 5 * time.Minute}

func (p Pool) withDefaults() Pool {
	if p.MaxOpenConns <= 0 {
		p.MaxOpenConns = DefaultPool.MaxOpenConns
	}
	if p.MaxIdleConns <= 0 {
		p.MaxIdleConns = DefaultPool.MaxIdleConns
	}
	if p.MaxIdleConns > p.MaxOpenConns {
		p.MaxIdleConns = p.MaxOpenConns
	}
	if p.ConnMaxIdleTime <= 0 {
		p.ConnMaxIdleTime = DefaultPool.ConnMaxIdleTime
	}
	return p
}

func (p Pool) apply(db *sqlx.DB) {
	p = p.withDefaults()
	db.SetMaxOpenConns(p.MaxOpenConns)
	db.SetMaxIdleConns(p.MaxIdleConns)
	db.SetConnMaxIdleTime(p.ConnMaxIdleTime)
}

func ConnectPostgres(dsn string, pool Pool) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pool.apply(db)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// ConnectSQLite abre o arquivo (ou ":memory:") com foreign keys ligadas.
// Uma única conexão: SQLite tem um único writer e o banco em memória vive na conexão.
func ConnectSQLite(path string) (*sqlx.DB, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

// Open escolhe o driver configurado; pool só vale para o Postgres
func Open(driver, postgresDSN, sqlitePath string, pool Pool) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres:
		return ConnectPostgres(postgresDSN, pool)
	case DriverSQLite:
		return ConnectSQLite(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

// Migrate aplica as migrations embutidas do dialeto da conexão
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var dialect, dir string
	switch db.DriverName() {
	case DriverPostgres:
		dialect, dir = "postgres", "migrations/postgres"
	case DriverSQLite:
		dialect, dir = "sqlite3", "migrations/sqlite"
	default:
		return fmt.Errorf("migrate: unsupported driver %q", db.DriverName())
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, dir); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
