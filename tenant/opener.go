package tenant

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Opener maps a physical namespace name to a store connection. The registry
// is the only consumer; implementations carry the base connection settings.
type Opener interface {
	// Probe verifies the base connection is usable. Called once at registry
	// construction; an error there is fatal for the process.
	Probe() error
	// Open returns a dialector scoped to the given namespace.
	Open(namespace string) gorm.Dialector
}

// NewOpener builds the opener for the configured driver.
func NewOpener(cfg Config) (Opener, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return &sqliteOpener{dir: cfg.Path}, nil
	case DriverPostgres:
		return &postgresOpener{dsn: cfg.DSN}, nil
	case DriverMySQL:
		return &mysqlOpener{dsn: cfg.DSN}, nil
	default:
		return nil, fmt.Errorf("tenant: unsupported driver %q", cfg.Driver)
	}
}

// sqliteOpener stores each tenant namespace as one database file.
type sqliteOpener struct {
	dir string
}

func (o *sqliteOpener) Probe() error {
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return fmt.Errorf("tenant: storage directory %s: %w", o.dir, err)
	}
	return nil
}

func (o *sqliteOpener) Open(namespace string) gorm.Dialector {
	return sqlite.Open(filepath.Join(o.dir, namespace+".db"))
}

// postgresOpener connects to one database per tenant namespace on a shared
// server. The base DSN must be reachable; its database name is replaced per
// tenant.
type postgresOpener struct {
	dsn string
}

func (o *postgresOpener) Probe() error {
	return probeDialector(postgres.Open(o.dsn))
}

func (o *postgresOpener) Open(namespace string) gorm.Dialector {
	return postgres.Open(replacePostgresDatabase(o.dsn, namespace))
}

// mysqlOpener connects to one database per tenant namespace on a shared
// server.
type mysqlOpener struct {
	dsn string
}

func (o *mysqlOpener) Probe() error {
	return probeDialector(mysql.Open(o.dsn))
}

func (o *mysqlOpener) Open(namespace string) gorm.Dialector {
	return mysql.Open(replaceMySQLDatabase(o.dsn, namespace))
}

// probeDialector opens, pings, and closes a throwaway connection.
func probeDialector(d gorm.Dialector) error {
	db, err := gorm.Open(d, &gorm.Config{})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return sqlDB.Ping()
}

// replacePostgresDatabase swaps the database name in a postgres DSN, which
// may be a URL ("postgres://...") or a key=value string.
func replacePostgresDatabase(dsn, database string) string {
	if strings.Contains(dsn, "://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		u.Path = "/" + database
		return u.String()
	}

	parts := strings.Fields(dsn)
	out := make([]string, 0, len(parts)+1)
	replaced := false
	for _, p := range parts {
		if strings.HasPrefix(p, "dbname=") {
			out = append(out, "dbname="+database)
			replaced = true
			continue
		}
		out = append(out, p)
	}
	if !replaced {
		out = append(out, "dbname="+database)
	}
	return strings.Join(out, " ")
}

// replaceMySQLDatabase swaps the database name in a go-sql-driver DSN of the
// form user:pass@tcp(host:port)/dbname?params.
func replaceMySQLDatabase(dsn, database string) string {
	slash := strings.LastIndex(dsn, "/")
	if slash == -1 {
		return dsn + "/" + database
	}
	rest := dsn[slash+1:]
	if q := strings.Index(rest, "?"); q != -1 {
		return dsn[:slash+1] + database + rest[q:]
	}
	return dsn[:slash+1] + database
}
