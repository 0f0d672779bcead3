package tenant

import "fmt"

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config holds the tenant store configuration. All fields are immutable for
// the process lifetime.
type Config struct {
	// Driver selects the store backend: sqlite, postgres, or mysql.
	Driver string `yaml:"driver" mapstructure:"driver"`

	// DSN is the base connection string for network drivers. The database
	// name portion is replaced per tenant with the derived namespace.
	DSN string `yaml:"dsn" mapstructure:"dsn"`

	// Path is the storage directory for the sqlite driver. Each tenant
	// namespace becomes one database file inside it.
	Path string `yaml:"path" mapstructure:"path"`

	// ContainerPrefix is prepended to the tenant id to derive the physical
	// namespace name.
	ContainerPrefix string `yaml:"container_prefix" mapstructure:"container_prefix"`

	// LogLevel controls query logging: silent, error, warn, or info.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`

	// SlowQueryThreshold is the duration above which queries are logged as
	// slow (e.g. "200ms").
	SlowQueryThreshold string `yaml:"slow_query_threshold" mapstructure:"slow_query_threshold"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.Path == "" {
		c.Path = "./data"
	}
	if c.ContainerPrefix == "" {
		c.ContainerPrefix = "microbees_"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
}

// Validate checks that required fields are present for the chosen driver.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	case DriverPostgres, DriverMySQL:
		if c.DSN == "" {
			return fmt.Errorf("store.dsn is required for the %s driver", c.Driver)
		}
	default:
		return fmt.Errorf("store.driver must be one of [sqlite, postgres, mysql] (got: %s)", c.Driver)
	}
	if c.ContainerPrefix == "" {
		return fmt.Errorf("store.container_prefix is required")
	}
	return nil
}
