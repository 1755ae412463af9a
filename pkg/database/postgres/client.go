package pg

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	_ "github.com/newrelic/go-agent/v3/integrations/nrpgx"
)

// DriverName is the New Relic instrumented pgx driver registered by nrpgx
const DriverName = "nrpgx"

type Config struct {
	User               string
	Host               string
	Password           string
	Port               int
	DbName             string
	MaxOpenConnections int
	MaxIdleConnections int
}

// DSN returns the connection string for the config
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DbName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Validate checks that the config has enough information to connect
func (c *Config) Validate() error {
	if len(c.Host) == 0 {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("invalid port: %d", c.Port)
	}
	if len(c.User) == 0 {
		return errors.New("user is required")
	}
	if len(c.DbName) == 0 {
		return errors.New("db name is required")
	}
	if c.MaxOpenConnections < 0 || c.MaxIdleConnections < 0 {
		return errors.New("connection limits cannot be negative")
	}
	return nil
}

// Open gets a DB connection pool using username/password credentials from
// the config, applies its connection limits and verifies connectivity.
func Open(c *Config) (*sqlx.DB, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid postgres config")
	}

	db, err := NewWithUsernameAndPassword(c.DSN())
	if err != nil {
		return nil, err
	}

	if c.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(c.MaxOpenConnections)
	}
	if c.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(c.MaxIdleConnections)
	}

	return sqlx.NewDb(db, "pgx"), nil
}

// NewWithUsernameAndPassword opens a DB connection pool with the
// instrumented "nrpgx" driver (instead of "postgres") and pings it.
func NewWithUsernameAndPassword(dsn string) (*sql.DB, error) {
	// TODO: enable SSL once deployments provide a server certificate
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "error opening postgres connection pool")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error pinging postgres")
	}

	return db, nil
}
