package pg

import "database/sql"

type Config struct {
	// URL is a libpq connection string or postgres:// URL.
	URL string `env:"DATABASE_URL"`
}

func newSqlConnection(config Config) (*sql.DB, error) {
	return sql.Open("postgres", config.URL)
}
