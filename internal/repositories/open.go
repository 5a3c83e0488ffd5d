package repositories

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DriverName maps a configured driver to its database/sql registration.
func DriverName(driver string) string {
	switch driver {
	case "pgx", "postgres":
		return "pgx"
	default:
		return driver
	}
}

// Open connects and pings the database. MySQL DSNs need parseTime=true for
// timestamp columns to scan into time.Time.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName(driver), dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxIdleConns(35)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}
