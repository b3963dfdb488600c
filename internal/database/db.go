package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Pool bounds the MySQL connection pool.  Zero values fall back to
// the defaults below.
type Pool struct {
	MaxOpen int
	MaxIdle int
	ConnTTL time.Duration
}

func (p Pool) withDefaults() Pool {
	if p.MaxOpen <= 0 {
		p.MaxOpen = 25
	}
	if p.MaxIdle <= 0 {
		p.MaxIdle = p.MaxOpen
	}
	if p.ConnTTL <= 0 {
		p.ConnTTL = 30 * time.Minute
	}
	return p
}

// dsn builds a go-sql-driver DSN.  parseTime makes DATETIME columns
// scan into time.Time; loc=UTC keeps those times consistent with the
// values the application writes.
func dsn(user, pass, host, port, name string) string {
	var b strings.Builder
	b.WriteString(user)
	if pass != "" {
		b.WriteByte(':')
		b.WriteString(pass)
	}
	fmt.Fprintf(&b, "@tcp(%s)/%s", net.JoinHostPort(host, port), name)
	b.WriteString("?charset=utf8mb4&parseTime=true&loc=UTC")
	return b.String()
}

// Open connects to MySQL, applies the pool bounds and verifies the
// connection with a short ping.
func Open(user, pass, host, port, name string, pool Pool) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	pool = pool.withDefaults()
	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxLifetime(pool.ConnTTL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
