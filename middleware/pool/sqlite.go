package pool

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteDialer abre o arquivo em path com o driver modernc (sem cgo).
// Cada Conn é uma única conexão física (MaxOpenConns=1).
func SQLiteDialer(path string) Dialer {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)"
	return func(ctx context.Context) (*sqlx.DB, error) {
		db, err := sqlx.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
		}
		return db, nil
	}
}
