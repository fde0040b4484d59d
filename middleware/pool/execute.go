package pool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Mode int

const (
	// ModeNone executa em autocommit e devolve as linhas afetadas.
	ModeNone Mode = iota
	// ModeOne devolve a primeira linha (nil se não houver).
	ModeOne
	// ModeAll devolve todas as linhas.
	ModeAll
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeOne:
		return "one"
	case ModeAll:
		return "all"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

type Result struct {
	RowsAffected int64
	Row          map[string]any
	Rows         []map[string]any
}

// Execute roda stmt com params numa conexão do pool, devolvida ao final.
func (p *Pool) Execute(ctx context.Context, stmt string, params []any, mode Mode) (Result, error) {
	var res Result
	err := p.WithConnection(ctx, func(c *Conn) error {
		switch mode {
		case ModeNone:
			r, err := c.db.ExecContext(ctx, stmt, params...)
			if err != nil {
				return err
			}
			res.RowsAffected, _ = r.RowsAffected()
			return nil

		case ModeOne:
			row := make(map[string]any)
			err := c.db.QueryRowxContext(ctx, stmt, params...).MapScan(row)
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			if err != nil {
				return err
			}
			res.Row = normalize(row)
			return nil

		case ModeAll:
			rows, err := c.db.QueryxContext(ctx, stmt, params...)
			if err != nil {
				return err
			}
			defer rows.Close()
			res.Rows, err = scanAll(rows)
			return err

		default:
			return fmt.Errorf("unknown mode %s", mode)
		}
	})
	if err != nil {
		return Result{}, fmt.Errorf("pool: execute (%s): %w", mode, err)
	}
	return res, nil
}

func scanAll(rows *sqlx.Rows) ([]map[string]any, error) {
	out := []map[string]any{}
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		out = append(out, normalize(row))
	}
	return out, rows.Err()
}

// normalize troca []byte por string para que a linha serialize em JSON como texto.
func normalize(row map[string]any) map[string]any {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return row
}

var optimizeStatements = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA cache_size = 10000",
	"PRAGMA temp_store = MEMORY",
	"VACUUM",
	"ANALYZE",
}

// Optimize roda a manutenção do banco. Cada falha é logada e a próxima instrução segue.
// Devolve quantas falharam.
func (p *Pool) Optimize(ctx context.Context) int {
	failed := 0
	for _, stmt := range optimizeStatements {
		if _, err := p.Execute(ctx, stmt, nil, ModeNone); err != nil {
			failed++
			p.log.Warn().Err(err).Str("stmt", stmt).Msg("optimize statement failed")
		}
	}
	if failed == 0 {
		p.log.Info().Msg("database optimized")
	}
	return failed
}
