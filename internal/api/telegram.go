package api

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"nexo-backend/middleware/cache"
	"nexo-backend/middleware/pool"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	BotUsername     = "@nexocrypto_trading_bot"
	ErrUUIDNotFound = "UUID não encontrado"
	uuidAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Validation é uma linha de telegram_validations.
type Validation struct {
	UUID       string `json:"uuid"`
	Validated  bool   `json:"validated"`
	Username   string `json:"username"`
	TelegramID int64  `json:"telegram_id"`
}

var seedValidations = []Validation{
	{UUID: "CRP-KTT5GM69-120S-9C19", Validated: true, Username: "usuario_teste", TelegramID: 123456789},
	{UUID: "CRP-HN6952FJ-N0FJ-P4DB", Validated: true, Username: "nexocrypto_user", TelegramID: 987654321},
}

// Telegram é o mock da validação de UUIDs pelo bot. Os dados ficam no SQLite
// e a consulta por UUID passa pelo cache de funções.
type Telegram struct {
	pool   *pool.Pool
	lookup func(context.Context, string) (*Validation, error)
	log    zerolog.Logger
}

func NewTelegram(p *pool.Pool, c *cache.Cache, ttl time.Duration, logger zerolog.Logger) *Telegram {
	t := &Telegram{pool: p, log: logger}
	t.lookup = cache.Func(c, "telegram_lookup", ttl, t.find)
	return t
}

// Seed cria a tabela e insere os UUIDs de teste (idempotente).
func (t *Telegram) Seed(ctx context.Context) error {
	_, err := t.pool.Execute(ctx, `CREATE TABLE IF NOT EXISTS telegram_validations (
		uuid        TEXT PRIMARY KEY,
		validated   INTEGER NOT NULL,
		username    TEXT NOT NULL,
		telegram_id INTEGER NOT NULL
	)`, nil, pool.ModeNone)
	if err != nil {
		return fmt.Errorf("create telegram_validations: %w", err)
	}

	for _, v := range seedValidations {
		validated := 0
		if v.Validated {
			validated = 1
		}
		_, err := t.pool.Execute(ctx,
			`INSERT OR IGNORE INTO telegram_validations (uuid, validated, username, telegram_id) VALUES (?, ?, ?, ?)`,
			[]any{v.UUID, validated, v.Username, v.TelegramID}, pool.ModeNone)
		if err != nil {
			return fmt.Errorf("seed %s: %w", v.UUID, err)
		}
	}
	return nil
}

// Lookup devolve nil (sem erro) quando o UUID não existe.
func (t *Telegram) Lookup(ctx context.Context, uuid string) (*Validation, error) {
	return t.lookup(ctx, uuid)
}

func (t *Telegram) find(ctx context.Context, uuid string) (*Validation, error) {
	res, err := t.pool.Execute(ctx,
		`SELECT uuid, validated, username, telegram_id FROM telegram_validations WHERE uuid = ?`,
		[]any{uuid}, pool.ModeOne)
	if err != nil {
		return nil, err
	}
	if res.Row == nil {
		return nil, nil
	}
	return rowToValidation(res.Row), nil
}

func rowToValidation(row map[string]any) *Validation {
	v := &Validation{}
	v.UUID, _ = row["uuid"].(string)
	v.Username, _ = row["username"].(string)
	v.TelegramID = asInt64(row["telegram_id"])
	v.Validated = asInt64(row["validated"]) != 0
	return v
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case bool:
		if n {
			return 1
		}
	}
	return 0
}

func (t *Telegram) Validate(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")

	v, err := t.Lookup(r.Context(), uuid)
	if err != nil {
		t.log.Error().Err(err).Str("uuid", uuid).Msg("telegram lookup failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Erro interno"})
		return
	}
	if v == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": ErrUUIDNotFound})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"validated":   v.Validated,
		"username":    v.Username,
		"telegram_id": v.TelegramID,
	})
}

func (t *Telegram) GenerateUUID(w http.ResponseWriter, _ *http.Request) {
	uuid, err := NewValidationUUID()
	if err != nil {
		t.log.Error().Err(err).Msg("generate uuid")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Erro interno"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"uuid":               uuid,
		"bot_username":       BotUsername,
		"validation_command": "/validate " + uuid,
	})
}

// NewValidationUUID gera CRP-XXXXXXXX-XXXX-XXXX com letras maiúsculas e dígitos.
func NewValidationUUID() (string, error) {
	a, err := randomString(8)
	if err != nil {
		return "", err
	}
	b, err := randomString(4)
	if err != nil {
		return "", err
	}
	c, err := randomString(4)
	if err != nil {
		return "", err
	}
	return "CRP-" + a + "-" + b + "-" + c, nil
}

func randomString(n int) (string, error) {
	size := big.NewInt(int64(len(uuidAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		out[i] = uuidAlphabet[idx.Int64()]
	}
	return string(out), nil
}
