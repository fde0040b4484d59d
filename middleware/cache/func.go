package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Func envolve fn com cache-aside. Chamadas com os mesmos args dentro do ttl
// executam fn uma única vez; erros de fn não são cacheados.
//
// Se a chave não puder ser derivada, fn é chamada direto (miss forçado).
func Func[A, T any](c *Cache, name string, ttl time.Duration, fn func(context.Context, A) (T, error)) func(context.Context, A) (T, error) {
	return func(ctx context.Context, args A) (T, error) {
		key, err := FuncKey(c.prefix, name, args)
		if err != nil {
			c.log.Debug().Err(err).Str("func", name).Msg("bypassing cache")
			c.miss()
			return fn(ctx, args)
		}

		if raw, ok := c.Get(ctx, key); ok {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				c.hit()
				return v, nil
			}
			c.log.Warn().Str("key", key).Msg("cached value could not be decoded, recomputing")
		}
		c.miss()

		v, err := fn(ctx, args)
		if err != nil {
			return v, err
		}

		raw, err := json.Marshal(v)
		if err != nil {
			c.log.Warn().Err(err).Str("func", name).Msg("cache encode failed")
			return v, nil
		}
		if err := c.Set(ctx, key, raw, ttl); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
		return v, nil
	}
}
