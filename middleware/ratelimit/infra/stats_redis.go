package infra

import (
	"context"
	"strings"
	"time"

	"nexo-backend/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

const (
	BucketMinute = "minute"
	BucketHour   = "hour"
	BucketNone   = "none"
)

// Layout das séries no Redis por bucket.
var bucketLayouts = map[string]string{
	BucketMinute: "200601021504",
	BucketHour:   "2006010215",
}

// RedisStatsStore grava os mesmos contadores do MemoryStatsStore em hashes do
// Redis, com uma série temporal a mais:
//
//	<prefix>:total               allowed / denied
//	<prefix>:<bucket>:<instante>  allowed / denied, expira com ttl
//	<prefix>:class               <classe>:allowed / <classe>:denied
//	<prefix>:route               <METHOD rota>:allowed / :denied
//	<prefix>:key:<chave>         allowed / denied (só com trackKeys; expira com ttl)
type RedisStatsStore struct {
	rdb       *redis.Client
	prefix    string
	ttl       time.Duration
	bucket    string
	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		if p := strings.Trim(prefix, ": "); p != "" {
			s.prefix = p
		}
	}
}

// WithStatsTTL vale para a série temporal e as chaves por cliente; 0 não expira.
func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

// WithStatsBucket: minute, hour ou none. Valor desconhecido vira none.
func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		b := strings.ToLower(strings.TrimSpace(bucket))
		if _, ok := bucketLayouts[b]; !ok {
			b = BucketNone
		}
		s.bucket = b
	}
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "ratelimit:stats",
		ttl:    24 * time.Hour,
		bucket: BucketMinute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// hashIncr é um HINCRBY key field 1, com EXPIRE opcional.
type hashIncr struct {
	key    string
	field  string
	expire bool
}

func (s *RedisStatsStore) increments(ev domain.StatsEvent) []hashIncr {
	outcome := "denied"
	if ev.Allowed {
		outcome = "allowed"
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	incs := []hashIncr{{key: s.prefix + ":total", field: outcome}}

	if layout, ok := bucketLayouts[s.bucket]; ok {
		incs = append(incs, hashIncr{
			key:    s.prefix + ":" + s.bucket + ":" + at.UTC().Format(layout),
			field:  outcome,
			expire: true,
		})
	}
	if class := strings.TrimSpace(ev.Class); class != "" {
		incs = append(incs, hashIncr{key: s.prefix + ":class", field: class + ":" + outcome})
	}
	if route := strings.TrimSpace(ev.Method + " " + ev.Path); route != "" {
		incs = append(incs, hashIncr{key: s.prefix + ":route", field: route + ":" + outcome})
	}
	if s.trackKeys {
		if k := strings.TrimSpace(string(ev.Key)); k != "" {
			incs = append(incs, hashIncr{key: s.prefix + ":key:" + k, field: outcome, expire: true})
		}
	}
	return incs
}

// Record envia todos os incrementos de um evento num único pipeline.
func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	pipe := s.rdb.Pipeline()
	for _, inc := range s.increments(ev) {
		pipe.HIncrBy(ctx, inc.key, inc.field, 1)
		if inc.expire && s.ttl > 0 {
			pipe.Expire(ctx, inc.key, s.ttl)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}
