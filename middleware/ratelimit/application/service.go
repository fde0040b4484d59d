package application

import (
	"time"

	"nexo-backend/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store   domain.LimiterStore
	Classes domain.Classes
	// RetryAfter é usado quando o store bloqueia sem recomendar um valor.
	RetryAfter time.Duration
}

// Decide resolve a classe pelo nome e consulta o store para a chave.
func (s Service) Decide(key domain.Key, className string) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}

	class := s.Classes.Resolve(className)
	dec := s.Store.Allow(key, class)
	if dec.Allowed {
		dec.RetryAfter = 0
		return dec
	}
	if dec.RetryAfter <= 0 {
		dec.RetryAfter = s.RetryAfter
	}
	return dec
}
