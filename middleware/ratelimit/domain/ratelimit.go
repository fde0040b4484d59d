package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

type Key string

// Nomes das classes de limite usadas pelas rotas.
const (
	ClassDefault = "default"
	ClassAuth    = "auth"
	ClassData    = "data"
)

// LimitClass é uma política nomeada: no máximo MaxRequests admissões
// dentro de qualquer janela deslizante de duração Window.
type LimitClass struct {
	Name        string
	MaxRequests int
	Window      time.Duration
}

// Classes indexa as políticas pelo nome.
type Classes map[string]LimitClass

// DefaultClasses: default 100/h, auth 10/5min, data 1000/h.
func DefaultClasses() Classes {
	return Classes{
		ClassDefault: {Name: ClassDefault, MaxRequests: 100, Window: time.Hour},
		ClassAuth:    {Name: ClassAuth, MaxRequests: 10, Window: 5 * time.Minute},
		ClassData:    {Name: ClassData, MaxRequests: 1000, Window: time.Hour},
	}
}

// Resolve devolve a classe pelo nome; nome desconhecido cai na classe default.
func (c Classes) Resolve(name string) LimitClass {
	if lc, ok := c[name]; ok {
		return lc
	}
	if lc, ok := c[ClassDefault]; ok {
		return lc
	}
	return DefaultClasses()[ClassDefault]
}

// LimiterStore decide e registra admissões por (chave, classe).
//
// A implementação mantém o estado por bucket (janela deslizante em memória,
// por exemplo) e é responsável pela própria sincronização.
type LimiterStore interface {
	Allow(key Key, class LimitClass) Decision
}

type Decision struct {
	Allowed bool
	// Remaining é quantas admissões ainda cabem na janela após esta decisão.
	Remaining int
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
