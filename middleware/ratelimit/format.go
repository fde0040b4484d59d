package ratelimit

import (
	"math"
	"strconv"
	"time"
)

// Formatação dos valores dos headers X-RateLimit-* e Retry-After.

func formatInt(v int) string { return strconv.Itoa(v) }

// formatSeconds escreve a janela em segundos, sem notação científica ("300", "0.5").
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// retryAfterSeconds arredonda para cima; nunca menos que 1.
func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
