// Package application contém o caso de uso do rate limit.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(key, "auth") retorna uma Decision (allow/deny + retry-after).
package application
