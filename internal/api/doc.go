// Package api contém os handlers HTTP do backend: dados fixos (signals, gems,
// news), health, banner e o mock de validação do Telegram.
//
// Os handlers são simples de propósito; limites, cache e métricas ficam nos
// middlewares montados em internal/server.
package api
