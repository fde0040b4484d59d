// Package metrics agrega contadores e tempos de resposta de todas as requests.
//
// Collector é a fonte do snapshot JSON (/api/metrics) e espelha cada registro em
// coletores Prometheus quando um Registerer é informado (/metrics).
package metrics
