package metrics

import (
	"encoding/json"
	"net/http"
)

// SnapshotHandler responde o snapshot atual em JSON.
func (c *Collector) SnapshotHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c.Snapshot())
	})
}
