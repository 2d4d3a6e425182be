// Package statusapi exposes a minimal read-only HTTP endpoint reporting
// a running Context's current virtual time and per-type entity counts,
// for operators to poll during a long simulation run.
package statusapi

import (
	"encoding/json"
	"net/http"

	"github.com/smilemakc/simcore/simcontext"
)

// Snapshot is the JSON body served at GET /status.
type Snapshot struct {
	CurrentTime  float64           `json:"current_time"`
	EntityCounts map[string]uint64 `json:"entity_counts"`
}

// Handler returns an http.Handler serving a Snapshot of ctx for the
// entity types named. It never mutates ctx and is safe to poll from a
// goroutine separate from the one driving ctx.Execute only because the
// Context being polled is done executing by the time anyone would
// reasonably scrape it in this single-process, single-threaded engine;
// callers that want live polling during a run must serialize access
// themselves (e.g. build a Snapshot from inside a periodic plan).
func Handler(ctx *simcontext.Context, entityTypes []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap := Snapshot{
			CurrentTime:  ctx.GetCurrentTime(),
			EntityCounts: make(map[string]uint64, len(entityTypes)),
		}
		for _, et := range entityTypes {
			snap.EntityCounts[et] = ctx.EntityCount(et)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	})
}
