// Package report implements the periodic JSONL reporter (A6): a plan
// scheduled through the Context's own AddPeriodicPlan that tabulates
// query results and appends one JSON line per row. Row write failures
// are logged through zerolog,
// distinct from the simulation's own slog-based logging, mirroring the
// split the teacher draws between its console/ClickHouse loggers
// (operational) and its slog-based internal logger (application).
package report

import (
	"encoding/json"
	"io"

	"github.com/rs/zerolog"

	"github.com/smilemakc/simcore/query"
	"github.com/smilemakc/simcore/simcontext"
	"github.com/smilemakc/simcore/simtime"
)

// Reporter tabulates an entity type's population by a set of properties
// on every tick and writes one JSON object per row.
type Reporter struct {
	w          io.Writer
	opLog      zerolog.Logger
	entityType string
	properties []string
}

// New builds a Reporter writing to w. opLog receives operational
// messages (write failures); pass zerolog.Nop() to disable them.
func New(w io.Writer, opLog zerolog.Logger, entityType string, properties []string) *Reporter {
	return &Reporter{w: w, opLog: opLog, entityType: entityType, properties: properties}
}

// Row is one emitted JSON line: the tick, the property tuple, and count.
type Row struct {
	Tick   float64        `json:"tick"`
	Values map[string]any `json:"values"`
	Count  int            `json:"count"`
}

func (r *Reporter) writeTick(tick float64, rows []query.Row) {
	enc := json.NewEncoder(r.w)
	for _, row := range rows {
		values := make(map[string]any, len(r.properties))
		for i, p := range r.properties {
			values[p] = row.Values[i]
		}
		if err := enc.Encode(Row{Tick: tick, Values: values, Count: row.Count}); err != nil {
			r.opLog.Error().Err(err).Float64("tick", tick).Msg("failed to write report row")
			return
		}
	}
}

// Attach schedules this reporter to fire every intervalDays virtual-time
// units for the remainder of ctx's run, in the Last phase so it observes
// every other Normal-phase mutation that happened at the same tick.
func (r *Reporter) Attach(ctx *simcontext.Context, intervalDays float64) error {
	_, err := ctx.AddPeriodicPlan(intervalDays, simtime.Last, func() {
		rows := ctx.Tabulate(r.entityType, r.properties)
		r.writeTick(ctx.GetCurrentTime(), rows)
	})
	return err
}
