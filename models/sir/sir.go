// Package sir is a worked reference model (S1's attack-rate scenario):
// a classic Susceptible-Infected-Recovered population built entirely
// through simcore's public API, to exercise the engine end-to-end the
// way the teacher's example workflows exercise its execution engine.
package sir

import (
	"github.com/smilemakc/simcore/entity"
	"github.com/smilemakc/simcore/query"
	"github.com/smilemakc/simcore/rng"
	"github.com/smilemakc/simcore/simcontext"
	"github.com/smilemakc/simcore/simtime"
)

const PersonType = "person"

// Status values for the Explicit "health_status" property.
const (
	Susceptible = "S"
	Infected    = "I"
	Recovered   = "R"
)

const (
	infectionStream rng.StreamID = "sir.infection"
	recoveryStream  rng.StreamID = "sir.recovery"
	contactStream   rng.StreamID = "sir.contact"
)

// Params configures one SIR run. ContactsPerDay and RecoveryRatePerDay are
// Poisson-process rates (events per day), not per-day probabilities: each
// infected person's next contact and recovery are drawn as exponentially
// distributed inter-event times via rng.SampleDistr, the continuous-time
// DES idiom, rather than resolved by a discretized daily coin flip.
type Params struct {
	Population         int
	InitialInfected    int
	TransmissionRate   float64 // probability an S-I contact infects, per contact event
	ContactsPerDay     float64 // contact rate per infected person (events/day); 0 disables contacts
	RecoveryRatePerDay float64 // recovery rate per infected person (events/day); 0 disables recovery
	DurationDays       float64
}

// Model owns the entity type registration for one SIR run.
type Model struct {
	ctx    *simcontext.Context
	params Params
}

// Build registers the "person" entity type's health_status property and
// its derived is_infected indicator on ctx, and returns a Model ready
// for Seed and ScheduleShutdown.
func Build(ctx *simcontext.Context, params Params) *Model {
	store := ctx.Store()
	entity.RegisterProperty(store, PersonType, "health_status", entity.Explicit, nil, nil, nil)
	_, err := entity.RegisterDerivedExpr(store, PersonType, "is_infected", []string{"health_status"}, `health_status == "I"`)
	if err != nil {
		panic(err)
	}
	entity.IndexProperty(store, PersonType, "health_status")
	return &Model{ctx: ctx, params: params}
}

// Seed creates the population and, for each initially infected person,
// schedules their recovery and their first contact.
func (m *Model) Seed() {
	store := m.ctx.Store()
	for i := 0; i < m.params.Population; i++ {
		status := Susceptible
		if i < m.params.InitialInfected {
			status = Infected
		}
		id, err := store.AddEntity(PersonType, entity.PropertyValue{Name: "health_status", Value: status})
		if err != nil {
			panic(err)
		}
		if status == Infected {
			m.scheduleRecovery(id, 0)
			m.scheduleContacts(id, 0)
		}
	}
}

// scheduleRecovery draws this person's time to recovery as an
// exponentially distributed waiting time from now (a Poisson process at
// RecoveryRatePerDay) and schedules it once — unlike contacts, recovery
// never reschedules itself, since an infected person recovers at most
// once. A non-positive rate disables recovery entirely.
func (m *Model) scheduleRecovery(id entity.ID, now float64) {
	if m.params.RecoveryRatePerDay <= 0 {
		return
	}
	wait := rng.SampleDistr(m.ctx.RNG(), recoveryStream, rng.Exponential{Rate: m.params.RecoveryRatePerDay})
	_, _ = m.ctx.AddPlan(now+wait, simtime.Normal, func() {
		if m.ctx.GetProperty(id, "health_status") != Infected {
			return
		}
		m.ctx.SetProperty(id, "health_status", Recovered)
	})
}

// scheduleContacts draws this person's time to their next contact as an
// exponentially distributed waiting time from now (a Poisson process at
// ContactsPerDay). When it fires, it samples one uniformly random contact
// partner and, if that partner is still susceptible, infects them with
// probability TransmissionRate; an infected person keeps generating
// contact events until recovery, so this reschedules itself on every
// firing. A non-positive rate disables contacts entirely.
func (m *Model) scheduleContacts(id entity.ID, now float64) {
	if m.params.ContactsPerDay <= 0 {
		return
	}
	wait := rng.SampleDistr(m.ctx.RNG(), contactStream, rng.Exponential{Rate: m.params.ContactsPerDay})
	at := now + wait
	_, _ = m.ctx.AddPlan(at, simtime.Normal, func() {
		if m.ctx.GetProperty(id, "health_status") != Infected {
			return
		}
		partner, err := m.ctx.SampleEntity(contactStream, PersonType, nil)
		if err == nil && partner != id && m.ctx.GetProperty(partner, "health_status") == Susceptible {
			if rng.SampleBool(m.ctx.RNG(), infectionStream, m.params.TransmissionRate) {
				m.ctx.SetProperty(partner, "health_status", Infected)
				m.scheduleRecovery(partner, at)
				m.scheduleContacts(partner, at)
			}
		}
		m.scheduleContacts(id, at)
	})
}

// ScheduleShutdown stops the simulation after params.DurationDays.
func (m *Model) ScheduleShutdown() {
	_, _ = m.ctx.AddPlan(m.params.DurationDays, simtime.Last, func() {
		m.ctx.Shutdown()
	})
}

// AttackRate returns the fraction of the population that was ever
// infected (i.e. is currently Infected or Recovered).
func (m *Model) AttackRate() float64 {
	everInfected := m.ctx.QueryCount(PersonType, []query.Predicate{}) - susceptibleCount(m.ctx)
	return float64(everInfected) / float64(m.params.Population)
}

func susceptibleCount(ctx *simcontext.Context) int {
	return ctx.QueryCount(PersonType, []query.Predicate{{Property: "health_status", Value: Susceptible}})
}
