package plugin_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smilemakc/simcore/plugin"
)

type counters struct {
	n int
}

type labels struct {
	names []string
}

func TestGetInitializesOnceAndCachesPerType(t *testing.T) {
	r := plugin.New()
	calls := 0

	get := func() counters {
		calls++
		return counters{n: 42}
	}

	a := plugin.Get(r, get)
	b := plugin.Get(r, get)

	require.Equal(t, 1, calls)
	require.Equal(t, counters{n: 42}, a)
	require.Equal(t, a, b)
}

func TestDistinctTypesNeverCollide(t *testing.T) {
	r := plugin.New()
	c := plugin.Get(r, func() counters { return counters{n: 1} })
	l := plugin.GetMut(r, func() labels { return labels{names: []string{"x"}} })

	require.Equal(t, 1, c.n)
	require.Equal(t, []string{"x"}, l.names)
	require.Equal(t, 2, r.Len())
}

func TestTwoRegistriesAreIndependent(t *testing.T) {
	r1 := plugin.New()
	r2 := plugin.New()

	a := plugin.Get(r1, func() counters { return counters{n: 1} })
	b := plugin.Get(r2, func() counters { return counters{n: 2} })

	require.NotEqual(t, a, b)
}
