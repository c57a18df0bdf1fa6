package algorithms

import (
	"context"
	"time"

	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitroute/pkg/domain"
)

// sampleGraph builds the worked example from the concrete-scenarios table:
// A(metro) -3-> B(bus) -6-> E(poi, bad_pavement)
// A -4-> C(entrance) -5-> D(bus, flood_risk) -6-> E(flood_risk)
// C -7-> E (walk, no barriers)
// A -9-> D (bus, transfer)
func sampleGraph(t *testing.T) *domain.Graph {
	t.Helper()
	nodes := []domain.NodeRecord{
		{ID: "A", Name: "A", Kind: "metro"},
		{ID: "B", Name: "B", Kind: "bus"},
		{ID: "C", Name: "C", Kind: "entrance"},
		{ID: "D", Name: "D", Kind: "bus"},
		{ID: "E", Name: "E", Kind: "poi"},
	}
	edges := []domain.EdgeRecord{
		{From: "A", To: "B", TimeMin: 3, Transfer: true, Mode: "walk"},
		{From: "B", To: "E", TimeMin: 6, BadPavement: true, Mode: "walk"},
		{From: "A", To: "C", TimeMin: 4, Transfer: true, Mode: "walk"},
		{From: "C", To: "D", TimeMin: 5, FloodRisk: true, Mode: "bus"},
		{From: "D", To: "E", TimeMin: 6, FloodRisk: true, Mode: "bus"},
		{From: "C", To: "E", TimeMin: 7, Mode: "walk"},
		{From: "A", To: "D", TimeMin: 9, Transfer: true, Mode: "bus"},
	}
	g, buildErr := domain.BuildGraph(nodes, edges)
	require.Nil(t, buildErr)
	return g
}

func idx(t *testing.T, g *domain.Graph, id string) int32 {
	t.Helper()
	i, ok := g.IndexOf(id)
	require.True(t, ok, "node %q not found", id)
	return i
}

func TestShortest_StandardProfile_PrefersFastestPath(t *testing.T) {
	g := sampleGraph(t)
	a, e := idx(t, g, "A"), idx(t, g, "E")

	params, ok := domain.ProfileParams(domain.ProfileStandard, false)
	require.True(t, ok)

	result := Shortest(context.Background(), g, a, e, params, Options{})

	require.True(t, result.Found())
	wantPath := []int32{a, idx(t, g, "B"), e}
	assert.Equal(t, wantPath, result.Path)
}

func TestShortest_PcDProfile_AvoidsBadPavement(t *testing.T) {
	g := sampleGraph(t)
	a, e := idx(t, g, "A"), idx(t, g, "E")

	params, ok := domain.ProfileParams(domain.ProfilePcD, false)
	require.True(t, ok)

	result := Shortest(context.Background(), g, a, e, params, Options{})

	require.True(t, result.Found())
	wantPath := []int32{a, idx(t, g, "C"), e}
	assert.Equal(t, wantPath, result.Path, "pcd profile should route around the bad_pavement edge B->E")
}

func TestShortest_SourceEqualsTarget(t *testing.T) {
	g := sampleGraph(t)
	a := idx(t, g, "A")
	params, _ := domain.ProfileParams(domain.ProfileStandard, false)

	result := Shortest(context.Background(), g, a, a, params, Options{})

	assert.Equal(t, []int32{a}, result.Path)
	assert.Equal(t, 0.0, result.TotalCost)
}

func TestShortest_Unreachable(t *testing.T) {
	nodes := []domain.NodeRecord{{ID: "A"}, {ID: "B"}, {ID: "Z"}}
	edges := []domain.EdgeRecord{{From: "A", To: "B", TimeMin: 1}}
	g, buildErr := domain.BuildGraph(nodes, edges)
	require.Nil(t, buildErr)

	a, z := idx(t, g, "A"), idx(t, g, "Z")
	params, _ := domain.ProfileParams(domain.ProfileStandard, false)

	result := Shortest(context.Background(), g, a, z, params, Options{})

	assert.False(t, result.Found())
	assert.False(t, result.TimedOut)
}

func TestShortest_RespectsEdgeSkip(t *testing.T) {
	g := sampleGraph(t)
	a, e := idx(t, g, "A"), idx(t, g, "E")
	b := idx(t, g, "B")

	params, _ := domain.ProfileParams(domain.ProfileStandard, false)
	opts := Options{
		SkipEdge: func(edge domain.Edge) bool {
			return edge.From == a && edge.To == b
		},
	}

	result := Shortest(context.Background(), g, a, e, params, opts)

	require.True(t, result.Found())
	assert.Equal(t, []int32{a, idx(t, g, "C"), e}, result.Path, "masking edge A->B should force the route through C")
}

func TestShortest_RespectsNodeSkip(t *testing.T) {
	g := sampleGraph(t)
	a, e := idx(t, g, "A"), idx(t, g, "E")
	c := idx(t, g, "C")

	params, _ := domain.ProfileParams(domain.ProfileStandard, false)
	opts := Options{SkipNode: func(n int32) bool { return n == c }}

	result := Shortest(context.Background(), g, a, e, params, opts)

	require.True(t, result.Found())
	for _, n := range result.Path {
		assert.NotEqual(t, c, n)
	}
}

func TestShortest_ContextCancellation(t *testing.T) {
	nodes := make([]domain.NodeRecord, 0, 2000)
	for i := 0; i < 2000; i++ {
		nodes = append(nodes, domain.NodeRecord{ID: idForInt(i)})
	}
	edges := make([]domain.EdgeRecord, 0, 1999)
	for i := 0; i < 1999; i++ {
		edges = append(edges, domain.EdgeRecord{From: idForInt(i), To: idForInt(i + 1), TimeMin: 1})
	}
	g, buildErr := domain.BuildGraph(nodes, edges)
	require.Nil(t, buildErr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	params, _ := domain.ProfileParams(domain.ProfileStandard, false)
	result := Shortest(ctx, g, 0, int32(len(nodes)-1), params, Options{})

	assert.True(t, result.TimedOut)
}

func TestShortest_DiamondGraph_TieBreaksDeterministically(t *testing.T) {
	nodes := []domain.NodeRecord{{ID: "0"}, {ID: "1"}, {ID: "2"}, {ID: "3"}}
	edges := []domain.EdgeRecord{
		{From: "0", To: "1", TimeMin: 1},
		{From: "0", To: "2", TimeMin: 1},
		{From: "1", To: "3", TimeMin: 1},
		{From: "2", To: "3", TimeMin: 1},
	}
	g, buildErr := domain.BuildGraph(nodes, edges)
	require.Nil(t, buildErr)

	params, _ := domain.ProfileParams(domain.ProfileStandard, false)
	result1 := Shortest(context.Background(), g, 0, 3, params, Options{})
	result2 := Shortest(context.Background(), g, 0, 3, params, Options{})

	assert.Equal(t, result1.Path, result2.Path, "identical runs must pick the same path under equal costs")
}

func TestShortest_WithTimeoutContext(t *testing.T) {
	g := sampleGraph(t)
	a, e := idx(t, g, "A"), idx(t, g, "E")
	params, _ := domain.ProfileParams(domain.ProfileStandard, false)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result := Shortest(ctx, g, a, e, params, Options{})

	assert.True(t, result.Found())
	assert.False(t, result.TimedOut)
}

func idForInt(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "0"
	}
	var buf []byte
	for i > 0 {
		buf = append([]byte{digits[i%10]}, buf...)
		i /= 10
	}
	return string(buf)
}
