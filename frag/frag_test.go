package frag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MirzaevaIV/goBE/chem"
	"github.com/MirzaevaIV/goBE/topo"
)

func chainGraph(t *testing.T, n int) *topo.BondGraph {
	t.Helper()
	g, err := topo.Build(chem.HChain(n, 1.0/chem.Bohr), topo.Options{})
	require.NoError(t, err)
	return g
}

func onePerAtom(n int) *SiteMap {
	counts := make([]int, n)
	for i := range counts {
		counts[i] = 1
	}
	return NewSiteMap(counts)
}

func TestNewPartitioner(t *testing.T) {
	p, err := NewPartitioner("autogen", 2)
	require.NoError(t, err)
	assert.Equal(t, "autogen", p.Name())

	p, err = NewPartitioner("chain", 1)
	require.NoError(t, err)
	assert.Equal(t, "chain", p.Name())

	_, err = NewPartitioner("autogen", 0)
	assert.ErrorIs(t, err, ErrBadOrder)

	_, err = NewPartitioner("voronoi", 1)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestChainEightSites(t *testing.T) {
	// 8-site linear chain, order 1: fragments {1,2},{2,3},...,{7,8} in
	// 1-based naming, each sharing its later site with the next fragment.
	g := chainGraph(t, 8)
	sm := onePerAtom(8)

	p, err := (&Chain{Order: 1}).Partition(g, sm)
	require.NoError(t, err)
	require.Len(t, p.Fragments, 7)
	require.NoError(t, Validate(p))

	for i := 0; i < 6; i++ {
		f := p.Fragments[i]
		assert.Equal(t, []int{i, i + 1}, f.Atoms, "fragment %d", i)
		assert.Equal(t, []int{i}, f.CenterAtoms)
		assert.Equal(t, []int{i + 1}, f.EdgeAtoms)
		assert.Equal(t, []float64{1, 0}, f.Weights)
	}
	last := p.Fragments[6]
	assert.Equal(t, []int{6, 7}, last.Atoms)
	assert.Equal(t, []int{6, 7}, last.CenterAtoms)
	assert.Empty(t, last.EdgeAtoms)

	// the shared site is owned by the next fragment
	require.Len(t, p.Links, 6)
	for _, l := range p.Links {
		assert.Equal(t, l.Fragment+1, l.Owner)
		assert.Equal(t, l.Atom, l.Fragment+1)
	}
	assert.Equal(t, 4, p.OwnerOf(4))
}

func TestChainWholeSystemFragment(t *testing.T) {
	g := chainGraph(t, 4)
	p, err := (&Chain{Order: 5}).Partition(g, onePerAtom(4))
	require.NoError(t, err)
	require.Len(t, p.Fragments, 1)
	assert.Equal(t, []int{0, 1, 2, 3}, p.Fragments[0].Atoms)
	assert.Equal(t, []int{0, 1, 2, 3}, p.Fragments[0].CenterAtoms)
	assert.Empty(t, p.Links)
	require.NoError(t, Validate(p))
}

func TestChainRejectsBranching(t *testing.T) {
	var mol chem.Molecule
	d := 1.0 / chem.Bohr
	require.NoError(t, mol.AddAtom("H", 0, 0, 0))
	require.NoError(t, mol.AddAtom("H", d, 0, 0))
	require.NoError(t, mol.AddAtom("H", -d, 0, 0))
	require.NoError(t, mol.AddAtom("H", 0, d, 0))
	g, err := topo.Build(&mol, topo.Options{})
	require.NoError(t, err)
	require.Equal(t, 3, g.Degree(0))

	_, err = (&Chain{Order: 1}).Partition(g, onePerAtom(4))
	assert.ErrorIs(t, err, ErrNotChain)
}

func TestAutogenEightSites(t *testing.T) {
	g := chainGraph(t, 8)
	sm := onePerAtom(8)

	p, err := (&Autogen{Order: 1}).Partition(g, sm)
	require.NoError(t, err)
	require.NoError(t, Validate(p))

	// end expansions {0,1} and {6,7} are absorbed by their neighbors
	require.Len(t, p.Fragments, 6)
	assert.Equal(t, []int{0, 1, 2}, p.Fragments[0].Atoms)
	assert.Equal(t, []int{0, 1}, p.Fragments[0].CenterAtoms)
	assert.Equal(t, []int{2}, p.Fragments[0].EdgeAtoms)
	assert.Equal(t, []int{5, 6, 7}, p.Fragments[5].Atoms)
	assert.Equal(t, []int{6, 7}, p.Fragments[5].CenterAtoms)

	mid := p.Fragments[2]
	assert.Equal(t, 3, mid.Origin)
	assert.Equal(t, []int{2, 3, 4}, mid.Atoms)
	assert.Equal(t, []int{3}, mid.CenterAtoms)
	assert.Equal(t, []int{2, 4}, mid.EdgeAtoms)
}

func TestAutogenDeterministic(t *testing.T) {
	g := chainGraph(t, 8)
	sm := onePerAtom(8)
	p1, err := (&Autogen{Order: 2}).Partition(g, sm)
	require.NoError(t, err)
	p2, err := (&Autogen{Order: 2}).Partition(g, sm)
	require.NoError(t, err)
	assert.Equal(t, p1.Fragments, p2.Fragments)
	assert.Equal(t, p1.Links, p2.Links)
}

func TestAutogenEqualSetsTieBreak(t *testing.T) {
	g := chainGraph(t, 2)
	p, err := (&Autogen{Order: 1}).Partition(g, onePerAtom(2))
	require.NoError(t, err)
	require.Len(t, p.Fragments, 1)
	assert.Equal(t, 0, p.Fragments[0].Origin)
	assert.Equal(t, []int{0, 1}, p.Fragments[0].CenterAtoms)
	require.NoError(t, Validate(p))
}

func TestAutogenNoSeed(t *testing.T) {
	g := chainGraph(t, 4)
	p, err := (&Autogen{Order: 1, NoSeed: []bool{false, true, false, false}}).Partition(g, onePerAtom(4))
	require.NoError(t, err)
	require.NoError(t, Validate(p))
	require.Len(t, p.Fragments, 2)
	assert.Equal(t, []int{0, 1}, p.Fragments[0].Atoms)
	assert.Equal(t, []int{0, 1}, p.Fragments[0].CenterAtoms)
	assert.Equal(t, []int{1, 2, 3}, p.Fragments[1].Atoms)
	assert.Equal(t, []int{2, 3}, p.Fragments[1].CenterAtoms)
	assert.Equal(t, []EdgeLink{{Fragment: 1, Atom: 1, Owner: 0}}, p.Links)
}

func TestAutogenBadInput(t *testing.T) {
	g := chainGraph(t, 4)
	_, err := (&Autogen{Order: 0}).Partition(g, onePerAtom(4))
	assert.ErrorIs(t, err, ErrBadOrder)

	_, err = (&Autogen{Order: 1}).Partition(g, onePerAtom(3))
	assert.Error(t, err)

	_, err = (&Autogen{Order: 1, NoSeed: []bool{true, true, true, true}}).Partition(g, onePerAtom(4))
	assert.Error(t, err)
}

func TestSiteMapMultipleOrbitals(t *testing.T) {
	sm := NewSiteMap([]int{2, 3, 1})
	assert.Equal(t, 6, sm.NSites())
	assert.Equal(t, []int{2, 3, 4}, sm.AtomSites(1))
	assert.Equal(t, 1, sm.AtomOf(4))
	assert.Equal(t, 2, sm.AtomOf(5))
	assert.Equal(t, 0, sm.AtomOf(0))
}

func TestFragmentSitesWithMultipleOrbitals(t *testing.T) {
	g := chainGraph(t, 3)
	sm := NewSiteMap([]int{2, 2, 2})
	p, err := (&Chain{Order: 1}).Partition(g, sm)
	require.NoError(t, err)
	require.NoError(t, Validate(p))

	f := p.Fragments[0]
	assert.Equal(t, []int{0, 1, 2, 3}, f.Sites)
	assert.Equal(t, []float64{1, 1, 0, 0}, f.Weights)
	assert.Equal(t, 2, f.LocalIndex(2))
	assert.Equal(t, -1, f.LocalIndex(5))
}
