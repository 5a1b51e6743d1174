package topo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MirzaevaIV/goBE/chem"
)

func TestBuildChain(t *testing.T) {
	mol := chem.HChain(8, 1.0/chem.Bohr)
	g, err := Build(mol, Options{})
	require.NoError(t, err)
	require.Equal(t, 8, g.NAtoms())

	// uniform nearest-neighbor bonding
	assert.Equal(t, []int{1}, g.Neighbors(0))
	assert.Equal(t, []int{2, 4}, g.Neighbors(3))
	assert.Equal(t, 1, g.Degree(7))
	assert.True(t, g.HasBond(3, 4))
	assert.False(t, g.HasBond(0, 2))
}

func TestBuildDisconnected(t *testing.T) {
	var mol chem.Molecule
	require.NoError(t, mol.AddAtom("H", 0, 0, 0))
	require.NoError(t, mol.AddAtom("H", 0, 0, 1.4))
	require.NoError(t, mol.AddAtom("H", 0, 0, 50))
	require.NoError(t, mol.AddAtom("H", 0, 0, 51.4))

	_, err := Build(&mol, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDisconnected)
}

func TestLongBondRelaxation(t *testing.T) {
	// 2.0 Angstrom H-H: beyond the default cutoff, inside the relaxed one.
	mol := chem.HChain(3, 2.0/chem.Bohr)
	_, err := Build(mol, Options{})
	assert.ErrorIs(t, err, ErrDisconnected)

	g, err := Build(mol, Options{LongBonds: true})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, g.Neighbors(1))
}

func TestCutoffOverride(t *testing.T) {
	mol := chem.HChain(2, 3.0)
	_, err := Build(mol, Options{Cutoffs: map[[2]int]float64{{1, 1}: 2.0}})
	assert.ErrorIs(t, err, ErrDisconnected)

	g, err := Build(mol, Options{Cutoffs: map[[2]int]float64{{1, 1}: 3.5}})
	require.NoError(t, err)
	assert.True(t, g.HasBond(0, 1))
}

func TestWithinHops(t *testing.T) {
	mol := chem.HChain(8, 1.0/chem.Bohr)
	g, err := Build(mol, Options{})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3, 4}, g.WithinHops(3, 1))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, g.WithinHops(3, 2))
	// boundary atoms truncate to the available radius
	assert.Equal(t, []int{0, 1, 2}, g.WithinHops(0, 2))
	assert.Equal(t, []int{0}, g.WithinHops(0, 0))
}

func TestComponents(t *testing.T) {
	mol := chem.HChain(4, 1.0/chem.Bohr)
	g, err := Build(mol, Options{})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2, 3}}, g.Components())
}
