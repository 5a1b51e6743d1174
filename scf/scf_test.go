package scf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/chem"
	"github.com/MirzaevaIV/goBE/integrals"
)

func h2System(t *testing.T, dist float64) System {
	t.Helper()
	mol := chem.HChain(2, dist)
	set, err := integrals.STO3G(mol)
	require.NoError(t, err)
	return System{
		Hcore:         mat.DenseCopyOf(set.Hcore()),
		Overlap:       mat.DenseCopyOf(set.Overlap()),
		ERI:           set.ElectronRepulsion(),
		NumElectrons:  mol.NumElectrons(),
		NuclearEnergy: set.NuclearRepulsion(),
		AOPerAtom:     set.AOPerAtom(),
	}
}

func TestLowdinInverseSquareRoot(t *testing.T) {
	s := mat.NewSymDense(2, []float64{1.0, 0.45, 0.45, 1.0})
	x, err := Lowdin(s)
	require.NoError(t, err)

	// X S X must be the identity.
	var xsx mat.Dense
	xsx.Mul(x, s)
	xsx.Mul(&xsx, x)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, xsx.At(i, j), 1e-12)
		}
	}
}

func TestLowdinNearSingular(t *testing.T) {
	s := mat.NewSymDense(2, []float64{1.0, 1.0, 1.0, 1.0})
	_, err := Lowdin(s)
	assert.ErrorIs(t, err, ErrLinearDependence)
}

func TestRHFHydrogenMolecule(t *testing.T) {
	sys := h2System(t, 1.4)
	rhf := NewRHF(sys)
	total, err := rhf.Kernel()
	require.NoError(t, err)
	require.True(t, rhf.Converged())

	// Reference RHF/STO-3G value for H2 at R = 1.4 bohr.
	assert.InDelta(t, -1.1167, total, 2e-3)
	assert.InDelta(t, 1.0/1.4, rhf.NuclearEnergy(), 1e-12)

	// Tr(D S) counts the electrons.
	var ds mat.Dense
	ds.Mul(rhf.Density(), rhf.Overlap())
	assert.InDelta(t, 2.0, mat.Trace(&ds), 1e-8)
}

func TestRHFElectronicEnergyIdentity(t *testing.T) {
	sys := h2System(t, 1.4)
	rhf := NewRHF(sys)
	total, err := rhf.Kernel()
	require.NoError(t, err)

	g := GMatrix(rhf.ERI(), rhf.Density())
	elec := total - rhf.NuclearEnergy()
	assert.InDelta(t, elec, ElectronicEnergy(rhf.Density(), rhf.Hcore(), g), 1e-8)
	assert.InDelta(t, elec, rhf.ElectronicEnergy(), 1e-12)
}

func TestRHFOddElectrons(t *testing.T) {
	sys := h2System(t, 1.4)
	sys.NumElectrons = 3
	_, err := NewRHF(sys).Kernel()
	assert.Error(t, err)
}

func TestRHFNotConverged(t *testing.T) {
	sys := h2System(t, 1.4)
	rhf := NewRHF(sys)
	rhf.MaxSteps = 1
	_, err := rhf.Kernel()
	assert.ErrorIs(t, err, ErrSCFNotConverged)
	assert.False(t, rhf.Converged())
}

func TestOrthogonalize(t *testing.T) {
	sys := h2System(t, 1.4)
	rhf := NewRHF(sys)
	_, err := rhf.Kernel()
	require.NoError(t, err)

	ref, err := Orthogonalize(rhf)
	require.NoError(t, err)

	n := ref.NAO()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, ref.Overlap().At(i, j), 1e-12)
		}
	}

	// The electronic energy is basis independent, both as reported and
	// when recomputed from the transformed quantities.
	assert.Equal(t, rhf.ElectronicEnergy(), ref.ElectronicEnergy())
	g := GMatrix(ref.ERI(), ref.Density())
	assert.InDelta(t, rhf.ElectronicEnergy(),
		ElectronicEnergy(ref.Density(), ref.Hcore(), g), 1e-8)

	// In an orthonormal basis the closed-shell density traces to the
	// electron count and D*D = 2*D.
	assert.InDelta(t, 2.0, mat.Trace(ref.Density()), 1e-8)
	var dd mat.Dense
	dd.Mul(ref.Density(), ref.Density())
	var twoD mat.Dense
	twoD.Scale(2, ref.Density())
	assert.InDelta(t, 0, mat.Norm(sub(&dd, &twoD), 2), 1e-7)
}

func TestOrthogonalizeIdentityPassthrough(t *testing.T) {
	sys := h2System(t, 1.4)
	rhf := NewRHF(sys)
	_, err := rhf.Kernel()
	require.NoError(t, err)

	ref, err := Orthogonalize(rhf)
	require.NoError(t, err)
	again, err := Orthogonalize(ref)
	require.NoError(t, err)
	assert.Same(t, ref, again)
}

func sub(a, b mat.Matrix) mat.Matrix {
	var d mat.Dense
	d.Sub(a, b)
	return &d
}
