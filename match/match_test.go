package match

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/chem"
	"github.com/MirzaevaIV/goBE/embed"
	"github.com/MirzaevaIV/goBE/frag"
	"github.com/MirzaevaIV/goBE/integrals"
	"github.com/MirzaevaIV/goBE/scf"
	"github.com/MirzaevaIV/goBE/solver"
	"github.com/MirzaevaIV/goBE/tensor"
	"github.com/MirzaevaIV/goBE/topo"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPotentialSnapshots(t *testing.T) {
	p0 := ZeroPotential()
	keys := [][2]int{{0, 1}, {2, 2}}
	p1 := p0.with(keys, []float64{0.1, -0.2, 0.05})

	assert.Equal(t, 0, p0.Version)
	assert.Equal(t, 1, p1.Version)
	assert.Empty(t, p0.Terms, "snapshots must not share state")
	assert.InDelta(t, 0.1, p1.Term(1, 0), 1e-15, "pair lookup is unordered")
	assert.InDelta(t, -0.2, p1.Term(2, 2), 1e-15)
	assert.InDelta(t, 0.05, p1.Mu, 1e-15)

	p2 := p1.with(keys, []float64{0.1, 0, 0})
	assert.InDelta(t, 0.2, p2.Term(0, 1), 1e-15)
	assert.Equal(t, 2, p2.Version)
}

func TestPotentialSaveLoad(t *testing.T) {
	p := ZeroPotential().with([][2]int{{0, 1}, {3, 4}}, []float64{0.25, -0.5, 0.125})
	path := filepath.Join(t.TempDir(), "vpot.yaml")
	require.NoError(t, p.Save(path))

	got, err := LoadPotential(path)
	require.NoError(t, err)
	assert.Equal(t, p.Version, got.Version)
	assert.InDelta(t, p.Mu, got.Mu, 1e-15)
	assert.Equal(t, p.Terms, got.Terms)
}

func TestLoadPotentialMissing(t *testing.T) {
	_, err := LoadPotential(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// hChainMatcher sets up the full embedding pipeline for an H6 chain.
func hChainMatcher(t *testing.T) *Matcher {
	t.Helper()
	mol := chem.HChain(6, 1.8)
	set, err := integrals.STO3G(mol)
	require.NoError(t, err)
	rhf := scf.NewRHF(scf.System{
		Hcore:         mat.DenseCopyOf(set.Hcore()),
		Overlap:       mat.DenseCopyOf(set.Overlap()),
		ERI:           set.ElectronRepulsion(),
		NumElectrons:  mol.NumElectrons(),
		NuclearEnergy: set.NuclearRepulsion(),
		AOPerAtom:     set.AOPerAtom(),
	})
	_, err = rhf.Kernel()
	require.NoError(t, err)
	ref, err := scf.Orthogonalize(rhf)
	require.NoError(t, err)

	g, err := topo.Build(mol, topo.Options{})
	require.NoError(t, err)
	part, err := (&frag.Chain{Order: 1}).Partition(g, frag.NewSiteMap(ref.AOPerAtom()))
	require.NoError(t, err)

	hams := make([]*embed.Hamiltonian, len(part.Fragments))
	for i := range part.Fragments {
		sub, err := embed.SchmidtDecompose(ref.Density(), &part.Fragments[i])
		require.NoError(t, err)
		hams[i], err = embed.BuildHamiltonian(ref, part.Map, sub, nil)
		require.NoError(t, err)
	}
	m := NewMatcher(&solver.HF{}, part, hams, ref.NumElectrons())
	// The fragment SCF converges densities to about 1e-6; the matching
	// tolerance has to sit above that noise floor.
	m.Tol = 1e-5
	return m
}

func TestMatcherMeanFieldIsFixedPoint(t *testing.T) {
	m := hChainMatcher(t)
	res, err := m.Run(context.Background())
	require.NoError(t, err)

	// A mean-field solver under a zero potential reproduces the full
	// mean field, so matching converges without a single update.
	assert.Equal(t, Converged, res.State)
	assert.Zero(t, res.Iterations)
	assert.Zero(t, res.Potential.Version)
	assert.Less(t, res.ResidualNorm, m.Tol)
	assert.Len(t, res.Fragments, 5)
}

func TestMatcherFullModePerturbedStart(t *testing.T) {
	// Seed the potential away from the mean-field root so the matcher has
	// to take real update steps over the site-pair parameters.
	start := ZeroPotential().with([][2]int{{1, 1}, {2, 2}}, []float64{0.05, -0.03, 0})

	m := hChainMatcher(t)
	m.Start = start
	res, err := m.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, Converged, res.State)
	assert.Greater(t, res.Iterations, 0, "a perturbed start cannot converge without updates")
	assert.Greater(t, res.Potential.Version, start.Version)
	assert.Less(t, res.ResidualNorm, m.Tol)
	// The matcher has to walk the potential back toward the root.
	assert.Less(t, math.Abs(res.Potential.Term(1, 1)), 0.01)
	assert.Less(t, math.Abs(res.Potential.Term(2, 2)), 0.01)

	// A plain Newton walk without the trust region lands on the same root.
	m2 := hChainMatcher(t)
	m2.Start = start
	m2.TrustRadius = 0
	res2, err := m2.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, Converged, res2.State)
	assert.InDelta(t, res.Potential.Mu, res2.Potential.Mu, 1e-3)
	for key := range res.Potential.Terms {
		assert.InDelta(t, res.Potential.Terms[key], res2.Potential.Terms[key], 1e-3,
			"term %v", key)
	}
}

func TestMatcherOneshot(t *testing.T) {
	m := hChainMatcher(t)
	results, err := m.Oneshot(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, i, r.ID)
		assert.True(t, r.Converged)
	}
}

// linearSolver is a stand-in fragment solver whose density diagonal
// responds linearly to the effective one-electron matrix, giving the
// matcher a known root to find.
type linearSolver struct{}

func (linearSolver) Name() string { return "linear" }

func (linearSolver) Solve(ctx context.Context, ham *embed.Hamiltonian, h1 *mat.Dense) (*solver.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, _ := h1.Dims()
	rho := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		rho.Set(i, i, -h1.At(i, i))
	}
	return &solver.Result{ID: ham.Subspace.Fragment.ID, RDM1: rho,
		RDM2: tensor.NewSquare(n), Converged: true}, nil
}

// dimerReference is a two-site tight-binding mean field with no
// electron repulsion, used to build synthetic embedded Hamiltonians.
type dimerReference struct {
	h, d, eye *mat.Dense
	eri       *tensor.Tensor4
}

func newDimerReference() *dimerReference {
	return &dimerReference{
		h:   mat.NewDense(2, 2, []float64{0, -1, -1, 0}),
		d:   mat.NewDense(2, 2, []float64{1, 1, 1, 1}),
		eye: mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		eri: tensor.NewSquare(2),
	}
}

func (r *dimerReference) NAO() int                  { return 2 }
func (r *dimerReference) NumElectrons() int         { return 2 }
func (r *dimerReference) AOPerAtom() []int          { return []int{1, 1} }
func (r *dimerReference) Hcore() *mat.Dense         { return r.h }
func (r *dimerReference) Fock() *mat.Dense          { return r.h }
func (r *dimerReference) Density() *mat.Dense       { return r.d }
func (r *dimerReference) Overlap() *mat.Dense       { return r.eye }
func (r *dimerReference) ERI() *tensor.Tensor4      { return r.eri }
func (r *dimerReference) ElectronicEnergy() float64 { return -2 }
func (r *dimerReference) NuclearEnergy() float64    { return 0 }
func (r *dimerReference) Converged() bool           { return true }

func dimerMatcher(t *testing.T, s solver.Interface) *Matcher {
	t.Helper()
	ref := newDimerReference()
	g, err := topo.Build(chem.HChain(2, 1.8), topo.Options{})
	require.NoError(t, err)
	sm := frag.NewSiteMap(ref.AOPerAtom())
	part, err := (&frag.Chain{Order: 1}).Partition(g, sm)
	require.NoError(t, err)
	require.Len(t, part.Fragments, 1)

	sub, err := embed.SchmidtDecompose(ref.Density(), &part.Fragments[0])
	require.NoError(t, err)
	ham, err := embed.BuildHamiltonian(ref, sm, sub, nil)
	require.NoError(t, err)

	m := NewMatcher(s, part, []*embed.Hamiltonian{ham}, 2)
	m.Mode = OnlyChem
	return m
}

func TestMatcherChemicalPotentialRoot(t *testing.T) {
	m := dimerMatcher(t, linearSolver{})
	res, err := m.Run(context.Background())
	require.NoError(t, err)

	// The synthetic electron count is 2*mu, so the target of 2 electrons
	// is met at mu = 1. The first Newton step is capped by the trust
	// region, Broyden secant steps finish the walk.
	require.Equal(t, Converged, res.State)
	assert.InDelta(t, 1.0, res.Potential.Mu, 1e-6)
	assert.Greater(t, res.Iterations, 1, "trust region must split the step")
	assert.Greater(t, res.Potential.Version, 0)
}

func TestMatcherMaxIterZeroStalls(t *testing.T) {
	m := dimerMatcher(t, linearSolver{})
	m.MaxIter = 0
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stalled, res.State)
	assert.Zero(t, res.Iterations)
	assert.InDelta(t, 2.0, res.ResidualNorm, 1e-12, "residual at zero potential is the full electron count")
	assert.NotNil(t, res.Fragments)
}

// flatSolver ignores the potential entirely, so the matcher cannot make
// progress and must report a stall instead of looping or erroring.
type flatSolver struct{}

func (flatSolver) Name() string { return "flat" }

func (flatSolver) Solve(ctx context.Context, ham *embed.Hamiltonian, h1 *mat.Dense) (*solver.Result, error) {
	n, _ := h1.Dims()
	return &solver.Result{ID: ham.Subspace.Fragment.ID, RDM1: mat.NewDense(n, n, nil),
		RDM2: tensor.NewSquare(n), Converged: true}, nil
}

func TestMatcherSingularJacobianStalls(t *testing.T) {
	m := dimerMatcher(t, flatSolver{})
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stalled, res.State)
}

func TestMatcherRestartFromSavedPotential(t *testing.T) {
	m := dimerMatcher(t, linearSolver{})
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, Converged, res.State)

	path := filepath.Join(t.TempDir(), "vpot.yaml")
	require.NoError(t, res.Potential.Save(path))
	start, err := LoadPotential(path)
	require.NoError(t, err)

	m2 := dimerMatcher(t, linearSolver{})
	m2.Start = start
	res2, err := m2.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Converged, res2.State)
	assert.Zero(t, res2.Iterations, "a converged potential restarts converged")
}
