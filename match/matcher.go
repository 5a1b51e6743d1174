// matcher.go --  This file is part of goBE project.
// Mirzaeva Irina, 2026
//
//	goBE is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
//	You should have received a copy of the GNU General Public License
//	along with this program.  If not, see http://www.gnu.org/licenses/
//
// ------------------------------------------------
package match

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/embed"
	"github.com/MirzaevaIV/goBE/frag"
	"github.com/MirzaevaIV/goBE/solver"
)

// Mode selects which conditions the matcher enforces.
type Mode int

const (
	// Full matches edge-site density blocks against the owning fragment
	// and the global electron count.
	Full Mode = iota
	// OnlyChem optimizes the chemical potential alone, enforcing just
	// the electron count.
	OnlyChem
)

// State classifies the outcome of a matching run.
type State int

const (
	Converged State = iota
	// Stalled covers hitting the iteration cap and singular update
	// steps. The caller still gets the best potential reached.
	Stalled
)

func (s State) String() string {
	if s == Converged {
		return "converged"
	}
	return "stalled"
}

// Result is the outcome of a matching run.
type Result struct {
	State        State
	Potential    *Potential
	Iterations   int
	ResidualNorm float64
	Fragments    []*solver.Result
}

// Matcher drives the correlation-potential loop: solve every fragment,
// compare densities, update the potential, repeat. The Jacobian of the
// residual is built once by finite differences and then kept current with
// Broyden updates.
type Matcher struct {
	Solver    solver.Interface
	Part      *frag.Partition
	Hams      []*embed.Hamiltonian // indexed by fragment ID
	Electrons int                  // global electron count to enforce

	Mode        Mode
	Start       *Potential // restart point, zero potential when nil
	Tol         float64    // residual max-norm target
	MaxIter     int
	FDStep      float64 // finite-difference displacement
	TrustRadius float64 // step norm cap, 0 disables
	Logger      *zap.Logger
}

// NewMatcher assembles a matcher with the default numerical settings.
func NewMatcher(s solver.Interface, part *frag.Partition, hams []*embed.Hamiltonian, electrons int) *Matcher {
	return &Matcher{
		Solver:      s,
		Part:        part,
		Hams:        hams,
		Electrons:   electrons,
		Tol:         1e-6,
		MaxIter:     50,
		FDStep:      1e-5,
		TrustRadius: 0.5,
		Logger:      zap.NewNop(),
	}
}

// Oneshot solves every fragment once at the starting potential, without
// any matching.
func (m *Matcher) Oneshot(ctx context.Context) ([]*solver.Result, error) {
	pot := m.Start
	if pot == nil {
		pot = ZeroPotential()
	}
	return m.solveAll(ctx, pot, 0)
}

// Run executes the matching loop until the residual drops below Tol or
// the loop stalls. Failing to converge is reported in the result state,
// not as an error; errors are reserved for fragment solves going wrong.
func (m *Matcher) Run(ctx context.Context) (*Result, error) {
	pot := m.Start
	if pot == nil {
		pot = ZeroPotential()
	}
	keys := m.paramKeys()

	results, err := m.solveAll(ctx, pot, 0)
	if err != nil {
		return nil, err
	}
	r := m.residual(results)

	var jac *mat.Dense
	for iter := 0; ; iter++ {
		norm := maxAbs(r)
		m.Logger.Info("matching iteration",
			zap.Int("iter", iter),
			zap.Int("potential_version", pot.Version),
			zap.Float64("residual", norm))
		if norm < m.Tol {
			return &Result{State: Converged, Potential: pot, Iterations: iter,
				ResidualNorm: norm, Fragments: results}, nil
		}
		if iter >= m.MaxIter {
			m.Logger.Warn("matching stalled at iteration cap", zap.Int("iter", iter))
			return &Result{State: Stalled, Potential: pot, Iterations: iter,
				ResidualNorm: norm, Fragments: results}, nil
		}

		if jac == nil {
			jac, err = m.fdJacobian(ctx, pot, keys, r, iter)
			if err != nil {
				return nil, err
			}
		}
		step, ok := newtonStep(jac, r)
		if !ok {
			m.Logger.Warn("matching stalled on singular step", zap.Int("iter", iter))
			return &Result{State: Stalled, Potential: pot, Iterations: iter,
				ResidualNorm: norm, Fragments: results}, nil
		}
		if m.TrustRadius > 0 {
			if sn := vecNorm(step); sn > m.TrustRadius {
				scale := m.TrustRadius / sn
				for i := range step {
					step[i] *= scale
				}
			}
		}

		next := pot.with(keys, step)
		nextResults, err := m.solveAll(ctx, next, iter+1)
		if err != nil {
			return nil, err
		}
		nextR := m.residual(nextResults)
		broydenUpdate(jac, step, r, nextR)
		pot, results, r = next, nextResults, nextR
	}
}

// solveAll runs the solver over every fragment in parallel under the
// given potential snapshot.
func (m *Matcher) solveAll(ctx context.Context, pot *Potential, iter int) ([]*solver.Result, error) {
	results := make([]*solver.Result, len(m.Hams))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, ham := range m.Hams {
		i, ham := i, ham
		g.Go(func() error {
			res, err := m.Solver.Solve(ctx, ham, ham.Effective(pot.Terms, pot.Mu))
			if err != nil {
				return fmt.Errorf("match: fragment %d at iteration %d: %w",
					ham.Subspace.Fragment.ID, iter, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// paramKeys lists the potential parameters in a fixed order: all site
// pairs on shared edge atoms, ascending; the chemical potential is always
// the implicit final parameter.
func (m *Matcher) paramKeys() [][2]int {
	if m.Mode == OnlyChem {
		return nil
	}
	seen := map[int]bool{}
	var atoms []int
	for _, l := range m.Part.Links {
		if l.Owner < 0 {
			// Edge atom without an owning fragment (outside the home
			// cell of a periodic partition): nothing to match against.
			continue
		}
		if !seen[l.Atom] {
			seen[l.Atom] = true
			atoms = append(atoms, l.Atom)
		}
	}
	sort.Ints(atoms)
	var keys [][2]int
	for _, a := range atoms {
		sites := m.Part.Map.AtomSites(a)
		for i, p := range sites {
			for _, q := range sites[i:] {
				keys = append(keys, [2]int{p, q})
			}
		}
	}
	return keys
}

// residual stacks, per edge link and site pair, the density mismatch
// against the owning fragment, followed by the electron-count error. In
// OnlyChem mode only the electron count is used.
func (m *Matcher) residual(results []*solver.Result) []float64 {
	var r []float64
	if m.Mode == Full {
		for _, link := range m.Part.Links {
			if link.Owner < 0 {
				continue
			}
			f := &m.Part.Fragments[link.Fragment]
			o := &m.Part.Fragments[link.Owner]
			sites := m.Part.Map.AtomSites(link.Atom)
			for i, p := range sites {
				for _, q := range sites[i:] {
					fv := results[link.Fragment].RDM1.At(f.LocalIndex(p), f.LocalIndex(q))
					ov := results[link.Owner].RDM1.At(o.LocalIndex(p), o.LocalIndex(q))
					r = append(r, fv-ov)
				}
			}
		}
	}
	n := 0.0
	for i := range m.Part.Fragments {
		f := &m.Part.Fragments[i]
		for li, w := range f.Weights {
			if w != 0 {
				n += w * results[i].RDM1.At(li, li)
			}
		}
	}
	return append(r, n-float64(m.Electrons))
}

// fdJacobian builds the initial Jacobian column by column with forward
// differences, re-solving every fragment per perturbed parameter.
func (m *Matcher) fdJacobian(ctx context.Context, pot *Potential, keys [][2]int, r0 []float64, iter int) (*mat.Dense, error) {
	np := len(keys) + 1
	jac := mat.NewDense(len(r0), np, nil)
	for j := 0; j < np; j++ {
		delta := make([]float64, np)
		delta[j] = m.FDStep
		results, err := m.solveAll(ctx, pot.with(keys, delta), iter)
		if err != nil {
			return nil, err
		}
		rj := m.residual(results)
		for i := range r0 {
			jac.Set(i, j, (rj[i]-r0[i])/m.FDStep)
		}
	}
	return jac, nil
}

// newtonStep solves jac*step = -r in the least-squares sense. A singular
// system yields ok = false.
func newtonStep(jac *mat.Dense, r []float64) ([]float64, bool) {
	nr, np := jac.Dims()
	rhs := mat.NewVecDense(nr, nil)
	for i, v := range r {
		rhs.SetVec(i, -v)
	}
	var sol mat.VecDense
	if err := sol.SolveVec(jac, rhs); err != nil {
		return nil, false
	}
	step := make([]float64, np)
	for i := range step {
		step[i] = sol.AtVec(i)
		if math.IsNaN(step[i]) || math.IsInf(step[i], 0) {
			return nil, false
		}
	}
	return step, true
}

// broydenUpdate applies the good Broyden rank-one correction
// J += (dr - J dx) dx^T / (dx^T dx).
func broydenUpdate(jac *mat.Dense, dx, rOld, rNew []float64) {
	nr, np := jac.Dims()
	dx2 := 0.0
	for _, v := range dx {
		dx2 += v * v
	}
	if dx2 == 0 {
		return
	}
	jdx := make([]float64, nr)
	for i := 0; i < nr; i++ {
		s := 0.0
		for j := 0; j < np; j++ {
			s += jac.At(i, j) * dx[j]
		}
		jdx[i] = s
	}
	for i := 0; i < nr; i++ {
		c := (rNew[i] - rOld[i] - jdx[i]) / dx2
		for j := 0; j < np; j++ {
			jac.Set(i, j, jac.At(i, j)+c*dx[j])
		}
	}
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

func vecNorm(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
