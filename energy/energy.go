// energy.go --  This file is part of goBE project.
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

// Package energy assembles the total energy from weighted per-fragment
// contributions. Only sites with nonzero weight (the center sites of each
// fragment) contribute, so shared edge regions are never double counted.
package energy

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/embed"
	"github.com/MirzaevaIV/goBE/frag"
	"github.com/MirzaevaIV/goBE/scf"
	"github.com/MirzaevaIV/goBE/solver"
	"github.com/MirzaevaIV/goBE/tensor"
)

// Expression selects the energy assembly formula.
type Expression int

const (
	// NonCumulant contracts the fragment density matrices with the
	// embedded core Hamiltonian, integrals and environment potential.
	NonCumulant Expression = iota
	// Cumulant starts from the mean-field energy and adds weighted
	// correlation corrections built from density differences.
	Cumulant
)

// Breakdown reports the assembled energy and its pieces. PerFragment
// holds each fragment's weighted contribution: the absolute fragment
// energy for NonCumulant, the correlation correction for Cumulant.
type Breakdown struct {
	Total       float64
	Electronic  float64
	MeanField   float64 // mean-field total of the full system
	Correlation float64
	Nuclear     float64
	PerFragment []float64
}

// Assembler evaluates one of the two energy expressions over a set of
// fragment solutions.
type Assembler struct {
	Ref  scf.Reference
	Part *frag.Partition
	Hams []*embed.Hamiltonian // indexed by fragment ID
	Expr Expression
}

// NewAssembler builds an assembler over the given embedding setup.
func NewAssembler(ref scf.Reference, part *frag.Partition, hams []*embed.Hamiltonian) *Assembler {
	return &Assembler{Ref: ref, Part: part, Hams: hams}
}

// Assemble combines the fragment results into a total energy.
func (a *Assembler) Assemble(results []*solver.Result) (*Breakdown, error) {
	if len(results) != len(a.Part.Fragments) {
		return nil, errors.New("energy: result count does not match fragment count")
	}

	b := &Breakdown{
		Nuclear:     a.Ref.NuclearEnergy(),
		MeanField:   a.Ref.ElectronicEnergy() + a.Ref.NuclearEnergy(),
		PerFragment: make([]float64, len(results)),
	}
	for i, res := range results {
		f := &a.Part.Fragments[i]
		ham := a.Hams[i]
		if got := res.RDM1.RawMatrix().Rows; got != ham.Dim() {
			return nil, fmt.Errorf("energy: fragment %d density is %d-dimensional, embedded basis is %d",
				f.ID, got, ham.Dim())
		}
		switch a.Expr {
		case NonCumulant:
			b.PerFragment[i] = fragmentEnergy(f, ham, res)
		case Cumulant:
			b.PerFragment[i] = fragmentCorrection(f, ham, res)
		default:
			return nil, fmt.Errorf("energy: unknown expression %d", a.Expr)
		}
	}

	sum := 0.0
	for _, e := range b.PerFragment {
		sum += e
	}
	switch a.Expr {
	case NonCumulant:
		b.Electronic = sum
	case Cumulant:
		b.Electronic = a.Ref.ElectronicEnergy() + sum
	}
	b.Total = b.Electronic + b.Nuclear
	b.Correlation = b.Total - b.MeanField
	return b, nil
}

// fragmentEnergy is the weighted absolute energy of one fragment,
//
//	sum_u w_u [ sum_v rho_uv h_uv + 1/2 sum_vls Gamma_uvls V_uvls
//	            + 1/2 sum_v rho_uv vcore_uv ],
//
// with u restricted to fragment sites and all other indices running over
// the full embedded basis. vcore carries the mean field of the
// environment electrons outside the embedded space.
func fragmentEnergy(f *frag.Fragment, ham *embed.Hamiltonian, res *solver.Result) float64 {
	vcore := ham.CoreVeff()
	d := ham.Dim()
	e := 0.0
	for u := range f.Sites {
		w := f.Weights[u]
		if w == 0 {
			continue
		}
		row := 0.0
		for v := 0; v < d; v++ {
			row += res.RDM1.At(u, v) * (ham.Hcore.At(u, v) + 0.5*vcore.At(u, v))
		}
		row += 0.5 * rowContract(res.RDM2, ham.ERI, u, d)
		e += w * row
	}
	return e
}

// fragmentCorrection is the weighted correlation correction of one
// fragment in the cumulant expression: the mean-field energy is taken
// once globally and the fragment adds
//
//	sum_u w_u [ sum_v F_uv drho_uv + 1/2 sum_vls K_uvls V_uvls
//	            + 1/2 sum_v G(drho)_uv drho_uv ],
//
// where drho is the density relaxation against the embedded mean field
// and K is the two-particle cumulant of the fragment solution. The term
// quadratic in drho keeps the expression exact when a single fragment
// spans the whole system.
func fragmentCorrection(f *frag.Fragment, ham *embed.Hamiltonian, res *solver.Result) float64 {
	d := ham.Dim()
	var drho mat.Dense
	drho.Sub(res.RDM1, ham.DGuess)

	k := res.RDM2.Clone()
	hf := solver.HF2RDM(res.RDM1)
	for i := range k.Data {
		k.Data[i] -= hf.Data[i]
	}
	gd := scf.GMatrix(ham.ERI, &drho)

	e := 0.0
	for u := range f.Sites {
		w := f.Weights[u]
		if w == 0 {
			continue
		}
		row := 0.0
		for v := 0; v < d; v++ {
			row += drho.At(u, v) * (ham.Fock.At(u, v) + 0.5*gd.At(u, v))
		}
		row += 0.5 * rowContract(k, ham.ERI, u, d)
		e += w * row
	}
	return e
}

// rowContract is sum_vls T[u,v,l,s] V[u,v,l,s] for a fixed leading index.
func rowContract(t, v *tensor.Tensor4, u, d int) float64 {
	s := 0.0
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			for l := 0; l < d; l++ {
				s += t.At(u, i, j, l) * v.At(u, i, j, l)
			}
		}
	}
	return s
}
