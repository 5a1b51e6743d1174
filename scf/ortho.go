// ortho.go --  This file is part of goBE project.
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
package scf

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/tensor"
)

// Orthogonalize returns a view of ref in the Löwdin-orthogonalized basis,
// where the overlap is the identity. The Schmidt decomposition and all
// fragment bookkeeping assume such a basis. A reference that already has
// unit overlap is returned unchanged.
func Orthogonalize(ref Reference) (Reference, error) {
	s := ref.Overlap()
	if isIdentity(s) {
		return ref, nil
	}
	xinv, xroot, err := overlapRoots(symmetrize(s))
	if err != nil {
		return nil, err
	}

	n := ref.NAO()
	transform := func(a *mat.Dense, x *mat.Dense) *mat.Dense {
		res := mat.NewDense(n, n, nil)
		res.Mul(x, a)
		res.Mul(res, x)
		return res
	}

	eye := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		eye.Set(i, i, 1)
	}

	return &ortho{
		base:    ref,
		hcore:   transform(ref.Hcore(), xinv),
		fock:    transform(ref.Fock(), xinv),
		dens:    transform(ref.Density(), xroot),
		overlap: eye,
		eri:     ref.ERI().Transform(xinv),
	}, nil
}

func isIdentity(a *mat.Dense) bool {
	n, m := a.Dims()
	if n != m {
		return false
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(a.At(i, j)-want) > 1e-12 {
				return false
			}
		}
	}
	return true
}

type ortho struct {
	base                       Reference
	hcore, fock, dens, overlap *mat.Dense
	eri                        *tensor.Tensor4
}

func (o *ortho) NAO() int                  { return o.base.NAO() }
func (o *ortho) NumElectrons() int         { return o.base.NumElectrons() }
func (o *ortho) AOPerAtom() []int          { return o.base.AOPerAtom() }
func (o *ortho) Hcore() *mat.Dense         { return o.hcore }
func (o *ortho) Fock() *mat.Dense          { return o.fock }
func (o *ortho) Density() *mat.Dense       { return o.dens }
func (o *ortho) Overlap() *mat.Dense       { return o.overlap }
func (o *ortho) ERI() *tensor.Tensor4      { return o.eri }
func (o *ortho) ElectronicEnergy() float64 { return o.base.ElectronicEnergy() }
func (o *ortho) NuclearEnergy() float64    { return o.base.NuclearEnergy() }
func (o *ortho) Converged() bool           { return o.base.Converged() }
