// lowdin.go --  This file is part of goBE project.
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
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrLinearDependence is returned when the overlap matrix has an eigenvalue
// too small to invert, i.e. the basis is linearly dependent.
var ErrLinearDependence = errors.New("scf: overlap matrix is near-singular")

const overlapEigTol = 1e-10

// Lowdin returns S^{-1/2} for a symmetric positive-definite overlap.
func Lowdin(s mat.Symmetric) (*mat.Dense, error) {
	inv, _, err := overlapRoots(s)
	return inv, err
}

// overlapRoots returns S^{-1/2} and S^{1/2} from one eigendecomposition.
func overlapRoots(s mat.Symmetric) (*mat.Dense, *mat.Dense, error) {
	n := s.SymmetricDim()
	var eigsym mat.EigenSym
	if ok := eigsym.Factorize(s, true); !ok {
		return nil, nil, fmt.Errorf("scf: overlap eigendecomposition failed")
	}
	var ev mat.Dense
	eigsym.VectorsTo(&ev)
	vals := eigsym.Values(nil)

	invVec := make([]float64, n)
	sqrtVec := make([]float64, n)
	for i, v := range vals {
		if v < overlapEigTol {
			return nil, nil, fmt.Errorf("%w: eigenvalue %g", ErrLinearDependence, v)
		}
		sqrtVec[i] = math.Sqrt(v)
		invVec[i] = 1.0 / sqrtVec[i]
	}

	inv := mat.NewDense(n, n, nil)
	inv.Mul(&ev, mat.NewDiagDense(n, invVec))
	inv.Mul(inv, ev.T())

	root := mat.NewDense(n, n, nil)
	root.Mul(&ev, mat.NewDiagDense(n, sqrtVec))
	root.Mul(root, ev.T())
	return inv, root, nil
}

// symmetrize builds a SymDense from a numerically symmetric matrix.
func symmetrize(a mat.Matrix) *mat.SymDense {
	n, _ := a.Dims()
	res := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			res.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}
	return res
}
