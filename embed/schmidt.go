// schmidt.go --  This file is part of goBE project.
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

// Package embed builds the Schmidt embedding subspace of each fragment and
// projects the mean-field quantities into it.
package embed

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/frag"
)

// ErrRankDeficient is returned when the Schmidt decomposition cannot host
// an integer number of electron pairs in the embedded space.
var ErrRankDeficient = errors.New("embed: rank-deficient Schmidt decomposition")

// Singular values below this threshold carry no entanglement and the
// corresponding environment orbitals are discarded.
const svdTol = 1e-10

// Subspace is the fragment-plus-bath orbital space of one fragment. Basis
// columns are orthonormal vectors in the full (orthonormal) site basis: the
// first NSites columns are the fragment sites themselves, the remaining
// NBath columns are bath orbitals built from the environment.
type Subspace struct {
	Fragment *frag.Fragment
	Basis    *mat.Dense // nsites x (fragment + bath), orthonormal columns
	NBath    int
	// Electrons is the even number of electrons the embedded problem hosts.
	Electrons int
}

// Dim returns the dimension of the embedded space.
func (s *Subspace) Dim() int { return s.Fragment.NSites() + s.NBath }

// SchmidtDecompose builds the embedding subspace of fragment f from the
// converged mean-field density matrix d, which must be expressed in an
// orthonormal basis. Bath orbitals are the left singular vectors of the
// environment-fragment coupling block of d with singular value above a
// fixed threshold, so the construction is deterministic for a given
// density.
func SchmidtDecompose(d *mat.Dense, f *frag.Fragment) (*Subspace, error) {
	n, m := d.Dims()
	if n != m {
		return nil, fmt.Errorf("embed: density matrix is %dx%d, want square", n, m)
	}
	nf := f.NSites()

	inFrag := make([]bool, n)
	for _, s := range f.Sites {
		inFrag[s] = true
	}
	env := make([]int, 0, n-nf)
	for s := 0; s < n; s++ {
		if !inFrag[s] {
			env = append(env, s)
		}
	}

	var bath *mat.Dense // len(env) x nbath
	nbath := 0
	if len(env) > 0 {
		coupling := mat.NewDense(len(env), nf, nil)
		for e, es := range env {
			for i, fs := range f.Sites {
				coupling.Set(e, i, d.At(es, fs))
			}
		}
		var svd mat.SVD
		if ok := svd.Factorize(coupling, mat.SVDThin); !ok {
			return nil, fmt.Errorf("%w: SVD of fragment %d coupling block failed", ErrRankDeficient, f.ID)
		}
		var u mat.Dense
		svd.UTo(&u)
		for _, sv := range svd.Values(nil) {
			if sv > svdTol {
				nbath++
			}
		}
		if nbath > 0 {
			bath = mat.DenseCopyOf(u.Slice(0, len(env), 0, nbath))
		}
	}

	basis := mat.NewDense(n, nf+nbath, nil)
	for i, fs := range f.Sites {
		basis.Set(fs, i, 1)
	}
	for e, es := range env {
		for b := 0; b < nbath; b++ {
			basis.Set(es, nf+b, bath.At(e, b))
		}
	}

	sub := &Subspace{Fragment: f, Basis: basis, NBath: nbath}

	// The embedded electron count is the trace of the projected density.
	// It must land on an even integer for a closed-shell treatment.
	var half, proj mat.Dense
	half.Mul(basis.T(), d)
	proj.Mul(&half, basis)
	tr := mat.Trace(&proj)
	ne := int(math.Round(tr))
	if math.Abs(tr-float64(ne)) > 1e-6 || ne%2 != 0 || ne <= 0 {
		return nil, fmt.Errorf("%w: fragment %d embedded occupancy %.8f", ErrRankDeficient, f.ID, tr)
	}
	sub.Electrons = ne
	return sub, nil
}
