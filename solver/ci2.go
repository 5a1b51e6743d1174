// ci2.go --  This file is part of goBE project.
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
package solver

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/embed"
	"github.com/MirzaevaIV/goBE/tensor"
)

// CI2 is exact diagonalization for embedded problems holding one electron
// pair. The singlet ground state is expanded over spatial orbital pairs,
//
//	Psi = sum_pq C_pq p(1) q(2), C symmetric, sum C^2 = 1,
//
// and found as the lowest eigenvector of the pair-basis Hamiltonian
//
//	H[pq,rs] = h_pr d_qs + h_qs d_pr + (pr|qs).
//
// Fragments with more electrons need a bigger solver and are rejected.
type CI2 struct{}

func (s *CI2) Name() string { return "ci2" }

func (s *CI2) Solve(ctx context.Context, ham *embed.Hamiltonian, h1 *mat.Dense) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ne := ham.Subspace.Electrons; ne != 2 {
		return nil, fmt.Errorf("solver: ci2 handles exactly one electron pair, fragment %d has %d electrons",
			ham.Subspace.Fragment.ID, ne)
	}
	d := ham.Dim()
	eri := ham.ERI

	hp := mat.NewSymDense(d*d, nil)
	for p := 0; p < d; p++ {
		for q := 0; q < d; q++ {
			row := p*d + q
			for r := 0; r < d; r++ {
				for sIdx := 0; sIdx < d; sIdx++ {
					col := r*d + sIdx
					if col < row {
						continue
					}
					v := eri.At(p, r, q, sIdx)
					if q == sIdx {
						v += h1.At(p, r)
					}
					if p == r {
						v += h1.At(q, sIdx)
					}
					hp.SetSym(row, col, v)
				}
			}
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(hp, true); !ok {
		return nil, fmt.Errorf("%w: fragment %d pair Hamiltonian", ErrDivergence, ham.Subspace.Fragment.ID)
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	energy := eig.Values(nil)[0]

	c := mat.NewDense(d, d, nil)
	for p := 0; p < d; p++ {
		for q := 0; q < d; q++ {
			c.Set(p, q, vecs.At(p*d+q, 0))
		}
	}
	// The ground state is spatially symmetric; symmetrize away roundoff
	// and renormalize.
	var cs mat.Dense
	cs.Add(c, c.T())
	cs.Scale(0.5, &cs)
	norm := mat.Norm(&cs, 2)
	cs.Scale(1/norm, &cs)

	var rho mat.Dense
	rho.Mul(&cs, cs.T())
	rho.Scale(2, &rho)

	g := tensor.NewSquare(d)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			for k := 0; k < d; k++ {
				cik := cs.At(i, k)
				for l := 0; l < d; l++ {
					g.Set(i, j, k, l, 2*cik*cs.At(j, l))
				}
			}
		}
	}

	return &Result{
		ID:        ham.Subspace.Fragment.ID,
		Energy:    energy,
		RDM1:      mat.DenseCopyOf(&rho),
		RDM2:      g,
		Converged: true,
	}, nil
}
