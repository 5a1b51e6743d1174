// hf.go --  This file is part of goBE project.
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

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/embed"
	"github.com/MirzaevaIV/goBE/scf"
)

// HF solves the embedded problem at the mean-field level. With a zero
// matching potential it reproduces the density the embedding was built
// from, which makes it the reference solver for consistency checks.
type HF struct {
	MaxSteps int // per-fragment SCF cap, default 50
	Logger   *zap.Logger
}

func (s *HF) Name() string { return "hf" }

func (s *HF) Solve(ctx context.Context, ham *embed.Hamiltonian, h1 *mat.Dense) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := ham.Dim()
	eye := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		eye.Set(i, i, 1)
	}
	rhf := scf.NewRHF(scf.System{
		Hcore:        mat.DenseCopyOf(h1),
		Overlap:      eye,
		ERI:          ham.ERI,
		NumElectrons: ham.Subspace.Electrons,
	})
	if s.MaxSteps > 0 {
		rhf.MaxSteps = s.MaxSteps
	}
	if s.Logger != nil {
		rhf.Logger = s.Logger
	}
	elec, err := rhf.Kernel()
	if err != nil {
		return nil, fmt.Errorf("%w: fragment %d: %v", ErrDivergence, ham.Subspace.Fragment.ID, err)
	}
	rho := mat.DenseCopyOf(rhf.Density())
	return &Result{
		ID:        ham.Subspace.Fragment.ID,
		Energy:    elec,
		RDM1:      rho,
		RDM2:      HF2RDM(rho),
		Converged: true,
	}, nil
}
