// rhf.go --  This file is part of goBE project.
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

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/MirzaevaIV/goBE/tensor"
)

// ErrSCFNotConverged is returned when the SCF loop runs out of steps.
var ErrSCFNotConverged = errors.New("scf: SCF did not converge")

// RHF is a restricted Hartree-Fock solver with DIIS acceleration over a
// caller-supplied integral set.
type RHF struct {
	System   System
	TolE     float64 // energy convergence, default 1e-8
	TolD     float64 // DIIS residual convergence, default 1e-6
	MaxSteps int     // default 50
	Logger   *zap.Logger

	occ     int
	s2inv   *mat.Dense
	h1      *mat.Dense
	cij     *mat.Dense
	densMat *mat.Dense
	fock    *mat.Dense
	elecE   float64
	conv    bool

	fList []*mat.Dense
	diisR []*mat.Dense
}

// NewRHF prepares a solver with default tolerances.
func NewRHF(sys System) *RHF {
	return &RHF{
		System:   sys,
		TolE:     1e-8,
		TolD:     1e-6,
		MaxSteps: 50,
		Logger:   zap.NewNop(),
	}
}

// Kernel runs the SCF cycle to convergence and returns the total energy
// (electronic plus nuclear). On non-convergence the best-effort state is
// kept and ErrSCFNotConverged is returned.
func (rhf *RHF) Kernel() (float64, error) {
	if rhf.System.NumElectrons%2 != 0 {
		return 0, fmt.Errorf("scf: restricted solver needs an even electron count, got %d", rhf.System.NumElectrons)
	}
	rhf.occ = rhf.System.NumElectrons / 2
	n := rhf.System.NAO()
	if rhf.occ > n {
		return 0, fmt.Errorf("scf: %d electron pairs do not fit into %d orbitals", rhf.occ, n)
	}

	var err error
	rhf.s2inv, err = Lowdin(symmetrize(rhf.System.Overlap))
	if err != nil {
		return 0, err
	}
	rhf.h1 = mat.DenseCopyOf(rhf.System.Hcore)

	// core-Hamiltonian initial guess
	rhf.cij = rhf.solveFock(rhf.h1)
	rhf.buildDensMat()

	ePrev := 0.0
	for i := 0; i < rhf.MaxSteps; i++ {
		g := GMatrix(rhf.System.ERI, rhf.densMat)
		f := mat.NewDense(n, n, nil)
		f.Add(rhf.h1, g)
		rhf.fock = f
		rhf.elecE = ElectronicEnergy(rhf.densMat, rhf.h1, g)

		rhf.fList = append(rhf.fList, mat.DenseCopyOf(f))
		rhf.buildDIISResidual(f)
		dRMS := rhf.calcDRMS()

		rhf.Logger.Debug("SCF iteration",
			zap.Int("step", i+1),
			zap.Float64("energy", rhf.elecE),
			zap.Float64("dE", rhf.elecE-ePrev),
			zap.Float64("dRMS", dRMS))

		if i > 0 && math.Abs(ePrev-rhf.elecE) < rhf.TolE && dRMS < rhf.TolD {
			rhf.conv = true
			rhf.Logger.Info("SCF converged", zap.Int("steps", i+1), zap.Float64("energy", rhf.elecE))
			return rhf.elecE + rhf.System.NuclearEnergy, nil
		}
		ePrev = rhf.elecE

		if i > 0 {
			if fx := rhf.diisExtrapolate(n); fx != nil {
				f = fx
			}
		}
		rhf.cij = rhf.solveFock(f)
		rhf.buildDensMat()
	}

	rhf.Logger.Warn("SCF not converged", zap.Int("steps", rhf.MaxSteps))
	return rhf.elecE + rhf.System.NuclearEnergy, fmt.Errorf("%w after %d steps", ErrSCFNotConverged, rhf.MaxSteps)
}

// solveFock diagonalizes S^{-1/2} F S^{-1/2} and back-transforms the
// eigenvectors into MO coefficients, ordered by ascending orbital energy.
func (rhf *RHF) solveFock(f *mat.Dense) *mat.Dense {
	var ft mat.Dense
	ft.Mul(rhf.s2inv, f)
	ft.Mul(&ft, rhf.s2inv)

	var eigsym mat.EigenSym
	if ok := eigsym.Factorize(symmetrize(&ft), true); !ok {
		// factorization of a real symmetric matrix only fails on NaN input
		panic("scf: transformed Fock eigendecomposition failed")
	}
	var ev mat.Dense
	eigsym.VectorsTo(&ev)

	var c mat.Dense
	c.Mul(rhf.s2inv, &ev)
	return &c
}

func (rhf *RHF) buildDensMat() {
	n, _ := rhf.cij.Dims()
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			for oo := 0; oo < rhf.occ; oo++ {
				sum += 2.0 * rhf.cij.At(i, oo) * rhf.cij.At(j, oo)
			}
			d.Set(i, j, sum)
		}
	}
	rhf.densMat = d
}

// buildDIISResidual appends A(FDS - SDF)A with A = S^{-1/2}.
func (rhf *RHF) buildDIISResidual(f *mat.Dense) {
	n, _ := f.Dims()
	term1 := mat.NewDense(n, n, nil)
	term2 := mat.NewDense(n, n, nil)
	term1.Mul(f, rhf.densMat)
	term1.Mul(term1, rhf.System.Overlap)
	term2.Mul(rhf.System.Overlap, rhf.densMat)
	term2.Mul(term2, f)
	term1.Sub(term1, term2)
	term1.Mul(rhf.s2inv, term1)
	term1.Mul(term1, rhf.s2inv)
	rhf.diisR = append(rhf.diisR, term1)
}

func (rhf *RHF) calcDRMS() float64 {
	res := mat.DenseCopyOf(rhf.diisR[len(rhf.diisR)-1])
	res.MulElem(res, res)
	return math.Sqrt(stat.Mean(res.RawMatrix().Data, nil))
}

// diisExtrapolate solves the Pulay B-matrix equations and mixes the stored
// Fock matrices. A singular B falls back to the plain Fock matrix (nil).
func (rhf *RHF) diisExtrapolate(n int) *mat.Dense {
	bdim := len(rhf.fList) + 1
	b := mat.NewDense(bdim, bdim, nil)
	for i := 0; i < bdim-1; i++ {
		b.Set(i, bdim-1, -1)
		b.Set(bdim-1, i, -1)
	}
	for i := range rhf.fList {
		for j := range rhf.fList {
			prod := mat.NewDense(n, n, nil)
			prod.MulElem(rhf.diisR[i], rhf.diisR[j])
			b.Set(i, j, mat.Sum(prod))
		}
	}

	rhs := mat.NewVecDense(bdim, nil)
	rhs.SetVec(bdim-1, -1)

	var lu mat.LU
	lu.Factorize(b)
	var coefs mat.VecDense
	if err := lu.SolveVecTo(&coefs, false, rhs); err != nil {
		return nil
	}

	f := mat.NewDense(n, n, nil)
	for j := range rhf.fList {
		part := mat.NewDense(n, n, nil)
		part.Scale(coefs.AtVec(j), rhf.fList[j])
		f.Add(f, part)
	}
	return f
}

// Reference implementation.

func (rhf *RHF) NAO() int          { return rhf.System.NAO() }
func (rhf *RHF) NumElectrons() int { return rhf.System.NumElectrons }

func (rhf *RHF) AOPerAtom() []int {
	if rhf.System.AOPerAtom != nil {
		return rhf.System.AOPerAtom
	}
	counts := make([]int, rhf.NAO())
	for i := range counts {
		counts[i] = 1
	}
	return counts
}

func (rhf *RHF) Hcore() *mat.Dense         { return rhf.System.Hcore }
func (rhf *RHF) Fock() *mat.Dense          { return rhf.fock }
func (rhf *RHF) Density() *mat.Dense       { return rhf.densMat }
func (rhf *RHF) Overlap() *mat.Dense       { return rhf.System.Overlap }
func (rhf *RHF) ERI() *tensor.Tensor4      { return rhf.System.ERI }
func (rhf *RHF) ElectronicEnergy() float64 { return rhf.elecE }
func (rhf *RHF) NuclearEnergy() float64    { return rhf.System.NuclearEnergy }
func (rhf *RHF) Converged() bool           { return rhf.conv }

// MOCoefficients returns the converged MO coefficient matrix (columns are
// orbitals, ascending energy).
func (rhf *RHF) MOCoefficients() *mat.Dense { return rhf.cij }
