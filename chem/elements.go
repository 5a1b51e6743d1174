// elements.go --  This file is part of goBE project.
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
package chem

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Mendeleev holds the element table, indexed by atomic number.
// Index 0 is a dummy entry so that Symb[Z] addresses element Z directly.
type Mendeleev struct {
	Symb   []string
	Mass   []float64
	RadCov []float64 // covalent radius, bohr
}

// ElemData covers H through Kr, which is all the fragmentation code needs.
// Covalent radii follow Cordero et al. (converted from Angstrom).
var ElemData = Mendeleev{
	Symb: []string{"X",
		"H", "He",
		"Li", "Be", "B", "C", "N", "O", "F", "Ne",
		"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
		"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
		"Ga", "Ge", "As", "Se", "Br", "Kr"},
	Mass: []float64{0,
		1.008, 4.003,
		6.940, 9.012, 10.81, 12.011, 14.007, 15.999, 18.998, 20.180,
		22.990, 24.305, 26.982, 28.085, 30.974, 32.06, 35.45, 39.948,
		39.098, 40.078, 44.956, 47.867, 50.942, 51.996, 54.938, 55.845, 58.933, 58.693, 63.546, 65.38,
		69.723, 72.630, 74.922, 78.971, 79.904, 83.798},
	RadCov: angToBohr([]float64{0,
		0.31, 0.28,
		1.28, 0.96, 0.84, 0.76, 0.71, 0.66, 0.57, 0.58,
		1.66, 1.41, 1.21, 1.11, 1.07, 1.05, 1.02, 1.06,
		2.03, 1.76, 1.70, 1.60, 1.53, 1.39, 1.39, 1.32, 1.26, 1.24, 1.32, 1.22,
		1.22, 1.20, 1.19, 1.20, 1.20, 1.16}),
}

func angToBohr(r []float64) []float64 {
	res := make([]float64, len(r))
	for i := range r {
		res[i] = r[i] / Bohr
	}
	return res
}

// AtomicNumber looks up the atomic number for an element symbol.
func AtomicNumber(symb string) (int, error) {
	z := slices.Index(ElemData.Symb, symb)
	if z < 1 {
		return 0, fmt.Errorf("chem: unknown element symbol %q", symb)
	}
	return z, nil
}

// CovalentRadius returns the covalent radius of element Z in bohr.
func CovalentRadius(z int) float64 {
	if z < 1 || z >= len(ElemData.RadCov) {
		return 0
	}
	return ElemData.RadCov[z]
}
