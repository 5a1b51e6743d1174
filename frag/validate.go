// validate.go --  This file is part of goBE project.
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
package frag

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/slices"
)

// ErrInvalidPartition flags a partition violating the coverage or
// edge-consistency invariants.
var ErrInvalidPartition = errors.New("frag: invalid partition")

// Validate checks the partition invariants: every owned atom is the center
// of exactly one fragment, per-site weights sum to one across fragments, and
// every edge link points at a fragment that really owns the shared atom.
// Atoms outside the seeded unitcell (owner < 0) are exempt from coverage.
func Validate(p *Partition) error {
	centerCount := make([]int, p.Map.NAtoms())
	for _, f := range p.Fragments {
		for _, a := range f.CenterAtoms {
			if !slices.Contains(f.Atoms, a) {
				return fmt.Errorf("%w: fragment %d centers atom %d it does not contain", ErrInvalidPartition, f.ID, a)
			}
			centerCount[a]++
		}
	}
	for a, c := range centerCount {
		if p.owner[a] < 0 {
			continue
		}
		if c != 1 {
			return fmt.Errorf("%w: atom %d is a center of %d fragments", ErrInvalidPartition, a, c)
		}
	}

	wsum := make([]float64, p.Map.NSites())
	for _, f := range p.Fragments {
		for k, s := range f.Sites {
			wsum[s] += f.Weights[k]
		}
	}
	for s, w := range wsum {
		if p.owner[p.Map.AtomOf(s)] < 0 {
			continue
		}
		if math.Abs(w-1.0) > 1e-12 {
			return fmt.Errorf("%w: site %d has total weight %g", ErrInvalidPartition, s, w)
		}
	}

	for _, l := range p.Links {
		own := &p.Fragments[l.Owner]
		if !own.HasCenterAtom(l.Atom) {
			return fmt.Errorf("%w: link for atom %d names fragment %d, which does not own it",
				ErrInvalidPartition, l.Atom, l.Owner)
		}
		sharer := &p.Fragments[l.Fragment]
		if !slices.Contains(sharer.EdgeAtoms, l.Atom) {
			return fmt.Errorf("%w: fragment %d does not list atom %d as an edge",
				ErrInvalidPartition, l.Fragment, l.Atom)
		}
	}
	return nil
}
