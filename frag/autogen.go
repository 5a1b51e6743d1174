// autogen.go --  This file is part of goBE project.
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
	"fmt"
	"sort"

	"github.com/MirzaevaIV/goBE/topo"
)

// Autogen is the general graph-based strategy: every eligible atom seeds a
// breadth-first expansion of Order bond hops, fully contained expansions are
// absorbed into their containing fragment, and the absorbed seeds become
// extra center atoms of the survivor.
type Autogen struct {
	// Order is the expansion order: a fragment reaches every atom within
	// Order bond hops of its seed.
	Order int

	// NoSeed marks atoms that must not seed their own fragment (commonly
	// hydrogens). Such atoms are absorbed as centers into the fragment of
	// their lowest-index seeded neighbor. Nil means every atom seeds.
	NoSeed []bool

	// Unitcell restricts seeding to the first NAtoms/Unitcell atoms, for
	// periodic supercells where only the home cell carries centers.
	// Values below 2 mean no restriction.
	Unitcell int
}

func (a *Autogen) Name() string { return "autogen" }

// Partition implements Partitioner.
func (a *Autogen) Partition(g *topo.BondGraph, sm *SiteMap) (*Partition, error) {
	if a.Order < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadOrder, a.Order)
	}
	n := g.NAtoms()
	if sm.NAtoms() != n {
		return nil, fmt.Errorf("frag: site map covers %d atoms, bond graph has %d", sm.NAtoms(), n)
	}
	if a.NoSeed != nil && len(a.NoSeed) != n {
		return nil, fmt.Errorf("frag: NoSeed flag list covers %d atoms, bond graph has %d", len(a.NoSeed), n)
	}

	nseed := n
	if a.Unitcell > 1 {
		nseed = n / a.Unitcell
	}

	cand := make([][]int, n)
	for i := 0; i < n; i++ {
		cand[i] = g.WithinHops(i, a.Order)
	}

	var seeds []int
	for i := 0; i < nseed; i++ {
		if a.NoSeed == nil || !a.NoSeed[i] {
			seeds = append(seeds, i)
		}
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("frag: no seed atoms left after applying NoSeed flags")
	}

	// A seed survives unless its expansion is strictly contained in another
	// seed's expansion, or an earlier seed produced the identical set.
	var survivors []int
	for _, s := range seeds {
		alive := true
		for _, t := range seeds {
			if t == s {
				continue
			}
			if subsetOf(cand[s], cand[t]) {
				if len(cand[s]) < len(cand[t]) || t < s {
					alive = false
					break
				}
			}
		}
		if alive {
			survivors = append(survivors, s)
		}
	}

	fragAtoms := make([][]int, len(survivors))
	for fi, s := range survivors {
		fragAtoms[fi] = withAttachedNoSeed(g, cand[s], a.NoSeed)
	}

	owner := make([]int, n)
	for i := range owner {
		owner[i] = -1
	}
	for fi, s := range survivors {
		owner[s] = fi
	}
	for _, s := range seeds {
		if owner[s] >= 0 {
			continue
		}
		for fi, t := range survivors {
			if subsetOf(cand[s], cand[t]) {
				owner[s] = fi
				break
			}
		}
		if owner[s] < 0 {
			return nil, fmt.Errorf("frag: absorbed seed atom %d has no containing fragment", s)
		}
	}
	// Attach the no-seed atoms to the fragment owning their first seeded
	// neighbor.
	for i := 0; i < nseed; i++ {
		if owner[i] >= 0 {
			continue
		}
		for _, nb := range g.Neighbors(i) {
			if nb < nseed && (a.NoSeed == nil || !a.NoSeed[nb]) {
				owner[i] = owner[nb]
				break
			}
		}
		if owner[i] < 0 {
			return nil, fmt.Errorf("frag: atom %d is flagged NoSeed but has no seeded neighbor", i)
		}
	}

	fragCenters := make([][]int, len(survivors))
	for i := 0; i < n; i++ {
		if owner[i] >= 0 {
			fragCenters[owner[i]] = append(fragCenters[owner[i]], i)
		}
	}
	return finish(sm, survivors, fragAtoms, fragCenters, owner), nil
}

// subsetOf reports whether sorted x is contained in sorted y.
func subsetOf(x, y []int) bool {
	j := 0
	for _, v := range x {
		for j < len(y) && y[j] < v {
			j++
		}
		if j == len(y) || y[j] != v {
			return false
		}
		j++
	}
	return true
}

// withAttachedNoSeed extends a sorted atom set by the NoSeed neighbors of
// its members, keeping the result sorted. With no flags it returns the set
// unchanged.
func withAttachedNoSeed(g *topo.BondGraph, atoms []int, noSeed []bool) []int {
	if noSeed == nil {
		return atoms
	}
	in := make(map[int]bool, len(atoms))
	for _, a := range atoms {
		in[a] = true
	}
	res := append([]int(nil), atoms...)
	for _, a := range atoms {
		for _, nb := range g.Neighbors(a) {
			if noSeed[nb] && !in[nb] {
				in[nb] = true
				res = append(res, nb)
			}
		}
	}
	sort.Ints(res)
	return res
}
