// chain.go --  This file is part of goBE project.
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

// Chain is the strategy for strictly linear systems (hydrogen chains and
// polymers reduced to a backbone): a sliding window of Order+1 consecutive
// atoms, each fragment centering its first atom and sharing the later ones
// as edges with the following windows. The final window owns all trailing
// atoms so that center coverage stays complete.
type Chain struct {
	Order int
}

func (c *Chain) Name() string { return "chain" }

// Partition implements Partitioner.
func (c *Chain) Partition(g *topo.BondGraph, sm *SiteMap) (*Partition, error) {
	if c.Order < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadOrder, c.Order)
	}
	n := g.NAtoms()
	if sm.NAtoms() != n {
		return nil, fmt.Errorf("frag: site map covers %d atoms, bond graph has %d", sm.NAtoms(), n)
	}

	path, err := linearOrder(g)
	if err != nil {
		return nil, err
	}

	owner := make([]int, n)
	last := n - 1 - c.Order
	if last < 0 {
		last = 0
	}

	var origins []int
	var fragAtoms, fragCenters [][]int
	for i := 0; i <= last; i++ {
		hi := i + c.Order
		if hi > n-1 {
			hi = n - 1
		}
		atoms := append([]int(nil), path[i:hi+1]...)
		sort.Ints(atoms)

		var centers []int
		if i == last {
			centers = append(centers, path[i:]...)
		} else {
			centers = append(centers, path[i])
		}
		sort.Ints(centers)
		for _, a := range centers {
			owner[a] = i
		}

		origins = append(origins, path[i])
		fragAtoms = append(fragAtoms, atoms)
		fragCenters = append(fragCenters, centers)
	}
	return finish(sm, origins, fragAtoms, fragCenters, owner), nil
}

// linearOrder walks the graph from its lower-index endpoint and returns the
// atoms in chain order. Any branching or cycle fails.
func linearOrder(g *topo.BondGraph) ([]int, error) {
	n := g.NAtoms()
	if n == 1 {
		return []int{0}, nil
	}
	start := -1
	for i := 0; i < n; i++ {
		switch g.Degree(i) {
		case 1:
			if start < 0 {
				start = i
			}
		case 2:
			// interior atom
		default:
			return nil, fmt.Errorf("%w: atom %d has %d bonds", ErrNotChain, i, g.Degree(i))
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: no endpoint found (cycle?)", ErrNotChain)
	}

	path := make([]int, 0, n)
	prev := -1
	cur := start
	for {
		path = append(path, cur)
		next := -1
		for _, nb := range g.Neighbors(cur) {
			if nb != prev {
				next = nb
				break
			}
		}
		if next < 0 {
			break
		}
		prev, cur = cur, next
	}
	if len(path) != n {
		return nil, fmt.Errorf("%w: walk covered %d of %d atoms", ErrNotChain, len(path), n)
	}
	return path, nil
}
