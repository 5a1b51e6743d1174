// topo.go --  This file is part of goBE project.
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

// Package topo builds the bonding graph over atoms from geometry and
// distance cutoffs. Pure geometry, no electronic structure.
package topo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/MirzaevaIV/goBE/chem"
)

// ErrDisconnected is returned when the bond graph splits into more than one
// connected component. Fragments cannot cross a gap in the graph, so this
// indicates physically invalid input geometry.
var ErrDisconnected = errors.New("topo: bond graph is disconnected")

// Default slack added to the covalent cutoff, bohr.
const defaultTolerance = 0.45 / chem.Bohr

// Slack used instead when long bonds are expected, bohr. Large enough that
// a 2.0 Angstrom H-H separation still bonds.
const longBondTolerance = 1.50 / chem.Bohr

// Options configures bond detection.
type Options struct {
	// Tolerance is added to the covalent-radius sum when deciding whether
	// two atoms are bonded, in bohr. Zero means the default (0.45 Angstrom).
	Tolerance float64

	// LongBonds relaxes the cutoff for systems with stretched bonds
	// (anything beyond ~1.8 Angstrom between light atoms).
	LongBonds bool

	// Cutoffs optionally overrides the distance cutoff for an element pair
	// (Z1 <= Z2), in bohr. Overrides win over the covalent-radius rule.
	Cutoffs map[[2]int]float64
}

// BondGraph is an undirected graph over atom indices.
// Neighbor lists are kept sorted ascending so that every traversal of the
// graph is deterministic.
type BondGraph struct {
	n   int
	adj [][]int
}

// Build constructs the bond graph for mol. Two atoms are bonded when their
// distance is below the element-pair cutoff. A disconnected result is fatal.
func Build(mol *chem.Molecule, opts Options) (*BondGraph, error) {
	tol := opts.Tolerance
	if tol == 0 {
		tol = defaultTolerance
	}
	if opts.LongBonds && tol < longBondTolerance {
		tol = longBondTolerance
	}

	n := mol.NAtoms()
	g := &BondGraph{n: n, adj: make([][]int, n)}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			cut, ok := pairCutoff(opts.Cutoffs, mol.Atoms[i].Z, mol.Atoms[j].Z)
			if !ok {
				cut = chem.CovalentRadius(mol.Atoms[i].Z) + chem.CovalentRadius(mol.Atoms[j].Z) + tol
			}
			if mol.Distance(i, j) <= cut {
				g.adj[i] = append(g.adj[i], j)
				g.adj[j] = append(g.adj[j], i)
			}
		}
	}
	for i := range g.adj {
		sort.Ints(g.adj[i])
	}

	if comps := g.Components(); len(comps) > 1 {
		return nil, fmt.Errorf("%w: %d components, first split after atoms %v",
			ErrDisconnected, len(comps), comps[0])
	}
	return g, nil
}

func pairCutoff(cutoffs map[[2]int]float64, z1, z2 int) (float64, bool) {
	if cutoffs == nil {
		return 0, false
	}
	if z1 > z2 {
		z1, z2 = z2, z1
	}
	cut, ok := cutoffs[[2]int{z1, z2}]
	return cut, ok
}

// NAtoms returns the number of vertices.
func (g *BondGraph) NAtoms() int { return g.n }

// Degree returns the number of bonds of atom i.
func (g *BondGraph) Degree(i int) int { return len(g.adj[i]) }

// Neighbors returns the bonded partners of atom i, ascending.
// The slice is shared; callers must not modify it.
func (g *BondGraph) Neighbors(i int) []int { return g.adj[i] }

// HasBond reports whether atoms i and j are bonded.
func (g *BondGraph) HasBond(i, j int) bool {
	for _, k := range g.adj[i] {
		if k == j {
			return true
		}
	}
	return false
}

// Connected reports whether every atom is reachable from every other.
func (g *BondGraph) Connected() bool {
	return g.n == 0 || len(g.Components()) == 1
}

// Components returns the connected components, each sorted ascending,
// ordered by their smallest member.
func (g *BondGraph) Components() [][]int {
	seen := make([]bool, g.n)
	var comps [][]int
	for s := 0; s < g.n; s++ {
		if seen[s] {
			continue
		}
		var comp []int
		queue := []int{s}
		seen[s] = true
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			comp = append(comp, v)
			for _, w := range g.adj[v] {
				if !seen[w] {
					seen[w] = true
					queue = append(queue, w)
				}
			}
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}
	return comps
}

// WithinHops returns all atoms within the given number of bond hops of
// start, including start itself, sorted ascending. Atoms at the boundary of
// the system simply yield a smaller set; running out of neighbors before
// exhausting the hop budget is not an error.
func (g *BondGraph) WithinHops(start, hops int) []int {
	type item struct {
		v, depth int
	}
	seen := make(map[int]bool, g.n)
	seen[start] = true
	queue := []item{{start, 0}}
	var res []int
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		res = append(res, it.v)
		if it.depth == hops {
			continue
		}
		for _, w := range g.adj[it.v] {
			if !seen[w] {
				seen[w] = true
				queue = append(queue, item{w, it.depth + 1})
			}
		}
	}
	sort.Ints(res)
	return res
}
