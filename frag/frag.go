// frag.go --  This file is part of goBE project.
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

// Package frag partitions a bonded system into overlapping fragments with
// center/edge site classification and energy-assembly weights.
//
// Every atom is owned as a center by exactly one fragment; fragments that
// merely reach an atom see it as an edge site with zero energy weight. The
// sum of weights over all fragments therefore reproduces each site exactly
// once.
package frag

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/MirzaevaIV/goBE/topo"
)

var (
	// ErrBadOrder is returned for an expansion order below 1.
	ErrBadOrder = errors.New("frag: expansion order must be >= 1")
	// ErrUnknownStrategy is returned for an unrecognized partition strategy name.
	ErrUnknownStrategy = errors.New("frag: unknown partition strategy")
	// ErrNotChain is returned when the chain strategy meets a non-linear graph.
	ErrNotChain = errors.New("frag: chain strategy requires a linear chain")
)

// Fragment is one overlapping subproblem: an ordered set of orbital sites
// split into center (owned) and edge (shared) atoms. Fragments are immutable
// once generated.
type Fragment struct {
	ID     int
	Origin int // seed atom of the expansion

	Atoms       []int // all atoms, ascending
	CenterAtoms []int // atoms owned for energy bookkeeping, ascending
	EdgeAtoms   []int // atoms shared with neighboring fragments, ascending

	Sites   []int     // global site indices, ascending
	Weights []float64 // energy-assembly weight per entry of Sites
}

// NSites returns the number of orbital sites in the fragment.
func (f *Fragment) NSites() int { return len(f.Sites) }

// LocalIndex returns the position of a global site index within the
// fragment, or -1 when the site is not part of it.
func (f *Fragment) LocalIndex(site int) int {
	return slices.Index(f.Sites, site)
}

// HasCenterAtom reports whether the fragment owns atom a.
func (f *Fragment) HasCenterAtom(a int) bool {
	return slices.Contains(f.CenterAtoms, a)
}

// EdgeLink records one shared atom: fragment ID sees the atom as an edge,
// Owner owns the same atom as a center. The owner is the reference fragment
// for density matching at that atom.
type EdgeLink struct {
	Fragment int
	Atom     int
	Owner    int
}

// Partition is the full fragmentation of a system.
type Partition struct {
	Fragments []Fragment
	Map       *SiteMap
	// Links lists every edge-atom relation, sorted by (Fragment, Atom).
	Links []EdgeLink
	// owner[a] is the fragment owning atom a as center.
	owner []int
}

// OwnerOf returns the fragment that owns atom a as a center site.
func (p *Partition) OwnerOf(atom int) int { return p.owner[atom] }

// Partitioner is the strategy contract: given a bond graph and a site map,
// emit the fragments in a deterministic, atom-index-ascending order.
type Partitioner interface {
	Name() string
	Partition(g *topo.BondGraph, sm *SiteMap) (*Partition, error)
}

// NewPartitioner selects a partition strategy by name. Supported names are
// "autogen" and "chain".
func NewPartitioner(name string, order int) (Partitioner, error) {
	if order < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadOrder, order)
	}
	switch name {
	case "autogen":
		return &Autogen{Order: order}, nil
	case "chain":
		return &Chain{Order: order}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// finish assembles the shared Partition bookkeeping once a strategy has
// decided atom membership and center ownership. fragAtoms[i] and
// fragCenters[i] must be ascending; owner[a] names the fragment owning a.
func finish(sm *SiteMap, origins []int, fragAtoms, fragCenters [][]int, owner []int) *Partition {
	p := &Partition{Map: sm, owner: owner}
	for i := range fragAtoms {
		f := Fragment{
			ID:          i,
			Origin:      origins[i],
			Atoms:       fragAtoms[i],
			CenterAtoms: fragCenters[i],
		}
		for _, a := range f.Atoms {
			if !slices.Contains(f.CenterAtoms, a) {
				f.EdgeAtoms = append(f.EdgeAtoms, a)
			}
		}
		for _, a := range f.Atoms {
			w := 0.0
			if slices.Contains(f.CenterAtoms, a) {
				w = 1.0
			}
			for _, s := range sm.AtomSites(a) {
				f.Sites = append(f.Sites, s)
				f.Weights = append(f.Weights, w)
			}
		}
		p.Fragments = append(p.Fragments, f)
	}
	for i := range p.Fragments {
		for _, a := range p.Fragments[i].EdgeAtoms {
			p.Links = append(p.Links, EdgeLink{Fragment: i, Atom: a, Owner: owner[a]})
		}
	}
	return p
}
