// sitemap.go --  This file is part of goBE project.
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

// SiteMap is the global site table: it maps atoms to contiguous ranges of
// orbital site indices. Fragments and the correlation potential both refer
// to sites through this one index space, so shared edge sites alias by
// index, never by copied state.
type SiteMap struct {
	offsets []int
	counts  []int
	total   int
}

// NewSiteMap builds a site map from the per-atom orbital counts reported by
// the mean-field reference.
func NewSiteMap(aoPerAtom []int) *SiteMap {
	sm := &SiteMap{
		offsets: make([]int, len(aoPerAtom)),
		counts:  make([]int, len(aoPerAtom)),
	}
	for i, c := range aoPerAtom {
		sm.offsets[i] = sm.total
		sm.counts[i] = c
		sm.total += c
	}
	return sm
}

// NAtoms returns the number of atoms in the table.
func (sm *SiteMap) NAtoms() int { return len(sm.counts) }

// NSites returns the total number of orbital sites.
func (sm *SiteMap) NSites() int { return sm.total }

// AtomSites returns the global site indices belonging to atom a, ascending.
func (sm *SiteMap) AtomSites(a int) []int {
	res := make([]int, sm.counts[a])
	for i := range res {
		res[i] = sm.offsets[a] + i
	}
	return res
}

// AtomOf returns the atom owning global site s.
func (sm *SiteMap) AtomOf(s int) int {
	for a := len(sm.offsets) - 1; a >= 0; a-- {
		if s >= sm.offsets[a] {
			return a
		}
	}
	return -1
}
