// cache.go --  This file is part of goBE project.
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
package embed

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MirzaevaIV/goBE/tensor"
)

// Cache persists projected two-electron integral tensors on disk, one gob
// file per fragment. The projected ERI of a fragment only depends on its
// Schmidt basis, which is fixed for the whole matching loop, so files are
// written once and reused across iterations and restarts.
type Cache struct {
	dir string
}

// NewCache opens (creating if needed) an integral cache rooted at dir.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("embed: create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) path(id int) string {
	return filepath.Join(c.dir, fmt.Sprintf("eri_frag%03d.gob", id))
}

// Load reads the cached tensor of fragment id. It returns fs.ErrNotExist
// (wrapped) when no file has been written yet.
func (c *Cache) Load(id int) (*tensor.Tensor4, error) {
	f, err := os.Open(c.path(id))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var t tensor.Tensor4
	if err := gob.NewDecoder(f).Decode(&t); err != nil {
		return nil, fmt.Errorf("embed: decode cached integrals for fragment %d: %w", id, err)
	}
	return &t, nil
}

// Store writes the tensor of fragment id, replacing any previous file.
func (c *Cache) Store(id int, t *tensor.Tensor4) error {
	tmp := c.path(id) + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(t); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("embed: encode integrals for fragment %d: %w", id, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, c.path(id))
}

// Fetch returns the cached tensor of fragment id, computing and storing it
// on a miss.
func (c *Cache) Fetch(id int, compute func() (*tensor.Tensor4, error)) (*tensor.Tensor4, error) {
	t, err := c.Load(id)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	t, err = compute()
	if err != nil {
		return nil, err
	}
	if err := c.Store(id, t); err != nil {
		return nil, err
	}
	return t, nil
}
