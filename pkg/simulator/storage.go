package simulator

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"sigs.k8s.io/yaml"

	"github.com/mandelsoft/spaceanchors/pkg/native"
	"github.com/mandelsoft/spaceanchors/pkg/space"
	"github.com/mandelsoft/spaceanchors/pkg/utils"
)

var ErrNotStored = errors.New("space not stored")

// Record is the persisted state of a saved space.
type Record struct {
	UUID       space.UUID            `json:"uuid"`
	Pose       Pose                  `json:"pose"`
	Components []space.ComponentType `json:"components,omitempty"`
	Mode       string                `json:"mode"`
	Saved      utils.Timestamp       `json:"saved"`
	Digest     string                `json:"digest,omitempty"`
}

// Pose is the storage format of a native pose.
type Pose struct {
	Position    [3]float32 `json:"position"`
	Orientation [4]float32 `json:"orientation"`
}

func PoseFrom(p native.Posef) Pose {
	return Pose{
		Position:    [3]float32{p.Position.X, p.Position.Y, p.Position.Z},
		Orientation: [4]float32{p.Orientation.X, p.Orientation.Y, p.Orientation.Z, p.Orientation.W},
	}
}

func (p Pose) String() string {
	return fmt.Sprintf("%g,%g,%g", p.Position[0], p.Position[1], p.Position[2])
}

func (p Pose) Native() native.Posef {
	return native.Posef{
		Position:    native.Vector3f{X: p.Position[0], Y: p.Position[1], Z: p.Position[2]},
		Orientation: native.Quatf{X: p.Orientation[0], Y: p.Orientation[1], Z: p.Orientation[2], W: p.Orientation[3]},
	}
}

func (r *Record) digest() string {
	c := *r
	c.Digest = ""
	return utils.HashData(&c)
}

// Storage keeps saved spaces as yaml documents in a filesystem.
type Storage struct {
	lock sync.Mutex
	path string
	fs   vfs.FileSystem
}

// NewStorage provides a storage rooted at the given path.
// Without filesystem an in-memory filesystem is used.
func NewStorage(path string, fss ...vfs.FileSystem) (*Storage, error) {
	fs := utils.OptionalDefaulted[vfs.FileSystem](memoryfs.New(), fss...)
	err := fs.MkdirAll(path, 0o700)
	if err != nil && !errors.Is(err, vfs.ErrExist) {
		return nil, err
	}
	return &Storage{path: path, fs: fs}, nil
}

func (s *Storage) FileSystem() vfs.FileSystem {
	return s.fs
}

// Root is the directory holding the records.
func (s *Storage) Root() string {
	return s.path
}

func (s *Storage) Path(id space.UUID) string {
	return filepath.Join(s.path, id.String()+".yaml")
}

func (s *Storage) Save(r *Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	r.Saved = utils.NewTimestamp()
	r.Digest = r.digest()
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	log.Debug("storing space {{uuid}}", "uuid", r.UUID)
	return vfs.WriteFile(s.fs, s.Path(r.UUID), data, 0o600)
}

func (s *Storage) Load(id space.UUID) (*Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.load(s.Path(id))
}

func (s *Storage) load(path string) (*Record, error) {
	data, err := vfs.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, vfs.ErrNotExist) {
			return nil, ErrNotStored
		}
		return nil, err
	}
	var r Record
	err = yaml.Unmarshal(data, &r)
	if err != nil {
		return nil, fmt.Errorf("corrupted storage %s: %w", path, err)
	}
	if r.Digest != r.digest() {
		return nil, fmt.Errorf("corrupted storage %s: digest mismatch", path)
	}
	return &r, nil
}

func (s *Storage) Has(id space.UUID) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	ok, err := vfs.FileExists(s.fs, s.Path(id))
	return err == nil && ok
}

func (s *Storage) Erase(id space.UUID) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := s.fs.Remove(s.Path(id))
	if errors.Is(err, vfs.ErrNotExist) {
		return ErrNotStored
	}
	return err
}

// List returns all stored records ordered by UUID.
func (s *Storage) List() ([]*Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	entries, err := vfs.ReadDir(s.fs, s.path)
	if err != nil {
		if errors.Is(err, vfs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var result []*Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		r, err := s.load(filepath.Join(s.path, e.Name()))
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	slices.SortFunc(result, func(a, b *Record) int { return space.CompareUUID(a.UUID, b.UUID) })
	return result, nil
}
