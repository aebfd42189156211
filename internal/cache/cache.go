package cache

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumipallolabs/fsview/internal/model"
)

// ErrNoCache is returned when no snapshot exists for a root
var ErrNoCache = errors.New("no cache")

const timeLayout = "2006-01-02_150405"

// Snapshot is a stored scan result
type Snapshot struct {
	ScanID    uuid.UUID
	RootPath  string
	ScannedAt time.Time
	Nodes     []model.Node
}

// Tree rebuilds a finalized tree from the snapshot. Directory deployment is
// reset so every directory starts collapsed.
func (s *Snapshot) Tree() *model.Tree {
	tree := &model.Tree{Nodes: s.Nodes, RootPath: s.RootPath}
	for i := range tree.Nodes {
		if tree.Nodes[i].Kind == model.KindDirectory {
			tree.Nodes[i].Deployment = 0
		}
	}
	return tree
}

// Cache handles saving and loading scan results
type Cache struct {
	dir string
}

// New creates a new cache in the given directory
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// DefaultDir returns the default cache directory
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fsview"
	}
	return filepath.Join(home, ".fsview", "cache")
}

// Key returns the stable file key for a scan root
func Key(rootPath string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.Clean(rootPath))).String()
}

// Save stores a scan result for the tree's root
func (c *Cache) Save(scanID uuid.UUID, tree *model.Tree) (err error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	now := time.Now()
	filename := fmt.Sprintf("%s_%s.gob.gz", Key(tree.RootPath), now.Format(timeLayout))

	file, err := os.Create(filepath.Join(c.dir, filename))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()

	gzWriter := gzip.NewWriter(file)
	snap := Snapshot{
		ScanID:    scanID,
		RootPath:  tree.RootPath,
		ScannedAt: now,
		Nodes:     tree.Nodes,
	}
	if err := gob.NewEncoder(gzWriter).Encode(&snap); err != nil {
		gzWriter.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// LoadLatest loads the most recent snapshot for a root
func (c *Cache) LoadLatest(rootPath string) (*Snapshot, error) {
	latest, err := c.latest(rootPath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(latest)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer gzReader.Close()

	var snap Snapshot
	if err := gob.NewDecoder(gzReader).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(snap.Nodes) < 2 {
		return nil, fmt.Errorf("decode: snapshot has %d nodes", len(snap.Nodes))
	}
	return &snap, nil
}

// Timestamp returns the timestamp of the latest snapshot for a root
func (c *Cache) Timestamp(rootPath string) (time.Time, error) {
	latest, err := c.latest(rootPath)
	if err != nil {
		return time.Time{}, err
	}

	base := strings.TrimSuffix(filepath.Base(latest), ".gob.gz")
	parts := strings.SplitN(base, "_", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid filename %q", base)
	}
	return time.ParseInLocation(timeLayout, parts[1], time.Local)
}

// Prune removes all but the newest keep snapshots for a root
func (c *Cache) Prune(rootPath string, keep int) error {
	files, err := c.files(rootPath)
	if err != nil {
		return err
	}
	for len(files) > max(keep, 0) {
		if err := os.Remove(files[0]); err != nil {
			return fmt.Errorf("remove: %w", err)
		}
		files = files[1:]
	}
	return nil
}

func (c *Cache) latest(rootPath string) (string, error) {
	files, err := c.files(rootPath)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%s: %w", rootPath, ErrNoCache)
	}
	return files[len(files)-1], nil
}

// files lists snapshots oldest first (filenames include the timestamp)
func (c *Cache) files(rootPath string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(c.dir, Key(rootPath)+"_*.gob.gz"))
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
