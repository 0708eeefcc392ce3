// Package disk implements workspace storage on the local filesystem. A
// workspace instance is a timestamped directory under the configured base
// directory; the agent process runs with the instance as its working
// directory, so everything the agent reads or writes lives here too.
package disk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog"

	"github.com/agentic-etl/etl-backend/pkg/errs"
	"github.com/agentic-etl/etl-backend/pkg/service"
)

var _ service.WorkspaceStorage = &Store{}

type Store struct {
	baseDir string
	log     zerolog.Logger

	mu       sync.RWMutex
	instance *service.WorkspaceInstance
}

func NewStore(baseDir string, log zerolog.Logger) *Store {
	return &Store{
		baseDir: baseDir,
		log:     log,
	}
}

// Reset removes all previous workspace instances and creates a fresh one,
// mirroring the clean start the application performs on boot.
func (s *Store) Reset(_ context.Context) (*service.WorkspaceInstance, error) {
	const op errs.Op = "disk.Reset"

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.RemoveAll(s.baseDir)
	if err != nil {
		return nil, errs.E(errs.IO, op, fmt.Errorf("removing workspace base %s: %w", s.baseDir, err))
	}

	// timestamp for operators, short uuid so two instances created within
	// the same second don't collide
	id := fmt.Sprintf("etl_%s_%s", time.Now().Format("20060102_150405"), shortuuid.New()[:8])

	path, err := filepath.Abs(filepath.Join(s.baseDir, id))
	if err != nil {
		return nil, errs.E(errs.IO, op, err)
	}

	err = os.MkdirAll(path, 0o755)
	if err != nil {
		return nil, errs.E(errs.IO, op, fmt.Errorf("creating workspace instance %s: %w", path, err))
	}

	s.instance = &service.WorkspaceInstance{
		ID:   id,
		Path: path,
	}

	s.log.Info().Str("instance", id).Str("path", path).Msg("workspace_created")

	return s.instance, nil
}

func (s *Store) Instance() *service.WorkspaceInstance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.instance
}

func (s *Store) SaveFile(_ context.Context, file *service.UploadFile) (*service.FileMeta, error) {
	const op errs.Op = "disk.SaveFile"

	full, err := s.resolve(op, file.Path)
	if err != nil {
		return nil, err
	}

	err = os.MkdirAll(filepath.Dir(full), 0o755)
	if err != nil {
		return nil, errs.E(errs.IO, op, err)
	}

	err = os.WriteFile(full, file.Data, 0o644)
	if err != nil {
		return nil, errs.E(errs.IO, op, fmt.Errorf("writing %s: %w", file.Path, err))
	}

	return &service.FileMeta{
		Filename: filepath.Base(file.Path),
		Path:     file.Path,
		Size:     int64(len(file.Data)),
	}, nil
}

func (s *Store) ReadFile(_ context.Context, path string) (*service.FileWithData, error) {
	const op errs.Op = "disk.ReadFile"

	full, err := s.resolve(op, path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.E(errs.NotExist, op, errs.Parameter("path"), fmt.Errorf("no such file: %s", path))
		}

		return nil, errs.E(errs.IO, op, err)
	}

	return &service.FileWithData{
		Meta: service.FileMeta{
			Filename: filepath.Base(path),
			Path:     path,
			Size:     int64(len(data)),
		},
		Data: data,
	}, nil
}

func (s *Store) WriteFile(ctx context.Context, path string, data []byte) (*service.FileMeta, error) {
	return s.SaveFile(ctx, &service.UploadFile{Path: path, Data: data})
}

func (s *Store) Tree(_ context.Context) ([]*service.FileNode, error) {
	const op errs.Op = "disk.Tree"

	root, err := s.root(op)
	if err != nil {
		return nil, err
	}

	nodes, err := readTree(root, "")
	if err != nil {
		return nil, errs.E(errs.IO, op, err)
	}

	return nodes, nil
}

func (s *Store) Info(_ context.Context) (*service.WorkspaceInfo, error) {
	const op errs.Op = "disk.Info"

	root, err := s.root(op)
	if err != nil {
		return nil, err
	}

	info := &service.WorkspaceInfo{
		Instance: *s.Instance(),
	}

	err = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}

		info.FileCount++
		info.TotalSize += fi.Size()

		return nil
	})
	if err != nil {
		return nil, errs.E(errs.IO, op, err)
	}

	return info, nil
}

func (s *Store) root(op errs.Op) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.instance == nil {
		return "", errs.E(errs.Internal, op, errs.Str("workspace not initialized"))
	}

	return s.instance.Path, nil
}

// resolve maps a workspace-relative path to an absolute one and rejects
// anything escaping the instance directory.
func (s *Store) resolve(op errs.Op, path string) (string, error) {
	root, err := s.root(op)
	if err != nil {
		return "", err
	}

	if path == "" {
		return "", errs.E(errs.InvalidRequest, op, errs.Parameter("path"), errs.Str("empty path"))
	}

	cleaned := filepath.Clean("/" + path)
	full := filepath.Join(root, cleaned)

	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", errs.E(errs.InvalidRequest, op, errs.Parameter("path"), fmt.Errorf("path escapes workspace: %s", path))
	}

	return full, nil
}

func readTree(dir, prefix string) ([]*service.FileNode, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	// directories first, then files, both alphabetical
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}

		return entries[i].Name() < entries[j].Name()
	})

	var nodes []*service.FileNode
	for _, e := range entries {
		rel := filepath.Join(prefix, e.Name())
		node := &service.FileNode{
			Name:  e.Name(),
			Path:  rel,
			IsDir: e.IsDir(),
		}

		if e.IsDir() {
			children, err := readTree(filepath.Join(dir, e.Name()), rel)
			if err != nil {
				return nil, err
			}
			node.Children = children
		} else {
			fi, err := e.Info()
			if err != nil {
				return nil, err
			}
			node.Size = fi.Size()
		}

		nodes = append(nodes, node)
	}

	return nodes, nil
}
