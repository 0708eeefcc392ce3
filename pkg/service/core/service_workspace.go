package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agentic-etl/etl-backend/pkg/errs"
	"github.com/agentic-etl/etl-backend/pkg/service"
)

var _ service.WorkspaceService = &workspaceService{}

type workspaceService struct {
	workspaceStorage service.WorkspaceStorage
}

// UploadFiles stores uploaded JSON files in the workspace. Only .json
// files are accepted; anything else fails the whole upload.
func (s *workspaceService) UploadFiles(ctx context.Context, files []*service.UploadFile) (*service.UploadResult, error) {
	const op errs.Op = "workspaceService.UploadFiles"

	if len(files) == 0 {
		return nil, errs.E(errs.InvalidRequest, op, errs.Parameter("files"), errs.Str("no files in upload"))
	}

	for _, f := range files {
		if strings.ToLower(filepath.Ext(f.Path)) != ".json" {
			return nil, errs.E(errs.InvalidRequest, op, errs.Parameter("files"), fmt.Errorf("only .json files are accepted, got: %s", f.Path))
		}
	}

	metas := make([]*service.FileMeta, 0, len(files))
	for _, f := range files {
		meta, err := s.workspaceStorage.SaveFile(ctx, f)
		if err != nil {
			return nil, errs.E(op, err)
		}

		metas = append(metas, meta)
	}

	// schema preview stays empty on upload, the agent fills it in once the
	// user asks for analysis
	return &service.UploadResult{
		Files:         metas,
		SchemaPreview: []service.TableSchema{},
		Status:        "success",
	}, nil
}

func (s *workspaceService) ListFiles(ctx context.Context) ([]*service.FileNode, error) {
	const op errs.Op = "workspaceService.ListFiles"

	tree, err := s.workspaceStorage.Tree(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return tree, nil
}

func (s *workspaceService) ReadFile(ctx context.Context, path string) (*service.FileWithData, error) {
	const op errs.Op = "workspaceService.ReadFile"

	file, err := s.workspaceStorage.ReadFile(ctx, path)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return file, nil
}

func (s *workspaceService) WriteFile(ctx context.Context, path string, data []byte) (*service.FileMeta, error) {
	const op errs.Op = "workspaceService.WriteFile"

	meta, err := s.workspaceStorage.WriteFile(ctx, path, data)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return meta, nil
}

func (s *workspaceService) Info(ctx context.Context) (*service.WorkspaceInfo, error) {
	const op errs.Op = "workspaceService.Info"

	info, err := s.workspaceStorage.Info(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return info, nil
}

func NewWorkspaceService(workspaceStorage service.WorkspaceStorage) *workspaceService {
	return &workspaceService{
		workspaceStorage: workspaceStorage,
	}
}
