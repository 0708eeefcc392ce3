package handlers

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/agentic-etl/etl-backend/pkg/errs"
	"github.com/agentic-etl/etl-backend/pkg/service"
	"github.com/agentic-etl/etl-backend/pkg/service/core/transport"
)

type WorkspaceHandler struct {
	workspaceService service.WorkspaceService
	maxUploadBytes   int64
	metrics          *Metrics
	log              zerolog.Logger
}

func (h *WorkspaceHandler) Upload(ctx context.Context, r *http.Request, _ any) (*service.UploadResult, error) {
	const op errs.Op = "WorkspaceHandler.Upload"

	files, err := filesFromRequest(r, h.maxUploadBytes)
	if err != nil {
		return nil, errs.E(errs.InvalidRequest, op, errs.Parameter("files"), err)
	}

	result, err := h.workspaceService.UploadFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	h.metrics.Uploads.Add(float64(len(result.Files)))
	h.log.Info().Int("files", len(result.Files)).Msg("workspace_upload")

	return result, nil
}

func (h *WorkspaceHandler) Info(ctx context.Context, _ *http.Request, _ any) (*service.WorkspaceInfo, error) {
	const op errs.Op = "WorkspaceHandler.Info"

	info, err := h.workspaceService.Info(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return info, nil
}

func (h *WorkspaceHandler) ListFiles(ctx context.Context, _ *http.Request, _ any) ([]*service.FileNode, error) {
	const op errs.Op = "WorkspaceHandler.ListFiles"

	tree, err := h.workspaceService.ListFiles(ctx)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return tree, nil
}

func (h *WorkspaceHandler) GetFile(ctx context.Context, _ *http.Request, _ any) (*transport.ByteWriter, error) {
	const op errs.Op = "WorkspaceHandler.GetFile"

	path := chi.URLParamFromCtx(ctx, "*")
	if path == "" {
		return nil, errs.E(errs.InvalidRequest, op, errs.Parameter("path"), errs.Str("missing file path"))
	}

	file, err := h.workspaceService.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	return transport.NewByteWriter(contentTypeFor(file.Meta.Filename), file.Data), nil
}

func (h *WorkspaceHandler) WriteFile(ctx context.Context, r *http.Request, _ any) (*service.FileMeta, error) {
	const op errs.Op = "WorkspaceHandler.WriteFile"

	path := chi.URLParamFromCtx(ctx, "*")
	if path == "" {
		return nil, errs.E(errs.InvalidRequest, op, errs.Parameter("path"), errs.Str("missing file path"))
	}

	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, h.maxUploadBytes))
	if err != nil {
		return nil, errs.E(errs.InvalidRequest, op, err)
	}

	meta, err := h.workspaceService.WriteFile(ctx, path, data)
	if err != nil {
		return nil, err
	}

	return meta, nil
}

func contentTypeFor(filename string) string {
	switch filepath.Ext(filename) {
	case ".json":
		return "application/json"
	case ".sql":
		return "application/sql"
	case ".py":
		return "text/x-python"
	case ".md":
		return "text/markdown"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

func filesFromRequest(r *http.Request, maxBytes int64) ([]*service.UploadFile, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("creating multipart reader: %w", err)
	}

	var total int64
	var files []*service.UploadFile
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading next part: %w", err)
		}

		if part.FileName() == "" {
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, maxBytes-total+1))
		if err != nil {
			return nil, fmt.Errorf("reading part data: %w", err)
		}

		total += int64(len(data))
		if total > maxBytes {
			return nil, fmt.Errorf("upload exceeds limit of %d bytes", maxBytes)
		}

		// the filename parameter may carry a relative path when the client
		// uploads a directory
		fileFullPath := part.FileName()
		if _, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition")); err == nil {
			if p := params["filename"]; p != "" {
				fileFullPath = p
			}
		}

		files = append(files, &service.UploadFile{
			Path: fileFullPath,
			Data: data,
		})
	}

	return files, nil
}

func NewWorkspaceHandler(workspaceService service.WorkspaceService, maxUploadBytes int64, metrics *Metrics, log zerolog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		maxUploadBytes:   maxUploadBytes,
		metrics:          metrics,
		log:              log,
	}
}
