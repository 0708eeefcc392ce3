package service

import (
	"context"
)

type WorkspaceStorage interface {
	// Reset removes any previous workspace instance and creates a fresh one,
	// returning its instance id and absolute path.
	Reset(ctx context.Context) (*WorkspaceInstance, error)
	Instance() *WorkspaceInstance
	SaveFile(ctx context.Context, file *UploadFile) (*FileMeta, error)
	ReadFile(ctx context.Context, path string) (*FileWithData, error)
	WriteFile(ctx context.Context, path string, data []byte) (*FileMeta, error)
	Tree(ctx context.Context) ([]*FileNode, error)
	Info(ctx context.Context) (*WorkspaceInfo, error)
}

type WorkspaceService interface {
	UploadFiles(ctx context.Context, files []*UploadFile) (*UploadResult, error)
	ListFiles(ctx context.Context) ([]*FileNode, error)
	ReadFile(ctx context.Context, path string) (*FileWithData, error)
	WriteFile(ctx context.Context, path string, data []byte) (*FileMeta, error)
	Info(ctx context.Context) (*WorkspaceInfo, error)
}

// WorkspaceInstance is a single timestamped working directory the agent
// operates in.
type WorkspaceInstance struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// UploadFile is a file received from a multipart upload.
type UploadFile struct {
	// Path of the file relative to the workspace root.
	Path string `json:"path"`
	Data []byte `json:"data"`
}

// FileMeta is the metadata record returned for stored files.
type FileMeta struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

type FileWithData struct {
	Meta FileMeta `json:"meta"`
	Data []byte   `json:"data"`
}

// FileNode is a node in the workspace file tree.
type FileNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Size     int64       `json:"size"`
	IsDir    bool        `json:"is_dir"`
	Children []*FileNode `json:"children,omitempty"`
}

type WorkspaceInfo struct {
	Instance  WorkspaceInstance `json:"instance"`
	FileCount int               `json:"file_count"`
	TotalSize int64             `json:"total_size"`
}

// UploadResult mirrors the upload response shape the frontend expects:
// stored file metadata plus an empty schema preview, the preview is filled
// in by the agent later in the workflow.
type UploadResult struct {
	Files         []*FileMeta   `json:"files"`
	SchemaPreview []TableSchema `json:"schema_preview"`
	Status        string        `json:"status"`
}

// TableSchema is a schema proposal produced by the agent. The backend never
// computes one itself, it only displays what the agent emits.
type TableSchema struct {
	Name          string           `json:"name"`
	EstimatedRows int64            `json:"estimated_rows"`
	Columns       []map[string]any `json:"columns"`
	Relationships []map[string]any `json:"relationships,omitempty"`
}
