package handlers

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentic-etl/etl-backend/pkg/service"
)

func newTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// fakeWorkspaceService records calls and returns canned values.
type fakeWorkspaceService struct {
	uploaded  []*service.UploadFile
	files     map[string][]byte
	uploadErr error
}

func newFakeWorkspaceService() *fakeWorkspaceService {
	return &fakeWorkspaceService{
		files: map[string][]byte{},
	}
}

func (f *fakeWorkspaceService) UploadFiles(_ context.Context, files []*service.UploadFile) (*service.UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}

	f.uploaded = append(f.uploaded, files...)

	metas := make([]*service.FileMeta, 0, len(files))
	for _, file := range files {
		metas = append(metas, &service.FileMeta{
			Filename: file.Path,
			Path:     file.Path,
			Size:     int64(len(file.Data)),
		})
	}

	return &service.UploadResult{
		Files:         metas,
		SchemaPreview: []service.TableSchema{},
		Status:        "success",
	}, nil
}

func (f *fakeWorkspaceService) ListFiles(_ context.Context) ([]*service.FileNode, error) {
	var nodes []*service.FileNode
	for path, data := range f.files {
		nodes = append(nodes, &service.FileNode{Name: path, Path: path, Size: int64(len(data))})
	}

	return nodes, nil
}

func (f *fakeWorkspaceService) ReadFile(_ context.Context, path string) (*service.FileWithData, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("no such file")
	}

	return &service.FileWithData{
		Meta: service.FileMeta{Filename: path, Path: path, Size: int64(len(data))},
		Data: data,
	}, nil
}

func (f *fakeWorkspaceService) WriteFile(_ context.Context, path string, data []byte) (*service.FileMeta, error) {
	f.files[path] = data

	return &service.FileMeta{Filename: path, Path: path, Size: int64(len(data))}, nil
}

func (f *fakeWorkspaceService) Info(_ context.Context) (*service.WorkspaceInfo, error) {
	info := &service.WorkspaceInfo{
		Instance: service.WorkspaceInstance{ID: "etl_test", Path: "/workspace/etl_test"},
	}
	for _, data := range f.files {
		info.FileCount++
		info.TotalSize += int64(len(data))
	}

	return info, nil
}

// fakeChatService replays scripted frame sequences, one per Stream call.
type fakeChatService struct {
	scripts   [][]*service.AgentMessage
	streamErr error
	messages  []string
	resets    int
}

func (f *fakeChatService) Stream(_ context.Context, userMessage string) (<-chan *service.AgentMessage, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}

	f.messages = append(f.messages, userMessage)

	var script []*service.AgentMessage
	if len(f.scripts) > 0 {
		script = f.scripts[0]
		f.scripts = f.scripts[1:]
	}

	out := make(chan *service.AgentMessage, len(script))
	for _, msg := range script {
		out <- msg
	}
	close(out)

	return out, nil
}

func (f *fakeChatService) Reset(_ context.Context) error {
	f.resets++

	return nil
}
