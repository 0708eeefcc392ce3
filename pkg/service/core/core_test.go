package core

import (
	"context"
	"errors"

	"github.com/agentic-etl/etl-backend/pkg/service"
)

// fakeAgent replays scripted frames for each Query call.
type fakeAgent struct {
	frames        [][]*service.AgentMessage
	queryErr      error
	queries       []string
	conversations int
	closed        bool
}

func (f *fakeAgent) Query(_ context.Context, prompt string) (<-chan *service.AgentMessage, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	f.queries = append(f.queries, prompt)

	var script []*service.AgentMessage
	if len(f.frames) > 0 {
		script = f.frames[0]
		f.frames = f.frames[1:]
	}

	out := make(chan *service.AgentMessage, len(script))
	for _, msg := range script {
		out <- msg
	}
	close(out)

	return out, nil
}

func (f *fakeAgent) NewConversation(_ context.Context) error {
	f.conversations++

	return nil
}

func (f *fakeAgent) Close() error {
	f.closed = true

	return nil
}

// fakeBigQueryAPI returns canned results and records the statements it saw.
type fakeBigQueryAPI struct {
	dryRunResult *service.DryRunResult
	dryRunErr    error
	execStats    *service.JobStatistics
	execErr      error

	dryRuns  []string
	executed []string
	datasets []string
	projects []string
}

func (f *fakeBigQueryAPI) DryRun(_ context.Context, projectID, query string) (*service.DryRunResult, error) {
	f.projects = append(f.projects, projectID)
	f.dryRuns = append(f.dryRuns, query)

	if f.dryRunErr != nil {
		return nil, f.dryRunErr
	}

	return f.dryRunResult, nil
}

func (f *fakeBigQueryAPI) ExecuteQuery(_ context.Context, projectID, query string) (*service.JobStatistics, error) {
	f.executed = append(f.executed, query)

	if f.execErr != nil {
		return nil, f.execErr
	}

	return f.execStats, nil
}

func (f *fakeBigQueryAPI) CreateDatasetIfNotExists(_ context.Context, _, datasetID, _ string) error {
	f.datasets = append(f.datasets, datasetID)

	return nil
}

// fakeWorkspaceStorage stores files in a map.
type fakeWorkspaceStorage struct {
	files   map[string][]byte
	saveErr error
}

func newFakeWorkspaceStorage() *fakeWorkspaceStorage {
	return &fakeWorkspaceStorage{
		files: map[string][]byte{},
	}
}

func (f *fakeWorkspaceStorage) Reset(_ context.Context) (*service.WorkspaceInstance, error) {
	f.files = map[string][]byte{}

	return &service.WorkspaceInstance{ID: "etl_test", Path: "/workspace/etl_test"}, nil
}

func (f *fakeWorkspaceStorage) Instance() *service.WorkspaceInstance {
	return &service.WorkspaceInstance{ID: "etl_test", Path: "/workspace/etl_test"}
}

func (f *fakeWorkspaceStorage) SaveFile(_ context.Context, file *service.UploadFile) (*service.FileMeta, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}

	f.files[file.Path] = file.Data

	return &service.FileMeta{
		Filename: file.Path,
		Path:     file.Path,
		Size:     int64(len(file.Data)),
	}, nil
}

func (f *fakeWorkspaceStorage) ReadFile(_ context.Context, path string) (*service.FileWithData, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("no such file")
	}

	return &service.FileWithData{
		Meta: service.FileMeta{Filename: path, Path: path, Size: int64(len(data))},
		Data: data,
	}, nil
}

func (f *fakeWorkspaceStorage) WriteFile(ctx context.Context, path string, data []byte) (*service.FileMeta, error) {
	return f.SaveFile(ctx, &service.UploadFile{Path: path, Data: data})
}

func (f *fakeWorkspaceStorage) Tree(_ context.Context) ([]*service.FileNode, error) {
	var nodes []*service.FileNode
	for path, data := range f.files {
		nodes = append(nodes, &service.FileNode{
			Name: path,
			Path: path,
			Size: int64(len(data)),
		})
	}

	return nodes, nil
}

func (f *fakeWorkspaceStorage) Info(_ context.Context) (*service.WorkspaceInfo, error) {
	return &service.WorkspaceInfo{
		Instance:  *f.Instance(),
		FileCount: len(f.files),
	}, nil
}

func textFrame(text string) *service.AgentMessage {
	return &service.AgentMessage{
		Type: service.MessageTypeAssistant,
		Content: []service.ContentBlock{
			{Type: service.BlockTypeText, Text: text},
		},
	}
}

func resultFrame(result string, isError bool) *service.AgentMessage {
	return &service.AgentMessage{
		Type:    service.MessageTypeResult,
		IsError: isError,
		Result:  result,
	}
}
