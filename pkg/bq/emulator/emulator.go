// Package emulator wraps goccy/bigquery-emulator for client tests that
// need a real BigQuery API surface without a GCP project.
package emulator

import (
	"testing"

	"github.com/goccy/bigquery-emulator/server"
	"github.com/goccy/bigquery-emulator/types"
)

type emulator struct {
	testServer *server.TestServer
	emulator   *server.Server
	t          *testing.T
}

type Dataset struct {
	DatasetID string
	TableID   string
	Columns   []*types.Column
}

func ColumnNullable(name string) *types.Column {
	return &types.Column{
		Name: name,
		Type: types.STRING,
		Mode: types.NullableMode,
	}
}

func ColumnRequired(name string) *types.Column {
	return &types.Column{
		Name: name,
		Type: types.STRING,
		Mode: types.RequiredMode,
	}
}

func (e *emulator) Cleanup() {
	if e.testServer != nil {
		e.testServer.Close()
	}
}

func (e *emulator) Endpoint() string {
	return e.testServer.URL
}

func (e *emulator) WithProject(projectID string, datasets ...*Dataset) {
	p := &types.Project{
		ID: projectID,
	}

	for _, ds := range datasets {
		if ds == nil {
			continue
		}

		d := &types.Dataset{
			ID: ds.DatasetID,
		}

		if ds.TableID != "" {
			t := &types.Table{
				ID: ds.TableID,
			}

			t.Columns = append(t.Columns, ds.Columns...)

			d.Tables = append(d.Tables, t)
		}

		p.Datasets = append(p.Datasets, d)
	}

	e.WithSource(p.ID, server.StructSource(p))
}

func (e *emulator) WithSource(projectID string, source server.Source) {
	err := e.emulator.Load(source)
	if err != nil {
		e.t.Fatalf("initializing bigquery emulator: %v", err)
	}

	if err := e.emulator.SetProject(projectID); err != nil {
		e.t.Fatalf("setting project: %v", err)
	}

	e.testServer = e.emulator.TestServer()
}

func New(t *testing.T) *emulator {
	s, err := server.New(server.TempStorage)
	if err != nil {
		t.Fatalf("creating bigquery emulator: %v", err)
	}

	return &emulator{
		t:        t,
		emulator: s,
	}
}
