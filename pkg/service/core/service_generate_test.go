package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-etl/etl-backend/pkg/errs"
	"github.com/agentic-etl/etl-backend/pkg/service"
)

func validGenerateRequest() service.GenerateRequest {
	return service.GenerateRequest{
		JSONFiles:        []string{"orders.json"},
		TableName:        "orders",
		DatasetID:        "sales",
		UserRequirements: "partition by date",
	}
}

func newTestGenerateService(agent *fakeAgent, bq service.BigQueryService) *generateService {
	return NewGenerateService(
		func() service.AgentAPI { return agent },
		bq,
		"test-project",
		time.Minute,
	)
}

func TestGenerateDDL(t *testing.T) {
	agent := &fakeAgent{
		frames: [][]*service.AgentMessage{
			{
				textFrame("thinking about schemas"),
				resultFrame("```sql\nCREATE TABLE sales.orders (id INT64);\n```", false),
			},
		},
	}

	bqAPI := &fakeBigQueryAPI{
		dryRunResult: &service.DryRunResult{Valid: true, TotalBytesProcessed: 0},
	}

	svc := newTestGenerateService(agent, NewBigQueryService(bqAPI, "test-project", "EU"))

	result, err := svc.GenerateDDL(context.Background(), validGenerateRequest())
	require.NoError(t, err)

	assert.Equal(t, "CREATE TABLE sales.orders (id INT64);", result.DDL)
	require.NotNil(t, result.Validation)
	assert.True(t, result.Validation.Valid)

	// the one-shot conversation is closed after the request
	assert.True(t, agent.closed)

	require.Len(t, agent.queries, 1)
	assert.Contains(t, agent.queries[0], "orders.json")
	assert.Contains(t, agent.queries[0], "Target table name: orders")
	assert.Contains(t, agent.queries[0], "partition by date")
}

func TestGenerateDDLWithoutResultFrame(t *testing.T) {
	agent := &fakeAgent{
		frames: [][]*service.AgentMessage{
			{
				textFrame("CREATE TABLE sales.orders (id INT64);"),
				resultFrame("", false),
			},
		},
	}

	svc := newTestGenerateService(agent, nil)

	result, err := svc.GenerateDDL(context.Background(), validGenerateRequest())
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE sales.orders (id INT64);", result.DDL)
	assert.Nil(t, result.Validation)
}

func TestGenerateDDLInvalidRequest(t *testing.T) {
	svc := newTestGenerateService(&fakeAgent{}, nil)

	_, err := svc.GenerateDDL(context.Background(), service.GenerateRequest{})
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.InvalidRequest, err))
}

func TestGenerateDDLAgentErrorResult(t *testing.T) {
	agent := &fakeAgent{
		frames: [][]*service.AgentMessage{
			{resultFrame("budget exceeded", true)},
		},
	}

	svc := newTestGenerateService(agent, nil)

	_, err := svc.GenerateDDL(context.Background(), validGenerateRequest())
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.Unavailable, err))
}

func TestGenerateDDLAgentErrorFrame(t *testing.T) {
	agent := &fakeAgent{
		frames: [][]*service.AgentMessage{
			{service.ErrorMessage("process exited")},
		},
	}

	svc := newTestGenerateService(agent, nil)

	_, err := svc.GenerateDDL(context.Background(), validGenerateRequest())
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.Unavailable, err))
}

func TestGenerateDDLNoOutput(t *testing.T) {
	agent := &fakeAgent{
		frames: [][]*service.AgentMessage{{}},
	}

	svc := newTestGenerateService(agent, nil)

	_, err := svc.GenerateDDL(context.Background(), validGenerateRequest())
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.Unavailable, err))
}

func TestGenerateETL(t *testing.T) {
	agent := &fakeAgent{
		frames: [][]*service.AgentMessage{
			{resultFrame("```python\nimport pandas as pd\n```", false)},
		},
	}

	svc := newTestGenerateService(agent, nil)

	result, err := svc.GenerateETL(context.Background(), validGenerateRequest())
	require.NoError(t, err)
	assert.Equal(t, "import pandas as pd", result.ETLCode)

	require.Len(t, agent.queries, 1)
	assert.Contains(t, agent.queries[0], "Target table: sales.orders")
	assert.Contains(t, agent.queries[0], "google.cloud.bigquery")
}

func TestStripCodeFence(t *testing.T) {
	testCases := []struct {
		name   string
		in     string
		expect string
	}{
		{
			name:   "no fence",
			in:     "SELECT 1",
			expect: "SELECT 1",
		},
		{
			name:   "fence with language tag",
			in:     "```sql\nSELECT 1\n```",
			expect: "SELECT 1",
		},
		{
			name:   "fence without language tag",
			in:     "```\nSELECT 1\n```",
			expect: "SELECT 1",
		},
		{
			name:   "surrounding whitespace",
			in:     "\n\n```sql\nSELECT 1\n```\n",
			expect: "SELECT 1",
		},
		{
			name:   "fence only at the start is left alone",
			in:     "```sql\nSELECT 1",
			expect: "```sql\nSELECT 1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, stripCodeFence(tc.in))
		})
	}
}
