package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-etl/etl-backend/pkg/errs"
	"github.com/agentic-etl/etl-backend/pkg/service"
)

func TestValidateDDL(t *testing.T) {
	api := &fakeBigQueryAPI{
		dryRunResult: &service.DryRunResult{Valid: true, TotalBytesProcessed: 42},
	}
	svc := NewBigQueryService(api, "default-project", "EU")

	result, err := svc.ValidateDDL(context.Background(), service.ValidateDDLRequest{
		DDL: "CREATE TABLE sales.orders (id INT64)",
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, int64(42), result.TotalBytesProcessed)

	// falls back to the default project when the request names none
	assert.Equal(t, []string{"default-project"}, api.projects)
}

func TestValidateDDLRequiresStatement(t *testing.T) {
	svc := NewBigQueryService(&fakeBigQueryAPI{}, "default-project", "EU")

	_, err := svc.ValidateDDL(context.Background(), service.ValidateDDLRequest{})
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.InvalidRequest, err))
}

func TestDeployDDL(t *testing.T) {
	api := &fakeBigQueryAPI{
		dryRunResult: &service.DryRunResult{Valid: true},
		execStats:    &service.JobStatistics{TotalBytesProcessed: 10},
	}
	svc := NewBigQueryService(api, "default-project", "EU")

	stats, err := svc.DeployDDL(context.Background(), service.DeployDDLRequest{
		DDL:       "CREATE TABLE sales.orders (id INT64)",
		ProjectID: "other-project",
		DatasetID: "sales",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalBytesProcessed)

	// dry run first, dataset ensured, then executed
	assert.Equal(t, []string{"CREATE TABLE sales.orders (id INT64)"}, api.dryRuns)
	assert.Equal(t, []string{"sales"}, api.datasets)
	assert.Equal(t, []string{"CREATE TABLE sales.orders (id INT64)"}, api.executed)
	assert.Equal(t, []string{"other-project"}, api.projects)
}

func TestDeployDDLStopsOnInvalidStatement(t *testing.T) {
	api := &fakeBigQueryAPI{
		dryRunResult: &service.DryRunResult{Valid: false, Message: "syntax error at [1:1]"},
	}
	svc := NewBigQueryService(api, "default-project", "EU")

	_, err := svc.DeployDDL(context.Background(), service.DeployDDLRequest{
		DDL:       "CREATE BROKEN",
		DatasetID: "sales",
	})
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.InvalidRequest, err))
	assert.Empty(t, api.executed)
	assert.Empty(t, api.datasets)
}

func TestDeployDDLRequiresDataset(t *testing.T) {
	svc := NewBigQueryService(&fakeBigQueryAPI{}, "default-project", "EU")

	_, err := svc.DeployDDL(context.Background(), service.DeployDDLRequest{
		DDL: "CREATE TABLE sales.orders (id INT64)",
	})
	require.Error(t, err)
	assert.True(t, errs.KindIs(errs.InvalidRequest, err))
}
