package gcp

import (
	"context"

	"github.com/agentic-etl/etl-backend/pkg/bq"
	"github.com/agentic-etl/etl-backend/pkg/errs"
	"github.com/agentic-etl/etl-backend/pkg/service"
)

var _ service.BigQueryAPI = &bigQueryAPI{}

type bigQueryAPI struct {
	ops bq.Operations
}

func (a *bigQueryAPI) DryRun(ctx context.Context, projectID, query string) (*service.DryRunResult, error) {
	stats, err := a.ops.DryRunQuery(ctx, projectID, query)
	if err != nil {
		// dry-run rejection means the statement is invalid, not that the
		// backend failed
		return &service.DryRunResult{
			Valid:   false,
			Message: err.Error(),
		}, nil
	}

	return &service.DryRunResult{
		Valid:               true,
		TotalBytesProcessed: stats.TotalBytesProcessed,
	}, nil
}

func (a *bigQueryAPI) ExecuteQuery(ctx context.Context, projectID, query string) (*service.JobStatistics, error) {
	const op errs.Op = "bigQueryAPI.ExecuteQuery"

	stats, err := a.ops.QueryAndWait(ctx, projectID, query)
	if err != nil {
		return nil, errs.E(errs.IO, op, err)
	}

	result := &service.JobStatistics{}
	if stats != nil {
		result.CreationTime = stats.CreationTime
		result.StartTime = stats.StartTime
		result.EndTime = stats.EndTime
		result.TotalBytesProcessed = stats.TotalBytesProcessed
	}

	return result, nil
}

func (a *bigQueryAPI) CreateDatasetIfNotExists(ctx context.Context, projectID, datasetID, region string) error {
	const op errs.Op = "bigQueryAPI.CreateDatasetIfNotExists"

	err := a.ops.CreateDatasetIfNotExists(ctx, projectID, datasetID, region)
	if err != nil {
		return errs.E(errs.IO, op, err)
	}

	return nil
}

func NewBigQueryAPI(ops bq.Operations) *bigQueryAPI {
	return &bigQueryAPI{
		ops: ops,
	}
}
