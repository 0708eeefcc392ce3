package core

import (
	"context"

	"github.com/agentic-etl/etl-backend/pkg/errs"
	"github.com/agentic-etl/etl-backend/pkg/service"
)

var _ service.BigQueryService = &bigQueryService{}

type bigQueryService struct {
	bigQueryAPI    service.BigQueryAPI
	defaultProject string
	region         string
}

func (s *bigQueryService) ValidateDDL(ctx context.Context, req service.ValidateDDLRequest) (*service.DryRunResult, error) {
	const op errs.Op = "bigQueryService.ValidateDDL"

	err := req.Validate()
	if err != nil {
		return nil, errs.E(errs.InvalidRequest, op, err)
	}

	result, err := s.bigQueryAPI.DryRun(ctx, s.project(req.ProjectID), req.DDL)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return result, nil
}

// DeployDDL validates the statement with a dry run, ensures the target
// dataset exists, then executes it.
func (s *bigQueryService) DeployDDL(ctx context.Context, req service.DeployDDLRequest) (*service.JobStatistics, error) {
	const op errs.Op = "bigQueryService.DeployDDL"

	err := req.Validate()
	if err != nil {
		return nil, errs.E(errs.InvalidRequest, op, err)
	}

	projectID := s.project(req.ProjectID)

	dryRun, err := s.bigQueryAPI.DryRun(ctx, projectID, req.DDL)
	if err != nil {
		return nil, errs.E(op, err)
	}
	if !dryRun.Valid {
		return nil, errs.E(errs.InvalidRequest, op, errs.Parameter("ddl"), errs.Str(dryRun.Message))
	}

	err = s.bigQueryAPI.CreateDatasetIfNotExists(ctx, projectID, req.DatasetID, s.region)
	if err != nil {
		return nil, errs.E(op, err)
	}

	stats, err := s.bigQueryAPI.ExecuteQuery(ctx, projectID, req.DDL)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return stats, nil
}

func (s *bigQueryService) project(requested string) string {
	if requested != "" {
		return requested
	}

	return s.defaultProject
}

func NewBigQueryService(bigQueryAPI service.BigQueryAPI, defaultProject, region string) *bigQueryService {
	return &bigQueryService{
		bigQueryAPI:    bigQueryAPI,
		defaultProject: defaultProject,
		region:         region,
	}
}
