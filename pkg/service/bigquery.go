package service

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BigQueryAPI wraps the BigQuery operations needed to validate and apply
// agent-generated DDL.
type BigQueryAPI interface {
	DryRun(ctx context.Context, projectID, query string) (*DryRunResult, error)
	ExecuteQuery(ctx context.Context, projectID, query string) (*JobStatistics, error)
	CreateDatasetIfNotExists(ctx context.Context, projectID, datasetID, region string) error
}

type BigQueryService interface {
	ValidateDDL(ctx context.Context, req ValidateDDLRequest) (*DryRunResult, error)
	DeployDDL(ctx context.Context, req DeployDDLRequest) (*JobStatistics, error)
}

type ValidateDDLRequest struct {
	DDL       string `json:"ddl"`
	ProjectID string `json:"project_id"`
}

func (r ValidateDDLRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DDL, validation.Required),
	)
}

type DeployDDLRequest struct {
	DDL       string `json:"ddl"`
	ProjectID string `json:"project_id"`
	DatasetID string `json:"dataset_id"`
}

func (r DeployDDLRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DDL, validation.Required),
		validation.Field(&r.DatasetID, validation.Required),
	)
}

type DryRunResult struct {
	Valid               bool   `json:"valid"`
	TotalBytesProcessed int64  `json:"total_bytes_processed"`
	Message             string `json:"message,omitempty"`
}

type JobStatistics struct {
	CreationTime        time.Time `json:"creation_time"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	TotalBytesProcessed int64     `json:"total_bytes_processed"`
}
