package service

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type GenerateService interface {
	GenerateDDL(ctx context.Context, req GenerateRequest) (*DDLResult, error)
	GenerateETL(ctx context.Context, req GenerateRequest) (*ETLResult, error)
}

// GenerateRequest is the shared body of the generate-ddl and generate-etl
// endpoints: workspace-relative JSON file paths plus the target table and
// free-text requirements.
type GenerateRequest struct {
	JSONFiles        []string `json:"json_files"`
	TableName        string   `json:"table_name"`
	DatasetID        string   `json:"dataset_id"`
	UserRequirements string   `json:"user_requirements"`
}

func (r GenerateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.JSONFiles, validation.Required),
		validation.Field(&r.TableName, validation.Required),
		validation.Field(&r.DatasetID, validation.Required),
	)
}

type DDLResult struct {
	DDL string `json:"ddl"`
	// Validation is filled in when a BigQuery dry run was performed.
	Validation *DryRunResult `json:"validation,omitempty"`
}

type ETLResult struct {
	ETLCode string `json:"etl_code"`
}
