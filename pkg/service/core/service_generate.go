package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agentic-etl/etl-backend/pkg/errs"
	"github.com/agentic-etl/etl-backend/pkg/service"
)

var _ service.GenerateService = &generateService{}

// AgentFactory builds a fresh one-shot agent conversation. Generation
// requests run outside the chat conversation so they don't pollute its
// history.
type AgentFactory func() service.AgentAPI

type generateService struct {
	newAgent        AgentFactory
	bigQueryService service.BigQueryService
	defaultProject  string
	queryTimeout    time.Duration
}

func (s *generateService) GenerateDDL(ctx context.Context, req service.GenerateRequest) (*service.DDLResult, error) {
	const op errs.Op = "generateService.GenerateDDL"

	err := req.Validate()
	if err != nil {
		return nil, errs.E(errs.InvalidRequest, op, err)
	}

	prompt := ddlPrompt(req)

	text, err := s.runOneShot(ctx, prompt)
	if err != nil {
		return nil, errs.E(op, err)
	}

	ddl := stripCodeFence(text)

	result := &service.DDLResult{
		DDL: ddl,
	}

	// a dry run catches syntactically broken agent output before the user
	// tries to deploy it
	if s.bigQueryService != nil {
		validation, err := s.bigQueryService.ValidateDDL(ctx, service.ValidateDDLRequest{
			DDL:       ddl,
			ProjectID: s.defaultProject,
		})
		if err == nil {
			result.Validation = validation
		}
	}

	return result, nil
}

func (s *generateService) GenerateETL(ctx context.Context, req service.GenerateRequest) (*service.ETLResult, error) {
	const op errs.Op = "generateService.GenerateETL"

	err := req.Validate()
	if err != nil {
		return nil, errs.E(errs.InvalidRequest, op, err)
	}

	prompt := etlPrompt(req)

	text, err := s.runOneShot(ctx, prompt)
	if err != nil {
		return nil, errs.E(op, err)
	}

	return &service.ETLResult{
		ETLCode: stripCodeFence(text),
	}, nil
}

// runOneShot runs a single query against a dedicated agent conversation
// and concatenates the response text.
func (s *generateService) runOneShot(ctx context.Context, prompt string) (string, error) {
	const op errs.Op = "generateService.runOneShot"

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	client := s.newAgent()
	defer client.Close()

	frames, err := client.Query(ctx, prompt)
	if err != nil {
		return "", errs.E(errs.Unavailable, op, err)
	}

	var parts []string
	var finalResult string

	for msg := range frames {
		switch msg.Type {
		case service.MessageTypeAssistant:
			if text := msg.Text(); text != "" {
				parts = append(parts, text)
			}
		case service.MessageTypeResult:
			if msg.IsError {
				return "", errs.E(errs.Unavailable, op, fmt.Errorf("agent returned error result: %s", msg.Result))
			}
			finalResult = msg.Result
		case service.MessageTypeError:
			return "", errs.E(errs.Unavailable, op, errs.Str(msg.ErrorContent))
		}
	}

	// the result frame carries the final consolidated text when present
	if finalResult != "" {
		return finalResult, nil
	}

	if len(parts) == 0 {
		return "", errs.E(errs.Unavailable, op, errs.Str("agent produced no output"))
	}

	return strings.Join(parts, "\n"), nil
}

func ddlPrompt(req service.GenerateRequest) string {
	return fmt.Sprintf(`Analyze these JSON data structures and generate BigQuery DDL:

JSON files: %s
Target table name: %s
Dataset ID: %s
User requirements: %s

Generate a CREATE TABLE statement that:
1. Handles all data types properly
2. Considers nested structures (flatten vs JSON type)
3. Includes appropriate constraints
4. Optimizes for query performance

Return only the DDL statement.`,
		strings.Join(req.JSONFiles, ", "), req.TableName, req.DatasetID, req.UserRequirements)
}

func etlPrompt(req service.GenerateRequest) string {
	return fmt.Sprintf(`Generate Python ETL code for transforming JSON data to BigQuery:

JSON files: %s
Target table: %s.%s
Requirements: %s

Generate complete Python code that:
1. Reads JSON files from Cloud Storage or local filesystem
2. Transforms and validates data using pandas
3. Loads data to BigQuery using google-cloud-bigquery
4. Includes proper error handling and logging
5. Can be deployed as a Cloud Run job

Use these imports:
- pandas as pd
- google.cloud.bigquery as bigquery
- json, logging, os`,
		strings.Join(req.JSONFiles, ", "), req.DatasetID, req.TableName, req.UserRequirements)
}

// stripCodeFence unwraps a response that is a single fenced code block,
// with or without a language tag.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)

	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return trimmed
	}

	body := strings.TrimSuffix(strings.TrimPrefix(trimmed, "```"), "```")

	// drop the language tag line
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(body[:idx])
		if firstLine != "" && !strings.ContainsAny(firstLine, " \t") {
			body = body[idx+1:]
		}
	}

	return strings.TrimSpace(body)
}

func NewGenerateService(
	newAgent AgentFactory,
	bigQueryService service.BigQueryService,
	defaultProject string,
	queryTimeout time.Duration,
) *generateService {
	return &generateService{
		newAgent:        newAgent,
		bigQueryService: bigQueryService,
		defaultProject:  defaultProject,
		queryTimeout:    queryTimeout,
	}
}
