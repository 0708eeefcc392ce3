package bq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"cloud.google.com/go/bigquery"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var _ Operations = &Client{}

type Operations interface {
	GetDataset(ctx context.Context, projectID, datasetID string) (*Dataset, error)
	CreateDataset(ctx context.Context, projectID, datasetID, region string) error
	CreateDatasetIfNotExists(ctx context.Context, projectID, datasetID, region string) error
	DryRunQuery(ctx context.Context, projectID, query string) (*DryRunStatistics, error)
	QueryAndWait(ctx context.Context, projectID, query string) (*JobStatistics, error)
}

var (
	ErrExist    = errors.New("already exists")
	ErrNotExist = errors.New("not exists")
)

type Client struct {
	endpoint             string
	enableAuthentication bool
	log                  zerolog.Logger
}

type Dataset struct {
	ProjectID string
	DatasetID string
	Location  string
	Created   time.Time
}

type JobStatistics struct {
	CreationTime        time.Time
	StartTime           time.Time
	EndTime             time.Time
	TotalBytesProcessed int64
}

// DryRunStatistics is what a dry run yields: the query was planned but not
// executed.
type DryRunStatistics struct {
	TotalBytesProcessed int64
	CacheHit            bool
}

func (c *Client) GetDataset(ctx context.Context, projectID, datasetID string) (*Dataset, error) {
	client, err := c.clientFromProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer client.Close()

	meta, err := client.Dataset(datasetID).Metadata(ctx)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return nil, ErrNotExist
		}

		return nil, fmt.Errorf("getting dataset metadata %s: %w", datasetID, err)
	}

	return &Dataset{
		ProjectID: projectID,
		DatasetID: datasetID,
		Location:  meta.Location,
		Created:   meta.CreationTime,
	}, nil
}

func (c *Client) CreateDataset(ctx context.Context, projectID, datasetID, region string) error {
	client, err := c.clientFromProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("creating dataset: %w", err)
	}
	defer client.Close()

	err = client.Dataset(datasetID).Create(ctx, &bigquery.DatasetMetadata{
		Location: region,
	})
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusConflict {
			return ErrExist
		}

		return fmt.Errorf("creating dataset %s.%s: %w", projectID, datasetID, err)
	}

	return nil
}

func (c *Client) CreateDatasetIfNotExists(ctx context.Context, projectID, datasetID, region string) error {
	err := c.CreateDataset(ctx, projectID, datasetID, region)
	if err != nil && !errors.Is(err, ErrExist) {
		return err
	}

	return nil
}

// DryRunQuery plans query without running it. BigQuery reports syntax and
// semantic errors at this stage, which makes a dry run a cheap validity
// check for agent-generated DDL.
func (c *Client) DryRunQuery(ctx context.Context, projectID, query string) (*DryRunStatistics, error) {
	client, err := c.clientFromProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("dry run: %w", err)
	}
	defer client.Close()

	q := client.Query(query)
	q.DryRun = true

	job, err := q.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("planning query: %w", err)
	}

	status := job.LastStatus()
	if err := status.Err(); err != nil {
		return nil, fmt.Errorf("query invalid: %w", err)
	}

	stats := &DryRunStatistics{}
	if status.Statistics != nil {
		stats.TotalBytesProcessed = status.Statistics.TotalBytesProcessed
		if details, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
			stats.CacheHit = details.CacheHit
		}
	}

	c.log.Info().Fields(map[string]interface{}{
		"project":         projectID,
		"bytes_processed": stats.TotalBytesProcessed,
	}).Msg("dry_run")

	return stats, nil
}

func (c *Client) QueryAndWait(ctx context.Context, projectID, query string) (*JobStatistics, error) {
	client, err := c.clientFromProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("query and wait: %w", err)
	}
	defer client.Close()

	job, err := client.Query(query).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("waiting for query: %w", err)
	}

	err = status.Err()
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var stats *JobStatistics
	if status.Statistics != nil {
		stats = &JobStatistics{
			CreationTime:        status.Statistics.CreationTime,
			StartTime:           status.Statistics.StartTime,
			EndTime:             status.Statistics.EndTime,
			TotalBytesProcessed: status.Statistics.TotalBytesProcessed,
		}
	}

	return stats, nil
}

func (c *Client) clientFromProject(ctx context.Context, project string) (*bigquery.Client, error) {
	var options []option.ClientOption

	if c.endpoint != "" {
		options = append(options, option.WithEndpoint(c.endpoint))
	}

	if !c.enableAuthentication {
		options = append(options, option.WithoutAuthentication())
	}

	client, err := bigquery.NewClient(ctx, project, options...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client for project %s: %w", project, err)
	}

	return client, nil
}

func NewClient(endpoint string, enableAuthentication bool, log zerolog.Logger) *Client {
	return &Client{
		endpoint:             endpoint,
		enableAuthentication: enableAuthentication,
		log:                  log,
	}
}
