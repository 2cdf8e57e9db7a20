// internal/workers/realestate/aggregate-listings/handler.go
package aggregatelistings

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "github.com/Dr-Musa/najah-realestate/internal/common/errors"
	"github.com/Dr-Musa/najah-realestate/internal/common/logger"
	"github.com/Dr-Musa/najah-realestate/internal/common/metrics"
	"github.com/Dr-Musa/najah-realestate/internal/common/observability"
	"github.com/Dr-Musa/najah-realestate/internal/common/validation"
	"github.com/Dr-Musa/najah-realestate/internal/listing"
	"github.com/Dr-Musa/najah-realestate/internal/models"
)

const (
	TaskType     = "aggregate-listings"
	transportJob = "job"
)

type Runner interface {
	Run(ctx context.Context, query string) listing.Result
}

type RunRecorder interface {
	Record(ctx context.Context, res listing.Result) error
}

type Handler struct {
	config       *Config
	runner       Runner
	validator    *validation.Validator
	journal      RunRecorder
	obs          *observability.Observability
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

// NewHandler wires the job handler. validator, journal and obs may be nil.
func NewHandler(config *Config, runner Runner, validator *validation.Validator, journal RunRecorder, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		runner:       runner,
		validator:    validator,
		journal:      journal,
		obs:          obs,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("Processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.fail(ctx, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return err
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		h.fail(ctx, client, job, err)
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, "completed")
	return nil
}

// parseInput decodes and schema-checks the job variables.
func (h *Handler) parseInput(variables string) (*Input, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &doc); err != nil {
		return nil, apperrors.NewInvalidSearchInputError("variables are not a JSON object: " + err.Error())
	}

	// Process variables carry more than this task's input.
	known := map[string]interface{}{}
	for _, k := range []string{"query", "phone", "filters", "limit"} {
		if v, ok := doc[k]; ok {
			known[k] = v
		}
	}

	if h.validator != nil {
		result, err := h.validator.Validate(known)
		if err != nil {
			return nil, apperrors.NewInvalidSearchInputError(err.Error())
		}
		if !result.Valid {
			return nil, apperrors.NewInvalidSearchInputError(strings.Join(result.GetErrorMessages(), "; "))
		}
	}

	raw, _ := json.Marshal(known)
	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, apperrors.NewInvalidSearchInputError(err.Error())
	}
	return &input, nil
}

// Execute runs the pipeline for one input. A provider failure still yields
// an empty output, never an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	query := listing.QueryFromRequest(input.request())
	if query == "" {
		return nil, apperrors.NewInvalidSearchInputError("query, phone or filters must produce a search")
	}

	res := h.runner.Run(ctx, query)
	h.obs.RecordRun(ctx, transportJob, res.Mode.String(), len(res.Listings), res.ProviderErr != nil, res.Duration)

	if res.ProviderErr != nil {
		h.logger.Warn("Provider failed, completing with empty listings", map[string]interface{}{
			"runId": res.RunID,
			"error": res.ProviderErr.Error(),
		})
	}

	if h.journal != nil {
		if err := h.journal.Record(ctx, res); err != nil {
			h.logger.Warn("Run not journaled", map[string]interface{}{"runId": res.RunID, "error": err.Error()})
		}
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.config.MaxListings
	}
	resp := models.NewSearchResponse(res.RunID, res.Mode.String(), res.Listings, limit)

	return &Output{
		RunID:    resp.RunID,
		Mode:     resp.Mode,
		Count:    resp.Count,
		Listings: resp.Listings,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}

	h.logger.Info("Job completed", map[string]interface{}{
		"jobKey": job.Key,
		"count":  output.Count,
		"mode":   output.Mode,
	})
	return nil
}

// fail is the only place a job failure is counted.
func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
	h.obs.RecordJobProcessed(ctx, "failed")
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
