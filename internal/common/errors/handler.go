// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns a job error into either a retried failure or a thrown
// BPMN error the process model can catch.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// jobOutcome is what the engine is told about a failed job.
type jobOutcome struct {
	throw     bool
	retries   int32
	code      string
	message   string
	variables string
	stdErr    *StandardError
}

// resolveOutcome fails with retries while the code allows it and the engine
// has retries left; otherwise the error is thrown. It never raises the
// engine's remaining retry count.
func resolveOutcome(err error, jobRetries int32) jobOutcome {
	stdErr, ok := AsStandardError(err)
	if !ok {
		stdErr = newError(ErrCodeInternal, "Unexpected error", err, false, "")
	}
	bpmnErr := ConvertToBPMNError(stdErr)

	out := jobOutcome{
		code:    bpmnErr.Code,
		message: bpmnErr.Message,
		stdErr:  stdErr,
	}
	if data, mErr := json.Marshal(bpmnErr.ToErrorVariables()); mErr == nil {
		out.variables = string(data)
	}

	if bpmnErr.Retries <= 0 || jobRetries <= 0 {
		out.throw = true
		return out
	}

	out.retries = int32(bpmnErr.Retries)
	if jobRetries < out.retries {
		out.retries = jobRetries
	}
	return out
}

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	out := resolveOutcome(err, job.Retries)

	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(out.stdErr.Code),
		"message":          out.message,
		"details":          out.stdErr.Details,
		"thrown":           out.throw,
		"retries":          out.retries,
		"errorCategory":    GetErrorCategory(out.stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})

	if out.throw {
		h.throw(ctx, client, job, out)
		return
	}
	h.fail(ctx, client, job, out)
}

func (h *ErrorHandler) fail(ctx context.Context, client worker.JobClient, job entities.Job, out jobOutcome) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(out.retries).
		ErrorMessage(out.message)

	if out.variables != "" {
		if withVars, err := cmd.VariablesFromString(out.variables); err == nil {
			_, err = withVars.Send(ctx)
			h.logSendError(job, "fail", err)
			return
		}
	}
	_, err := cmd.Send(ctx)
	h.logSendError(job, "fail", err)
}

func (h *ErrorHandler) throw(ctx context.Context, client worker.JobClient, job entities.Job, out jobOutcome) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(out.code).
		ErrorMessage(out.message)

	if out.variables != "" {
		if withVars, err := cmd.VariablesFromString(out.variables); err == nil {
			_, err = withVars.Send(ctx)
			h.logSendError(job, "throw", err)
			return
		}
	}
	_, err := cmd.Send(ctx)
	h.logSendError(job, "throw", err)
}

func (h *ErrorHandler) logSendError(job entities.Job, command string, err error) {
	if err == nil {
		return
	}
	h.logger.Error("Failed to send job command", map[string]interface{}{
		"jobKey":  job.Key,
		"command": command,
		"error":   err.Error(),
	})
}
