// internal/workers/realestate/aggregate-listings/handler_test.go
package aggregatelistings

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/Dr-Musa/najah-realestate/internal/common/config"
	apperrors "github.com/Dr-Musa/najah-realestate/internal/common/errors"
	"github.com/Dr-Musa/najah-realestate/internal/common/logger"
	"github.com/Dr-Musa/najah-realestate/internal/common/metrics"
	"github.com/Dr-Musa/najah-realestate/internal/common/validation"
	"github.com/Dr-Musa/najah-realestate/internal/listing"
	"github.com/Dr-Musa/najah-realestate/internal/models"
	"github.com/Dr-Musa/najah-realestate/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

type recordingJournal struct {
	results []listing.Result
	err     error
}

func (j *recordingJournal) Record(_ context.Context, res listing.Result) error {
	j.results = append(j.results, res)
	return j.err
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, MaxJobsActive: 1, MaxListings: 50}
}

func createValidator(t *testing.T) *validation.Validator {
	reg, err := registry.LoadRegistry("../../../../configs/activity-registry.json")
	require.NoError(t, err)
	v, err := validation.ForTaskType(reg, TaskType)
	require.NoError(t, err)
	return v
}

func createHandler(t *testing.T, frags []models.RawFragment, providerErr error, journal RunRecorder) (*Handler, *[]listing.Prompt) {
	var prompts []listing.Prompt
	searcher := listing.SearcherFunc(func(_ context.Context, p listing.Prompt) ([]models.RawFragment, error) {
		prompts = append(prompts, p)
		return frags, providerErr
	})
	pipeline := listing.NewPipeline(searcher, listing.NewExtractor(listing.FixedRoomGuesser{Villa: 5, Other: 2}), logger.NewTestLogger(t))
	return NewHandler(createTestConfig(), pipeline, createValidator(t), journal, nil, logger.NewTestLogger(t)), &prompts
}

func villaFragments(n int) []models.RawFragment {
	out := make([]models.RawFragment, n)
	for i := range out {
		out[i] = models.RawFragment{
			Title:   "فيلا للبيع في الرياض",
			URI:     fmt.Sprintf("https://sa.aqar.fm/villa-%d", i),
			Snippet: "فيلا 5 غرف بسعر 2,500,000 ريال",
		}
	}
	return out
}

// fakeGateway records job commands; every other gateway call panics.
type fakeGateway struct {
	pb.GatewayClient
	completeErr error
	completed   int
	failed      int
	thrown      int
}

func (g *fakeGateway) CompleteJob(context.Context, *pb.CompleteJobRequest, ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.completed++
	return &pb.CompleteJobResponse{}, g.completeErr
}

func (g *fakeGateway) FailJob(context.Context, *pb.FailJobRequest, ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.failed++
	return &pb.FailJobResponse{}, nil
}

func (g *fakeGateway) ThrowError(context.Context, *pb.ThrowErrorRequest, ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.thrown++
	return &pb.ThrowErrorResponse{}, nil
}

type fakeJobClient struct{ gateway *fakeGateway }

func noRetry(context.Context, error) bool { return false }

func (c fakeJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c fakeJobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c fakeJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

func newJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Variables: variables, Retries: 3}}
}

func failedCount(t *testing.T, code apperrors.ErrorCode) float64 {
	var m dto.Metric
	require.NoError(t, metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Write(&m))
	return m.GetCounter().GetValue()
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Query(t *testing.T) {
	journal := &recordingJournal{}
	h, prompts := createHandler(t, villaFragments(3), nil, journal)

	output, err := h.Execute(context.Background(), &Input{Query: "فيلا للبيع في الرياض"})
	require.NoError(t, err)

	assert.NotEmpty(t, output.RunID)
	assert.Equal(t, "general", output.Mode)
	assert.Equal(t, 3, output.Count)
	assert.Len(t, output.Listings, 3)
	require.Len(t, *prompts, 1)
	assert.Equal(t, "فيلا للبيع في الرياض", (*prompts)[0].Query)

	require.Len(t, journal.results, 1)
	assert.Equal(t, output.RunID, journal.results[0].RunID)
}

func TestHandler_Execute_Phone(t *testing.T) {
	h, prompts := createHandler(t, []models.RawFragment{{
		Title:   "أرض للبيع",
		URI:     "https://haraj.com.sa/11223344",
		Snippet: "للتواصل 0512345678",
	}}, nil, nil)

	output, err := h.Execute(context.Background(), &Input{Phone: "0512345678"})
	require.NoError(t, err)

	assert.Equal(t, "phone", output.Mode)
	require.Len(t, output.Listings, 1)
	assert.Equal(t, 95, output.Listings[0].TrustScore)
	assert.Equal(t, "0512345678", (*prompts)[0].Mode.TargetPhone)
}

func TestHandler_Execute_Filters(t *testing.T) {
	h, prompts := createHandler(t, villaFragments(1), nil, nil)

	_, err := h.Execute(context.Background(), &Input{Filters: &models.SearchFilters{
		Operation: "للبيع",
		Category:  "شقة",
		Rooms:     "3",
		PriceMin:  "500000",
		City:      "جدة",
	}})
	require.NoError(t, err)
	assert.Equal(t, "للبيع شقة 3 غرف سعر 500000 الى مفتوح جدة", (*prompts)[0].Query)
}

func TestHandler_Execute_Limits(t *testing.T) {
	h, _ := createHandler(t, villaFragments(60), nil, nil)

	output, err := h.Execute(context.Background(), &Input{Query: "فيلا"})
	require.NoError(t, err)
	assert.Equal(t, 50, output.Count)

	output, err = h.Execute(context.Background(), &Input{Query: "فيلا", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, output.Count)
	assert.Len(t, output.Listings, 5)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_ProviderFailure(t *testing.T) {
	journal := &recordingJournal{}
	h, _ := createHandler(t, nil, errors.New("PROVIDER_TIMEOUT"), journal)

	output, err := h.Execute(context.Background(), &Input{Query: "شقة في جدة"})
	require.NoError(t, err)
	assert.Equal(t, 0, output.Count)
	assert.NotNil(t, output.Listings)

	require.Len(t, journal.results, 1)
	assert.Error(t, journal.results[0].ProviderErr)
}

func TestHandler_Execute_JournalFailureIgnored(t *testing.T) {
	h, _ := createHandler(t, villaFragments(1), nil, &recordingJournal{err: errors.New("db down")})

	output, err := h.Execute(context.Background(), &Input{Query: "فيلا"})
	require.NoError(t, err)
	assert.Equal(t, 1, output.Count)
}

func TestHandler_Execute_EmptyInput(t *testing.T) {
	h, prompts := createHandler(t, villaFragments(1), nil, nil)

	_, err := h.Execute(context.Background(), &Input{Filters: &models.SearchFilters{}})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidSearchInput, apperrors.CodeOf(err))
	assert.Empty(t, *prompts)
}

// ==========================
// Job Lifecycle Tests
// ==========================

func TestHandler_Handle_Completes(t *testing.T) {
	h, _ := createHandler(t, villaFragments(2), nil, nil)
	gw := &fakeGateway{}

	require.NoError(t, h.Handle(fakeJobClient{gw}, newJob(`{"query":"فيلا للبيع"}`)))
	assert.Equal(t, 1, gw.completed)
	assert.Zero(t, gw.failed+gw.thrown)
}

func TestHandler_Handle_CompleteSendFailureCountedOnce(t *testing.T) {
	h, _ := createHandler(t, villaFragments(1), nil, nil)
	gw := &fakeGateway{completeErr: errors.New("gateway unavailable")}
	before := failedCount(t, apperrors.ErrCodeInternal)

	err := h.Handle(fakeJobClient{gw}, newJob(`{"query":"فيلا"}`))
	require.Error(t, err)

	assert.Equal(t, 1, gw.completed)
	assert.Equal(t, 1, gw.failed+gw.thrown)
	assert.Equal(t, before+1, failedCount(t, apperrors.ErrCodeInternal))
}

func TestHandler_Handle_InvalidInputThrows(t *testing.T) {
	h, prompts := createHandler(t, villaFragments(1), nil, nil)
	gw := &fakeGateway{}
	before := failedCount(t, apperrors.ErrCodeInvalidSearchInput)

	err := h.Handle(fakeJobClient{gw}, newJob(`{"phone":"abc"}`))
	require.Error(t, err)

	assert.Zero(t, gw.completed)
	assert.Equal(t, 1, gw.thrown)
	assert.Empty(t, *prompts)
	assert.Equal(t, before+1, failedCount(t, apperrors.ErrCodeInvalidSearchInput))
}

func TestHandler_ParseInput(t *testing.T) {
	h, _ := createHandler(t, nil, nil, nil)

	tests := []struct {
		name      string
		variables string
		wantErr   bool
		check     func(t *testing.T, in *Input)
	}{
		{
			name:      "query with unrelated process variables",
			variables: `{"query":"فيلا للبيع","userId":"u-1","sessionId":"s-9"}`,
			check: func(t *testing.T, in *Input) {
				assert.Equal(t, "فيلا للبيع", in.Query)
			},
		},
		{
			name:      "filters and limit",
			variables: `{"filters":{"city":"الرياض","rooms":"4"},"limit":10}`,
			check: func(t *testing.T, in *Input) {
				require.NotNil(t, in.Filters)
				assert.Equal(t, "الرياض", in.Filters.City)
				assert.Equal(t, 10, in.Limit)
			},
		},
		{name: "not json", variables: `not-json`, wantErr: true},
		{name: "no search input", variables: `{"userId":"u-1"}`, wantErr: true},
		{name: "bad phone", variables: `{"phone":"abc"}`, wantErr: true},
		{name: "unknown filter", variables: `{"filters":{"pool":"yes"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := h.parseInput(tt.variables)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.ErrCodeInvalidSearchInput, apperrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			tt.check(t, in)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig(config.WorkerConfig{})
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.MaxJobsActive)

	cfg = LoadConfig(config.WorkerConfig{Timeout: 30000, MaxJobsActive: 2})
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.MaxJobsActive)
}
