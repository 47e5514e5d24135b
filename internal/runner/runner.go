package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"callscribe/internal/gemini"
	"callscribe/pkg/cache"
	"callscribe/pkg/logger"
	"callscribe/pkg/model"
	"callscribe/pkg/resilience"

	"go.uber.org/zap"
)

// State is the run lifecycle: NotStarted -> Running -> Completed. A run
// that fails its preconditions stays in NotStarted.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateCompleted  State = "completed"
)

// ErrRunInProgress is returned when Run is called on an already running
// runner.
var ErrRunInProgress = errors.New("run already in progress")

// ErrEmptyRowSet is the precondition failure for a batch with no rows.
var ErrEmptyRowSet = errors.New("no rows to process")

// Fetcher resolves a recording reference to audio bytes and a media type.
type Fetcher interface {
	Fetch(ctx context.Context, reference string) (*model.MediaPayload, error)
}

// Transcriber issues one remote transcription call and returns the raw
// response body.
type Transcriber interface {
	Transcribe(ctx context.Context, req *gemini.GenerateRequest) ([]byte, error)
}

// ProgressFunc receives one event after every processed row.
type ProgressFunc func(completed, total int, label string)

// ResultFunc receives each row with its final outcome, in input order.
type ResultFunc func(row model.Row, outcome model.Outcome)

// Runner drives the per-row transcription loop. Failures are row-scoped:
// an errored row gets an error outcome and the run moves on; only the
// preconditions (valid job, non-empty row set) abort before the loop.
type Runner struct {
	fetcher     Fetcher
	transcriber Transcriber

	// Retry applies only to transient (timeout/transport) failures.
	// Nil means a single attempt per row.
	Retry *resilience.RetryConfig

	// Cache, when set, short-circuits rows whose recording was already
	// transcribed and stores fresh successes.
	Cache cache.Cache

	// Concurrency bounds the number of in-flight rows. 1 (the default)
	// processes rows strictly in input order, one at a time.
	Concurrency int

	OnProgress ProgressFunc
	OnResult   ResultFunc

	mu    sync.Mutex
	state State
	agg   *Aggregator
}

func NewRunner(fetcher Fetcher, transcriber Transcriber) *Runner {
	return &Runner{
		fetcher:     fetcher,
		transcriber: transcriber,
		Concurrency: 1,
		state:       StateNotStarted,
	}
}

// State returns the current run state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
}

// Run processes every row and returns the batch report in input order. Each
// row's transcript field is written exactly once: the transcript on success,
// an "ERROR: ..." diagnostic on failure, the tag on an empty result. The run
// is abortable between rows through ctx; a cancelled run returns ctx.Err()
// without completing.
func (r *Runner) Run(ctx context.Context, job model.Job, rows []model.Row) (*model.BatchReport, error) {
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("job precondition failed: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyRowSet
	}

	r.mu.Lock()
	if r.state == StateRunning {
		r.mu.Unlock()
		return nil, ErrRunInProgress
	}
	r.state = StateRunning
	r.mu.Unlock()

	logger.Info("Batch run started",
		zap.Int("rows", len(rows)),
		zap.String("language", string(job.Language)),
		zap.Int("concurrency", r.concurrency()))

	outcomes, err := r.processAll(ctx, job, rows)
	if err != nil {
		r.setState(StateNotStarted)
		return nil, err
	}

	agg := NewAggregator()
	r.mu.Lock()
	r.agg = agg
	r.mu.Unlock()
	for i := range rows {
		rows[i].Transcript = outcomes[i].TranscriptCell()
		agg.Record(rows[i].DisplayLabel(), outcomes[i])
		if r.OnResult != nil {
			r.OnResult(rows[i], outcomes[i])
		}
	}

	r.setState(StateCompleted)

	report := agg.Summary()
	succeeded, empty, failed := report.Counts()
	logger.Info("Batch run completed",
		zap.Int("succeeded", succeeded),
		zap.Int("empty", empty),
		zap.Int("failed", failed))

	return report, nil
}

// FirstSuccess returns the earliest successful row of the last completed
// run, or nil when no row succeeded or no run has completed.
func (r *Runner) FirstSuccess() *model.ReportEntry {
	r.mu.Lock()
	agg := r.agg
	r.mu.Unlock()

	if agg == nil {
		return nil
	}
	return agg.FirstSuccess()
}

func (r *Runner) concurrency() int {
	if r.Concurrency < 1 {
		return 1
	}
	return r.Concurrency
}

// processAll fills one outcome per row. Sequential mode checks for
// cancellation between rows; pool mode stops handing out rows once the
// context is done.
func (r *Runner) processAll(ctx context.Context, job model.Job, rows []model.Row) ([]model.Outcome, error) {
	outcomes := make([]model.Outcome, len(rows))
	total := len(rows)

	if r.concurrency() == 1 {
		for i := range rows {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			outcomes[i] = r.processRow(ctx, job, rows[i])
			r.emitProgress(i+1, total, rows[i].DisplayLabel())
		}
		return outcomes, nil
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	var completed int
	var progressMu sync.Mutex

	for w := 0; w < r.concurrency(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				outcome := r.processRow(ctx, job, rows[i])
				outcomes[i] = outcome

				// Progress stays under the lock so (completed, total)
				// pairs reach the callback strictly monotonically.
				progressMu.Lock()
				completed++
				r.emitProgress(completed, total, rows[i].DisplayLabel())
				progressMu.Unlock()
			}
		}()
	}

	var aborted bool
	for i := range rows {
		select {
		case <-ctx.Done():
			aborted = true
		case indices <- i:
			continue
		}
		break
	}
	close(indices)
	wg.Wait()

	if aborted {
		return nil, ctx.Err()
	}
	return outcomes, nil
}

func (r *Runner) emitProgress(completed, total int, label string) {
	if r.OnProgress != nil {
		r.OnProgress(completed, total, label)
	}
}

// processRow runs fetch -> build -> call -> parse for one row and converts
// any stage failure into its outcome. Never returns an error: every path
// produces exactly one outcome.
func (r *Runner) processRow(ctx context.Context, job model.Job, row model.Row) model.Outcome {
	if cached, ok := r.cachedTranscript(ctx, row); ok {
		logger.Debug("Transcript served from cache",
			zap.Int("row", row.Index),
			zap.String("label", row.DisplayLabel()))
		return model.Success(cached)
	}

	var outcome model.Outcome
	attempt := func() error {
		payload, err := r.fetcher.Fetch(ctx, row.RecordingURL)
		if err != nil {
			outcome = model.OutcomeFromError(err)
			return err
		}

		req := gemini.BuildRequest(job, payload)

		raw, err := r.transcriber.Transcribe(ctx, req)
		if err != nil {
			outcome = model.OutcomeFromError(err)
			return err
		}

		outcome = gemini.ParseTranscript(raw)
		return nil
	}

	retryCfg := r.retryConfig()
	// Only transient failures are worth resubmitting; remote rejections and
	// empty results are deterministic for the same input.
	retryCfg.ShouldRetry = func(error) bool { return outcome.Retryable() }

	err := resilience.RetryWithExponentialBackoff(ctx, &retryCfg, attempt)
	if err != nil && outcome.Kind == "" {
		// Cancellation can preempt the first attempt; classify it too.
		outcome = model.OutcomeFromError(err)
	}
	if err != nil {
		logger.Warn("Row processing failed",
			zap.Int("row", row.Index),
			zap.String("label", row.DisplayLabel()),
			zap.String("status", outcome.Status()),
			zap.String("detail", outcome.Detail()))
	}

	if outcome.Kind == model.OutcomeSuccess {
		r.storeTranscript(ctx, row, outcome.Text)
	}

	return outcome
}

func (r *Runner) retryConfig() resilience.RetryConfig {
	if r.Retry != nil {
		return *r.Retry
	}
	return *resilience.DefaultRetryConfig()
}

func (r *Runner) cachedTranscript(ctx context.Context, row model.Row) (string, bool) {
	if r.Cache == nil {
		return "", false
	}

	var transcript string
	key := cache.TranscriptCacheKey(row.RecordingURL)
	if err := r.Cache.Get(ctx, key, &transcript); err != nil || transcript == "" {
		return "", false
	}
	return transcript, true
}

func (r *Runner) storeTranscript(ctx context.Context, row model.Row, transcript string) {
	if r.Cache == nil {
		return
	}

	key := cache.TranscriptCacheKey(row.RecordingURL)
	if err := r.Cache.Set(ctx, key, transcript); err != nil {
		logger.Warn("Failed to cache transcript",
			zap.Int("row", row.Index),
			zap.Error(err))
	}
}
