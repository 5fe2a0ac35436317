package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/corpusprep/internal/corpus"
)

// ErrQueueFull is returned by Submit when no more jobs can be queued.
var ErrQueueFull = errors.New("job queue is full")

// Runner performs one corpus build.
type Runner interface {
	Build(ctx context.Context, inputRoot, outputRoot string) (*corpus.Report, error)
}

// Config sizes the orchestrator.
type Config struct {
	MaxQueueSize int
	JobTTL       time.Duration
	// AfterBuild, if set, runs after every build that produced a report,
	// for example to persist a manifest. Its error marks the job failed.
	AfterBuild func(*corpus.Report) error
}

// Orchestrator queues build jobs and runs them one at a time, so two
// builds never write the same output root concurrently.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	runner Runner
	stats  *BuildStats
	log    *slog.Logger
	cfg    Config

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewOrchestrator creates an orchestrator; call Start to begin processing.
func NewOrchestrator(cfg Config, runner Runner, log *slog.Logger) *Orchestrator {
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	return &Orchestrator{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, cfg.MaxQueueSize),
		runner: runner,
		stats:  NewBuildStats(24 * time.Hour),
		log:    log,
		cfg:    cfg,
	}
}

// Start launches the build worker and the job cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for {
			select {
			case <-workerCtx.Done():
				return
			case job, ok := <-o.queue:
				if !ok {
					return
				}
				o.run(workerCtx, job)
			}
		}
	}()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop cancels any running build and waits for the goroutines to exit.
// Jobs still waiting in the queue are marked failed so they can expire.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		if o.cancel != nil {
			o.cancel()
		}
		o.wg.Wait()
		o.drainQueue()
	})
}

func (o *Orchestrator) drainQueue() {
	for {
		select {
		case job := <-o.queue:
			job.AddError("orchestrator stopped before the build started")
			job.SetStatus(StatusFailed, "shutdown")
		default:
			return
		}
	}
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError(ErrQueueFull.Error())
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns build duration aggregates.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}

func (o *Orchestrator) run(ctx context.Context, job *Job) {
	log := o.log.With("job_id", job.ID)
	job.SetStatus(StatusBuilding, "building")
	start := time.Now()

	report, err := o.runner.Build(ctx, job.InputRoot, job.OutputRoot)
	if report != nil {
		job.SetReport(report)
	}
	if err == nil && report != nil && o.cfg.AfterBuild != nil {
		if aerr := o.cfg.AfterBuild(report); aerr != nil {
			err = fmt.Errorf("after build: %w", aerr)
		}
	}
	elapsed := time.Since(start).Milliseconds()
	o.stats.Record(elapsed, err != nil)

	if err != nil {
		log.Error("build failed", "error", err, "elapsed_ms", elapsed)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "building")
		return
	}

	for _, l := range report.Failed() {
		job.AddError(fmt.Sprintf("%s: %s", l.Code, l.Error))
	}
	log.Info("build completed",
		"languages", len(report.Languages),
		"failed_languages", len(report.Failed()),
		"skipped_files", report.SkippedFiles(),
		"elapsed_ms", elapsed,
	)
	job.SetStatus(StatusCompleted, "done")
}
