package bench

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"percipio.com/xferhist/lib/logger"
	"percipio.com/xferhist/lib/record"
	"percipio.com/xferhist/lib/util"
)

type Runner struct {
	client      *http.Client
	workerCount int
	limiter     *rate.Limiter
}

// NewRunner creates a runner with workers concurrent tasks. rps limits the
// transfer rate across all workers; rps <= 0 means unlimited.
func NewRunner(workers int, rps float64) *Runner {
	if workers < 1 {
		workers = 1
	}

	transport := &http.Transport{
		MaxIdleConns:        workers,
		MaxIdleConnsPerHost: workers,
	}

	r := &Runner{
		client: &http.Client{
			Transport: transport,
			Timeout:   time.Second * 30,
		},
		workerCount: workers,
	}
	if rps > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return r
}

// Run measures every task of the plan and returns one record per task,
// ordered by test and repetition. The first failing transfer aborts the run.
func (r *Runner) Run(ctx context.Context, plan *Plan) (record.Table, error) {
	tasks := plan.Tasks()
	logger.Info("Starting benchmark against %s with %d workers, %d tasks", plan.Target, r.workerCount, len(tasks))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	taskChan := make(chan Task)
	resultChan := make(chan Result)
	var wg sync.WaitGroup

	for i := 0; i < r.workerCount; i++ {
		wg.Add(1)
		go r.worker(ctx, i, plan.Target, taskChan, resultChan, &wg)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	go func() {
		defer close(taskChan)
		for _, task := range tasks {
			select {
			case taskChan <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	var completed atomic.Int64
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n := completed.Load()
				logger.Info("Progress: %.1f%% (%d/%d tasks completed)",
					float64(n)/float64(len(tasks))*100, n, len(tasks))
			}
		}
	}()

	var results []Result
	var firstErr error
	for result := range resultChan {
		completed.Add(1)
		if result.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s nr %d: %w", result.Task.Name, result.Task.Nr, result.Error)
				cancel()
			}
			continue
		}
		results = append(results, result)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil && len(results) < len(tasks) {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Task.Index != results[j].Task.Index {
			return results[i].Task.Index < results[j].Task.Index
		}
		return results[i].Task.Nr < results[j].Task.Nr
	})

	table := make(record.Table, 0, len(results))
	for _, res := range results {
		table = append(table, record.Record{
			Name:             res.Task.Name,
			Nr:               res.Task.Nr,
			Transfers:        res.Task.Transfers,
			BytesPerTransfer: res.Task.BytesPerTransfer,
			TransferDuration: res.Duration.Seconds(),
		})
	}

	logger.Info("Benchmark completed. Total tasks processed: %d", len(table))
	return table, nil
}

func (r *Runner) worker(ctx context.Context, id int, target string, tasks <-chan Task, results chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()
	logger.Debug("Worker %d started", id)

	for task := range tasks {
		result := r.executeTask(ctx, target, task)
		result.WorkerID = id

		if result.Error == nil && result.Duration > 0 {
			moved := float64(task.Transfers * task.BytesPerTransfer)
			logger.Info("Worker %d: %s nr %d - %d x %dB in %v (%s/s)",
				id, task.Name, task.Nr, task.Transfers, task.BytesPerTransfer, result.Duration,
				util.FormatBytes(moved/result.Duration.Seconds()))
		}

		select {
		case results <- result:
		case <-ctx.Done():
			return
		}
	}

	logger.Debug("Worker %d finished", id)
}

// executeTask sums the time spent in the transfers themselves. Limiter waits
// happen between the timed sections.
func (r *Runner) executeTask(ctx context.Context, target string, task Task) Result {
	payload := make([]byte, task.BytesPerTransfer)
	start := time.Now()
	var elapsed time.Duration

	for i := 0; i < task.Transfers; i++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return Result{Task: task, Error: err, Duration: elapsed, StartTime: start, EndTime: time.Now()}
			}
		}

		t0 := time.Now()
		err := r.transfer(ctx, target, payload)
		elapsed += time.Since(t0)
		if err != nil {
			return Result{Task: task, Error: err, Duration: elapsed, StartTime: start, EndTime: time.Now()}
		}
	}

	return Result{Task: task, Duration: elapsed, StartTime: start, EndTime: time.Now()}
}

func (r *Runner) transfer(ctx context.Context, target string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
