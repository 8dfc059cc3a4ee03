// Package processing runs several resume ingestions at once on a fixed pool of
// goroutines. Each ingestion is still sequential on its own.
package processing

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dharsanguruparan/RecruitDesk/internal/ingest"
)

// Ingester is the pipeline each worker drives.
type Ingester interface {
	Ingest(ctx context.Context, file ingest.Upload) (*ingest.Result, error)
}

// Job is one file to ingest. Index is its position in the batch.
type Job struct {
	Index  int
	Upload ingest.Upload
}

// Outcome reports what happened to one file.
type Outcome struct {
	FileName string
	Result   *ingest.Result
	Err      error
}

// Processor consumes Jobs with a bounded number of workers.
type Processor struct {
	ingester Ingester
	workers  int
}

// New builds a Processor. workers below one means one.
func New(ingester Ingester, workers int) *Processor {
	if workers <= 0 {
		workers = 1
	}
	return &Processor{ingester: ingester, workers: workers}
}

// Run ingests every upload and returns outcomes in input order. Files not
// started before ctx is cancelled report the context error.
func (p *Processor) Run(ctx context.Context, uploads []ingest.Upload) []Outcome {
	outcomes := make([]Outcome, len(uploads))
	for i, u := range uploads {
		outcomes[i] = Outcome{FileName: u.FileName, Err: context.Canceled}
	}
	queue := make(chan Job, p.workers*4)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				outcomes[job.Index] = p.process(ctx, job)
			}
		}()
	}

feed:
	for i, u := range uploads {
		select {
		case <-ctx.Done():
			for j := i; j < len(uploads); j++ {
				outcomes[j].Err = ctx.Err()
			}
			break feed
		case queue <- Job{Index: i, Upload: u}:
		}
	}
	close(queue)
	wg.Wait()
	return outcomes
}

func (p *Processor) process(ctx context.Context, job Job) Outcome {
	out := Outcome{FileName: job.Upload.FileName}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}
	out.Result, out.Err = p.ingester.Ingest(ctx, job.Upload)
	if out.Err != nil {
		slog.Warn("batch ingestion failed", "file", job.Upload.FileName, "error", out.Err)
	}
	return out
}
