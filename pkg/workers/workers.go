package workers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1F47E/go-framereel/pkg/job"
	"github.com/1F47E/go-framereel/pkg/logger"
	"github.com/1F47E/go-framereel/pkg/storage"
)

var log = logger.Log

type Worker struct {
	ctx    context.Context
	dir    string
	format string
	saved  atomic.Uint64
	failed atomic.Uint64
}

func NewWorker(ctx context.Context, dir, format string) *Worker {
	return &Worker{
		ctx:    ctx,
		dir:    dir,
		format: format,
	}
}

func (w *Worker) WorkerSnapshot(i int, jobs <-chan job.Snapshot) {
	name := fmt.Sprintf("WorkerSnapshot #%d", i)
	log.Debugf("%s started", name)
	defer log.Debugf("%s finished", name)

	for {
		select {
		case <-w.ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			log.Debugf("%s got job %s", name, j.Print())

			now := time.Now()
			path := storage.FramePath(w.dir, j.Seq, w.format)
			if err := storage.SaveFrame(path, j.Image()); err != nil {
				w.failed.Add(1)
				log.Warnf("%s error saving frame %d: %v", name, j.Seq, err)
				continue
			}
			w.saved.Add(1)
			log.Debugf("%s saved %s. Took time: %s", name, path, time.Since(now))
		}
	}
}

// Snapshots copies every Nth frame and writes it to disk off the playback
// goroutine. Offer never blocks: with all workers busy the frame is skipped.
type Snapshots struct {
	worker  *Worker
	every   uint64
	jobs    chan job.Snapshot
	wg      sync.WaitGroup
	skipped atomic.Uint64
	once    sync.Once
}

func StartSnapshots(ctx context.Context, workers, every int, dir, format string) (*Snapshots, error) {
	if err := storage.CreateFramesDir(dir); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	s := &Snapshots{
		worker: NewWorker(ctx, dir, format),
		every:  uint64(every),
		jobs:   make(chan job.Snapshot, workers),
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		i := i
		go func() {
			defer s.wg.Done()
			s.worker.WorkerSnapshot(i+1, s.jobs)
		}()
	}
	return s, nil
}

// Wants reports whether frame seq is due for a snapshot.
func (s *Snapshots) Wants(seq uint64) bool {
	return s.every > 0 && seq%s.every == 0
}

func (s *Snapshots) Offer(j job.Snapshot) bool {
	select {
	case s.jobs <- j:
		return true
	default:
		s.skipped.Add(1)
		log.Debugf("snapshot workers busy, skipping frame %d", j.Seq)
		return false
	}
}

// Close waits for queued snapshots to be written. Offer must not be called
// afterwards.
func (s *Snapshots) Close() error {
	s.once.Do(func() {
		close(s.jobs)
		s.wg.Wait()
	})
	return nil
}

func (s *Snapshots) Saved() uint64   { return s.worker.saved.Load() }
func (s *Snapshots) Failed() uint64  { return s.worker.failed.Load() }
func (s *Snapshots) Skipped() uint64 { return s.skipped.Load() }
