// Package refresh runs a full count refresh over every (area, cuisine) pair.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cuisinemap/internal/counter"
	"cuisinemap/internal/events"
	"cuisinemap/internal/history"
	"cuisinemap/internal/keys"
	"cuisinemap/internal/models"
	"cuisinemap/internal/pipeline"
	"cuisinemap/internal/registry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder is the part of the history repository a run writes to.
type Recorder interface {
	CreateRun(ctx context.Context, run *history.Run) error
	FinishRun(ctx context.Context, run *history.Run) error
	RecordCount(ctx context.Context, snap history.Snapshot) error
}

type CountNotifier interface {
	CountUpdated(ctx context.Context, ev events.CountUpdated) error
}

type SnapshotUploader interface {
	PutJSON(ctx context.Context, key string, v any) error
}

// Deps are the optional collaborators of a run. Nil fields are skipped.
type Deps struct {
	History   Recorder
	Events    CountNotifier
	Snapshots SnapshotUploader
}

// Summary tallies one refresh run. Failed pairs kept their previous count.
// Missing counts store fields that could not be found to patch.
type Summary struct {
	RunID   string
	Date    string
	Total   int
	Updated int
	Failed  int
	Missing int
}

// Service runs the count refresh over every (area, cuisine) pair.
type Service struct {
	reg     *registry.Registry
	counter counter.Counter
	stores  []registry.Store
	deps    Deps
	policy  string
	workers int
	now     func() time.Time
	log     *zap.Logger
}

// NewService wires a refresh run. workers bounds the concurrent count calls.
func NewService(reg *registry.Registry, c counter.Counter, stores []registry.Store, deps Deps, policy string, workers int, log *zap.Logger) *Service {
	return &Service{
		reg:     reg,
		counter: c,
		stores:  stores,
		deps:    deps,
		policy:  policy,
		workers: workers,
		now:     time.Now,
		log:     log,
	}
}

// job carries one pair through the pipeline.
type job struct {
	runID string
	date  string
	pair  registry.Pair
	done  bool
	count models.Count
	err   error
}

// Run fetches every pair, applies the results to all stores in pair order,
// stamps and saves them. Fetch failures and store misses are warnings; a save
// failure is returned wrapped in registry.ErrPersist.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	started := s.now()
	date := started.UTC().Format("2006-01-02")
	pairs := s.reg.Pairs()
	sum := Summary{RunID: uuid.NewString(), Date: date, Total: len(pairs)}

	run := &history.Run{
		ID:        sum.RunID,
		StartedAt: started,
		Status:    history.StatusRunning,
		Policy:    s.policy,
		Pairs:     len(pairs),
	}
	recorder := s.deps.History
	if recorder != nil {
		if err := recorder.CreateRun(ctx, run); err != nil {
			s.log.Warn("history unavailable, continuing without it", zap.Error(err))
			recorder = nil
		}
	}

	s.log.Info("refresh started",
		zap.String("run", sum.RunID), zap.Int("pairs", len(pairs)),
		zap.String("policy", s.policy), zap.Int("workers", s.workers))

	jobs := make([]*job, len(pairs))
	for i, p := range pairs {
		jobs[i] = &job{runID: sum.RunID, date: date, pair: p}
	}

	p := pipeline.New(s.log, s.workers,
		pipeline.NewStage[job]("fetch", s.fetch),
		pipeline.NewStage[job]("record", s.recordStep(recorder), s.notify),
	)
	in := make(chan *job)
	go func() {
		defer close(in)
		for _, j := range jobs {
			select {
			case in <- j:
			case <-ctx.Done():
				return
			}
		}
	}()
	if err := p.Process(ctx, in); err != nil {
		s.finish(recorder, run, sum, err)
		return sum, fmt.Errorf("refresh interrupted: %w", err)
	}

	for _, j := range jobs {
		if !j.done || j.err != nil {
			sum.Failed++
			continue
		}
		sum.Updated++
		for _, st := range s.stores {
			if !st.SetCount(j.pair.Cuisine.ID, j.pair.Area.ID, j.count, date) {
				sum.Missing++
				s.log.Warn("count field not found, left unchanged",
					zap.String("store", st.Name()),
					zap.String("cuisine", j.pair.Cuisine.ID),
					zap.String("area", j.pair.Area.ID))
			}
		}
	}

	for _, st := range s.stores {
		if !st.Stamp(date) {
			s.log.Warn("global last-updated stamp not found", zap.String("store", st.Name()))
		}
		if err := st.Save(); err != nil {
			s.finish(recorder, run, sum, err)
			return sum, err
		}
		s.log.Info("store saved", zap.String("store", st.Name()))
	}

	if s.deps.Snapshots != nil {
		key := keys.RegistrySnapshot(date, sum.RunID)
		if err := s.deps.Snapshots.PutJSON(ctx, key, s.reg); err != nil {
			s.log.Warn("registry snapshot upload failed", zap.String("key", key), zap.Error(err))
		}
	}

	s.finish(recorder, run, sum, nil)
	s.log.Info("refresh finished",
		zap.String("run", sum.RunID), zap.Int("updated", sum.Updated),
		zap.Int("failed", sum.Failed), zap.Int("missing", sum.Missing), zap.Int("total", sum.Total))
	return sum, nil
}

func (s *Service) fetch(ctx context.Context, j *job) error {
	c, err := s.counter.Count(ctx, j.pair.Cuisine, j.pair.Area)
	j.done = true
	if err != nil {
		j.err = err
		if !errors.Is(err, context.Canceled) {
			s.log.Warn("count fetch failed, keeping existing value",
				zap.String("cuisine", j.pair.Cuisine.ID),
				zap.String("area", j.pair.Area.ID),
				zap.Error(err))
		}
		return nil
	}
	j.count = c
	s.log.Debug("count fetched",
		zap.String("cuisine", j.pair.Cuisine.ID), zap.String("area", j.pair.Area.ID),
		zap.Stringer("count", c))
	return nil
}

func (s *Service) recordStep(rec Recorder) pipeline.Step[job] {
	return func(ctx context.Context, j *job) error {
		if rec == nil || j.err != nil {
			return nil
		}
		err := rec.RecordCount(ctx, history.Snapshot{
			RunID:     j.runID,
			CuisineID: j.pair.Cuisine.ID,
			AreaID:    j.pair.Area.ID,
			Count:     j.count,
			FetchedAt: s.now(),
		})
		if err != nil {
			return fmt.Errorf("record %s/%s: %w", j.pair.Cuisine.ID, j.pair.Area.ID, err)
		}
		return nil
	}
}

func (s *Service) notify(ctx context.Context, j *job) error {
	if s.deps.Events == nil || j.err != nil {
		return nil
	}
	return s.deps.Events.CountUpdated(ctx, events.CountUpdated{
		RunID:     j.runID,
		CuisineID: j.pair.Cuisine.ID,
		AreaID:    j.pair.Area.ID,
		Count:     j.count,
		Date:      j.date,
	})
}

// finish closes the history run. It uses a fresh context so an interrupted
// run is still marked failed.
func (s *Service) finish(rec Recorder, run *history.Run, sum Summary, runErr error) {
	if rec == nil {
		return
	}
	finished := s.now()
	run.FinishedAt = &finished
	run.Updated, run.Failed, run.Missing = sum.Updated, sum.Failed, sum.Missing
	run.Status = history.StatusCompleted
	if runErr != nil {
		run.Status = history.StatusFailed
		run.Error = runErr.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rec.FinishRun(ctx, run); err != nil {
		s.log.Warn("failed to close history run", zap.String("run", run.ID), zap.Error(err))
	}
}
