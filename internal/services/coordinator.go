package services

import (
	"context"
	"fmt"
	"sync"
	"time"
	"varietyd/internal/analytics"
	"varietyd/internal/models"
	"varietyd/internal/providers"
	"varietyd/internal/structures"
	"varietyd/internal/upstream"

	"github.com/juju/clock"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

type CoordinatorInterface interface {
	GetCurrentYear(ctx context.Context) (models.YearResult, error)
	GetYear(ctx context.Context, year int) (models.YearResult, error)
	KnownYears() []int
	Stats() CoordinatorStats
	Start()
	Stop()
}

type CoordinatorStats struct {
	QueueDepth  int64
	KnownYears  []int
	HistoryYear int
	HasCurrent  bool
	CurrentAge  time.Duration
}

type commandKind int

const (
	cmdRefreshCurrent commandKind = iota
	cmdLoadHistory
	cmdWarm
)

type reply struct {
	snapshot *models.YearSnapshot
	err      error
}

// command is one unit of work for the loop. The warm-up command has no reply.
type command struct {
	kind  commandKind
	year  int
	reply chan reply
}

// Coordinator serializes every snapshot refresh through a single loop.
// Fresh data is read from the store directly and never waits on the loop.
type Coordinator struct {
	store   *models.SnapshotStore
	fetcher upstream.FetcherInterface
	engine  *analytics.Engine
	clock   clock.Clock
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	minYear         int
	bulkConcurrency int
	requestTimeout  time.Duration

	queue chan command
	depth *atomic.Int64

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewCoordinator(conf *structures.Config, fetcher upstream.FetcherInterface, clk clock.Clock, logger providers.Logger, metrics providers.MetricsProviderInterface) CoordinatorInterface {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		store:           models.NewSnapshotStore(clk, conf.Snapshot.TTL),
		fetcher:         fetcher,
		engine:          analytics.NewEngine(conf.Snapshot.MainGame, conf.Snapshot.VarietyThreshold),
		clock:           clk,
		logger:          logger,
		metrics:         metrics,
		minYear:         conf.Snapshot.MinYear,
		bulkConcurrency: conf.Snapshot.BulkConcurrency,
		requestTimeout:  conf.Snapshot.RequestTimeout,
		queue:           make(chan command, max(conf.Snapshot.QueueSize, 1)),
		depth:           atomic.NewInt64(0),
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
	}
}

// Start launches the loop and queues the warm-up: the current year first,
// then the historical years.
func (c *Coordinator) Start() {
	c.startOnce.Do(func() {
		c.wg.Add(1)
		go c.run()

		if !c.enqueue(command{kind: cmdWarm}) {
			c.logger.Warnf(providers.TypeApp, "warm-up load not queued")
		}
	})
}

// Stop rejects new work and waits for the in-flight fetch-compute cycle to
// finish. Queued commands that have not started are dropped.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.wg.Wait()
		c.cancel()
	})
}

func (c *Coordinator) stopped() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Coordinator) GetCurrentYear(ctx context.Context) (models.YearResult, error) {
	if snap, ok := c.freshCurrent(); ok {
		return c.currentResult(snap), nil
	}
	snap, err := c.submit(ctx, cmdRefreshCurrent, c.currentYear())
	if err != nil {
		return models.YearResult{}, err
	}
	return c.currentResult(snap), nil
}

func (c *Coordinator) GetYear(ctx context.Context, year int) (models.YearResult, error) {
	current := c.currentYear()
	switch {
	case year == current:
		return c.GetCurrentYear(ctx)
	case year > current, year < c.minYear:
		return models.YearResult{}, models.ErrUntrackedYear
	}

	if c.store.HistoryYear() == current {
		snap, ok := c.store.Year(year)
		if !ok {
			return models.YearResult{}, models.ErrUntrackedYear
		}
		return c.historyResult(snap), nil
	}

	snap, err := c.submit(ctx, cmdLoadHistory, year)
	if err != nil {
		return models.YearResult{}, err
	}
	return c.historyResult(snap), nil
}

func (c *Coordinator) KnownYears() []int {
	return c.store.KnownYears()
}

func (c *Coordinator) Stats() CoordinatorStats {
	age, ok := c.store.CurrentAge()
	return CoordinatorStats{
		QueueDepth:  c.depth.Load(),
		KnownYears:  c.store.KnownYears(),
		HistoryYear: c.store.HistoryYear(),
		HasCurrent:  ok,
		CurrentAge:  age,
	}
}

func (c *Coordinator) currentYear() int {
	return c.clock.Now().UTC().Year()
}

// freshCurrent ignores a snapshot that is still within its TTL but belongs
// to the year that just ended.
func (c *Coordinator) freshCurrent() (*models.YearSnapshot, bool) {
	snap, ok := c.store.Current()
	if !ok || snap.Year != c.currentYear() {
		return nil, false
	}
	return snap, true
}

// currentResult reports how long snap stays fresh. A snapshot that has
// already been replaced, or expired while the caller waited, gets 0.
func (c *Coordinator) currentResult(snap *models.YearSnapshot) models.YearResult {
	var freshFor time.Duration
	if stored, expiresAt, ok := c.store.CurrentExpiry(); ok && stored == snap {
		freshFor = max(min(expiresAt.Sub(c.clock.Now()), c.untilRollover()), 0)
	}
	return models.YearResult{Snapshot: snap, KnownYears: c.store.KnownYears(), FreshFor: freshFor}
}

// historyResult lives until the next bulk load, which the year rollover triggers.
func (c *Coordinator) historyResult(snap *models.YearSnapshot) models.YearResult {
	return models.YearResult{Snapshot: snap, KnownYears: c.store.KnownYears(), FreshFor: c.untilRollover()}
}

func (c *Coordinator) untilRollover() time.Duration {
	now := c.clock.Now().UTC()
	return models.YearStart(now.Year() + 1).Sub(now)
}

func (c *Coordinator) enqueue(cmd command) bool {
	if c.stopped() {
		return false
	}

	c.depth.Inc()
	select {
	case c.queue <- cmd:
		c.metrics.SetQueueDepth(int(c.depth.Load()))
		return true
	default:
		c.depth.Dec()
		return false
	}
}

func (c *Coordinator) submit(ctx context.Context, kind commandKind, year int) (*models.YearSnapshot, error) {
	if c.stopped() {
		return nil, models.ErrCoordinatorStopped
	}

	cmd := command{kind: kind, year: year, reply: make(chan reply, 1)}
	if !c.enqueue(cmd) {
		c.metrics.IncCoordinatorRejected("queue_full")
		return nil, models.ErrCoordinatorOverloaded
	}

	timer := c.clock.NewTimer(c.requestTimeout)
	defer timer.Stop()

	select {
	case r := <-cmd.reply:
		return r.snapshot, r.err
	case <-timer.Chan():
		c.metrics.IncCoordinatorRejected("timeout")
		return nil, models.ErrCoordinatorOverloaded
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, models.ErrCoordinatorStopped
	}
}

func (c *Coordinator) run() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case cmd := <-c.queue:
			c.metrics.SetQueueDepth(int(c.depth.Dec()))
			if c.stopped() {
				return
			}

			snap, err := c.handle(cmd)
			if err != nil {
				c.logger.Errorf(providers.TypeApp, "refresh failed: %v", err)
			}
			if cmd.reply != nil {
				cmd.reply <- reply{snapshot: snap, err: err}
			}
		}
	}
}

func (c *Coordinator) handle(cmd command) (*models.YearSnapshot, error) {
	switch cmd.kind {
	case cmdRefreshCurrent:
		return c.refreshCurrent()
	case cmdLoadHistory:
		return c.loadHistory(cmd.year)
	case cmdWarm:
		return nil, c.warm()
	default:
		return nil, fmt.Errorf("unknown command %d", cmd.kind)
	}
}

func (c *Coordinator) refreshCurrent() (*models.YearSnapshot, error) {
	// Requests queued behind the one that refreshed are answered from the store.
	if snap, ok := c.freshCurrent(); ok {
		return snap, nil
	}

	snap, err := c.computeYear(c.ctx, c.currentYear())
	c.metrics.IncSnapshotRefresh("current", err == nil)
	if err != nil {
		return nil, err
	}
	c.store.PutCurrent(snap)
	return snap, nil
}

func (c *Coordinator) loadHistory(year int) (*models.YearSnapshot, error) {
	current := c.currentYear()
	if c.store.HistoryYear() != current {
		if err := c.bulkLoad(current); err != nil {
			return nil, err
		}
	}
	snap, ok := c.store.Year(year)
	if !ok {
		return nil, models.ErrUntrackedYear
	}
	return snap, nil
}

// warm makes the current year servable before the slower historical load.
// Its failure is only logged; the historical load still runs.
func (c *Coordinator) warm() error {
	if _, err := c.refreshCurrent(); err != nil {
		c.logger.Warnf(providers.TypeApp, "warm-up of the current year failed: %v", err)
	}
	if c.stopped() {
		return nil
	}
	if current := c.currentYear(); c.store.HistoryYear() != current {
		return c.bulkLoad(current)
	}
	return nil
}

// bulkLoad recomputes every year in [minYear, current-1]. Years that fail are
// left out. If none succeeds the store is left as it was.
func (c *Coordinator) bulkLoad(current int) error {
	var (
		mu       sync.Mutex
		loaded   = make(map[int]*models.YearSnapshot)
		firstErr error
		g        errgroup.Group
	)
	if c.bulkConcurrency > 0 {
		g.SetLimit(c.bulkConcurrency)
	}

	for year := c.minYear; year < current; year++ {
		g.Go(func() error {
			if c.stopped() {
				return nil
			}
			snap, err := c.computeYear(c.ctx, year)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.Warnf(providers.TypeApp, "dropping year %d: %v", year, err)
				if firstErr == nil {
					firstErr = err
				}
				return nil
			}
			loaded[year] = snap
			return nil
		})
	}
	_ = g.Wait()
	if c.stopped() {
		return models.ErrCoordinatorStopped
	}

	if firstErr != nil && len(loaded) == 0 {
		c.metrics.IncSnapshotRefresh("history", false)
		return fmt.Errorf("load history %d-%d: %w", c.minYear, current-1, firstErr)
	}

	c.store.ReplaceHistory(current, loaded)
	c.metrics.IncSnapshotRefresh("history", true)
	c.metrics.SetKnownYears(len(loaded))
	c.logger.Infof(providers.TypeApp, "loaded %d historical years for %d", len(loaded), current)
	return nil
}

func (c *Coordinator) computeYear(ctx context.Context, year int) (*models.YearSnapshot, error) {
	var (
		games   []models.GameRecord
		streams []models.StreamInterval
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		games, err = c.fetcher.Games(gctx, year)
		return err
	})
	g.Go(func() (err error) {
		streams, err = c.fetcher.Streams(gctx, year)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c.engine.Compute(year, c.clock.Now(), games, streams)
}
