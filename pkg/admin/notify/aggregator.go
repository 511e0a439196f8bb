package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"regdesk-be/internal/pkg/logger"
	"regdesk-be/internal/pkg/metrics"
	"regdesk-be/pkg/admin/expiry"
	"regdesk-be/pkg/changefeed"
)

type Config struct {
	PollInterval time.Duration
	SurfaceDelay time.Duration
	Classifier   expiry.Classifier
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Hour
	}
	if c.SurfaceDelay <= 0 {
		c.SurfaceDelay = 2 * time.Second
	}
	if c.Classifier.SoonWindowDays <= 0 {
		c.Classifier = expiry.NewClassifier(expiry.DefaultSoonWindowDays)
	}
	return c
}

// Aggregator keeps the live expiry alert set. It re-reads the whole pending
// set on every trigger (change feed or poll), so the last completed read wins.
//
// Auto-surfacing arms a single timer when "some alert exists and nobody has
// acknowledged" becomes true. The timer is dropped when that stops holding,
// on Acknowledge, or on Close.
type Aggregator struct {
	source   Source
	feed     changefeed.Feed
	surfacer Surfacer
	cfg      Config
	metrics  *metrics.Metrics
	logger   logger.ILogger
	now      func() time.Time

	mu           sync.Mutex
	expired      []Alert
	expiringSoon []Alert
	acknowledged bool
	alerting     bool
	timer        *time.Timer
	generation   uint64
	refreshedAt  time.Time
	closed       bool

	refreshMu sync.Mutex

	baseCtx     context.Context
	cancel      context.CancelFunc
	unsubscribe changefeed.Unsubscribe
	done        chan struct{}
}

func NewAggregator(source Source, feed changefeed.Feed, surfacer Surfacer, cfg Config, metrics *metrics.Metrics, logger logger.ILogger) *Aggregator {
	return &Aggregator{
		source:   source,
		feed:     feed,
		surfacer: surfacer,
		cfg:      cfg.withDefaults(),
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		baseCtx:  context.Background(),
	}
}

// WithClock overrides the time source, for tests
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Start subscribes to the change feed, performs the first refresh and runs
// the trigger loop until ctx is cancelled or Close is called.
func (a *Aggregator) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	signals, unsubscribe, err := a.feed.Subscribe(runCtx)
	if err != nil {
		cancel()
		return err
	}

	a.mu.Lock()
	a.baseCtx = runCtx
	a.cancel = cancel
	a.unsubscribe = unsubscribe
	a.done = make(chan struct{})
	a.mu.Unlock()

	// First read failing is not fatal; the poll retries
	_ = a.Refresh(runCtx)

	go a.loop(runCtx, signals)

	a.logger.Info("ALERTS", "Expiry alert aggregator started", map[string]interface{}{
		"poll_interval": a.cfg.PollInterval.String(),
		"surface_delay": a.cfg.SurfaceDelay.String(),
	})
	return nil
}

func (a *Aggregator) loop(ctx context.Context, signals <-chan struct{}) {
	defer close(a.done)

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = a.Refresh(ctx)
		case _, ok := <-signals:
			if !ok {
				// Feed gone; keep polling
				signals = nil
				continue
			}
			_ = a.Refresh(ctx)
		}
	}
}

// Refresh re-reads pending registrations and rebuilds both buckets. On a read
// failure the previous snapshot is kept and the error is returned.
func (a *Aggregator) Refresh(ctx context.Context) error {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	regs, err := a.source.PendingRegistrations(ctx)
	if err != nil {
		a.metrics.AlertRefreshFailures.Inc()
		a.logger.Error("ALERTS", "Failed to refresh expiry alerts, keeping previous snapshot", map[string]interface{}{
			"error": err,
		})
		return err
	}

	now := a.now()
	var expired, soon []Alert
	for _, reg := range regs {
		bucket := a.cfg.Classifier.Classify(reg.Status, reg.ExpiryDate, now)
		if bucket != expiry.BucketExpired && bucket != expiry.BucketExpiringSoon {
			continue
		}
		alert := Alert{
			RegistrationId: reg.Id,
			CustomerId:     reg.CustomerId,
			FullName:       reg.FullName,
			MobileNumber:   reg.MobileNumber,
			ExpiryDate:     *reg.ExpiryDate,
			DaysRemaining:  expiry.DaysRemaining(*reg.ExpiryDate, now),
			Bucket:         bucket,
		}
		if reg.Category != nil {
			alert.CategoryName = reg.Category.NameEnglish
		}
		if bucket == expiry.BucketExpired {
			expired = append(expired, alert)
		} else {
			soon = append(soon, alert)
		}
	}
	sortByUrgency(expired)
	sortByUrgency(soon)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.expired = expired
	a.expiringSoon = soon
	a.refreshedAt = now
	a.reconcileLocked()
	a.mu.Unlock()

	a.metrics.SetExpiryCounts(len(expired), len(soon))
	return nil
}

func sortByUrgency(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].DaysRemaining != alerts[j].DaysRemaining {
			return alerts[i].DaysRemaining < alerts[j].DaysRemaining
		}
		return alerts[i].ExpiryDate.Before(alerts[j].ExpiryDate)
	})
}

// reconcileLocked arms or drops the surface timer after a state change.
// Caller holds a.mu.
func (a *Aggregator) reconcileLocked() {
	cond := !a.acknowledged && (len(a.expired) > 0 || len(a.expiringSoon) > 0)
	switch {
	case cond && !a.alerting:
		a.generation++
		gen := a.generation
		a.timer = time.AfterFunc(a.cfg.SurfaceDelay, func() { a.fire(gen) })
	case !cond && a.alerting:
		a.stopTimerLocked()
	}
	a.alerting = cond
}

func (a *Aggregator) stopTimerLocked() {
	a.generation++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Aggregator) fire(gen uint64) {
	a.mu.Lock()
	if a.closed || gen != a.generation || !a.alerting {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	alerts := a.combinedLocked()
	ctx := a.baseCtx
	expiredCount, soonCount := len(a.expired), len(a.expiringSoon)
	a.mu.Unlock()

	a.metrics.AlertsSurfaced.Inc()
	a.logger.Info("ALERTS", "Surfacing expiry alerts", map[string]interface{}{
		"expired":       expiredCount,
		"expiring_soon": soonCount,
	})
	if a.surfacer != nil {
		a.surfacer.Surface(ctx, alerts)
	}
}

func (a *Aggregator) combinedLocked() []Alert {
	combined := make([]Alert, 0, len(a.expired)+len(a.expiringSoon))
	combined = append(combined, a.expired...)
	return append(combined, a.expiringSoon...)
}

func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Summary{
		ExpiredCount:      len(a.expired),
		ExpiringSoonCount: len(a.expiringSoon),
		Alerts:            a.combinedLocked(),
		Acknowledged:      a.acknowledged,
		RefreshedAt:       a.refreshedAt,
	}
}

// Acknowledge suppresses automatic surfacing for the rest of the process
// lifetime. Counts and Open are unaffected.
func (a *Aggregator) Acknowledge() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acknowledged = true
	a.reconcileLocked()
}

// Open returns the current combined list whether or not it was acknowledged
func (a *Aggregator) Open() []Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.combinedLocked()
}

// Close stops the loop, unsubscribes and drops any pending surface timer.
func (a *Aggregator) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.stopTimerLocked()
	a.alerting = false
	cancel, unsubscribe, done := a.cancel, a.unsubscribe, a.done
	a.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
