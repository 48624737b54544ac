package services

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Capstone-E1/soilsense_backend/internal/models"
)

// FeedPacer advances the cycling feed on a fixed interval so websocket and
// MQTT subscribers receive readings even when no dashboard is polling. It is
// just another caller of the shared cursor.
type FeedPacer struct {
	feed      *Feed
	interval  time.Duration
	ticker    *time.Ticker
	stopChan  chan struct{}
	done      chan struct{}
	mu        sync.Mutex
	isRunning bool
}

// NewFeedPacer creates a pacer; it does nothing until Start
func NewFeedPacer(feed *Feed, interval time.Duration) *FeedPacer {
	return &FeedPacer{
		feed:     feed,
		interval: interval,
	}
}

// Start begins ticking. Calling Start on a running pacer is a no-op.
func (p *FeedPacer) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		slog.Warn("feed pacer already running")
		return
	}
	if p.interval <= 0 {
		slog.Info("feed pacer disabled", "interval", p.interval)
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.stopChan = make(chan struct{})
	p.done = make(chan struct{})
	p.isRunning = true

	slog.Info("feed pacer started", "interval", p.interval)

	go p.run()
}

// Stop halts the pacer and waits for the loop to exit
func (p *FeedPacer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning {
		return
	}

	p.ticker.Stop()
	close(p.stopChan)
	<-p.done
	p.isRunning = false

	slog.Info("feed pacer stopped")
}

// IsRunning reports whether the loop is active
func (p *FeedPacer) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isRunning
}

func (p *FeedPacer) run() {
	defer close(p.done)

	for {
		select {
		case <-p.ticker.C:
			p.tick()
		case <-p.stopChan:
			return
		}
	}
}

func (p *FeedPacer) tick() {
	if _, err := p.feed.Next(); err != nil {
		if errors.Is(err, models.ErrNoData) {
			slog.Debug("feed pacer: no data loaded")
			return
		}
		slog.Error("feed pacer tick failed", "error", err)
	}
}
