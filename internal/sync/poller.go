// Package sync holds the client-side stores that keep todos and categories
// in step with the API, and the poller that refreshes them in the
// background.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/frezix0/TodoReact/internal/logging"
)

// SyncState represents the current state of a background refresh.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "syncing"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus holds the refresh state of a single store.
type SyncStatus struct {
	Name     string
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent when a background refresh completes.
type SyncResultMsg struct {
	Name  string
	Error error
}

// Refresher is a store the poller can refresh in the background.
type Refresher interface {
	Name() string
	BackgroundRefresh(ctx context.Context) error
}

// Default poller timings.
const (
	DefaultInterval     = 30 * time.Second
	DefaultFetchTimeout = 15 * time.Second
)

// Poller refreshes registered stores on a fixed interval, independent of
// user actions.
type Poller struct {
	interval     time.Duration
	fetchTimeout time.Duration
	log          logrus.FieldLogger

	refreshers []Refresher
	statuses   map[string]*SyncStatus
	resultCh   chan SyncResultMsg
	triggers   map[string]chan struct{}
	stopCh     chan struct{}
	mu         gosync.Mutex
	running    bool
}

// NewPoller creates a Poller. Non-positive durations fall back to the
// defaults.
func NewPoller(interval, fetchTimeout time.Duration, log logrus.FieldLogger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &Poller{
		interval:     interval,
		fetchTimeout: fetchTimeout,
		log:          logging.Component(log, "poller"),
		statuses:     make(map[string]*SyncStatus),
		resultCh:     make(chan SyncResultMsg, 16),
		triggers:     make(map[string]chan struct{}),
		stopCh:       make(chan struct{}),
	}
}

// Register adds a store to refresh. Register before Start.
func (p *Poller) Register(r Refresher) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.refreshers = append(p.refreshers, r)
	p.triggers[r.Name()] = make(chan struct{}, 1)
	p.statuses[r.Name()] = &SyncStatus{
		Name:  r.Name(),
		State: SyncIdle,
	}
}

// Start launches one polling goroutine per registered store and returns a
// command that delivers the first SyncResultMsg.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	refreshers := make([]Refresher, len(p.refreshers))
	copy(refreshers, p.refreshers)
	p.mu.Unlock()

	for _, r := range refreshers {
		go p.poll(r)
	}

	return p.waitForResult()
}

// Stop halts all polling goroutines.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// RefreshAll triggers an immediate refresh of every registered store.
func (p *Poller) RefreshAll() tea.Cmd {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, ch := range p.triggers {
		select {
		case ch <- struct{}{}:
		default:
			// A refresh is already pending
		}
	}

	return nil
}

// RefreshStore triggers an immediate refresh of one store by name.
func (p *Poller) RefreshStore(name string) tea.Cmd {
	p.mu.Lock()
	ch, ok := p.triggers[name]
	p.mu.Unlock()

	if ok {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Statuses returns the current status of every registered store.
func (p *Poller) Statuses() []SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]SyncStatus, 0, len(p.refreshers))
	for _, r := range p.refreshers {
		statuses = append(statuses, *p.statuses[r.Name()])
	}
	return statuses
}

// poll runs the refresh loop for a single store.
func (p *Poller) poll(r Refresher) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.mu.Lock()
	trigger := p.triggers[r.Name()]
	p.mu.Unlock()

	// Do an initial refresh immediately
	p.refresh(r)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.refresh(r)
		case <-trigger:
			p.refresh(r)
		}
	}
}

// refresh performs one bounded refresh and reports the outcome.
func (p *Poller) refresh(r Refresher) {
	name := r.Name()
	p.setStatus(name, SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), p.fetchTimeout)
	defer cancel()

	err := r.BackgroundRefresh(ctx)
	if err != nil {
		p.log.WithError(err).WithField("store", name).Warn("background refresh failed")
		p.setStatus(name, SyncError, err)
		p.sendResult(SyncResultMsg{Name: name, Error: err})
		return
	}

	p.setStatus(name, SyncIdle, nil)
	p.sendResult(SyncResultMsg{Name: name})
}

// setStatus updates the sync status for a store.
func (p *Poller) setStatus(name string, state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[name]
	if !ok {
		return
	}

	status.State = state
	status.Error = err
	if state == SyncIdle && err == nil {
		status.LastSync = time.Now()
	}
}

// sendResult sends a SyncResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-p.stopCh:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync result.
// Call it after handling a SyncResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
