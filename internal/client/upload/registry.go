// Package upload tracks file uploads for the current session. Each accepted
// file becomes an item that moves through
//
//	pending -> uploading -> completed | failed | cancelled
//
// with failed -> uploading (retry) as the only way back. Every transfer runs
// in its own goroutine under its own cancellable context.
package upload

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/common"
	"github.com/dmitrijs2005/gallerist/internal/logging"
	"github.com/google/uuid"
)

const eventBuffer = 256

// Event carries a copy of an item after a change. Removed is set when the
// item left the registry.
type Event struct {
	Item    models.UploadItem
	Removed bool
}

type entry struct {
	item models.UploadItem
	// attempt guards against late callbacks from a previous transfer.
	attempt  int
	cancel   context.CancelCauseFunc
	watchdog *time.Timer
}

// Registry tracks upload items and runs one transfer per accepted file.
type Registry struct {
	opts      Options
	transport Transport
	logger    logging.Logger
	now       func() time.Time
	newID     func() string

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu       sync.Mutex
	items    map[string]*entry
	order    []string
	subs     map[int]chan Event
	nextSub  int
	inflight int
	idle     chan struct{}
	closed   bool
}

// NewRegistry returns an empty registry that validates files against opts.
func NewRegistry(opts Options, transport Transport, logger logging.Logger) *Registry {
	base, stop := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)

	return &Registry{
		opts:      opts,
		transport: transport,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
		base:      base,
		stop:      stop,
		items:     make(map[string]*entry),
		subs:      make(map[int]chan Event),
		idle:      idle,
	}
}

// Enqueue validates files and starts a transfer for each accepted one.
// Rejected files never become items.
func (r *Registry) Enqueue(files ...models.FileSource) ([]string, []Rejection) {
	var (
		ids        []string
		rejections []Rejection
	)

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, f := range files {
		if r.closed {
			rejections = append(rejections, Rejection{Filename: f.Name, Reason: "uploads are closed"})
			continue
		}
		if !r.opts.Multiple && i > 0 {
			rejections = append(rejections, Rejection{Filename: f.Name, Reason: reasonTooMany})
			continue
		}
		if reason := r.opts.check(f); reason != "" {
			r.logger.Info(context.Background(), "file rejected", "file", f.Name, "reason", reason)
			rejections = append(rejections, Rejection{Filename: f.Name, Reason: reason})
			continue
		}

		e := &entry{item: models.UploadItem{
			ID:        r.newID(),
			File:      f,
			Status:    models.UploadPending,
			CreatedAt: r.now(),
		}}
		r.items[e.item.ID] = e
		r.order = append(r.order, e.item.ID)
		r.emit(e, false)

		r.start(e)
		ids = append(ids, e.item.ID)
	}
	return ids, rejections
}

// start launches a fresh transfer for e. Caller holds r.mu.
func (r *Registry) start(e *entry) {
	ctx, cancel := context.WithCancelCause(r.base)

	e.attempt++
	e.cancel = cancel
	e.item.Status = models.UploadUploading
	e.item.Progress = 0
	e.item.Error = ""
	e.item.URL = ""

	if r.opts.StallTimeout > 0 {
		e.watchdog = time.AfterFunc(r.opts.StallTimeout, func() { cancel(common.ErrUploadStalled) })
	}

	if r.inflight == 0 {
		r.idle = make(chan struct{})
	}
	r.inflight++
	r.wg.Add(1)
	r.emit(e, false)

	go r.transfer(ctx, cancel, e.item.ID, e.attempt, e.item.File)
}

func (r *Registry) transfer(ctx context.Context, cancel context.CancelCauseFunc, id string, attempt int, file models.FileSource) {
	defer r.wg.Done()
	defer r.release()
	defer cancel(nil)

	log := r.logger.With("upload_id", id, "file", file.Name)
	log.Info(ctx, "upload started", "size", file.Size, "attempt", attempt)

	url, err := r.transport.Transfer(ctx, file, func(loaded, total int64) {
		r.progress(id, attempt, loaded, total)
	})
	if err == nil {
		log.Info(ctx, "upload completed", "url", url)
		r.settle(id, attempt, models.UploadCompleted, url, "")
		return
	}

	if cause := context.Cause(ctx); cause != nil {
		err = cause
	}
	switch {
	case errors.Is(err, common.ErrUploadCancelled):
		log.Info(ctx, "upload cancelled")
	case errors.Is(err, context.Canceled):
		// settled from outside (OnComplete/OnFailure) or registry closed
	default:
		log.Warn(ctx, "upload failed", "error", err)
		r.settle(id, attempt, models.UploadFailed, "", err.Error())
	}
}

func (r *Registry) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight--
	if r.inflight == 0 {
		close(r.idle)
	}
}

func (r *Registry) progress(id string, attempt int, loaded, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok || e.attempt != attempt {
		return
	}
	r.applyProgress(e, loaded, total)
}

// applyProgress folds a progress report into e. Caller holds r.mu.
func (r *Registry) applyProgress(e *entry, loaded, total int64) {
	if e.item.Status != models.UploadUploading {
		return
	}
	if e.watchdog != nil {
		e.watchdog.Reset(r.opts.StallTimeout)
	}

	if total <= 0 {
		total = e.item.File.Size
	}
	if total <= 0 {
		return
	}

	p := int(math.Round(float64(loaded) / float64(total) * 100))
	p = min(max(p, 0), 99)
	if p <= e.item.Progress {
		return
	}
	e.item.Progress = p
	r.emit(e, false)
}

func (r *Registry) settle(id string, attempt int, status models.UploadStatus, url, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok || e.attempt != attempt {
		return
	}
	r.finish(e, status, url, msg, nil)
}

// finish moves e to a terminal status and stops its transfer. Caller holds
// r.mu.
func (r *Registry) finish(e *entry, status models.UploadStatus, url, msg string, cause error) {
	if e.item.Status.Terminal() || e.item.Status == models.UploadPending {
		return
	}
	if e.watchdog != nil {
		e.watchdog.Stop()
		e.watchdog = nil
	}

	e.item.Status = status
	switch status {
	case models.UploadCompleted:
		e.item.Progress = 100
		e.item.URL = url
	case models.UploadFailed:
		if msg == "" {
			msg = "upload failed"
		}
		e.item.Error = msg
	}
	r.emit(e, false)

	if e.cancel != nil {
		e.cancel(cause)
	}
}

// OnProgress records transfer progress for the item's current transfer.
// Progress is capped at 99 until completion and never goes backwards.
func (r *Registry) OnProgress(id string, loaded, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.items[id]; ok {
		r.applyProgress(e, loaded, total)
	}
}

// OnComplete marks the item completed with the file's URL.
func (r *Registry) OnComplete(id, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.items[id]; ok {
		r.finish(e, models.UploadCompleted, url, "", nil)
	}
}

// OnFailure marks the item failed with msg as its error.
func (r *Registry) OnFailure(id, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.items[id]; ok {
		r.finish(e, models.UploadFailed, "", msg, nil)
	}
}

// Cancel aborts an uploading item. It reports whether anything changed.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok || e.item.Status != models.UploadUploading {
		return false
	}
	r.finish(e, models.UploadCancelled, "", "", common.ErrUploadCancelled)
	return true
}

// Retry restarts a failed item from zero. It reports whether anything
// changed.
func (r *Registry) Retry(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok || e.item.Status != models.UploadFailed || r.closed {
		return false
	}
	r.start(e)
	return true
}

// Remove drops the item whatever its state. A running transfer is left
// alone; its later events are ignored.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return false
	}
	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.emit(e, true)
	return true
}

// Get returns a copy of the item with the given id.
func (r *Registry) Get(id string) (models.UploadItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return models.UploadItem{}, false
	}
	return e.item, true
}

// List returns the items in the order they were enqueued.
func (r *Registry) List() []models.UploadItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.UploadItem, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].item)
	}
	return out
}

// Subscribe returns a channel of item changes and a func to stop listening.
// A slow subscriber misses events rather than blocking the registry.
func (r *Registry) Subscribe() (<-chan Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Event, eventBuffer)
	if r.closed {
		close(ch)
		return ch, func() {}
	}

	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(c)
			}
		})
	}
}

// emit fans an event out to subscribers. Caller holds r.mu.
func (r *Registry) emit(e *entry, removed bool) {
	ev := Event{Item: e.item, Removed: removed}
	for _, ch := range r.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Wait blocks until no transfer is running or ctx is done.
func (r *Registry) Wait(ctx context.Context) error {
	r.mu.Lock()
	idle := r.idle
	r.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels every running transfer and waits for them to return.
// Enqueue and Retry refuse work afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for _, id := range r.order {
		e := r.items[id]
		if e.item.Status == models.UploadUploading {
			r.finish(e, models.UploadCancelled, "", "", common.ErrUploadCancelled)
		}
	}
	r.mu.Unlock()

	r.stop()
	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
}
