package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jwebster45206/storyweaver/pkg/snapshot"
	"github.com/jwebster45206/storyweaver/pkg/story"
)

var snapshotWrites = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storyweaver_snapshot_writes_total",
	Help: "Snapshot writes to the persistence slot, by result.",
}, []string{"result"})

const defaultWriteTimeout = 5 * time.Second

// Persister keeps a Slot in sync with a Store: it loads once at startup
// and rewrites the whole collection after every mutation.
type Persister struct {
	slot   Slot
	store  *story.Store
	logger *slog.Logger

	// serializes writes so the slot always ends on the latest snapshot
	mu sync.Mutex
}

// Ensure Persister can observe the store
var _ story.Observer = (*Persister)(nil)

func NewPersister(slot Slot, store *story.Store, logger *slog.Logger) *Persister {
	return &Persister{slot: slot, store: store, logger: logger}
}

// Load replaces the store contents with what the slot holds and returns
// the number of stories loaded. A corrupt snapshot loads as empty; only
// a failure to read the slot is returned.
func (p *Persister) Load(ctx context.Context) (int, error) {
	data, err := p.slot.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load stories: %w", err)
	}

	stories, err := snapshot.Decode(data)
	if err != nil {
		p.logger.Warn("Stored snapshot is unreadable, starting with no stories", "error", err)
		stories = []*story.Story{}
	}
	p.store.Replace(stories)
	p.logger.Info("Stories loaded", "count", len(stories))
	return len(stories), nil
}

// Save writes the current store contents to the slot.
func (p *Persister) Save(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := snapshot.Save(p.store.Snapshot())
	if err != nil {
		snapshotWrites.WithLabelValues("error").Inc()
		return err
	}
	if err := p.slot.Write(ctx, data); err != nil {
		snapshotWrites.WithLabelValues("error").Inc()
		return err
	}
	snapshotWrites.WithLabelValues("ok").Inc()
	return nil
}

// StoryChanged writes through after every store mutation. A failed write
// is logged; the in-memory store stays authoritative and the next
// mutation writes the full collection again.
func (p *Persister) StoryChanged(c story.Change) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
	defer cancel()

	if err := p.Save(ctx); err != nil {
		p.logger.Error("Failed to persist stories", "change", c.Kind, "story_id", c.StoryID, "error", err)
		return
	}
	p.logger.Debug("Stories persisted", "change", c.Kind, "story_id", c.StoryID)
}
