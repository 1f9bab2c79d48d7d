package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/storyweaver/pkg/story"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	// EventTypeStoryChanged wraps every store mutation.
	EventTypeStoryChanged EventType = "story.changed"
)

// Event represents a generic event structure
type Event struct {
	Type    EventType              `json:"type"`
	StoryID string                 `json:"story_id"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Channel returns the pub/sub channel for a story.
func Channel(storyID string) string {
	return fmt.Sprintf("story-events:%s", storyID)
}

// Broadcaster publishes story change events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
	timeout     time.Duration
}

// Ensure Broadcaster can observe the store
var _ story.Observer = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
		timeout:     2 * time.Second,
	}
}

// StoryChanged publishes the change to the story's channel. Publish
// failures are logged; editing never depends on subscribers.
func (b *Broadcaster) StoryChanged(c story.Change) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	_ = b.PublishStoryChanged(ctx, c)
}

// PublishStoryChanged publishes a story.changed event
func (b *Broadcaster) PublishStoryChanged(ctx context.Context, c story.Change) error {
	event := Event{
		Type:    EventTypeStoryChanged,
		StoryID: c.StoryID,
		Data: map[string]interface{}{
			"kind":      string(c.Kind),
			"entity_id": c.EntityID,
		},
	}
	return b.publishToStory(ctx, c.StoryID, event)
}

// publishToStory publishes an event to the story-specific channel
func (b *Broadcaster) publishToStory(ctx context.Context, storyID string, event Event) error {
	channel := Channel(storyID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"kind", event.Data["kind"],
	)

	return nil
}
