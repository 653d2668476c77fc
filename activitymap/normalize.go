package activitymap

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-school/auth"
)

const (
	// MetadataKeyActorRole stores the role of the actor
	MetadataKeyActorRole = "actor_role"
)

const (
	defaultChannel = "school"
	defaultActorID = "anonymous"
)

// Normalized is a transport agnostic activity record
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	objectType    string
	actorFallback string
}

// Normalize converts an auth.ActivityEvent into the normalized shape
func Normalize(event auth.ActivityEvent, opts ...Option) Normalized {
	options := normalizeOptions{
		channel:       defaultChannel,
		actorFallback: defaultActorID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Normalized{
		ActorID:    firstNonEmpty(strings.TrimSpace(event.Actor.ID), options.actorFallback),
		Verb:       string(event.EventType),
		ObjectType: firstNonEmpty(strings.TrimSpace(event.ObjectType), options.objectType),
		ObjectID:   strings.TrimSpace(event.ObjectID),
		Channel:    options.channel,
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt,
	}
}

// WithDefaultChannel sets the channel of normalized records
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithDefaultObjectType is used when the event has no object type
func WithDefaultObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithActorFallback is used when the event has no actor
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

// LogSink writes normalized activity records to logger
func LogSink(logger auth.Logger, opts ...Option) auth.ActivitySink {
	return auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
		out := Normalize(event, opts...)

		args := []any{
			"verb", out.Verb,
			"actor_id", out.ActorID,
			"object_type", out.ObjectType,
			"object_id", out.ObjectID,
			"channel", out.Channel,
			"occurred_at", out.OccurredAt,
		}
		if len(out.Metadata) > 0 {
			args = append(args, "metadata", out.Metadata)
		}

		logger.Info("activity", args...)
		return nil
	})
}

func normalizeMetadata(event auth.ActivityEvent) map[string]any {
	metadata := cloneMap(event.Metadata)

	if role := strings.TrimSpace(event.Actor.Role); role != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[MetadataKeyActorRole]; !exists {
			metadata[MetadataKeyActorRole] = role
		}
	}

	return metadata
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
