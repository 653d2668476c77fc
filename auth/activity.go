package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates the audited actions
type ActivityEventType string

const (
	ActivityEventLoginSuccess   ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure   ActivityEventType = "auth.login.failure"
	ActivityEventUserRegistered ActivityEventType = "auth.user.registered"
	ActivityEventLogout         ActivityEventType = "auth.logout"

	ActivityEventRecordCreated ActivityEventType = "record.created"
	ActivityEventRecordUpdated ActivityEventType = "record.updated"
	ActivityEventRecordDeleted ActivityEventType = "record.deleted"

	ActivityEventStudentEnrolled   ActivityEventType = "course.student.enrolled"
	ActivityEventStudentUnenrolled ActivityEventType = "course.student.unenrolled"
)

// ActorRef identifies who performed an action
type ActorRef struct {
	ID   string
	Role string
}

// ActorFromContext returns the actor of the authenticated request, the
// zero value when ctx carries no claims
func ActorFromContext(ctx context.Context) ActorRef {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return ActorRef{}
	}
	return ActorRef{ID: claims.UserID(), Role: claims.Role()}
}

// ActivityEvent captures audit information about an action
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	ObjectType string
	ObjectID   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

// ResolveActivitySink returns s or a sink that drops every event
func ResolveActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// RecordActivity sends the event to sink, sink failures are logged and
// never fail the request
func RecordActivity(ctx context.Context, sink ActivitySink, logger Logger, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := ResolveActivitySink(sink).Record(ctx, event); err != nil {
		resolveLogger(logger).Warn("failed to record activity", "event", string(event.EventType), "error", err)
	}
}
