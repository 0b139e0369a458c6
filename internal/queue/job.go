package queue

import (
	"time"

	"micasa/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobKind selects what a job writes to the user document.
type JobKind string

const (
	JobActivity     JobKind = "activity"
	JobNotification JobKind = "notification"
)

// Job is a deferred write onto one user's embedded activity log or notification list.
type Job struct {
	Kind         JobKind
	UID          string
	Activity     models.ActivityEntry
	Notification models.Notification
	RetryCount   int
}

// ActivityJob records action in uid's activity log.
func ActivityJob(uid string, action string, lid int64, detail string) Job {
	return Job{
		Kind: JobActivity,
		UID:  uid,
		Activity: models.ActivityEntry{
			Action:    action,
			ListingID: lid,
			Detail:    detail,
			CreatedAt: time.Now(),
		},
	}
}

// NotificationJob delivers a notification to uid.
func NotificationJob(uid string, kind models.NotificationType, title, message string, lid int64) Job {
	return Job{
		Kind: JobNotification,
		UID:  uid,
		Notification: models.Notification{
			ID:        primitive.NewObjectID(),
			Type:      kind,
			Title:     title,
			Message:   message,
			ListingID: lid,
			CreatedAt: time.Now(),
		},
	}
}
