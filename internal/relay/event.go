package relay

import (
	"time"

	"github.com/goccy/go-json"
)

// ObjectCreated announces a new object in the landing area.
type ObjectCreated struct {
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	EventTime time.Time `json:"event_time"`
}

// s3Notification is the subset of an S3/MinIO bucket notification we log.
type s3Notification struct {
	Key     string `json:"Key"`
	Records []struct {
		EventName string `json:"eventName"`
		S3        struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key  string `json:"key"`
				Size int64  `json:"size"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// ObjectKey returns the object key named by payload, or "" when the payload is not a recognised notification.
//
// Both [ObjectCreated] and S3 bucket notification bodies are understood.
func ObjectKey(payload []byte) string {
	var event ObjectCreated
	if err := json.Unmarshal(payload, &event); err == nil && event.Key != "" {
		return event.Key
	}

	var n s3Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return ""
	}
	if len(n.Records) > 0 && n.Records[0].S3.Object.Key != "" {
		return n.Records[0].S3.Object.Key
	}
	return n.Key
}
