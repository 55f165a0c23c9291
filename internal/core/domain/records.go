package domain

import "time"

// Urgency grades a material request.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ValidUrgency reports whether u is one of the accepted urgency grades.
func ValidUrgency(u Urgency) bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

// ActivityTypes is the closed set of loggable activity categories.
var ActivityTypes = []string{"construction", "electrical", "plumbing", "painting", "inspection", "other"}

// ValidActivityType reports whether t belongs to the closed activity set.
func ValidActivityType(t string) bool {
	for _, v := range ActivityTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Hour bounds for a single activity entry.
const (
	MinActivityHours = 1
	MaxActivityHours = 24
)

// BookingStatusPending is the status every new booking is created with.
const BookingStatusPending = "pending"

// Site is an opaque work-site record employees tag their entries with.
type Site struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ImageRef points at an uploaded image in object storage.
type ImageRef struct {
	URL string `json:"url" bson:"url"`
	Key string `json:"key" bson:"key"`
}

// ActivityLog is a write-once record produced by the activity-logging flow.
type ActivityLog struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	UserID       string    `json:"user_id" bson:"user_id"`
	Phone        string    `json:"phone" bson:"phone"`
	SiteID       string    `json:"site_id" bson:"site_id"`
	ActivityType string    `json:"activity_type" bson:"activity_type"`
	Hours        int       `json:"hours" bson:"hours"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	Image        *ImageRef `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// MaterialRequest is a write-once record produced by the material-request flow.
type MaterialRequest struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Phone     string    `json:"phone" bson:"phone"`
	SiteID    string    `json:"site_id" bson:"site_id"`
	Material  string    `json:"material" bson:"material"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	Unit      string    `json:"unit,omitempty" bson:"unit,omitempty"`
	Urgency   Urgency   `json:"urgency" bson:"urgency"`
	Image     *ImageRef `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Booking is a write-once record produced by the customer booking flow.
type Booking struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Phone     string    `json:"phone" bson:"phone"`
	Name      string    `json:"name" bson:"name"`
	Date      string    `json:"date" bson:"date"` // 2006-01-02
	Time      string    `json:"time" bson:"time"` // 15:04
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// MessageLog is a best-effort audit entry for one inbound or outbound message.
type MessageLog struct {
	Phone     string    `json:"phone" bson:"phone"`
	Direction string    `json:"direction" bson:"direction"` // in | out
	Type      string    `json:"type" bson:"type"`
	Content   string    `json:"content,omitempty" bson:"content,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
