package domain

import (
	"errors"
	"time"
)

// Intent names the active multi-step conversation flow.
type Intent string

const (
	IntentNone             Intent = ""
	IntentLogActivity      Intent = "log_activity"
	IntentRequestMaterials Intent = "request_materials"
	IntentBooking          Intent = "booking"
)

// Step is the current position within a flow's fixed sequence of prompts.
type Step string

const (
	StepNone Step = ""

	// activity logging
	StepSelectSite         Step = "select_site"
	StepSelectActivityType Step = "select_activity_type"
	StepEnterHours         Step = "enter_hours"
	StepEnterDescription   Step = "enter_description"
	StepUploadImage        Step = "upload_image"

	// material requests (reuses select_site and upload_image)
	StepEnterMaterial Step = "enter_material"
	StepEnterQuantity Step = "enter_quantity"
	StepSelectUrgency Step = "select_urgency"

	// booking
	StepCollectName Step = "collect_name"
	StepCollectDate Step = "collect_date"
	StepCollectTime Step = "collect_time"
)

// flowSteps defines the fixed step order of every flow. Transitions only ever
// move forward one position; invalid input re-prompts without advancing.
var flowSteps = map[Intent][]Step{
	IntentLogActivity:      {StepSelectSite, StepSelectActivityType, StepEnterHours, StepEnterDescription, StepUploadImage},
	IntentRequestMaterials: {StepSelectSite, StepEnterMaterial, StepEnterQuantity, StepSelectUrgency, StepUploadImage},
	IntentBooking:          {StepCollectName, StepCollectDate, StepCollectTime},
}

var ErrSessionNotFound = errors.New("session not found")

// FirstStep returns the entry step of a flow, or StepNone for an unknown intent.
func FirstStep(intent Intent) Step {
	steps := flowSteps[intent]
	if len(steps) == 0 {
		return StepNone
	}
	return steps[0]
}

// NextStep returns the step after cur in the flow's fixed order. ok is false
// when cur is the terminal step (or not part of the flow at all).
func NextStep(intent Intent, cur Step) (next Step, ok bool) {
	steps := flowSteps[intent]
	for i, s := range steps {
		if s == cur && i+1 < len(steps) {
			return steps[i+1], true
		}
	}
	return StepNone, false
}

// ActivityDraft accumulates the fields of an activity-logging flow in progress.
type ActivityDraft struct {
	SiteID       string `json:"site_id,omitempty"`
	ActivityType string `json:"activity_type,omitempty"`
	Hours        int    `json:"hours,omitempty"`
	Description  string `json:"description,omitempty"`
}

// MaterialDraft accumulates the fields of a material-request flow in progress.
type MaterialDraft struct {
	SiteID   string `json:"site_id,omitempty"`
	Material string `json:"material,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Urgency  string `json:"urgency,omitempty"`
}

// BookingDraft accumulates the fields of a booking flow in progress.
type BookingDraft struct {
	Name string `json:"name,omitempty"`
	Date string `json:"date,omitempty"` // 2006-01-02
	Time string `json:"time,omitempty"` // 15:04
}

// Session is the single active conversation state per identity, keyed by
// normalized phone. Step is only meaningful while Intent is set; Clear resets
// both together with the per-flow draft.
type Session struct {
	Phone     string         `json:"phone"`
	Intent    Intent         `json:"intent,omitempty"`
	Step      Step           `json:"step,omitempty"`
	Activity  *ActivityDraft `json:"activity,omitempty"`
	Material  *MaterialDraft `json:"material,omitempty"`
	Booking   *BookingDraft  `json:"booking,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewSession returns an empty session for phone.
func NewSession(phone string) *Session {
	return &Session{Phone: phone, UpdatedAt: time.Now().UTC()}
}

// Begin enters a flow at its first step, discarding any previous flow state.
func (s *Session) Begin(intent Intent) {
	s.Clear()
	s.Intent = intent
	s.Step = FirstStep(intent)
	switch intent {
	case IntentLogActivity:
		s.Activity = &ActivityDraft{}
	case IntentRequestMaterials:
		s.Material = &MaterialDraft{}
	case IntentBooking:
		s.Booking = &BookingDraft{}
	}
	s.UpdatedAt = time.Now().UTC()
}

// Advance moves to the next step in the active flow's fixed order.
// Returns false when the current step is terminal.
func (s *Session) Advance() bool {
	next, ok := NextStep(s.Intent, s.Step)
	if !ok {
		return false
	}
	s.Step = next
	s.UpdatedAt = time.Now().UTC()
	return true
}

// Clear abandons the active flow: intent, step, and all drafts are reset.
func (s *Session) Clear() {
	s.Intent = IntentNone
	s.Step = StepNone
	s.Activity = nil
	s.Material = nil
	s.Booking = nil
	s.UpdatedAt = time.Now().UTC()
}
