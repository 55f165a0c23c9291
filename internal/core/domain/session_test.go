package domain

import "testing"

func TestSessionBeginAdvanceClear(t *testing.T) {
	s := NewSession("+919876543210")
	if s.Intent != IntentNone || s.Step != StepNone {
		t.Fatalf("fresh session not idle: intent=%q step=%q", s.Intent, s.Step)
	}

	s.Begin(IntentLogActivity)
	if s.Step != StepSelectSite {
		t.Fatalf("wrong entry step: %q", s.Step)
	}
	if s.Activity == nil || s.Material != nil || s.Booking != nil {
		t.Fatal("wrong draft initialized")
	}

	want := []Step{StepSelectActivityType, StepEnterHours, StepEnterDescription, StepUploadImage}
	for _, step := range want {
		if !s.Advance() {
			t.Fatalf("could not advance to %q", step)
		}
		if s.Step != step {
			t.Fatalf("advanced to %q, want %q", s.Step, step)
		}
	}
	if s.Advance() {
		t.Fatal("advanced past the terminal step")
	}

	s.Clear()
	if s.Intent != IntentNone || s.Step != StepNone || s.Activity != nil {
		t.Fatal("clear did not reset everything")
	}
}

func TestSessionBeginReplacesPriorFlow(t *testing.T) {
	s := NewSession("+919876543210")
	s.Begin(IntentLogActivity)
	s.Activity.Hours = 5

	s.Begin(IntentBooking)
	if s.Activity != nil {
		t.Fatal("prior draft survived Begin")
	}
	if s.Step != StepCollectName {
		t.Fatalf("wrong entry step: %q", s.Step)
	}
}

func TestNextStepUnknown(t *testing.T) {
	if _, ok := NextStep(IntentBooking, StepEnterHours); ok {
		t.Fatal("foreign step advanced inside booking")
	}
	if FirstStep(Intent("nope")) != StepNone {
		t.Fatal("unknown intent has an entry step")
	}
}
