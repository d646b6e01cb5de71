package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier delivers a single opaque text payload, best-effort.
// Delivery failures must never surface to the chat turn.
type Notifier interface {
	Push(ctx context.Context, message string)
}

// LeadStore persists captured leads and unknown questions.
type LeadStore interface {
	SaveLead(ctx context.Context, email, name, mobileNo, notes string) error
	SaveUnknownQuestion(ctx context.Context, question string) error
}

// recordedOK is the fixed acknowledgement both contact tools return.
// It does not vary with which optional fields were defaulted.
func recordedOK() *Result {
	return NewSuccessResult(map[string]string{"recorded": "ok"})
}

// strArg reads a string input, falling back when absent or not a string.
func strArg(input map[string]any, key, fallback string) string {
	if v, ok := input[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// RecordUserDetails captures contact details of an interested visitor.
type RecordUserDetails struct {
	Notifier Notifier
	Store    LeadStore
	Log      *logrus.Logger
}

// Name returns the tool's identifier.
func (t *RecordUserDetails) Name() string { return "record_user_details" }

// Description returns what the tool does.
func (t *RecordUserDetails) Description() string {
	return "Use this tool to record that a user is interested in being in touch and provided an email address, name, mobile number and notes (optional)"
}

// Execute sends a notification with the supplied fields and persists the
// lead. Optional fields default to "N/A". The acknowledgement is always
// {"recorded": "ok"}; side-channel failures are logged and swallowed.
func (t *RecordUserDetails) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	email := strArg(input, "email", "N/A")
	name := strArg(input, "name", "N/A")
	mobileNo := strArg(input, "mobile_no", "N/A")
	notes := strArg(input, "notes", "N/A")

	message := fmt.Sprintf(
		"New User Interest Notification:\nName: %s\nEmail: %s\nMobile No: %s\nNotes: %s\nPlease follow up with the user at your earliest convenience.",
		name, email, mobileNo, notes)

	if t.Notifier != nil {
		t.Notifier.Push(ctx, message)
	}
	if t.Store != nil {
		if err := t.Store.SaveLead(ctx, email, name, mobileNo, notes); err != nil {
			t.log().WithError(err).Warn("saving lead failed")
		}
	}

	return TimedResult(recordedOK(), start), nil
}

func (t *RecordUserDetails) log() *logrus.Logger {
	if t.Log != nil {
		return t.Log
	}
	return logrus.StandardLogger()
}

// RecordUnknownQuestion captures a question the persona context could not answer.
type RecordUnknownQuestion struct {
	Notifier Notifier
	Store    LeadStore
	Log      *logrus.Logger
}

// Name returns the tool's identifier.
func (t *RecordUnknownQuestion) Name() string { return "record_unknown_question" }

// Description returns what the tool does.
func (t *RecordUnknownQuestion) Description() string {
	return "Always use this tool to record any question that couldn't be answered as you didn't know the answer"
}

// Execute sends a notification quoting the question and persists it.
func (t *RecordUnknownQuestion) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	question := strArg(input, "question", "N/A")

	if t.Notifier != nil {
		t.Notifier.Push(ctx, fmt.Sprintf("Recording %s asked that I couldn't answer", question))
	}
	if t.Store != nil {
		if err := t.Store.SaveUnknownQuestion(ctx, question); err != nil {
			t.log().WithError(err).Warn("saving unknown question failed")
		}
	}

	return TimedResult(recordedOK(), start), nil
}

func (t *RecordUnknownQuestion) log() *logrus.Logger {
	if t.Log != nil {
		return t.Log
	}
	return logrus.StandardLogger()
}
