package contact

import (
	"context"

	"go.uber.org/zap"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes one pass through the submission state machine. Outcome is
// Succeeded or Failed after a relay call and Idle when validation stopped it.
type Result struct {
	Outcome      State
	Transitions  []State
	FieldErrors  FieldErrors
	Notification *Notification
	Err          error
}

// Submitter runs Idle -> Validating -> {Submitting -> Succeeded | Failed} -> Idle.
// It neither retries nor deduplicates: every valid submission is relayed once.
type Submitter struct {
	validator *Validator
	relay     Relay
	observe   func(outcome string)
	logger    *zap.Logger
}

func NewSubmitter(validator *Validator, relay Relay, logger *zap.Logger) *Submitter {
	return &Submitter{validator: validator, relay: relay, logger: logger}
}

// WithObserver sets a callback told the outcome of every submission
// ("invalid", "succeeded", "failed").
func (s *Submitter) WithObserver(observe func(outcome string)) *Submitter {
	s.observe = observe
	return s
}

func (s *Submitter) Submit(ctx context.Context, form Form, notifier Notifier) Result {
	result := Result{Transitions: []State{StateIdle}}
	enter := func(state State) {
		result.Transitions = append(result.Transitions, state)
	}

	enter(StateValidating)
	if fieldErrors := s.validator.Validate(form); fieldErrors != nil {
		enter(StateIdle)
		result.Outcome = StateIdle
		result.FieldErrors = fieldErrors
		s.record("invalid")
		return result
	}

	enter(StateSubmitting)
	notification := sending()
	if notifier != nil {
		notifier.Notify(notification)
	}

	err := s.relay.Relay(ctx, form)
	if err != nil {
		s.logger.Warn("Contact submission failed", zap.Error(err))
		result.Outcome = StateFailed
		result.Err = err
		s.record("failed")
	} else {
		result.Outcome = StateSucceeded
		s.record("succeeded")
	}
	enter(result.Outcome)

	notification = notification.settle(err == nil)
	if notifier != nil {
		notifier.Notify(notification)
	}
	result.Notification = &notification

	enter(StateIdle)
	return result
}

func (s *Submitter) record(outcome string) {
	if s.observe != nil {
		s.observe(outcome)
	}
}
