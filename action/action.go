// Package action models the winning outcome's staged action list and its
// execution, per spec.md §4.9 and Design Notes §9: "model ActionSpec as a
// tagged variant (sum type) with one arm per known action kind and one arm
// Unknown(tag, bytes) forwarded to a pluggable dispatcher."
package action

import "errors"

var (
	ErrUnknownActionType = errors.New("action: unknown action_type")
	ErrActionListFull    = errors.New("action: outcome action list is full")
	ErrHandlerNotFound   = errors.New("action: no handler registered for action_type")
)

// Known action_type tags. Handlers for these are expected to be present;
// any other tag is staged as Unknown and only fails at execution time if
// the dispatcher has no handler for it.
const (
	TypeTransfer             = "transfer"
	TypeCreateStream         = "create_stream"
	TypeUpdateTradingParams  = "update_trading_params"
	TypeMemo                 = "memo"
)

// Spec is the tagged, opaque action payload staged per outcome, per
// spec.md §3's ActionSpec entity: `{action_type: string, payload: bytes}`.
type Spec struct {
	ActionType string `json:"action_type"`
	Payload    []byte `json:"payload"`
}

// New constructs a Spec, defensively copying payload so later caller-side
// mutation cannot corrupt staged state.
func New(actionType string, payload []byte) Spec {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	return Spec{ActionType: actionType, Payload: cp}
}

// Handler executes one staged action against the DAO treasury. Handler
// failure is not retried (spec.md §4.9): the caller records it as an
// execution error rather than re-invoking.
type Handler func(payload []byte) error

// Dispatcher routes a Spec's ActionType tag to a registered Handler. It is
// the "pluggable dispatcher" Design Notes §9 calls for, kept independent
// of the action list itself so the surrounding treasury system owns
// handler registration.
type Dispatcher struct {
	handlers map[string]Handler
}

// NewDispatcher constructs an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

// Register binds actionType to handler, overwriting any prior binding.
func (d *Dispatcher) Register(actionType string, handler Handler) {
	d.handlers[actionType] = handler
}

// KnownTypes returns the action types that currently have a registered
// handler, in no particular order. Staging does not consult it: any tag
// may be staged, and one with no handler only fails at execution
// (ErrHandlerNotFound).
func (d *Dispatcher) KnownTypes() []string {
	types := make([]string, 0, len(d.handlers))
	for t := range d.handlers {
		types = append(types, t)
	}
	return types
}

// Dispatch runs the handler registered for spec.ActionType.
func (d *Dispatcher) Dispatch(spec Spec) error {
	handler, ok := d.handlers[spec.ActionType]
	if !ok {
		return ErrHandlerNotFound
	}
	return handler(spec.Payload)
}

// OutcomeList is the ordered action sequence for one outcome index.
type OutcomeList struct {
	Actions []Spec `json:"actions"`
}

// Stage appends spec to the list, rejecting once maxActions is reached.
func (l *OutcomeList) Stage(spec Spec, maxActions int) error {
	if len(l.Actions) >= maxActions {
		return ErrActionListFull
	}
	l.Actions = append(l.Actions, spec)
	return nil
}

// ExecutionReport summarizes running one outcome's action list, per
// spec.md §6's execute → ExecutionReport.
type ExecutionReport struct {
	OutcomeIndex int    `json:"outcome_index"`
	ActionsRun   int    `json:"actions_run"`
	Failed       bool   `json:"failed"`
	FailureError string `json:"failure_error,omitempty"`
	TimedOut     bool   `json:"timed_out"`
}

// Execute runs list's actions in order against dispatcher, stopping at
// the first failure (not retried) or once deadline passes. deadline is a
// host-supplied monotonic timestamp in the same units as nowFn(); nowFn
// is checked before each action, so no action starts after the deadline.
// A handler that is already running is not interrupted; a check between
// actions is sufficient since the core has no suspending operations
// (spec.md §5).
func Execute(list OutcomeList, outcomeIndex int, dispatcher *Dispatcher, nowFn func() int64, deadline int64) ExecutionReport {
	report := ExecutionReport{OutcomeIndex: outcomeIndex}
	for _, spec := range list.Actions {
		if nowFn() > deadline {
			report.TimedOut = true
			return report
		}
		if err := dispatcher.Dispatch(spec); err != nil {
			report.Failed = true
			report.FailureError = err.Error()
			return report
		}
		report.ActionsRun++
	}
	return report
}
