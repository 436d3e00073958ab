package futarchy

import "log/slog"

// LogEmitter writes every façade event to a structured logger as its
// flattened core/types.Event attribute map, the same shape
// native/governance's engine.go produces for proposal events. Useful as
// an audit trail independent of whatever metrics or RPC subscription
// emitters are chained alongside it via MultiEmitter.
type LogEmitter struct {
	Logger *slog.Logger
}

func (e LogEmitter) Emit(ev Event) {
	if e.Logger == nil {
		return
	}
	te, ok := ev.(typesEventer)
	if !ok {
		e.Logger.Info("event", "type", ev.EventType())
		return
	}
	tev := te.TypesEvent()
	args := make([]any, 0, 2+2*len(tev.Attributes))
	args = append(args, "type", tev.Type)
	for k, v := range tev.Attributes {
		args = append(args, k, v)
	}
	e.Logger.Info("event", args...)
}
