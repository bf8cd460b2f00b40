package log

import (
	"github.com/rs/zerolog"

	"github.com/ruleflow-dev/ruleflow/event"
	"github.com/ruleflow-dev/ruleflow/rule"
)

func loadRuleIntoArrayLogger(r rule.Rule, arrayLogger *zerolog.Array) *zerolog.Array {
	meta := r.Meta()
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Str("group", meta.Group)
	dictLogger = dictLogger.Bool("disabled", meta.Disabled)
	if b, ok := r.(*rule.Base); ok {
		dictLogger = dictLogger.Str("op", b.Op().String())
		dictLogger = dictLogger.Str("rule", b.String())
	} else if meta.ID != "" {
		dictLogger = dictLogger.Str("rule", meta.ID)
	}
	return arrayLogger.Dict(dictLogger)
}

func loadRulesToEvent(zeroLoggerEvent *zerolog.Event, set *rule.Set) *zerolog.Event {
	zeroLoggerEvent.Int("total_rules", len(set.Rules))
	arrayLogger := zerolog.Arr()
	for _, r := range set.Rules {
		arrayLogger = loadRuleIntoArrayLogger(r, arrayLogger)
	}
	return zeroLoggerEvent.Array("rules", arrayLogger)
}

// Rules logs every rule of the set with its scheduling state.
func Rules(logger *zerolog.Logger, set *rule.Set, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadRulesToEvent(zeroLoggerEvent, set)
	zeroLoggerEvent.Send()
}

// Event logs one step of an evolution.
func Event(logger *zerolog.Logger, e *event.Event, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent.Int("step", e.Step)
	zeroLoggerEvent.Bool("inert", e.Inert)
	zeroLoggerEvent.Int("causal_distance", e.CausalDistance)
	spaces := e.Spaces()
	zeroLoggerEvent.Int("total_spaces", len(spaces))
	arrayLogger := zerolog.Arr()
	for _, s := range spaces {
		arrayLogger = arrayLogger.Str(s.String())
	}
	zeroLoggerEvent.Array("spaces", arrayLogger)
	zeroLoggerEvent.Send()
}

// CreateFlowLogger creates a sub logger with the entry {"flow": flowName}.
func CreateFlowLogger(logger *zerolog.Logger, flowName string) *zerolog.Logger {
	newLogger := logger.With().Str("flow", flowName).Logger()
	return &newLogger
}

// CreateTraceLogger creates a trace logger. Using a single id you can use
// this logger to follow and log a data path.
func CreateTraceLogger(logger *zerolog.Logger, traceID string) *zerolog.Logger {
	newLogger := logger.With().Str("trace_id", traceID).Logger()
	return &newLogger
}
