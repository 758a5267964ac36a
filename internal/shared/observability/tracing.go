package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "modgraph"

// Tracer comes from the global provider, which delegates to any provider
// installed later (the CLI, tests).
var Tracer trace.Tracer = otel.Tracer(instrumentationName)

func ModuleAttr(path string) attribute.KeyValue {
	return attribute.String("modgraph.module", path)
}

func CountAttr(key string, n int) attribute.KeyValue {
	return attribute.Int("modgraph."+key, n)
}
