// Package telemetry wires the OpenTelemetry SDK for "scan --trace".
package telemetry

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// spanRecord is the JSON line written for each ended span.
type spanRecord struct {
	Name       string         `json:"name"`
	TraceID    string         `json:"traceId"`
	SpanID     string         `json:"spanId"`
	DurationMs float64        `json:"durationMs"`
	Status     string         `json:"status"`
	Message    string         `json:"message,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// LineExporter implements sdktrace.SpanExporter by writing one JSON object
// per span to w. Write errors are returned to the SDK.
type LineExporter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewLineExporter(w io.Writer) *LineExporter {
	return &LineExporter{enc: json.NewEncoder(w)}
}

func (e *LineExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range spans {
		if err := e.enc.Encode(toRecord(s)); err != nil {
			return err
		}
	}
	return nil
}

func (e *LineExporter) Shutdown(context.Context) error { return nil }

func toRecord(s sdktrace.ReadOnlySpan) spanRecord {
	sc := s.SpanContext()
	traceID := sc.TraceID()
	spanID := sc.SpanID()
	r := spanRecord{
		Name:       s.Name(),
		TraceID:    hex.EncodeToString(traceID[:]),
		SpanID:     hex.EncodeToString(spanID[:]),
		DurationMs: float64(s.EndTime().Sub(s.StartTime()).Microseconds()) / 1000,
		Status:     s.Status().Code.String(),
		Message:    s.Status().Description,
	}
	if attrs := s.Attributes(); len(attrs) > 0 {
		r.Attributes = make(map[string]any, len(attrs))
		for _, kv := range attrs {
			r.Attributes[string(kv.Key)] = attrValue(kv.Value)
		}
	}
	return r
}

func attrValue(v attribute.Value) any {
	switch v.Type() {
	case attribute.BOOL:
		return v.AsBool()
	case attribute.INT64:
		return v.AsInt64()
	case attribute.FLOAT64:
		return v.AsFloat64()
	default:
		return v.Emit()
	}
}

// NewTracerProvider exports every span synchronously to w. Callers must
// Shutdown the provider.
func NewTracerProvider(w io.Writer) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(NewLineExporter(w))),
	)
}
