package trace

import (
	"context"
	"encoding/hex"
	"os"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// DefaultServiceName is reported when OTEL_SERVICE_NAME is unset.
const DefaultServiceName = "guidemo"

// OTLPExporter replays completed traces to an OTLP endpoint
type OTLPExporter struct {
	provider *sdktrace.TracerProvider
	tracer   oteltrace.Tracer
}

// NewOTLPExporter creates an exporter if OTEL_EXPORTER_OTLP_ENDPOINT is set.
// Returns nil when the endpoint is not configured.
func NewOTLPExporter(ctx context.Context) (*OTLPExporter, error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		return nil, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create otlp exporter")
	}

	serviceName := os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	return &OTLPExporter{
		provider: provider,
		tracer:   provider.Tracer("gui/dispatch"),
	}, nil
}

// ExportTrace exports a completed Trace
func (e *OTLPExporter) ExportTrace(ctx context.Context, t *Trace) error {
	if e == nil || t.RootSpan == nil {
		return nil
	}

	traceID, err := hexToTraceID(t.ID)
	if err != nil {
		return err
	}

	traceCtx := oteltrace.ContextWithSpanContext(ctx, oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
		TraceID:    traceID,
		TraceFlags: oteltrace.FlagsSampled,
	}))
	e.exportSpan(traceCtx, t.RootSpan, oteltrace.SpanContext{})
	return nil
}

// exportSpan replays span and its children with their recorded timings.
// The SDK assigns new span IDs; the trace ID and nesting are kept.
func (e *OTLPExporter) exportSpan(ctx context.Context, span *Span, parent oteltrace.SpanContext) {
	parentCtx := ctx
	if parent.IsValid() {
		parentCtx = oteltrace.ContextWithSpanContext(ctx, parent)
	}

	_, otlpSpan := e.tracer.Start(
		parentCtx,
		span.Name,
		oteltrace.WithTimestamp(span.StartTime),
	)
	otlpSpan.SetAttributes(spanAttributes(span.Attributes)...)
	otlpSpan.End(oteltrace.WithTimestamp(span.StartTime.Add(span.Duration)))

	current := otlpSpan.SpanContext()
	for _, child := range span.Children {
		e.exportSpan(ctx, child, current)
	}
}

// spanAttributes maps recorder attributes into the gui.* namespace.
func spanAttributes(in map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(in))
	for k, v := range in {
		var key string
		switch k {
		case AttrKind:
			key = "gui.delivery.kind"
		case AttrTarget:
			key = "gui.widget.id"
		case AttrOrigin:
			key = "gui.origin.id"
		case AttrResult:
			key = "gui.delivery.result"
		case AttrError:
			key = "gui.error"
		default:
			key = "gui." + k
		}
		attrs = append(attrs, attribute.String(key, v))
	}
	return attrs
}

// hexToTraceID converts a 32-character hex string to trace.TraceID
func hexToTraceID(hexStr string) (oteltrace.TraceID, error) {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return oteltrace.TraceID{}, errors.Wrapf(err, "trace id %q", hexStr)
	}
	if len(b) != 16 {
		return oteltrace.TraceID{}, errors.Errorf("trace id %q: want 16 bytes, got %d", hexStr, len(b))
	}
	var traceID oteltrace.TraceID
	copy(traceID[:], b)
	return traceID, nil
}

// Shutdown flushes and closes the exporter
func (e *OTLPExporter) Shutdown(ctx context.Context) error {
	if e == nil {
		return nil
	}
	return e.provider.Shutdown(ctx)
}
