package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func StartBatchSpan(ctx context.Context, runID, inputDir string, parallel int) (context.Context, trace.Span) {
	return StartSpan(ctx, "batch.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("batch.run_id", runID),
			attribute.String("batch.input_dir", inputDir),
			attribute.Int("batch.parallel", parallel),
		),
	)
}

// RecordBatchSummary stores the final tally on the batch span in ctx.
func RecordBatchSummary(ctx context.Context, total, succeeded, failed int) {
	AddSpanAttributes(ctx,
		attribute.Int("batch.files", total),
		attribute.Int("batch.succeeded", succeeded),
		attribute.Int("batch.failed", failed),
	)
}

func StartFileSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	return StartSpan(ctx, "batch.file", trace.WithAttributes(attribute.String("file.path", path)))
}

// EndFileSpan closes the file span in ctx, marking it failed when err is set.
func EndFileSpan(ctx context.Context, kind, status string, err error) {
	AddSpanAttributes(ctx,
		attribute.String("file.kind", kind),
		attribute.String("file.status", status),
	)
	if err != nil {
		RecordError(ctx, err)
	} else {
		trace.SpanFromContext(ctx).SetStatus(codes.Ok, "")
	}
	trace.SpanFromContext(ctx).End()
}
