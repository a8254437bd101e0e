package media

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	traceScope = "chirp.media"

	spanUpload   = "chirp.media.upload"
	spanInit     = "chirp.media.init"
	spanTransfer = "chirp.media.transfer"
	spanPart     = "chirp.media.part"
	spanConfirm  = "chirp.media.confirm"

	attrMediaID    = "chirp.media_id"
	attrMediaType  = "chirp.media_type"
	attrSize       = "chirp.size_bytes"
	attrPartNumber = "chirp.part_number"
	attrPartCount  = "chirp.part_count"
	attrStatus     = "chirp.status"
)

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(traceScope).Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(attrStatus, "error"))
	} else {
		span.SetStatus(codes.Ok, "")
		span.SetAttributes(attribute.String(attrStatus, "success"))
	}
	span.End()
}
