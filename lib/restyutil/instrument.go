package restyutil

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentOutput interface {
	Write(id string, contents string)
}

type instrumentCtx struct {
	output    InstrumentOutput
	tracer    trace.Tracer
	idcounter *uint64
}

// InstrumentClient wraps every request in a span.
//
// `tracer` can be nil, it will default to a library name of "resty"
// `output` can also be nil, if it isn't every exchange is written to it
func InstrumentClient(client *resty.Client, tracer trace.Tracer, output InstrumentOutput) {
	if tracer == nil {
		tracer = otel.Tracer("resty")
	}

	var idcounter uint64
	i := instrumentCtx{output: output, tracer: tracer, idcounter: &idcounter}
	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

type messageKeyType int

var messageKey messageKeyType

type message struct {
	id   string
	span trace.Span
}

func (i instrumentCtx) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	ctx, span := i.tracer.Start(req.Context(), fmt.Sprintf("http %s", req.Method))
	span.SetAttributes(
		semconv.HTTPRequestMethodKey.String(req.Method),
		semconv.URLFull(req.URL),
	)

	id := strconv.FormatUint(atomic.AddUint64(i.idcounter, 1), 10)
	ctx = context.WithValue(ctx, messageKey, message{id: id, span: span})

	req.SetContext(ctx)
	return nil
}

func (i instrumentCtx) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	msg, ok := res.Request.Context().Value(messageKey).(message)
	if !ok {
		return nil
	}
	defer msg.span.End()

	msg.span.SetAttributes(semconv.HTTPResponseStatusCode(res.StatusCode()))
	if res.IsError() {
		msg.span.SetStatus(codes.Error, res.Status())
	}

	if i.output != nil {
		i.output.Write(msg.id, formatHttpMessage(res))
	}
	return nil
}

func (i instrumentCtx) onError(req *resty.Request, err error) {
	// a middleware registered before ours may have failed, in which case
	// no span was started.
	msg, ok := req.Context().Value(messageKey).(message)
	if !ok {
		return
	}
	defer msg.span.End()

	msg.span.RecordError(err)
	msg.span.SetStatus(codes.Error, "request failed")

	if i.output != nil {
		i.output.Write(msg.id, fmt.Sprintf("%s %s\n\n%s", req.Method, req.URL, err.Error()))
	}
}
