package route

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/bufbuild/connect-go"

	"github.com/veeru594/ai-agent/internal/observability"
	"github.com/veeru594/ai-agent/internal/rpc"
	"github.com/veeru594/ai-agent/internal/rpc/connectjson"
)

const ConnectRouteProcedure = "/jarvis.router.v1.RouterService/Route"

// NewConnectHandler builds a Connect bidi stream handler for Route.
func NewConnectHandler(runner Runner, metrics *observability.Metrics) (string, http.Handler) {
	h := &connectRouteHandler{runner: runner, metrics: metrics}
	return ConnectRouteProcedure, connect.NewBidiStreamHandler(ConnectRouteProcedure, h.handle, connect.WithCodec(connectjson.Codec{}))
}

type connectRouteHandler struct {
	runner  Runner
	metrics *observability.Metrics
}

func (h *connectRouteHandler) handle(ctx context.Context, stream *connect.BidiStream[rpc.RouteStreamRequest, rpc.RouteEvent]) error {
	h.metrics.IncActiveSessions("connect")
	defer h.metrics.DecActiveSessions("connect")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	first, err := stream.Receive()
	if err != nil {
		h.metrics.RecordTransportError("connect", "receive_first")
		return err
	}
	if first == nil || first.Route == nil {
		h.metrics.RecordTransportError("connect", "missing_route")
		return connect.NewError(connect.CodeInvalidArgument, errors.New("first message must include route payload"))
	}
	if strings.TrimSpace(first.Route.Prompt) == "" {
		return connect.NewError(connect.CodeInvalidArgument, errors.New("prompt is required"))
	}
	if h.runner == nil {
		return connect.NewError(connect.CodeUnavailable, errors.New("router unavailable"))
	}

	req := *first.Route
	req.RequestID = EnsureRequestID(firstNonEmpty(req.RequestID, first.RequestID))

	// A cancel message or a closed request side stops event delivery.
	go func() {
		for {
			msg, recvErr := stream.Receive()
			if recvErr != nil {
				if !errors.Is(recvErr, context.Canceled) && !isEOF(recvErr) {
					h.metrics.RecordTransportError("connect", "receive_stream")
				}
				if !isEOF(recvErr) {
					cancel()
				}
				return
			}
			if msg != nil && msg.Cancel {
				cancel()
				return
			}
		}
	}()

	events, runErr := h.runner.Run(ctx, req)
	if runErr != nil {
		h.metrics.RecordTransportError("connect", "runner_error")
		return connect.NewError(connect.CodeInternal, runErr)
	}

	for ev := range events {
		if err := stream.Send(&ev); err != nil {
			h.metrics.RecordTransportError("connect", "send")
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return connect.NewError(connect.CodeCanceled, err)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
