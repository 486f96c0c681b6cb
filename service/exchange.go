package service

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"vdv736/interfaces"
	"vdv736/siri"
)

// exchange posts msg to url and parses the answer as T. Errors are classified as
// internal_server_error (marshalling), transport_error or malformed_message.
func exchange[T siri.Message](ctx context.Context, transport interfaces.Transport, url string, msg siri.Message) (T, error) {
	var zero T
	body, err := siri.Marshal(msg)
	if err != nil {
		return zero, NewInternalServerError("failed to marshal "+msg.Name(), err)
	}

	raw, err := transport.Post(ctx, url, body)
	if err != nil {
		return zero, NewTransportError(msg.Name()+" to "+url+" failed", err)
	}

	resp, err := siri.Expect[T](raw)
	if err != nil {
		return zero, NewMalformedMessageError("unexpected answer to "+msg.Name(), err)
	}
	return resp, nil
}

// errorDescription returns the ErrorCondition text, or def.
func errorDescription(e *siri.ErrorCondition, def string) string {
	if e == nil || e.Description == "" {
		return def
	}
	return e.Description
}

// logFailure logs err under a msg that tells the error classes apart.
func logFailure(logger log.Logger, err error, keyvals ...any) {
	msg := "operation failed"
	switch ToMyErrorCode(err) {
	case ErrTransport:
		msg = "transport error"
	case ErrProtocol:
		msg = "protocol error"
	case ErrMalformedMessage:
		msg = "malformed message"
	case ErrInternalServerError:
		msg = "persistence error"
	case ErrEntityNotFound:
		msg = "not found"
	}
	level.Warn(logger).Log(append([]any{"msg", msg, "err", err}, keyvals...)...)
}
