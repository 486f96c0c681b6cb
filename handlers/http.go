// Package handlers contains the SIRI HTTP endpoints of both roles.
//
// Every endpoint answers HTTP 200 with a grammar-valid SIRI body, negative when the request could
// not be read. Only failures that leave no such body reach the echo error handler.
package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"vdv736/service"
	"vdv736/siri"
)

// maxBodyBytes caps inbound request bodies.
const maxBodyBytes = 16 << 20

func readBody(ectx echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(ectx.Request().Body, maxBodyBytes))
	if err != nil {
		return nil, service.NewBadParameterError("can't read request body", err)
	}
	return body, nil
}

func writeSiri(ectx echo.Context, msg siri.Message) error {
	b, err := siri.Marshal(msg)
	if err != nil {
		return service.NewInternalServerError("can't marshal "+msg.Name(), err)
	}
	return ectx.Blob(http.StatusOK, siri.ContentType, b)
}

func describe(err error) string {
	return fmt.Sprintf("request could not be read: %v", err)
}
