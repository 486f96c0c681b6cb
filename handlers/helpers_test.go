package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"vdv736/domain"
	"vdv736/interfaces/mock"
	"vdv736/service"
	"vdv736/siri"
)

var testNow = time.Date(2026, 2, 19, 10, 0, 0, 0, time.UTC)

func fixedClock() *mock.TimeProviderMock {
	return &mock.TimeProviderMock{NowFunc: func() time.Time { return testNow }}
}

func newEcho() *echo.Echo {
	e := echo.New()
	service.RegisterErrorHandler(e, log.NewNopLogger())
	return e
}

// post sends body to path and returns the recorded answer.
func post(e *echo.Echo, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, siri.ContentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// answer asserts a 200 SIRI answer of type T.
func answer[T siri.Message](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, siri.ContentType, rec.Header().Get(echo.HeaderContentType))
	msg, err := siri.Expect[T](rec.Body.Bytes())
	require.NoError(t, err)
	return msg
}

func mustMarshal(t *testing.T, msg siri.Message) []byte {
	t.Helper()
	b, err := siri.Marshal(msg)
	require.NoError(t, err)
	return b
}

func knownParticipants() *mock.ParticipantDirectoryMock {
	return &mock.ParticipantDirectoryMock{
		LookupFunc: func(ref string) (domain.Participant, error) {
			if ref != "subscriber-a" {
				return domain.Participant{}, service.NewEntityNotFoundError("unknown participant "+ref, nil)
			}
			return domain.Participant{Ref: ref, Host: "127.0.0.1", Port: 9001}.WithDefaults(), nil
		},
	}
}
