package handlers

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/labstack/echo/v4"

	"vdv736/domain"
	"vdv736/service"
	"vdv736/siri"
)

// PublisherHTTP serves the publisher endpoints: status, subscribe, unsubscribe and pull request.
type PublisherHTTP struct {
	publisher *service.Publisher
	logger    log.Logger
}

// NewPublisherHTTP creates a new PublisherHTTP.
func NewPublisherHTTP(publisher *service.Publisher, logger log.Logger) *PublisherHTTP {
	return &PublisherHTTP{
		publisher: service.NilPanic(publisher, "handlers.publisher.go: publisher is required"),
		logger:    log.WithPrefix(logger, "component", "PublisherHTTP"),
	}
}

// Register mounts the endpoints at the paths configured for self.
func (h *PublisherHTTP) Register(e *echo.Echo, self domain.Participant) {
	self = self.WithDefaults()
	e.POST(self.StatusEndpoint, h.CheckStatus)
	e.POST(self.SubscribeEndpoint, h.Subscribe)
	e.POST(self.UnsubscribeEndpoint, h.Unsubscribe)
	e.POST(self.RequestEndpoint, h.Request)
}

// CheckStatus (POST /status) answers a CheckStatusRequest.
func (h *PublisherHTTP) CheckStatus(ectx echo.Context) error {
	body, err := readBody(ectx)
	if err != nil {
		return err
	}
	req, err := siri.Expect[*siri.CheckStatusRequest](body)
	if err != nil {
		level.Warn(h.logger).Log("msg", "malformed status request", "err", err)
		return writeSiri(ectx, h.publisher.StatusError(describe(err)))
	}
	return writeSiri(ectx, h.publisher.HandleStatus(ectx.Request().Context(), req))
}

// Subscribe (POST /subscribe) answers a SubscriptionRequest.
func (h *PublisherHTTP) Subscribe(ectx echo.Context) error {
	body, err := readBody(ectx)
	if err != nil {
		return err
	}
	req, err := siri.Expect[*siri.SubscriptionRequest](body)
	if err != nil {
		level.Warn(h.logger).Log("msg", "malformed subscription request", "err", err)
		return writeSiri(ectx, h.publisher.SubscribeError(describe(err)))
	}
	return writeSiri(ectx, h.publisher.HandleSubscribe(ectx.Request().Context(), req))
}

// Unsubscribe (POST /unsubscribe) answers a TerminateSubscriptionRequest.
func (h *PublisherHTTP) Unsubscribe(ectx echo.Context) error {
	body, err := readBody(ectx)
	if err != nil {
		return err
	}
	req, err := siri.Expect[*siri.TerminateSubscriptionRequest](body)
	if err != nil {
		level.Warn(h.logger).Log("msg", "malformed termination request", "err", err)
		return writeSiri(ectx, h.publisher.UnsubscribeError(describe(err)))
	}
	return writeSiri(ectx, h.publisher.HandleUnsubscribe(ectx.Request().Context(), req))
}

// Request (POST /request) answers a ServiceRequest with every stored situation.
func (h *PublisherHTTP) Request(ectx echo.Context) error {
	body, err := readBody(ectx)
	if err != nil {
		return err
	}
	req, err := siri.Expect[*siri.ServiceRequest](body)
	if err != nil {
		level.Warn(h.logger).Log("msg", "malformed service request", "err", err)
		return writeSiri(ectx, h.publisher.PullRequestError(describe(err)))
	}
	return writeSiri(ectx, h.publisher.HandlePullRequest(ectx.Request().Context(), req))
}
