package handlers

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/labstack/echo/v4"

	"vdv736/domain"
	"vdv736/service"
	"vdv736/siri"
	"vdv736/sirixml"
)

// SubscriberHTTP serves the subscriber delivery endpoint.
type SubscriberHTTP struct {
	subscriber *service.Subscriber
	logger     log.Logger
}

// NewSubscriberHTTP creates a new SubscriberHTTP.
func NewSubscriberHTTP(subscriber *service.Subscriber, logger log.Logger) *SubscriberHTTP {
	return &SubscriberHTTP{
		subscriber: service.NilPanic(subscriber, "handlers.subscriber.go: subscriber is required"),
		logger:     log.WithPrefix(logger, "component", "SubscriberHTTP"),
	}
}

// Register mounts the delivery endpoint at the path configured for self.
func (h *SubscriberHTTP) Register(e *echo.Echo, self domain.Participant) {
	e.POST(self.WithDefaults().DeliveryEndpoint, h.Delivery)
}

// Delivery (POST /delivery) stores a pushed ServiceDelivery and acknowledges it.
func (h *SubscriberHTTP) Delivery(ectx echo.Context) error {
	body, err := readBody(ectx)
	if err != nil {
		return err
	}
	d, err := siri.Expect[*siri.ServiceDelivery](body)
	if err != nil {
		level.Warn(h.logger).Log("msg", "malformed delivery", "err", err)
		return writeSiri(ectx, h.subscriber.DeliveryError(messageIdentifier(body)))
	}
	return writeSiri(ectx, h.subscriber.HandleDelivery(ectx.Request().Context(), d))
}

// messageIdentifier digs the delivery id out of a body that failed to parse as a delivery, so the
// negative acknowledgement can still reference it.
func messageIdentifier(body []byte) string {
	tree, err := sirixml.Parse(body)
	if err != nil {
		return ""
	}
	return tree.Value("Siri.ServiceDelivery.ResponseMessageIdentifier", "")
}
