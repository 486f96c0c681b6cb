package domain

import "time"

// SubscriptionState is the lifecycle position of a subscription as seen by the subscriber.
type SubscriptionState string

const (
	StateUnsubscribed SubscriptionState = "UNSUBSCRIBED"
	StatePending      SubscriptionState = "PENDING"
	StateActive       SubscriptionState = "ACTIVE"
	StateUnhealthy    SubscriptionState = "UNHEALTHY"
	StateTerminated   SubscriptionState = "TERMINATED"
)

// Subscription is the durable record of one situation-exchange subscription. Host, port, protocol
// and endpoint paths describe the counterpart: the publisher on the subscriber side, the subscriber
// on the publisher side.
type Subscription struct {
	ID                  string     `json:"id"`
	Host                string     `json:"host,omitempty"`
	Port                int        `json:"port,omitempty"`
	Protocol            string     `json:"protocol,omitempty"`
	Subscriber          string     `json:"subscriber"`
	Publisher           string     `json:"publisher,omitempty"`
	Termination         time.Time  `json:"termination"`
	StatusEndpoint      string     `json:"status_endpoint,omitempty"`
	SubscribeEndpoint   string     `json:"subscribe_endpoint,omitempty"`
	UnsubscribeEndpoint string     `json:"unsubscribe_endpoint,omitempty"`
	DeliveryEndpoint    string     `json:"delivery_endpoint,omitempty"`
	RequestEndpoint     string     `json:"request_endpoint,omitempty"`
	Healthy             bool       `json:"healthy"`
	RemoteServiceStart  *time.Time `json:"remote_service_start,omitempty"`
}

// NewSubscription creates a healthy subscription towards the given publisher participant.
func NewSubscription(id, subscriberRef string, publisher Participant, termination time.Time) Subscription {
	return Subscription{
		ID:                  id,
		Host:                publisher.Host,
		Port:                publisher.Port,
		Protocol:            publisher.Protocol,
		Subscriber:          subscriberRef,
		Publisher:           publisher.Ref,
		Termination:         termination.UTC(),
		StatusEndpoint:      publisher.StatusEndpoint,
		SubscribeEndpoint:   publisher.SubscribeEndpoint,
		UnsubscribeEndpoint: publisher.UnsubscribeEndpoint,
		DeliveryEndpoint:    publisher.DeliveryEndpoint,
		RequestEndpoint:     publisher.RequestEndpoint,
		Healthy:             true,
	}
}

// NewInboundSubscription creates the publisher-side record of a subscription requested by subscriber.
func NewInboundSubscription(id string, subscriber Participant, publisherRef string, termination time.Time) Subscription {
	sub := NewSubscription(id, subscriber.Ref, subscriber, termination)
	sub.Publisher = publisherRef
	return sub
}

// State derives the lifecycle state of a persisted subscription.
func (s Subscription) State() SubscriptionState {
	if s.Healthy {
		return StateActive
	}
	return StateUnhealthy
}

// URL returns the counterpart URL for one of the stored endpoint paths.
func (s Subscription) URL(endpoint string) string {
	return BuildURL(s.Protocol, s.Host, s.Port, endpoint)
}
