package siri

import (
	"time"

	"vdv736/domain"
)

// ServiceDelivery carries one SituationExchangeDelivery. Used both for pushed deliveries and for
// answering a ServiceRequest.
type ServiceDelivery struct {
	ResponseTimestamp         time.Time
	ProducerRef               string
	ResponseMessageIdentifier string
	Status                    bool
	MoreData                  bool
	Error                     *ErrorCondition
	SituationExchangeDelivery SituationExchangeDelivery
}

// SituationExchangeDelivery holds the situations in delivery order. SubscriberRef and
// SubscriptionRef are empty for pull answers. Skipped counts inbound situation elements dropped
// for lacking a SituationNumber; it is never written.
type SituationExchangeDelivery struct {
	ResponseTimestamp time.Time
	SubscriberRef     string
	SubscriptionRef   string
	Situations        []domain.Situation
	Skipped           int
}

// NewServiceDelivery starts an empty delivery identified by messageID.
func NewServiceDelivery(producerRef, messageID string, now time.Time) *ServiceDelivery {
	return &ServiceDelivery{
		ResponseTimestamp:         utc(now),
		ProducerRef:               producerRef,
		ResponseMessageIdentifier: messageID,
		Status:                    true,
		SituationExchangeDelivery: SituationExchangeDelivery{
			ResponseTimestamp: utc(now),
			Situations:        []domain.Situation{},
		},
	}
}

// NewServiceDeliveryError is the negative answer to a ServiceRequest that could not be served.
func NewServiceDeliveryError(producerRef, messageID, description string, now time.Time) *ServiceDelivery {
	d := NewServiceDelivery(producerRef, messageID, now)
	d.Status = false
	d.Error = &ErrorCondition{Description: description}
	return d
}

// AddressedTo sets the subscriber back-reference of a pushed delivery.
func (d *ServiceDelivery) AddressedTo(sub domain.Subscription) *ServiceDelivery {
	d.SituationExchangeDelivery.SubscriberRef = sub.Subscriber
	d.SituationExchangeDelivery.SubscriptionRef = sub.ID
	return d
}

// AddSituation appends situations in order.
func (d *ServiceDelivery) AddSituation(situations ...domain.Situation) *ServiceDelivery {
	d.SituationExchangeDelivery.Situations = append(d.SituationExchangeDelivery.Situations, situations...)
	return d
}

func (*ServiceDelivery) Kind() Kind   { return KindDelivery }
func (*ServiceDelivery) Name() string { return nameServiceDelivery }
func (*ServiceDelivery) message()     {}
