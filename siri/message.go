// Package siri models the SIRI Situation Exchange message grammar: requests, responses and
// deliveries as a closed set of typed variants with pure XML serialization and soft parsing.
package siri

import (
	"errors"
	"time"
)

const (
	// Namespace is the SIRI XML namespace of every root element.
	Namespace = "http://www.siri.org.uk/siri"
	// Version is the protocol version written on the root and nested request elements.
	Version = "2.0"
	// ContentType is sent with every POST body.
	ContentType = "application/xml"
)

// ErrMalformed marks a body that does not parse as a SIRI message of the expected kind.
var ErrMalformed = errors.New("malformed siri message")

// Kind groups message variants.
type Kind int

const (
	KindRequest Kind = iota + 1
	KindResponse
	KindDelivery
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// Message is implemented only by the variants in this package.
type Message interface {
	Kind() Kind
	// Name is the element name directly below Siri.
	Name() string
	message()
}

// ErrorCondition is the negative branch of a status block. Description is optional free text.
type ErrorCondition struct {
	Description string
}

// Element names of the variants.
const (
	nameCheckStatusRequest            = "CheckStatusRequest"
	nameSubscriptionRequest           = "SubscriptionRequest"
	nameTerminateSubscriptionRequest  = "TerminateSubscriptionRequest"
	nameServiceRequest                = "ServiceRequest"
	nameCheckStatusResponse           = "CheckStatusResponse"
	nameSubscriptionResponse          = "SubscriptionResponse"
	nameTerminateSubscriptionResponse = "TerminateSubscriptionResponse"
	nameDataReceivedAcknowledgement   = "DataReceivedAcknowledgement"
	nameServiceDelivery               = "ServiceDelivery"

	// legacyTerminationResponse is the element name older peers use for TerminateSubscriptionResponse.
	legacyTerminationResponse = "TerminationSubscriptionResponse"
)

// shortestPossibleCycle is the recommended minimum polling interval announced to peers.
const shortestPossibleCycle = "PT1M"

func utc(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := utc(*t)
	return &v
}
