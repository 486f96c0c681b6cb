package siri

import (
	"time"

	"vdv736/domain"
)

// CheckStatusRequest asks a publisher whether it is alive and when it started.
type CheckStatusRequest struct {
	RequestTimestamp time.Time
	RequestorRef     string
}

// NewCheckStatusRequest builds a status check on behalf of requestorRef.
func NewCheckStatusRequest(requestorRef string, now time.Time) *CheckStatusRequest {
	return &CheckStatusRequest{RequestTimestamp: utc(now), RequestorRef: requestorRef}
}

func (*CheckStatusRequest) Kind() Kind   { return KindRequest }
func (*CheckStatusRequest) Name() string { return nameCheckStatusRequest }
func (*CheckStatusRequest) message()     {}

// SubscriptionRequest carries one SituationExchangeSubscriptionRequest.
type SubscriptionRequest struct {
	RequestTimestamp       time.Time
	RequestorRef           string
	SubscriberRef          string
	SubscriptionIdentifier string
	// InitialTerminationTime is zero when an inbound request carried no parseable instant.
	InitialTerminationTime time.Time
}

// NewSubscriptionRequest builds the request that creates sub at the publisher.
func NewSubscriptionRequest(sub domain.Subscription, now time.Time) *SubscriptionRequest {
	return &SubscriptionRequest{
		RequestTimestamp:       utc(now),
		RequestorRef:           sub.Subscriber,
		SubscriberRef:          sub.Subscriber,
		SubscriptionIdentifier: sub.ID,
		InitialTerminationTime: utc(sub.Termination),
	}
}

func (*SubscriptionRequest) Kind() Kind   { return KindRequest }
func (*SubscriptionRequest) Name() string { return nameSubscriptionRequest }
func (*SubscriptionRequest) message()     {}

// TerminateSubscriptionRequest always targets all subscriptions of the requestor.
type TerminateSubscriptionRequest struct {
	RequestTimestamp time.Time
	RequestorRef     string
	All              bool
}

// NewTerminateSubscriptionRequest builds a termination of every subscription held by requestorRef.
func NewTerminateSubscriptionRequest(requestorRef string, now time.Time) *TerminateSubscriptionRequest {
	return &TerminateSubscriptionRequest{RequestTimestamp: utc(now), RequestorRef: requestorRef, All: true}
}

func (*TerminateSubscriptionRequest) Kind() Kind   { return KindRequest }
func (*TerminateSubscriptionRequest) Name() string { return nameTerminateSubscriptionRequest }
func (*TerminateSubscriptionRequest) message()     {}

// ServiceRequest is the one-shot pull of all situations.
type ServiceRequest struct {
	RequestTimestamp time.Time
	RequestorRef     string
}

// NewServiceRequest builds a situation exchange pull request.
func NewServiceRequest(requestorRef string, now time.Time) *ServiceRequest {
	return &ServiceRequest{RequestTimestamp: utc(now), RequestorRef: requestorRef}
}

func (*ServiceRequest) Kind() Kind   { return KindRequest }
func (*ServiceRequest) Name() string { return nameServiceRequest }
func (*ServiceRequest) message()     {}
