package siri

import "time"

// CheckStatusResponse answers a CheckStatusRequest. ServiceStartedTime is the restart marker.
type CheckStatusResponse struct {
	ResponseTimestamp     time.Time
	ProducerRef           string
	Status                bool
	Error                 *ErrorCondition
	ShortestPossibleCycle string
	ServiceStartedTime    *time.Time
}

// NewCheckStatusResponse reports a healthy producer that came up at started.
func NewCheckStatusResponse(producerRef string, started time.Time, now time.Time) *CheckStatusResponse {
	return &CheckStatusResponse{
		ResponseTimestamp:     utc(now),
		ProducerRef:           producerRef,
		Status:                true,
		ShortestPossibleCycle: shortestPossibleCycle,
		ServiceStartedTime:    utcPtr(&started),
	}
}

// NewCheckStatusError reports a request the producer could not process.
func NewCheckStatusError(producerRef, description string, now time.Time) *CheckStatusResponse {
	return &CheckStatusResponse{
		ResponseTimestamp: utc(now),
		ProducerRef:       producerRef,
		Status:            false,
		Error:             &ErrorCondition{Description: description},
	}
}

func (*CheckStatusResponse) Kind() Kind   { return KindResponse }
func (*CheckStatusResponse) Name() string { return nameCheckStatusResponse }
func (*CheckStatusResponse) message()     {}

// ResponseStatus is the per-subscription outcome inside a SubscriptionResponse.
type ResponseStatus struct {
	ResponseTimestamp     time.Time
	SubscriptionRef       string
	Status                bool
	ValidUntil            *time.Time
	ShortestPossibleCycle string
	Error                 *ErrorCondition
}

// SubscriptionResponse answers a SubscriptionRequest with one status block per requested subscription.
type SubscriptionResponse struct {
	ResponseTimestamp  time.Time
	ResponderRef       string
	ResponseStatus     []ResponseStatus
	ServiceStartedTime *time.Time
}

// NewSubscriptionResponse starts an empty response; add outcomes with Accept and Reject.
func NewSubscriptionResponse(responderRef string, started *time.Time, now time.Time) *SubscriptionResponse {
	return &SubscriptionResponse{
		ResponseTimestamp:  utc(now),
		ResponderRef:       responderRef,
		ResponseStatus:     []ResponseStatus{},
		ServiceStartedTime: utcPtr(started),
	}
}

// Accept records an accepted subscription valid until validUntil.
func (r *SubscriptionResponse) Accept(subscriptionID string, validUntil time.Time) *SubscriptionResponse {
	r.ResponseStatus = append(r.ResponseStatus, ResponseStatus{
		ResponseTimestamp:     r.ResponseTimestamp,
		SubscriptionRef:       subscriptionID,
		Status:                true,
		ValidUntil:            utcPtr(&validUntil),
		ShortestPossibleCycle: shortestPossibleCycle,
	})
	return r
}

// Reject records a rejected subscription.
func (r *SubscriptionResponse) Reject(subscriptionID, description string) *SubscriptionResponse {
	r.ResponseStatus = append(r.ResponseStatus, ResponseStatus{
		ResponseTimestamp: r.ResponseTimestamp,
		SubscriptionRef:   subscriptionID,
		Status:            false,
		Error:             &ErrorCondition{Description: description},
	})
	return r
}

func (*SubscriptionResponse) Kind() Kind   { return KindResponse }
func (*SubscriptionResponse) Name() string { return nameSubscriptionResponse }
func (*SubscriptionResponse) message()     {}

// TerminationResponseStatus is the outcome for one terminated subscription.
type TerminationResponseStatus struct {
	ResponseTimestamp time.Time
	SubscriberRef     string
	SubscriptionRef   string
	Status            bool
	Error             *ErrorCondition
}

// TerminateSubscriptionResponse lists zero or more termination outcomes. Zero outcomes means there
// was nothing to terminate.
type TerminateSubscriptionResponse struct {
	ResponseTimestamp         time.Time
	ResponderRef              string
	TerminationResponseStatus []TerminationResponseStatus
}

// NewTerminateSubscriptionResponse starts an empty response; add outcomes with AddOk and AddError.
func NewTerminateSubscriptionResponse(responderRef string, now time.Time) *TerminateSubscriptionResponse {
	return &TerminateSubscriptionResponse{
		ResponseTimestamp:         utc(now),
		ResponderRef:              responderRef,
		TerminationResponseStatus: []TerminationResponseStatus{},
	}
}

// AddOk records a terminated subscription.
func (r *TerminateSubscriptionResponse) AddOk(subscriberRef, subscriptionID string) *TerminateSubscriptionResponse {
	r.TerminationResponseStatus = append(r.TerminationResponseStatus, TerminationResponseStatus{
		ResponseTimestamp: r.ResponseTimestamp,
		SubscriberRef:     subscriberRef,
		SubscriptionRef:   subscriptionID,
		Status:            true,
	})
	return r
}

// AddError records a subscription that could not be terminated.
func (r *TerminateSubscriptionResponse) AddError(subscriberRef, subscriptionID, description string) *TerminateSubscriptionResponse {
	r.TerminationResponseStatus = append(r.TerminationResponseStatus, TerminationResponseStatus{
		ResponseTimestamp: r.ResponseTimestamp,
		SubscriberRef:     subscriberRef,
		SubscriptionRef:   subscriptionID,
		Status:            false,
		Error:             &ErrorCondition{Description: description},
	})
	return r
}

func (*TerminateSubscriptionResponse) Kind() Kind   { return KindResponse }
func (*TerminateSubscriptionResponse) Name() string { return nameTerminateSubscriptionResponse }
func (*TerminateSubscriptionResponse) message()     {}

// DataReceivedAcknowledgement answers a pushed ServiceDelivery.
type DataReceivedAcknowledgement struct {
	ResponseTimestamp time.Time
	ConsumerRef       string
	RequestMessageRef string
	Status            bool
}

// NewDataReceivedAcknowledgement acknowledges the delivery identified by requestMessageRef.
func NewDataReceivedAcknowledgement(consumerRef, requestMessageRef string, ok bool, now time.Time) *DataReceivedAcknowledgement {
	return &DataReceivedAcknowledgement{
		ResponseTimestamp: utc(now),
		ConsumerRef:       consumerRef,
		RequestMessageRef: requestMessageRef,
		Status:            ok,
	}
}

func (*DataReceivedAcknowledgement) Kind() Kind   { return KindResponse }
func (*DataReceivedAcknowledgement) Name() string { return nameDataReceivedAcknowledgement }
func (*DataReceivedAcknowledgement) message()     {}
