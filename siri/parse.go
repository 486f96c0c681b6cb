package siri

import (
	"fmt"
	"time"

	"github.com/beevik/etree"

	"vdv736/domain"
	"vdv736/isotime"
	"vdv736/sirixml"
)

const rootElement = "Siri"

// Parse reads an inbound SIRI document into its typed variant. Fields the grammar marks optional
// may be missing; callers validate what they depend on. Every failure wraps ErrMalformed.
func Parse(body []byte) (Message, error) {
	tree, err := sirixml.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	root := tree.Root()
	if root.Tag != rootElement {
		return nil, fmt.Errorf("%w: root element %q", ErrMalformed, root.Tag)
	}
	children := root.ChildElements()
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: empty %s", ErrMalformed, rootElement)
	}

	el := children[0]
	switch el.Tag {
	case nameCheckStatusRequest:
		return &CheckStatusRequest{
			RequestTimestamp: instant(el, "RequestTimestamp"),
			RequestorRef:     sirixml.Value(el, "RequestorRef", ""),
		}, nil
	case nameSubscriptionRequest:
		return parseSubscriptionRequest(el), nil
	case nameTerminateSubscriptionRequest:
		return &TerminateSubscriptionRequest{
			RequestTimestamp: instant(el, "RequestTimestamp"),
			RequestorRef:     sirixml.Value(el, "RequestorRef", ""),
			All:              sirixml.Exists(el, "All"),
		}, nil
	case nameServiceRequest:
		return &ServiceRequest{
			RequestTimestamp: instant(el, "RequestTimestamp"),
			RequestorRef:     sirixml.Value(el, "RequestorRef", ""),
		}, nil
	case nameCheckStatusResponse:
		return &CheckStatusResponse{
			ResponseTimestamp:     instant(el, "ResponseTimestamp"),
			ProducerRef:           sirixml.Value(el, "ProducerRef", ""),
			Status:                sirixml.Bool(el, "Status", false),
			Error:                 errorCondition(el),
			ShortestPossibleCycle: sirixml.Value(el, "ShortestPossibleCycle", ""),
			ServiceStartedTime:    optionalInstant(el, "ServiceStartedTime"),
		}, nil
	case nameSubscriptionResponse:
		return parseSubscriptionResponse(el), nil
	case nameTerminateSubscriptionResponse, legacyTerminationResponse:
		return parseTerminateSubscriptionResponse(el), nil
	case nameDataReceivedAcknowledgement:
		return &DataReceivedAcknowledgement{
			ResponseTimestamp: instant(el, "ResponseTimestamp"),
			ConsumerRef:       sirixml.Value(el, "ConsumerRef", ""),
			RequestMessageRef: sirixml.Value(el, "RequestMessageRef", ""),
			Status:            sirixml.Bool(el, "Status", false),
		}, nil
	case nameServiceDelivery:
		return parseServiceDelivery(el), nil
	default:
		return nil, fmt.Errorf("%w: unknown message %q", ErrMalformed, el.Tag)
	}
}

// Expect parses body and asserts it is the variant T.
func Expect[T Message](body []byte) (T, error) {
	var zero T
	m, err := Parse(body)
	if err != nil {
		return zero, err
	}
	v, ok := m.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %s, want %T", ErrMalformed, m.Name(), zero)
	}
	return v, nil
}

func parseSubscriptionRequest(el *etree.Element) *SubscriptionRequest {
	const sx = "SituationExchangeSubscriptionRequest"
	return &SubscriptionRequest{
		RequestTimestamp:       instant(el, "RequestTimestamp"),
		RequestorRef:           sirixml.Value(el, "RequestorRef", ""),
		SubscriberRef:          sirixml.Value(el, sx+".SubscriberRef", ""),
		SubscriptionIdentifier: sirixml.Value(el, sx+".SubscriptionIdentifier", ""),
		InitialTerminationTime: instant(el, sx+".InitialTerminationTime"),
	}
}

func parseSubscriptionResponse(el *etree.Element) *SubscriptionResponse {
	resp := &SubscriptionResponse{
		ResponseTimestamp:  instant(el, "ResponseTimestamp"),
		ResponderRef:       sirixml.Value(el, "ResponderRef", ""),
		ResponseStatus:     []ResponseStatus{},
		ServiceStartedTime: optionalInstant(el, "ServiceStartedTime"),
	}
	for _, s := range sirixml.Elements(el, "ResponseStatus") {
		resp.ResponseStatus = append(resp.ResponseStatus, ResponseStatus{
			ResponseTimestamp:     instant(s, "ResponseTimestamp"),
			SubscriptionRef:       sirixml.Value(s, "SubscriptionRef", ""),
			Status:                sirixml.Bool(s, "Status", false),
			ValidUntil:            optionalInstant(s, "ValidUntil"),
			ShortestPossibleCycle: sirixml.Value(s, "ShortestPossibleCycle", ""),
			Error:                 errorCondition(s),
		})
		// Some producers put the marker inside the status block.
		if resp.ServiceStartedTime == nil {
			resp.ServiceStartedTime = optionalInstant(s, "ServiceStartedTime")
		}
	}
	return resp
}

func parseTerminateSubscriptionResponse(el *etree.Element) *TerminateSubscriptionResponse {
	resp := &TerminateSubscriptionResponse{
		ResponseTimestamp:         instant(el, "ResponseTimestamp"),
		ResponderRef:              sirixml.Value(el, "ResponderRef", ""),
		TerminationResponseStatus: []TerminationResponseStatus{},
	}
	for _, s := range sirixml.Elements(el, "TerminationResponseStatus") {
		resp.TerminationResponseStatus = append(resp.TerminationResponseStatus, TerminationResponseStatus{
			ResponseTimestamp: instant(s, "ResponseTimestamp"),
			SubscriberRef:     sirixml.Value(s, "SubscriberRef", ""),
			SubscriptionRef:   sirixml.Value(s, "SubscriptionRef", ""),
			Status:            sirixml.Bool(s, "Status", false),
			Error:             errorCondition(s),
		})
	}
	return resp
}

// parseServiceDelivery keeps every situation element that carries a SituationNumber and counts the
// rest in Skipped.
func parseServiceDelivery(el *etree.Element) *ServiceDelivery {
	const sx = "SituationExchangeDelivery"
	d := &ServiceDelivery{
		ResponseTimestamp:         instant(el, "ResponseTimestamp"),
		ProducerRef:               sirixml.Value(el, "ProducerRef", ""),
		ResponseMessageIdentifier: sirixml.Value(el, "ResponseMessageIdentifier", ""),
		Status:                    sirixml.Bool(el, "Status", true),
		MoreData:                  sirixml.Bool(el, "MoreData", false),
		Error:                     errorCondition(el),
		SituationExchangeDelivery: SituationExchangeDelivery{
			ResponseTimestamp: instant(el, sx+".ResponseTimestamp"),
			SubscriberRef:     sirixml.Value(el, sx+".SubscriberRef", ""),
			SubscriptionRef:   sirixml.Value(el, sx+".SubscriptionRef", ""),
			Situations:        []domain.Situation{},
		},
	}
	situations := sirixml.Elements(el, sx+".Situations")
	if len(situations) == 0 {
		return d
	}
	for _, s := range situations[0].ChildElements() {
		situation, err := situationFromElement(s)
		if err != nil {
			d.SituationExchangeDelivery.Skipped++
			continue
		}
		d.SituationExchangeDelivery.Situations = append(d.SituationExchangeDelivery.Situations, situation)
	}
	return d
}

func errorCondition(el *etree.Element) *ErrorCondition {
	if !sirixml.Exists(el, "ErrorCondition") {
		return nil
	}
	return &ErrorCondition{Description: sirixml.Value(el, "ErrorCondition.Description", "")}
}

// instant returns the zero time when the element is absent or not an RFC 3339 instant.
func instant(el *etree.Element, path string) time.Time {
	t := optionalInstant(el, path)
	if t == nil {
		return time.Time{}
	}
	return *t
}

func optionalInstant(el *etree.Element, path string) *time.Time {
	raw := sirixml.Value(el, path, "")
	if raw == "" {
		return nil
	}
	t, err := isotime.Parse(raw)
	if err != nil {
		return nil
	}
	return &t
}
