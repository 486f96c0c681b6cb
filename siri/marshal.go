package siri

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"vdv736/isotime"
)

// Wire shapes. Element order follows the SIRI 2.0 schema.

type xmlSiri struct {
	XMLName xml.Name `xml:"http://www.siri.org.uk/siri Siri"`
	Version string   `xml:"version,attr"`

	CheckStatusRequest            *xmlCheckStatusRequest            `xml:"CheckStatusRequest,omitempty"`
	SubscriptionRequest           *xmlSubscriptionRequest           `xml:"SubscriptionRequest,omitempty"`
	TerminateSubscriptionRequest  *xmlTerminateSubscriptionRequest  `xml:"TerminateSubscriptionRequest,omitempty"`
	ServiceRequest                *xmlServiceRequest                `xml:"ServiceRequest,omitempty"`
	CheckStatusResponse           *xmlCheckStatusResponse           `xml:"CheckStatusResponse,omitempty"`
	SubscriptionResponse          *xmlSubscriptionResponse          `xml:"SubscriptionResponse,omitempty"`
	TerminateSubscriptionResponse *xmlTerminateSubscriptionResponse `xml:"TerminateSubscriptionResponse,omitempty"`
	DataReceivedAcknowledgement   *xmlDataReceivedAcknowledgement   `xml:"DataReceivedAcknowledgement,omitempty"`
	ServiceDelivery               *xmlServiceDelivery               `xml:"ServiceDelivery,omitempty"`
}

type xmlErrorCondition struct {
	OtherError  *struct{} `xml:"OtherError"`
	Description string    `xml:"Description,omitempty"`
}

type xmlCheckStatusRequest struct {
	Version          string `xml:"version,attr"`
	RequestTimestamp string `xml:"RequestTimestamp"`
	RequestorRef     string `xml:"RequestorRef"`
}

type xmlSubscriptionRequest struct {
	RequestTimestamp                     string                                  `xml:"RequestTimestamp"`
	RequestorRef                         string                                  `xml:"RequestorRef"`
	SituationExchangeSubscriptionRequest xmlSituationExchangeSubscriptionRequest `xml:"SituationExchangeSubscriptionRequest"`
}

type xmlSituationExchangeSubscriptionRequest struct {
	SubscriberRef            string                      `xml:"SubscriberRef"`
	SubscriptionIdentifier   string                      `xml:"SubscriptionIdentifier"`
	InitialTerminationTime   string                      `xml:"InitialTerminationTime"`
	SituationExchangeRequest xmlSituationExchangeRequest `xml:"SituationExchangeRequest"`
}

type xmlSituationExchangeRequest struct {
	Version          string `xml:"version,attr"`
	RequestTimestamp string `xml:"RequestTimestamp"`
}

type xmlTerminateSubscriptionRequest struct {
	RequestTimestamp string    `xml:"RequestTimestamp"`
	RequestorRef     string    `xml:"RequestorRef"`
	All              *struct{} `xml:"All,omitempty"`
}

type xmlServiceRequest struct {
	RequestTimestamp         string                      `xml:"RequestTimestamp"`
	RequestorRef             string                      `xml:"RequestorRef"`
	SituationExchangeRequest xmlSituationExchangeRequest `xml:"SituationExchangeRequest"`
}

type xmlCheckStatusResponse struct {
	ResponseTimestamp     string             `xml:"ResponseTimestamp"`
	ProducerRef           string             `xml:"ProducerRef,omitempty"`
	Status                bool               `xml:"Status"`
	ErrorCondition        *xmlErrorCondition `xml:"ErrorCondition,omitempty"`
	ShortestPossibleCycle string             `xml:"ShortestPossibleCycle,omitempty"`
	ServiceStartedTime    string             `xml:"ServiceStartedTime,omitempty"`
}

type xmlResponseStatus struct {
	ResponseTimestamp     string             `xml:"ResponseTimestamp"`
	SubscriptionRef       string             `xml:"SubscriptionRef"`
	Status                bool               `xml:"Status"`
	ErrorCondition        *xmlErrorCondition `xml:"ErrorCondition,omitempty"`
	ValidUntil            string             `xml:"ValidUntil,omitempty"`
	ShortestPossibleCycle string             `xml:"ShortestPossibleCycle,omitempty"`
}

type xmlSubscriptionResponse struct {
	ResponseTimestamp  string              `xml:"ResponseTimestamp"`
	ResponderRef       string              `xml:"ResponderRef"`
	ResponseStatus     []xmlResponseStatus `xml:"ResponseStatus"`
	ServiceStartedTime string              `xml:"ServiceStartedTime,omitempty"`
}

type xmlTerminationResponseStatus struct {
	ResponseTimestamp string             `xml:"ResponseTimestamp"`
	SubscriberRef     string             `xml:"SubscriberRef,omitempty"`
	SubscriptionRef   string             `xml:"SubscriptionRef"`
	Status            bool               `xml:"Status"`
	ErrorCondition    *xmlErrorCondition `xml:"ErrorCondition,omitempty"`
}

type xmlTerminateSubscriptionResponse struct {
	ResponseTimestamp         string                         `xml:"ResponseTimestamp"`
	ResponderRef              string                         `xml:"ResponderRef"`
	TerminationResponseStatus []xmlTerminationResponseStatus `xml:"TerminationResponseStatus"`
}

type xmlDataReceivedAcknowledgement struct {
	ResponseTimestamp string `xml:"ResponseTimestamp"`
	ConsumerRef       string `xml:"ConsumerRef"`
	RequestMessageRef string `xml:"RequestMessageRef"`
	Status            bool   `xml:"Status"`
}

type xmlServiceDelivery struct {
	ResponseTimestamp         string                       `xml:"ResponseTimestamp"`
	ProducerRef               string                       `xml:"ProducerRef"`
	ResponseMessageIdentifier string                       `xml:"ResponseMessageIdentifier"`
	Status                    bool                         `xml:"Status"`
	ErrorCondition            *xmlErrorCondition           `xml:"ErrorCondition,omitempty"`
	MoreData                  bool                         `xml:"MoreData"`
	SituationExchangeDelivery xmlSituationExchangeDelivery `xml:"SituationExchangeDelivery"`
}

type xmlSituationExchangeDelivery struct {
	Version           string        `xml:"version,attr"`
	ResponseTimestamp string        `xml:"ResponseTimestamp"`
	SubscriberRef     string        `xml:"SubscriberRef,omitempty"`
	SubscriptionRef   string        `xml:"SubscriptionRef,omitempty"`
	Situations        xmlSituations `xml:"Situations"`
}

// xmlSituations embeds the stored situation payloads verbatim.
type xmlSituations struct {
	Payload string `xml:",innerxml"`
}

// Marshal serializes m as a complete SIRI document with XML declaration.
func Marshal(m Message) ([]byte, error) {
	env := xmlSiri{Version: Version}
	switch v := m.(type) {
	case *CheckStatusRequest:
		env.CheckStatusRequest = &xmlCheckStatusRequest{
			Version:          Version,
			RequestTimestamp: isotime.Format(v.RequestTimestamp),
			RequestorRef:     v.RequestorRef,
		}
	case *SubscriptionRequest:
		env.SubscriptionRequest = &xmlSubscriptionRequest{
			RequestTimestamp: isotime.Format(v.RequestTimestamp),
			RequestorRef:     v.RequestorRef,
			SituationExchangeSubscriptionRequest: xmlSituationExchangeSubscriptionRequest{
				SubscriberRef:          v.SubscriberRef,
				SubscriptionIdentifier: v.SubscriptionIdentifier,
				InitialTerminationTime: isotime.Format(v.InitialTerminationTime),
				SituationExchangeRequest: xmlSituationExchangeRequest{
					Version:          Version,
					RequestTimestamp: isotime.Format(v.RequestTimestamp),
				},
			},
		}
	case *TerminateSubscriptionRequest:
		req := &xmlTerminateSubscriptionRequest{
			RequestTimestamp: isotime.Format(v.RequestTimestamp),
			RequestorRef:     v.RequestorRef,
		}
		if v.All {
			req.All = &struct{}{}
		}
		env.TerminateSubscriptionRequest = req
	case *ServiceRequest:
		env.ServiceRequest = &xmlServiceRequest{
			RequestTimestamp: isotime.Format(v.RequestTimestamp),
			RequestorRef:     v.RequestorRef,
			SituationExchangeRequest: xmlSituationExchangeRequest{
				Version:          Version,
				RequestTimestamp: isotime.Format(v.RequestTimestamp),
			},
		}
	case *CheckStatusResponse:
		env.CheckStatusResponse = &xmlCheckStatusResponse{
			ResponseTimestamp:     isotime.Format(v.ResponseTimestamp),
			ProducerRef:           v.ProducerRef,
			Status:                v.Status,
			ErrorCondition:        toXMLError(v.Error),
			ShortestPossibleCycle: v.ShortestPossibleCycle,
			ServiceStartedTime:    formatOptional(v.ServiceStartedTime),
		}
	case *SubscriptionResponse:
		resp := &xmlSubscriptionResponse{
			ResponseTimestamp:  isotime.Format(v.ResponseTimestamp),
			ResponderRef:       v.ResponderRef,
			ServiceStartedTime: formatOptional(v.ServiceStartedTime),
		}
		for _, s := range v.ResponseStatus {
			resp.ResponseStatus = append(resp.ResponseStatus, xmlResponseStatus{
				ResponseTimestamp:     isotime.Format(s.ResponseTimestamp),
				SubscriptionRef:       s.SubscriptionRef,
				Status:                s.Status,
				ErrorCondition:        toXMLError(s.Error),
				ValidUntil:            formatOptional(s.ValidUntil),
				ShortestPossibleCycle: s.ShortestPossibleCycle,
			})
		}
		env.SubscriptionResponse = resp
	case *TerminateSubscriptionResponse:
		resp := &xmlTerminateSubscriptionResponse{
			ResponseTimestamp: isotime.Format(v.ResponseTimestamp),
			ResponderRef:      v.ResponderRef,
		}
		for _, s := range v.TerminationResponseStatus {
			resp.TerminationResponseStatus = append(resp.TerminationResponseStatus, xmlTerminationResponseStatus{
				ResponseTimestamp: isotime.Format(s.ResponseTimestamp),
				SubscriberRef:     s.SubscriberRef,
				SubscriptionRef:   s.SubscriptionRef,
				Status:            s.Status,
				ErrorCondition:    toXMLError(s.Error),
			})
		}
		env.TerminateSubscriptionResponse = resp
	case *DataReceivedAcknowledgement:
		env.DataReceivedAcknowledgement = &xmlDataReceivedAcknowledgement{
			ResponseTimestamp: isotime.Format(v.ResponseTimestamp),
			ConsumerRef:       v.ConsumerRef,
			RequestMessageRef: v.RequestMessageRef,
			Status:            v.Status,
		}
	case *ServiceDelivery:
		var payload strings.Builder
		for _, s := range v.SituationExchangeDelivery.Situations {
			payload.WriteString(s.Payload)
		}
		env.ServiceDelivery = &xmlServiceDelivery{
			ResponseTimestamp:         isotime.Format(v.ResponseTimestamp),
			ProducerRef:               v.ProducerRef,
			ResponseMessageIdentifier: v.ResponseMessageIdentifier,
			Status:                    v.Status,
			ErrorCondition:            toXMLError(v.Error),
			MoreData:                  v.MoreData,
			SituationExchangeDelivery: xmlSituationExchangeDelivery{
				Version:           Version,
				ResponseTimestamp: isotime.Format(v.SituationExchangeDelivery.ResponseTimestamp),
				SubscriberRef:     v.SituationExchangeDelivery.SubscriberRef,
				SubscriptionRef:   v.SituationExchangeDelivery.SubscriptionRef,
				Situations:        xmlSituations{Payload: payload.String()},
			},
		}
	default:
		return nil, fmt.Errorf("marshal: unsupported message %T", m)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(env); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", m.Name(), err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", m.Name(), err)
	}
	return buf.Bytes(), nil
}

func toXMLError(e *ErrorCondition) *xmlErrorCondition {
	if e == nil {
		return nil
	}
	return &xmlErrorCondition{OtherError: &struct{}{}, Description: e.Description}
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return isotime.Format(*t)
}
