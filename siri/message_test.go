package siri

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdv736/domain"
)

var testNow = time.Date(2026, 2, 19, 10, 30, 15, 500, time.UTC)

const testSituation = `<PtSituationElement><CreationTime>2026-02-19T10:00:00Z</CreationTime><SituationNumber>sit-1</SituationNumber><Summary>Track works</Summary></PtSituationElement>`

func TestMarshal_Envelope(t *testing.T) {
	body, err := Marshal(NewCheckStatusRequest("subscriber-a", testNow))
	require.NoError(t, err)

	s := string(body)
	assert.Contains(t, s, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, s, `<Siri xmlns="http://www.siri.org.uk/siri" version="2.0">`)
	assert.Contains(t, s, `<CheckStatusRequest version="2.0">`)
	assert.Contains(t, s, `<RequestTimestamp>2026-02-19T10:30:15Z</RequestTimestamp>`)
	assert.Contains(t, s, `<RequestorRef>subscriber-a</RequestorRef>`)
}

func TestRoundTrip(t *testing.T) {
	started := time.Date(2026, 2, 19, 8, 0, 0, 0, time.UTC)
	sub := domain.NewSubscription("sub-1", "subscriber-a", domain.Participant{Ref: "publisher-b", Host: "localhost", Port: 9090}, testNow.Add(24*time.Hour))

	tests := []struct {
		name string
		msg  Message
	}{
		{name: "check status request", msg: NewCheckStatusRequest("subscriber-a", testNow)},
		{name: "subscription request", msg: NewSubscriptionRequest(sub, testNow)},
		{name: "terminate request", msg: NewTerminateSubscriptionRequest("subscriber-a", testNow)},
		{name: "service request", msg: NewServiceRequest("subscriber-a", testNow)},
		{name: "check status response", msg: NewCheckStatusResponse("publisher-b", started, testNow)},
		{name: "check status error", msg: NewCheckStatusError("publisher-b", "bad request", testNow)},
		{name: "subscription response", msg: NewSubscriptionResponse("publisher-b", &started, testNow).
			Accept("sub-1", testNow.Add(time.Hour)).
			Reject("sub-2", "duplicate")},
		{name: "terminate response", msg: NewTerminateSubscriptionResponse("publisher-b", testNow).
			AddOk("subscriber-a", "sub-1").
			AddError("subscriber-a", "sub-2", "store failure")},
		{name: "empty terminate response", msg: NewTerminateSubscriptionResponse("publisher-b", testNow)},
		{name: "acknowledgement", msg: NewDataReceivedAcknowledgement("subscriber-a", "msg-1", true, testNow)},
		{name: "delivery", msg: NewServiceDelivery("publisher-b", "msg-1", testNow).
			AddressedTo(sub).
			AddSituation(domain.Situation{ID: "sit-1", Payload: testSituation})},
		{name: "delivery error", msg: NewServiceDeliveryError("publisher-b", "msg-2", "unavailable", testNow)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := Marshal(tt.msg)
			require.NoError(t, err)

			got, err := Parse(body)
			require.NoError(t, err)
			assert.Equal(t, tt.msg, got)
		})
	}
}

func TestParse_LegacyTerminationResponse(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<Siri xmlns="http://www.siri.org.uk/siri" version="2.0">
  <TerminationSubscriptionResponse>
    <ResponseTimestamp>2026-02-19T10:30:15+00:00</ResponseTimestamp>
    <ResponderRef>publisher-b</ResponderRef>
    <TerminationResponseStatus>
      <SubscriberRef>subscriber-a</SubscriberRef>
      <SubscriptionRef>sub-1</SubscriptionRef>
      <Status>true</Status>
    </TerminationResponseStatus>
  </TerminationSubscriptionResponse>
</Siri>`)

	resp, err := Expect[*TerminateSubscriptionResponse](body)
	require.NoError(t, err)
	assert.Equal(t, "publisher-b", resp.ResponderRef)
	assert.True(t, resp.ResponseTimestamp.Equal(time.Date(2026, 2, 19, 10, 30, 15, 0, time.UTC)))
	require.Len(t, resp.TerminationResponseStatus, 1)
	assert.True(t, resp.TerminationResponseStatus[0].Status)
	assert.Equal(t, "sub-1", resp.TerminationResponseStatus[0].SubscriptionRef)
}

func TestParse_ServiceStartedTimeInsideStatus(t *testing.T) {
	body := []byte(`<Siri xmlns="http://www.siri.org.uk/siri" version="2.0">
  <SubscriptionResponse>
    <ResponderRef>publisher-b</ResponderRef>
    <ResponseStatus>
      <SubscriptionRef>sub-1</SubscriptionRef>
      <Status>true</Status>
      <ValidUntil>2026-02-20T10:30:15Z</ValidUntil>
      <ServiceStartedTime>2026-02-19T08:00:00Z</ServiceStartedTime>
    </ResponseStatus>
  </SubscriptionResponse>
</Siri>`)

	resp, err := Expect[*SubscriptionResponse](body)
	require.NoError(t, err)
	require.NotNil(t, resp.ServiceStartedTime)
	assert.Equal(t, time.Date(2026, 2, 19, 8, 0, 0, 0, time.UTC), *resp.ServiceStartedTime)
	require.Len(t, resp.ResponseStatus, 1)
	assert.True(t, resp.ResponseStatus[0].Status)
}

func TestParse_MissingOptionalFields(t *testing.T) {
	resp, err := Expect[*CheckStatusResponse]([]byte(`<Siri><CheckStatusResponse/></Siri>`))
	require.NoError(t, err)
	assert.False(t, resp.Status)
	assert.Nil(t, resp.ServiceStartedTime)
	assert.Nil(t, resp.Error)
	assert.True(t, resp.ResponseTimestamp.IsZero())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not xml", body: "Internal Server Error"},
		{name: "empty", body: ""},
		{name: "wrong root", body: `<Other><CheckStatusRequest/></Other>`},
		{name: "empty siri", body: `<Siri xmlns="http://www.siri.org.uk/siri"/>`},
		{name: "unknown variant", body: `<Siri><EstimatedTimetableDelivery/></Siri>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
		})
	}
}

func TestParse_DeliverySkipsUnnumberedSituations(t *testing.T) {
	body := []byte(`<Siri xmlns="http://www.siri.org.uk/siri" version="2.0">
  <ServiceDelivery>
    <ResponseMessageIdentifier>msg-1</ResponseMessageIdentifier>
    <SituationExchangeDelivery>
      <Situations>
        <PtSituationElement><Summary>no number</Summary></PtSituationElement>
        <PtSituationElement><SituationNumber>good</SituationNumber></PtSituationElement>
        <PtSituationElement><SituationNumber> </SituationNumber></PtSituationElement>
      </Situations>
    </SituationExchangeDelivery>
  </ServiceDelivery>
</Siri>`)

	d, err := Expect[*ServiceDelivery](body)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", d.ResponseMessageIdentifier)
	assert.Equal(t, 2, d.SituationExchangeDelivery.Skipped)
	require.Len(t, d.SituationExchangeDelivery.Situations, 1)
	assert.Equal(t, "good", d.SituationExchangeDelivery.Situations[0].ID)
}

func TestExpect_WrongKind(t *testing.T) {
	body, err := Marshal(NewCheckStatusRequest("subscriber-a", testNow))
	require.NoError(t, err)

	_, err = Expect[*CheckStatusResponse](body)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "CheckStatusRequest")
}

func TestDelivery_KeepsSituationOrder(t *testing.T) {
	d := NewServiceDelivery("publisher-b", "msg-1", testNow)
	for _, id := range []string{"c", "a", "b"} {
		s, err := NewSituation([]byte(`<PtSituationElement><SituationNumber>` + id + `</SituationNumber></PtSituationElement>`))
		require.NoError(t, err)
		d.AddSituation(s)
	}

	body, err := Marshal(d)
	require.NoError(t, err)
	got, err := Expect[*ServiceDelivery](body)
	require.NoError(t, err)

	var ids []string
	for _, s := range got.SituationExchangeDelivery.Situations {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
	assert.Empty(t, got.SituationExchangeDelivery.SubscriptionRef)
}

func TestNewSituation(t *testing.T) {
	s, err := NewSituation([]byte(`<?xml version="1.0" encoding="UTF-8"?>` + "\n" + testSituation))
	require.NoError(t, err)
	assert.Equal(t, "sit-1", s.ID)
	assert.Equal(t, testSituation, s.Payload)

	_, err = NewSituation([]byte(`<PtSituationElement><Summary>x</Summary></PtSituationElement>`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = NewSituation([]byte(`not xml`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindRequest, NewServiceRequest("a", testNow).Kind())
	assert.Equal(t, KindResponse, NewDataReceivedAcknowledgement("a", "m", true, testNow).Kind())
	assert.Equal(t, KindDelivery, NewServiceDelivery("a", "m", testNow).Kind())
	assert.Equal(t, "delivery", KindDelivery.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
