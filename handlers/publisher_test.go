package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdv736/domain"
	"vdv736/interfaces/mock"
	"vdv736/service"
	"vdv736/siri"
)

func newPublisherServer(subs *mock.StoreMock[domain.Subscription], situations *mock.StoreMock[domain.Situation]) *PublisherHTTP {
	p := service.NewPublisher("publisher-b", subs, situations, knownParticipants(), &mock.TransportMock{}, fixedClock(), log.NewNopLogger())
	return NewPublisherHTTP(p, log.NewNopLogger())
}

func TestPublisherHTTP_CheckStatus(t *testing.T) {
	e := newEcho()
	newPublisherServer(&mock.StoreMock[domain.Subscription]{}, &mock.StoreMock[domain.Situation]{}).
		Register(e, domain.Participant{})

	resp := answer[*siri.CheckStatusResponse](t, post(e, "/status", mustMarshal(t, siri.NewCheckStatusRequest("subscriber-a", testNow))))
	assert.True(t, resp.Status)
	assert.Equal(t, "publisher-b", resp.ProducerRef)
	require.NotNil(t, resp.ServiceStartedTime)
	assert.Equal(t, testNow, *resp.ServiceStartedTime)

	resp = answer[*siri.CheckStatusResponse](t, post(e, "/status", []byte("garbage")))
	assert.False(t, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Description, "request could not be read")
}

func TestPublisherHTTP_Subscribe(t *testing.T) {
	termination := testNow.Add(24 * time.Hour)
	valid := mustMarshal(t, siri.NewSubscriptionRequest(
		domain.NewSubscription("sub-1", "subscriber-a", domain.Participant{Ref: "publisher-b"}, termination), testNow))
	unknown := mustMarshal(t, siri.NewSubscriptionRequest(
		domain.NewSubscription("sub-2", "subscriber-x", domain.Participant{Ref: "publisher-b"}, termination), testNow))

	tests := []struct {
		name    string
		body    []byte
		create  func(ctx context.Context, key string, item domain.Subscription) error
		status  bool
		subID   string
		created int
	}{
		{
			name: "accepted",
			body: valid,
			create: func(ctx context.Context, key string, item domain.Subscription) error {
				assert.Equal(t, "sub-1", key)
				assert.Equal(t, "subscriber-a", item.Subscriber)
				assert.Equal(t, "http://127.0.0.1:9001/delivery", item.URL(item.DeliveryEndpoint))
				return nil
			},
			status:  true,
			subID:   "sub-1",
			created: 1,
		},
		{
			name: "duplicate id",
			body: valid,
			create: func(ctx context.Context, key string, item domain.Subscription) error {
				return service.NewEntityAlreadyExistsError("key already exists", nil)
			},
			subID:   "sub-1",
			created: 1,
		},
		{
			name:  "unknown subscriber",
			body:  unknown,
			subID: "sub-2",
		},
		{
			name: "wrong message",
			body: mustMarshal(t, siri.NewServiceRequest("subscriber-a", testNow)),
		},
		{
			name: "not xml",
			body: []byte("{}"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := &mock.StoreMock[domain.Subscription]{CreateValueFunc: tt.create}
			e := newEcho()
			newPublisherServer(subs, &mock.StoreMock[domain.Situation]{}).Register(e, domain.Participant{})

			resp := answer[*siri.SubscriptionResponse](t, post(e, "/subscribe", tt.body))
			require.Len(t, resp.ResponseStatus, 1)
			assert.Equal(t, tt.status, resp.ResponseStatus[0].Status)
			assert.Equal(t, tt.subID, resp.ResponseStatus[0].SubscriptionRef)
			assert.Len(t, subs.CreateValueCalls(), tt.created)
			if !tt.status {
				assert.NotNil(t, resp.ResponseStatus[0].Error)
			}
		})
	}
}

func TestPublisherHTTP_Unsubscribe(t *testing.T) {
	subs := &mock.StoreMock[domain.Subscription]{
		ListAllValuesFunc: func(ctx context.Context) ([]domain.Subscription, error) {
			return []domain.Subscription{
				{ID: "sub-1", Subscriber: "subscriber-a"},
				{ID: "sub-2", Subscriber: "subscriber-c"},
			}, nil
		},
		DeleteValueFunc: func(ctx context.Context, key string) error {
			assert.Equal(t, "sub-1", key)
			return nil
		},
	}
	e := newEcho()
	newPublisherServer(subs, &mock.StoreMock[domain.Situation]{}).Register(e, domain.Participant{})

	resp := answer[*siri.TerminateSubscriptionResponse](t, post(e, "/unsubscribe", mustMarshal(t, siri.NewTerminateSubscriptionRequest("subscriber-a", testNow))))
	require.Len(t, resp.TerminationResponseStatus, 1)
	assert.True(t, resp.TerminationResponseStatus[0].Status)
	assert.Equal(t, "sub-1", resp.TerminationResponseStatus[0].SubscriptionRef)
	assert.Len(t, subs.DeleteValueCalls(), 1)

	resp = answer[*siri.TerminateSubscriptionResponse](t, post(e, "/unsubscribe", []byte("<Siri/>")))
	require.Len(t, resp.TerminationResponseStatus, 1)
	assert.False(t, resp.TerminationResponseStatus[0].Status)
}

func TestPublisherHTTP_Request(t *testing.T) {
	situations := &mock.StoreMock[domain.Situation]{
		ListAllValuesFunc: func(ctx context.Context) ([]domain.Situation, error) {
			return []domain.Situation{
				{ID: "b", Payload: "<PtSituationElement><SituationNumber>b</SituationNumber></PtSituationElement>"},
				{ID: "a", Payload: "<PtSituationElement><SituationNumber>a</SituationNumber></PtSituationElement>"},
			}, nil
		},
	}
	e := newEcho()
	self := domain.Participant{RequestEndpoint: "siri/request"}
	newPublisherServer(&mock.StoreMock[domain.Subscription]{}, situations).Register(e, self)

	d := answer[*siri.ServiceDelivery](t, post(e, "/siri/request", mustMarshal(t, siri.NewServiceRequest("subscriber-a", testNow))))
	assert.True(t, d.Status)
	require.Len(t, d.SituationExchangeDelivery.Situations, 2)
	assert.Equal(t, "a", d.SituationExchangeDelivery.Situations[0].ID)
	assert.Equal(t, "b", d.SituationExchangeDelivery.Situations[1].ID)

	d = answer[*siri.ServiceDelivery](t, post(e, "/siri/request", mustMarshal(t, siri.NewCheckStatusRequest("subscriber-a", testNow))))
	assert.False(t, d.Status)
	require.NotNil(t, d.Error)
}

func TestPublisherHTTP_Routes(t *testing.T) {
	e := newEcho()
	newPublisherServer(&mock.StoreMock[domain.Subscription]{}, &mock.StoreMock[domain.Situation]{}).
		Register(e, domain.Participant{})

	rec := post(e, "/delivery", mustMarshal(t, siri.NewCheckStatusRequest("subscriber-a", testNow)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewPublisherHTTP_Panics(t *testing.T) {
	assert.Panics(t, func() { NewPublisherHTTP(nil, log.NewNopLogger()) })
}
