package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipant_WithDefaults(t *testing.T) {
	p := Participant{Ref: "pub", Host: "localhost", Port: 9090, StatusEndpoint: "check"}.WithDefaults()

	assert.Equal(t, "http", p.Protocol)
	assert.Equal(t, "/check", p.StatusEndpoint)
	assert.Equal(t, DefaultSubscribeEndpoint, p.SubscribeEndpoint)
	assert.Equal(t, DefaultUnsubscribeEndpoint, p.UnsubscribeEndpoint)
	assert.Equal(t, DefaultDeliveryEndpoint, p.DeliveryEndpoint)
	assert.Equal(t, DefaultRequestEndpoint, p.RequestEndpoint)
	assert.Equal(t, "localhost:9090", p.Address())
	assert.Equal(t, "http://localhost:9090/check", p.URL(p.StatusEndpoint))
	assert.Equal(t, "https://example.org:443/x", BuildURL("https", "example.org", 443, "x"))
}

func TestSubscription(t *testing.T) {
	publisher := Participant{Ref: "pub", Host: "localhost", Port: 9090}.WithDefaults()
	termination := time.Date(2026, 2, 20, 11, 0, 0, 0, time.FixedZone("CET", 3600))

	sub := NewSubscription("sub-1", "sub-ref", publisher, termination)
	assert.Equal(t, "pub", sub.Publisher)
	assert.Equal(t, "sub-ref", sub.Subscriber)
	assert.Equal(t, time.UTC, sub.Termination.Location())
	assert.True(t, termination.Equal(sub.Termination))
	assert.Equal(t, StateActive, sub.State())
	assert.Equal(t, "http://localhost:9090/unsubscribe", sub.URL(sub.UnsubscribeEndpoint))

	sub.Healthy = false
	assert.Equal(t, StateUnhealthy, sub.State())

	subscriber := Participant{Ref: "sub-ref", Host: "client", Port: 9091}.WithDefaults()
	inbound := NewInboundSubscription("sub-2", subscriber, "pub", termination)
	assert.Equal(t, "sub-ref", inbound.Subscriber)
	assert.Equal(t, "pub", inbound.Publisher)
	assert.Equal(t, "http://client:9091/delivery", inbound.URL(inbound.DeliveryEndpoint))
}

func TestCodecs(t *testing.T) {
	started := time.Date(2026, 2, 19, 8, 0, 0, 0, time.UTC)
	sub := NewSubscription("sub-1", "sub-ref", Participant{Ref: "pub", Host: "h", Port: 1}.WithDefaults(), started.Add(time.Hour))
	sub.RemoteServiceStart = &started

	b, err := MarshalSubscription(sub)
	require.NoError(t, err)
	got, err := UnmarshalSubscription("sub-1", b)
	require.NoError(t, err)
	assert.Equal(t, sub, got)

	_, err = UnmarshalSubscription("sub-1", []byte("{"))
	assert.Error(t, err)

	situation := Situation{ID: "sit-1", Payload: "<PtSituationElement/>"}
	b, err = MarshalSituation(situation)
	require.NoError(t, err)
	assert.Equal(t, "<PtSituationElement/>", string(b))
	back, err := UnmarshalSituation("sit-1", b)
	require.NoError(t, err)
	assert.Equal(t, situation, back)
}
