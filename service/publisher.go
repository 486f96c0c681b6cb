package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"vdv736/domain"
	"vdv736/interfaces"
	"vdv736/siri"
)

// DeliveryResult is the outcome of pushing one situation to one subscription. Err is nil when the
// subscriber acknowledged the delivery.
type DeliveryResult struct {
	SubscriptionID string
	SubscriberRef  string
	Err            error
}

// Publisher drives the publisher role: it stores situations, fans them out to every subscription and
// answers inbound status, subscribe, unsubscribe and pull requests.
type Publisher struct {
	ref           string
	started       time.Time
	subscriptions interfaces.Store[domain.Subscription]
	situations    interfaces.Store[domain.Situation]
	directory     interfaces.ParticipantDirectory
	transport     interfaces.Transport
	clock         interfaces.TimeProvider
	locks         *keyedMutex
	logger        log.Logger
}

// NewPublisher creates a Publisher acting as ref. Its service-started instant is taken from clock
// here. Panics on empty ref or nil dependencies.
func NewPublisher(
	ref string,
	subscriptions interfaces.Store[domain.Subscription],
	situations interfaces.Store[domain.Situation],
	directory interfaces.ParticipantDirectory,
	transport interfaces.Transport,
	clock interfaces.TimeProvider,
	logger log.Logger,
) *Publisher {
	clock = NilPanic(clock, "service.publisher.go: time provider is required")
	return &Publisher{
		ref:           StrPanic(ref, "service.publisher.go: ref is required"),
		started:       clock.Now().UTC().Truncate(time.Second),
		subscriptions: NilPanic(subscriptions, "service.publisher.go: subscriptions store is required"),
		situations:    NilPanic(situations, "service.publisher.go: situations store is required"),
		directory:     NilPanic(directory, "service.publisher.go: participant directory is required"),
		transport:     NilPanic(transport, "service.publisher.go: transport is required"),
		clock:         clock,
		locks:         newKeyedMutex(),
		logger:        log.WithPrefix(NilPanic(logger, "service.publisher.go: logger is required"), "component", "Publisher", "ref", ref),
	}
}

// Ref is the participant reference this publisher acts as.
func (p *Publisher) Ref() string {
	return p.ref
}

// StartedAt is the service-started instant reported to status checks.
func (p *Publisher) StartedAt() time.Time {
	return p.started
}

// PublishSituation stores situation and delivers it to every subscription concurrently. The id is
// taken from the payload's SituationNumber; a payload without one, or one that disagrees with a
// given ID, is rejected before anything is stored. A failed delivery is reported in its result and
// never affects the other subscriptions or the stored subscription record. The error is non-nil
// only when the situation was rejected, could not be stored or the subscriptions could not be listed.
func (p *Publisher) PublishSituation(ctx context.Context, situation domain.Situation) ([]DeliveryResult, error) {
	parsed, err := siri.NewSituation([]byte(situation.Payload))
	if err != nil {
		return nil, NewBadParameterError("situation payload rejected", err)
	}
	if situation.ID != "" && situation.ID != parsed.ID {
		return nil, NewBadParameterError(fmt.Sprintf("situation id %s does not match SituationNumber %s", situation.ID, parsed.ID), nil)
	}
	situation = parsed

	if err := p.situations.WriteValue(ctx, situation.ID, situation); err != nil {
		logFailure(p.logger, err, "op", "publish", "situation", situation.ID)
		return nil, fmt.Errorf("publishSituation failed to store situation %s, err: %w", situation.ID, err)
	}

	subs, err := p.subscriptions.ListAllValues(ctx)
	if err != nil {
		logFailure(p.logger, err, "op", "publish", "situation", situation.ID)
		return nil, fmt.Errorf("publishSituation failed to list subscriptions, err: %w", err)
	}

	results := make([]DeliveryResult, len(subs))
	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub domain.Subscription) {
			defer wg.Done()
			results[i] = DeliveryResult{
				SubscriptionID: sub.ID,
				SubscriberRef:  sub.Subscriber,
				Err:            p.deliver(ctx, sub, situation),
			}
		}(i, sub)
	}
	wg.Wait()

	delivered := 0
	for _, r := range results {
		if r.Err == nil {
			delivered++
		}
	}
	level.Info(p.logger).Log("msg", "situation published", "situation", situation.ID, "subscriptions", len(subs), "delivered", delivered)
	return results, nil
}

func (p *Publisher) deliver(ctx context.Context, sub domain.Subscription, situations ...domain.Situation) error {
	d := siri.NewServiceDelivery(p.ref, uuid.NewString(), p.clock.Now()).
		AddressedTo(sub).
		AddSituation(situations...)

	ack, err := exchange[*siri.DataReceivedAcknowledgement](ctx, p.transport, sub.URL(sub.DeliveryEndpoint), d)
	if err == nil && !ack.Status {
		err = NewProtocolError("delivery not acknowledged", nil)
	}
	if err != nil {
		logFailure(p.logger, err, "op", "deliver", "subscription", sub.ID, "subscriber", sub.Subscriber, "message", d.ResponseMessageIdentifier)
		return err
	}
	return nil
}

// RemoveSituation deletes a situation. Subscribers are not notified.
func (p *Publisher) RemoveSituation(ctx context.Context, id string) error {
	if err := p.situations.DeleteValue(ctx, id); err != nil {
		return fmt.Errorf("removeSituation failed to delete situation %s, err: %w", id, err)
	}
	return nil
}

// HandleStatus answers a status check with this publisher's service-started instant.
func (p *Publisher) HandleStatus(_ context.Context, req *siri.CheckStatusRequest) *siri.CheckStatusResponse {
	level.Debug(p.logger).Log("msg", "status check", "requestor", req.RequestorRef)
	return siri.NewCheckStatusResponse(p.ref, p.started, p.clock.Now())
}

// StatusError is the negative answer to a status check that could not be read.
func (p *Publisher) StatusError(description string) *siri.CheckStatusResponse {
	return siri.NewCheckStatusError(p.ref, description, p.clock.Now())
}

// HandleSubscribe stores the requested subscription. The subscriber must be a known participant,
// the id must be unused and the termination must lie in the future.
func (p *Publisher) HandleSubscribe(ctx context.Context, req *siri.SubscriptionRequest) *siri.SubscriptionResponse {
	now := p.clock.Now()
	resp := siri.NewSubscriptionResponse(p.ref, &p.started, now)
	id := req.SubscriptionIdentifier

	reject := func(description string, err error) *siri.SubscriptionResponse {
		level.Warn(p.logger).Log("msg", "subscription rejected", "subscription", id, "subscriber", req.SubscriberRef, "reason", description, "err", err)
		return resp.Reject(id, description)
	}

	switch {
	case id == "":
		return reject("missing SubscriptionIdentifier", nil)
	case req.SubscriberRef == "":
		return reject("missing SubscriberRef", nil)
	case req.InitialTerminationTime.IsZero():
		return reject("missing or invalid InitialTerminationTime", nil)
	case !req.InitialTerminationTime.After(now):
		return reject("InitialTerminationTime is not in the future", nil)
	}

	subscriber, err := p.directory.Lookup(req.SubscriberRef)
	if err != nil {
		return reject("unknown subscriber "+req.SubscriberRef, err)
	}

	unlock := p.locks.Lock(id)
	defer unlock()
	sub := domain.NewInboundSubscription(id, subscriber, p.ref, req.InitialTerminationTime)
	if err := p.subscriptions.CreateValue(ctx, id, sub); err != nil {
		if IsEntityAlreadyExistsError(err) {
			return reject("subscription id already in use", err)
		}
		logFailure(p.logger, err, "op", "subscribe", "subscription", id)
		return reject("subscription could not be stored", err)
	}

	level.Info(p.logger).Log("msg", "subscription accepted", "subscription", id, "subscriber", sub.Subscriber, "termination", sub.Termination)
	return resp.Accept(id, sub.Termination)
}

// SubscribeError is the negative answer to a subscription request that could not be read.
func (p *Publisher) SubscribeError(description string) *siri.SubscriptionResponse {
	return siri.NewSubscriptionResponse(p.ref, &p.started, p.clock.Now()).Reject("", description)
}

// HandleUnsubscribe removes every subscription held by the requestor. The answer lists one outcome
// per matching subscription and is empty when nothing matched.
func (p *Publisher) HandleUnsubscribe(ctx context.Context, req *siri.TerminateSubscriptionRequest) *siri.TerminateSubscriptionResponse {
	resp := siri.NewTerminateSubscriptionResponse(p.ref, p.clock.Now())
	requestor := req.RequestorRef

	subs, err := p.subscriptions.ListAllValues(ctx)
	if err != nil {
		logFailure(p.logger, err, "op", "unsubscribe", "requestor", requestor)
		return resp.AddError(requestor, "", "subscriptions could not be read")
	}

	for _, sub := range subs {
		if sub.Subscriber != requestor {
			continue
		}
		if err := p.removeSubscription(ctx, sub.ID); err != nil {
			logFailure(p.logger, err, "op", "unsubscribe", "subscription", sub.ID)
			resp.AddError(requestor, sub.ID, "subscription could not be removed")
			continue
		}
		resp.AddOk(requestor, sub.ID)
	}

	level.Info(p.logger).Log("msg", "subscriptions terminated", "requestor", requestor, "count", len(resp.TerminationResponseStatus))
	return resp
}

func (p *Publisher) removeSubscription(ctx context.Context, id string) error {
	unlock := p.locks.Lock(id)
	defer unlock()
	return p.subscriptions.DeleteValue(ctx, id)
}

// UnsubscribeError is the negative answer to a termination request that could not be read.
func (p *Publisher) UnsubscribeError(description string) *siri.TerminateSubscriptionResponse {
	return siri.NewTerminateSubscriptionResponse(p.ref, p.clock.Now()).AddError("", "", description)
}

// HandlePullRequest answers with a snapshot of every stored situation, ordered by id.
func (p *Publisher) HandlePullRequest(ctx context.Context, req *siri.ServiceRequest) *siri.ServiceDelivery {
	situations, err := p.situations.ListAllValues(ctx)
	if err != nil {
		logFailure(p.logger, err, "op", "request", "requestor", req.RequestorRef)
		return p.PullRequestError("situations could not be read")
	}

	slices.SortFunc(situations, func(a, b domain.Situation) int {
		return strings.Compare(a.ID, b.ID)
	})
	level.Debug(p.logger).Log("msg", "pull request", "requestor", req.RequestorRef, "count", len(situations))
	return siri.NewServiceDelivery(p.ref, uuid.NewString(), p.clock.Now()).AddSituation(situations...)
}

// PullRequestError is the negative answer to a pull request that could not be served.
func (p *Publisher) PullRequestError(description string) *siri.ServiceDelivery {
	return siri.NewServiceDeliveryError(p.ref, uuid.NewString(), description, p.clock.Now())
}

// Situations returns every stored situation.
func (p *Publisher) Situations(ctx context.Context) ([]domain.Situation, error) {
	return p.situations.ListAllValues(ctx)
}

// Subscriptions returns every stored subscription.
func (p *Publisher) Subscriptions(ctx context.Context) ([]domain.Subscription, error) {
	return p.subscriptions.ListAllValues(ctx)
}
