package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"vdv736/domain"
	"vdv736/interfaces"
	"vdv736/siri"
)

// SubscriptionTTL is the lifetime requested for every new subscription.
const SubscriptionTTL = 24 * time.Hour

// Subscriber drives the subscriber role: it subscribes to publishers, checks their status, detects
// restarts and accepts pushed deliveries. Safe for concurrent use by the endpoint and a controller.
type Subscriber struct {
	ref           string
	subscriptions interfaces.Store[domain.Subscription]
	situations    interfaces.Store[domain.Situation]
	directory     interfaces.ParticipantDirectory
	transport     interfaces.Transport
	clock         interfaces.TimeProvider
	locks         *keyedMutex
	publishers    *keyedMutex
	logger        log.Logger
}

// NewSubscriber creates a Subscriber acting as ref. Panics on empty ref or nil dependencies.
func NewSubscriber(
	ref string,
	subscriptions interfaces.Store[domain.Subscription],
	situations interfaces.Store[domain.Situation],
	directory interfaces.ParticipantDirectory,
	transport interfaces.Transport,
	clock interfaces.TimeProvider,
	logger log.Logger,
) *Subscriber {
	return &Subscriber{
		ref:           StrPanic(ref, "service.subscriber.go: ref is required"),
		subscriptions: NilPanic(subscriptions, "service.subscriber.go: subscriptions store is required"),
		situations:    NilPanic(situations, "service.subscriber.go: situations store is required"),
		directory:     NilPanic(directory, "service.subscriber.go: participant directory is required"),
		transport:     NilPanic(transport, "service.subscriber.go: transport is required"),
		clock:         NilPanic(clock, "service.subscriber.go: time provider is required"),
		locks:         newKeyedMutex(),
		publishers:    newKeyedMutex(),
		logger:        log.WithPrefix(NilPanic(logger, "service.subscriber.go: logger is required"), "component", "Subscriber", "ref", ref),
	}
}

// Ref is the participant reference this subscriber acts as.
func (s *Subscriber) Ref() string {
	return s.ref
}

// Subscribe requests a new subscription from publisherRef and persists it once accepted.
// Nothing is persisted when the publisher rejects or cannot be reached.
func (s *Subscriber) Subscribe(ctx context.Context, publisherRef string) (string, error) {
	publisher, err := s.directory.Lookup(publisherRef)
	if err != nil {
		return "", NewEntityNotFoundError("unknown publisher "+publisherRef, err)
	}

	now := s.clock.Now()
	sub := domain.NewSubscription(uuid.NewString(), s.ref, publisher, now.Add(SubscriptionTTL))
	s.logState(sub, domain.StatePending)

	resp, err := exchange[*siri.SubscriptionResponse](ctx, s.transport, publisher.URL(publisher.SubscribeEndpoint), siri.NewSubscriptionRequest(sub, now))
	if err != nil {
		logFailure(s.logger, err, "op", "subscribe", "publisher", publisherRef)
		return "", err
	}
	if err := subscriptionResult(resp, sub.ID); err != nil {
		logFailure(s.logger, err, "op", "subscribe", "publisher", publisherRef)
		return "", err
	}
	sub.RemoteServiceStart = resp.ServiceStartedTime

	unlock := s.locks.Lock(sub.ID)
	defer unlock()
	if err := s.subscriptions.CreateValue(ctx, sub.ID, sub); err != nil {
		logFailure(s.logger, err, "op", "subscribe", "publisher", publisherRef, "subscription", sub.ID)
		return "", fmt.Errorf("subscribe failed to store subscription %s, err: %w", sub.ID, err)
	}
	s.logState(sub, domain.StateActive)
	return sub.ID, nil
}

// subscriptionResult picks the status block for id, falling back to the only block present.
func subscriptionResult(resp *siri.SubscriptionResponse, id string) error {
	var block *siri.ResponseStatus
	for i := range resp.ResponseStatus {
		if resp.ResponseStatus[i].SubscriptionRef == id {
			block = &resp.ResponseStatus[i]
			break
		}
	}
	if block == nil && len(resp.ResponseStatus) == 1 {
		block = &resp.ResponseStatus[0]
	}
	if block == nil {
		return NewProtocolError("subscription response without status for "+id, nil)
	}
	if !block.Status {
		return NewProtocolError("subscription rejected: "+errorDescription(block.Error, "no reason given"), nil)
	}
	return nil
}

// Status checks one subscription. On a detected publisher restart every subscription held with
// that publisher is replaced by a fresh one and the outcome of those resubscriptions is returned.
// Checks against the same publisher run one at a time; the publisher lock is always taken before
// any subscription lock.
func (s *Subscriber) Status(ctx context.Context, id string) error {
	sub, err := s.subscriptions.ReadValue(ctx, id)
	if err != nil {
		return fmt.Errorf("status failed to read subscription %s, err: %w", id, err)
	}

	unlockPublisher := s.publishers.Lock(sub.Publisher)
	defer unlockPublisher()
	unlock := s.locks.Lock(id)
	defer unlock()

	// a restart recovery that held the publisher lock may have replaced the record
	sub, err = s.subscriptions.ReadValue(ctx, id)
	if err != nil {
		return fmt.Errorf("status failed to read subscription %s, err: %w", id, err)
	}
	return s.checkLocked(ctx, sub)
}

// StatusAll checks every persisted subscription concurrently and fails if any check fails.
// Subscriptions removed while the sweep runs are skipped.
func (s *Subscriber) StatusAll(ctx context.Context) error {
	subs, err := s.subscriptions.ListAllValues(ctx)
	if err != nil {
		return fmt.Errorf("statusAll failed to list subscriptions, err: %w", err)
	}

	errs := make([]error, len(subs))
	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			if err := s.Status(ctx, id); err != nil && !IsEntityNotFoundError(err) {
				errs[i] = fmt.Errorf("subscription %s: %w", id, err)
			}
		}(i, sub.ID)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// checkLocked runs one status round trip. The caller holds the publisher lock and the lock for sub.ID.
func (s *Subscriber) checkLocked(ctx context.Context, sub domain.Subscription) error {
	resp, err := exchange[*siri.CheckStatusResponse](ctx, s.transport, sub.URL(sub.StatusEndpoint), siri.NewCheckStatusRequest(s.ref, s.clock.Now()))
	if err == nil && !resp.Status {
		err = NewProtocolError("publisher reported status false: "+errorDescription(resp.Error, "no reason given"), nil)
	}
	if err != nil {
		logFailure(s.logger, err, "op", "status", "subscription", sub.ID, "publisher", sub.Publisher)
		if sub.Healthy {
			sub.Healthy = false
			s.logState(sub, domain.StateUnhealthy)
		}
		if werr := s.subscriptions.WriteValue(ctx, sub.ID, sub); werr != nil {
			logFailure(s.logger, werr, "op", "status", "subscription", sub.ID)
		}
		return err
	}

	started := resp.ServiceStartedTime
	switch {
	case sub.RemoteServiceStart == nil:
		sub.RemoteServiceStart = started
	case started != nil && !started.Equal(*sub.RemoteServiceStart):
		level.Info(s.logger).Log(
			"msg", "publisher restart detected",
			"subscription", sub.ID,
			"publisher", sub.Publisher,
			"known_start", sub.RemoteServiceStart,
			"reported_start", started,
		)
		return s.recoverPublisherLocked(ctx, sub)
	}

	if !sub.Healthy {
		sub.Healthy = true
		s.logState(sub, domain.StateActive)
	}
	if err := s.subscriptions.WriteValue(ctx, sub.ID, sub); err != nil {
		logFailure(s.logger, err, "op", "status", "subscription", sub.ID)
		return fmt.Errorf("status failed to store subscription %s, err: %w", sub.ID, err)
	}
	return nil
}

// recoverPublisherLocked replaces every subscription held with sub.Publisher after a restart. The
// termination request always covers all subscriptions of this subscriber, so it is sent once for
// the whole group before any replacement is requested. A failed termination does not stop the
// resubscriptions: the restarted publisher has usually forgotten the old subscriptions.
func (s *Subscriber) recoverPublisherLocked(ctx context.Context, sub domain.Subscription) error {
	all, err := s.subscriptions.ListAllValues(ctx)
	if err != nil {
		return fmt.Errorf("restart recovery failed to list subscriptions, err: %w", err)
	}

	stale := []domain.Subscription{sub}
	for _, other := range all {
		if other.Publisher != sub.Publisher || other.ID == sub.ID {
			continue
		}
		unlock := s.locks.Lock(other.ID)
		defer unlock()
		current, err := s.subscriptions.ReadValue(ctx, other.ID)
		if IsEntityNotFoundError(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("restart recovery failed to read subscription %s, err: %w", other.ID, err)
		}
		stale = append(stale, current)
	}

	for _, old := range stale {
		if err := s.subscriptions.DeleteValue(ctx, old.ID); err != nil {
			logFailure(s.logger, err, "op", "resubscribe", "subscription", old.ID)
			return fmt.Errorf("restart recovery failed to delete subscription %s, err: %w", old.ID, err)
		}
		s.logState(old, domain.StateUnsubscribed)
	}
	if err := s.terminate(ctx, sub); err != nil {
		logFailure(s.logger, err, "op", "resubscribe", "publisher", sub.Publisher)
	}

	var errs []error
	for _, old := range stale {
		id, err := s.Subscribe(ctx, sub.Publisher)
		if err != nil {
			errs = append(errs, fmt.Errorf("resubscribe of %s to %s failed, err: %w", old.ID, sub.Publisher, err))
			continue
		}
		level.Info(s.logger).Log("msg", "resubscribed", "old_subscription", old.ID, "subscription", id, "publisher", sub.Publisher)
	}
	return errors.Join(errs...)
}

// Unsubscribe removes the subscription locally, then asks the publisher to terminate all
// subscriptions of this subscriber.
func (s *Subscriber) Unsubscribe(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	sub, err := s.subscriptions.ReadValue(ctx, id)
	if err != nil {
		return fmt.Errorf("unsubscribe failed to read subscription %s, err: %w", id, err)
	}
	return s.unsubscribeLocked(ctx, sub)
}

func (s *Subscriber) unsubscribeLocked(ctx context.Context, sub domain.Subscription) error {
	if err := s.subscriptions.DeleteValue(ctx, sub.ID); err != nil {
		logFailure(s.logger, err, "op", "unsubscribe", "subscription", sub.ID)
		return fmt.Errorf("unsubscribe failed to delete subscription %s, err: %w", sub.ID, err)
	}
	s.logState(sub, domain.StateUnsubscribed)

	if err := s.terminate(ctx, sub); err != nil {
		logFailure(s.logger, err, "op", "unsubscribe", "subscription", sub.ID, "publisher", sub.Publisher)
		return err
	}
	s.logState(sub, domain.StateTerminated)
	return nil
}

// terminate asks the publisher behind sub to end every subscription of this subscriber.
func (s *Subscriber) terminate(ctx context.Context, sub domain.Subscription) error {
	resp, err := exchange[*siri.TerminateSubscriptionResponse](ctx, s.transport, sub.URL(sub.UnsubscribeEndpoint), siri.NewTerminateSubscriptionRequest(s.ref, s.clock.Now()))
	if err != nil {
		return err
	}
	return terminationResult(resp)
}

// terminationResult interprets a termination answer. Requests always target all subscriptions, so
// the first outcome decides; no outcome means there was nothing left to terminate.
func terminationResult(resp *siri.TerminateSubscriptionResponse) error {
	for _, st := range resp.TerminationResponseStatus {
		if st.Status {
			return nil
		}
		return NewProtocolError(fmt.Sprintf("termination of %s rejected: %s", st.SubscriptionRef, errorDescription(st.Error, "no reason given")), nil)
	}
	return nil
}

// Request pulls every situation from publisherRef once and stores them.
func (s *Subscriber) Request(ctx context.Context, publisherRef string) error {
	publisher, err := s.directory.Lookup(publisherRef)
	if err != nil {
		return NewEntityNotFoundError("unknown publisher "+publisherRef, err)
	}

	d, err := exchange[*siri.ServiceDelivery](ctx, s.transport, publisher.URL(publisher.RequestEndpoint), siri.NewServiceRequest(s.ref, s.clock.Now()))
	if err == nil && !d.Status {
		err = NewProtocolError("pull request rejected: "+errorDescription(d.Error, "no reason given"), nil)
	}
	if err != nil {
		logFailure(s.logger, err, "op", "request", "publisher", publisherRef)
		return err
	}

	s.logSkipped("request", d)
	if err := s.storeSituations(ctx, d.SituationExchangeDelivery.Situations); err != nil {
		logFailure(s.logger, err, "op", "request", "publisher", publisherRef)
		return err
	}
	level.Info(s.logger).Log("msg", "pulled situations", "publisher", publisherRef, "count", len(d.SituationExchangeDelivery.Situations))
	return nil
}

// HandleDelivery stores every situation of a pushed delivery. The acknowledgement is negative if any
// situation could not be stored.
func (s *Subscriber) HandleDelivery(ctx context.Context, d *siri.ServiceDelivery) *siri.DataReceivedAcknowledgement {
	if ref := d.SituationExchangeDelivery.SubscriptionRef; ref != "" {
		if _, err := s.subscriptions.ReadValue(ctx, ref); IsEntityNotFoundError(err) {
			level.Warn(s.logger).Log("msg", "delivery for unknown subscription", "subscription", ref, "producer", d.ProducerRef)
		}
	}

	s.logSkipped("delivery", d)
	err := s.storeSituations(ctx, d.SituationExchangeDelivery.Situations)
	if err != nil {
		logFailure(s.logger, err, "op", "delivery", "producer", d.ProducerRef, "message", d.ResponseMessageIdentifier)
	} else {
		level.Debug(s.logger).Log("msg", "delivery stored", "producer", d.ProducerRef, "count", len(d.SituationExchangeDelivery.Situations))
	}
	return siri.NewDataReceivedAcknowledgement(s.ref, d.ResponseMessageIdentifier, err == nil, s.clock.Now())
}

// DeliveryError is the negative acknowledgement for a delivery that could not be read.
func (s *Subscriber) DeliveryError(requestMessageRef string) *siri.DataReceivedAcknowledgement {
	return siri.NewDataReceivedAcknowledgement(s.ref, requestMessageRef, false, s.clock.Now())
}

func (s *Subscriber) logSkipped(op string, d *siri.ServiceDelivery) {
	if n := d.SituationExchangeDelivery.Skipped; n > 0 {
		level.Warn(s.logger).Log("msg", "situations without SituationNumber skipped", "op", op, "producer", d.ProducerRef, "message", d.ResponseMessageIdentifier, "skipped", n)
	}
}

func (s *Subscriber) storeSituations(ctx context.Context, situations []domain.Situation) error {
	var errs []error
	for _, situation := range situations {
		if err := s.situations.WriteValue(ctx, situation.ID, situation); err != nil {
			errs = append(errs, fmt.Errorf("situation %s: %w", situation.ID, err))
		}
	}
	if len(errs) > 0 {
		return NewInternalServerError("failed to store situations", errors.Join(errs...))
	}
	return nil
}

// Situations returns every stored situation.
func (s *Subscriber) Situations(ctx context.Context) ([]domain.Situation, error) {
	return s.situations.ListAllValues(ctx)
}

// Subscriptions returns every stored subscription.
func (s *Subscriber) Subscriptions(ctx context.Context) ([]domain.Subscription, error) {
	return s.subscriptions.ListAllValues(ctx)
}

func (s *Subscriber) logState(sub domain.Subscription, state domain.SubscriptionState) {
	level.Info(s.logger).Log("msg", "subscription state", "subscription", sub.ID, "publisher", sub.Publisher, "state", state)
}
