package app

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/go-kit/log"

	"vdv736/domain"
	"vdv736/handlers"
	"vdv736/service"
)

// node owns a running endpoint and the persistence handle behind the engine.
type node struct {
	endpoint *Endpoint
	store    io.Closer

	startOnce sync.Once
	startErr  error
	cancel    context.CancelFunc
	done      chan struct{}
	runErr    error

	closeOnce sync.Once
	closeErr  error
}

func newNode(endpoint *Endpoint, store io.Closer) *node {
	return &node{
		endpoint: service.NilPanic(endpoint, "app.node.go: endpoint is required"),
		store:    service.NilPanic(store, "app.node.go: store is required"),
		done:     make(chan struct{}),
	}
}

// Start binds the endpoint and serves it in the background. Later calls return the first result.
func (n *node) Start() error {
	n.startOnce.Do(func() {
		if n.startErr = n.endpoint.Listen(); n.startErr != nil {
			close(n.done)
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		n.cancel = cancel
		go func() {
			defer close(n.done)
			n.runErr = n.endpoint.Run(ctx)
		}()
	})
	return n.startErr
}

// Done is closed once the endpoint has stopped serving.
func (n *node) Done() <-chan struct{} {
	return n.done
}

// Addr is the bound endpoint address, nil before Start.
func (n *node) Addr() net.Addr {
	return n.endpoint.Addr()
}

// Close stops the endpoint, waits for it and closes the store. The store is closed exactly once
// and later calls return the first result.
func (n *node) Close() error {
	n.closeOnce.Do(func() {
		n.startOnce.Do(func() { close(n.done) })
		if n.cancel != nil {
			n.cancel()
		}
		<-n.done
		n.closeErr = errors.Join(n.runErr, n.store.Close())
	})
	return n.closeErr
}

// PublisherNode serves a Publisher.
type PublisherNode struct {
	*node
	publisher *service.Publisher
}

// NewPublisherNode mounts the publisher endpoints on endpoint at the paths configured for self.
func NewPublisherNode(publisher *service.Publisher, self domain.Participant, endpoint *Endpoint, store io.Closer, logger log.Logger) *PublisherNode {
	n := &PublisherNode{
		node:      newNode(endpoint, store),
		publisher: service.NilPanic(publisher, "app.node.go: publisher is required"),
	}
	handlers.NewPublisherHTTP(publisher, logger).Register(endpoint.Echo(), self)
	return n
}

// Publisher returns the engine behind the node.
func (n *PublisherNode) Publisher() *service.Publisher {
	return n.publisher
}

// SubscriberNode serves a Subscriber.
type SubscriberNode struct {
	*node
	subscriber *service.Subscriber
}

// NewSubscriberNode mounts the delivery endpoint on endpoint at the path configured for self.
func NewSubscriberNode(subscriber *service.Subscriber, self domain.Participant, endpoint *Endpoint, store io.Closer, logger log.Logger) *SubscriberNode {
	n := &SubscriberNode{
		node:       newNode(endpoint, store),
		subscriber: service.NilPanic(subscriber, "app.node.go: subscriber is required"),
	}
	handlers.NewSubscriberHTTP(subscriber, logger).Register(endpoint.Echo(), self)
	return n
}

// Subscriber returns the engine behind the node.
func (n *SubscriberNode) Subscriber() *service.Subscriber {
	return n.subscriber
}
