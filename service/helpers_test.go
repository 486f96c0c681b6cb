package service

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vdv736/domain"
	"vdv736/interfaces/mock"
	"vdv736/siri"
)

var (
	testNow     = time.Date(2026, 2, 19, 10, 0, 0, 0, time.UTC)
	testStarted = time.Date(2026, 2, 19, 8, 0, 0, 0, time.UTC)
)

// newMemStore returns a StoreMock backed by a map, ordered by key on listing.
func newMemStore[T any]() *mock.StoreMock[T] {
	var mu sync.Mutex
	items := map[string]T{}
	return &mock.StoreMock[T]{
		CreateValueFunc: func(ctx context.Context, key string, item T) error {
			mu.Lock()
			defer mu.Unlock()
			if _, ok := items[key]; ok {
				return NewEntityAlreadyExistsError("key already exists", nil)
			}
			items[key] = item
			return nil
		},
		WriteValueFunc: func(ctx context.Context, key string, item T) error {
			mu.Lock()
			defer mu.Unlock()
			items[key] = item
			return nil
		},
		ReadValueFunc: func(ctx context.Context, key string) (T, error) {
			mu.Lock()
			defer mu.Unlock()
			item, ok := items[key]
			if !ok {
				var zero T
				return zero, NewEntityNotFoundError("key not found", nil)
			}
			return item, nil
		},
		ListAllValuesFunc: func(ctx context.Context) ([]T, error) {
			mu.Lock()
			defer mu.Unlock()
			out := []T{}
			keys := make([]string, 0, len(items))
			for k := range items {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				out = append(out, items[k])
			}
			return out, nil
		},
		DeleteValueFunc: func(ctx context.Context, key string) error {
			mu.Lock()
			defer mu.Unlock()
			delete(items, key)
			return nil
		},
	}
}

func fixedClock() *mock.TimeProviderMock {
	return &mock.TimeProviderMock{NowFunc: func() time.Time { return testNow }}
}

// testDirectory knows every ref and places it at <ref>.local:9000 with default endpoints.
func testDirectory() *mock.ParticipantDirectoryMock {
	return &mock.ParticipantDirectoryMock{
		LookupFunc: func(ref string) (domain.Participant, error) {
			return domain.Participant{Ref: ref, Host: ref + ".local", Port: 9000}.WithDefaults(), nil
		},
	}
}

// siriTransport parses each outbound message and answers with handle's result. A nil answer
// simulates an unreachable counterpart.
func siriTransport(t *testing.T, handle func(url string, msg siri.Message) siri.Message) *mock.TransportMock {
	return &mock.TransportMock{
		PostFunc: func(ctx context.Context, url string, body []byte) ([]byte, error) {
			msg, err := siri.Parse(body)
			if !assert.NoError(t, err) {
				return nil, err
			}
			resp := handle(url, msg)
			if resp == nil {
				return nil, NewTransportError("connection refused", nil)
			}
			return siri.Marshal(resp)
		},
	}
}

// situationXML is a minimal situation element numbered id.
func situationXML(id string) string {
	return "<PtSituationElement><SituationNumber>" + id + "</SituationNumber></PtSituationElement>"
}

func mustList[T any](t *testing.T, store *mock.StoreMock[T]) []T {
	items, err := store.ListAllValues(context.Background())
	assert.NoError(t, err)
	return items
}
