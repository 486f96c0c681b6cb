package domain

import (
	"encoding/json"
	"fmt"
)

// MarshalSubscription is the stored form of a subscription record.
func MarshalSubscription(s Subscription) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSubscription reads a record written by MarshalSubscription.
func UnmarshalSubscription(key string, b []byte) (Subscription, error) {
	var s Subscription
	if err := json.Unmarshal(b, &s); err != nil {
		return Subscription{}, fmt.Errorf("subscription %s: %w", key, err)
	}
	if s.ID == "" {
		s.ID = key
	}
	return s, nil
}

// MarshalSituation stores the payload verbatim; the id lives in the key.
func MarshalSituation(s Situation) ([]byte, error) {
	return []byte(s.Payload), nil
}

// UnmarshalSituation rebuilds a situation from its key and stored payload.
func UnmarshalSituation(key string, b []byte) (Situation, error) {
	return Situation{ID: key, Payload: string(b)}, nil
}
