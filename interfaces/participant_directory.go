package interfaces

import "vdv736/domain"

// ParticipantDirectory resolves participant references to addresses. Loaded once, read-only.
//
//go:generate moq -stub -out mock/participant_directory.go -pkg mock . ParticipantDirectory
type ParticipantDirectory interface {
	// Lookup returns the participant with endpoint defaults applied.
	// Returns:
	// 1) (participant, nil) when ref is configured;
	// 2) (zero, entity_not_found) otherwise.
	Lookup(ref string) (domain.Participant, error)
}
