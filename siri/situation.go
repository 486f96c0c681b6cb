package siri

import (
	"fmt"

	"github.com/beevik/etree"

	"vdv736/domain"
	"vdv736/sirixml"
)

const situationNumber = "SituationNumber"

// NewSituation wraps an opaque situation element (typically PtSituationElement). The payload is
// kept as given apart from the XML declaration; its SituationNumber becomes the id.
func NewSituation(payload []byte) (domain.Situation, error) {
	tree, err := sirixml.Parse(payload)
	if err != nil {
		return domain.Situation{}, fmt.Errorf("%w: situation: %v", ErrMalformed, err)
	}
	return situationFromElement(tree.Root())
}

func situationFromElement(el *etree.Element) (domain.Situation, error) {
	id := sirixml.Value(el, situationNumber, "")
	if id == "" {
		return domain.Situation{}, fmt.Errorf("%w: %s without %s", ErrMalformed, el.Tag, situationNumber)
	}
	payload, err := sirixml.Serialize(el)
	if err != nil {
		return domain.Situation{}, fmt.Errorf("%w: situation %s: %v", ErrMalformed, id, err)
	}
	return domain.Situation{ID: id, Payload: payload}, nil
}
