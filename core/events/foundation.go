package events

import (
	"strconv"

	"arnsledger/core/types"
)

const (
	TypeFoundationProposed = "foundation.proposed"
	TypeFoundationSigned   = "foundation.signed"
	TypeFoundationPassed   = "foundation.passed"
	TypeFoundationFailed   = "foundation.failed"
	TypeFoundationEvolved  = "foundation.evolved"
)

type FoundationProposed struct {
	ID       int
	Proposer string
	Kind     string
}

func (FoundationProposed) EventType() string { return TypeFoundationProposed }

func (e FoundationProposed) Event() *types.Event {
	return &types.Event{Type: TypeFoundationProposed, Attributes: map[string]string{
		"id":       strconv.Itoa(e.ID),
		"proposer": e.Proposer,
		"kind":     e.Kind,
	}}
}

type FoundationSigned struct {
	ID     int
	Signer string
}

func (FoundationSigned) EventType() string { return TypeFoundationSigned }

func (e FoundationSigned) Event() *types.Event {
	return &types.Event{Type: TypeFoundationSigned, Attributes: map[string]string{
		"id":     strconv.Itoa(e.ID),
		"signer": e.Signer,
	}}
}

type FoundationPassed struct {
	ID   int
	Kind string
}

func (FoundationPassed) EventType() string { return TypeFoundationPassed }

func (e FoundationPassed) Event() *types.Event {
	return &types.Event{Type: TypeFoundationPassed, Attributes: map[string]string{
		"id":   strconv.Itoa(e.ID),
		"kind": e.Kind,
	}}
}

type FoundationFailed struct {
	ID int
}

func (FoundationFailed) EventType() string { return TypeFoundationFailed }

func (e FoundationFailed) Event() *types.Event {
	return &types.Event{Type: TypeFoundationFailed, Attributes: map[string]string{
		"id": strconv.Itoa(e.ID),
	}}
}

type FoundationEvolved struct {
	ID     int
	Source string
}

func (FoundationEvolved) EventType() string { return TypeFoundationEvolved }

func (e FoundationEvolved) Event() *types.Event {
	return &types.Event{Type: TypeFoundationEvolved, Attributes: map[string]string{
		"id":     strconv.Itoa(e.ID),
		"source": e.Source,
	}}
}
