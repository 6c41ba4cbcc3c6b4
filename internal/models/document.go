package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is the event model as authored: an ordered list of slices.
type Document struct {
	Slices []*Slice `json:"slices"`
}

type Slice struct {
	Title          string           `json:"title"`
	SliceType      string           `json:"sliceType"`
	Screens        []*Element       `json:"screens"`
	Commands       []*Element       `json:"commands"`
	Events         []*Element       `json:"events"`
	ReadModels     []*Element       `json:"readmodels"`
	Specifications []*Specification `json:"specifications"`
}

type ElementType string

const (
	ElementEvent     ElementType = "EVENT"
	ElementReadModel ElementType = "READMODEL"
	ElementCommand   ElementType = "COMMAND"
	ElementScreen    ElementType = "SCREEN"
	ElementExternal  ElementType = "EXTERNAL"
)

type Direction string

const (
	DirectionInbound  Direction = "INBOUND"
	DirectionOutbound Direction = "OUTBOUND"
)

// ExternalContext marks an event sourced outside the modeled system.
const ExternalContext = "EXTERNAL"

// Element is a screen, command, event or read model.
type Element struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Context      string        `json:"context,omitempty"`
	Dependencies []*Dependency `json:"dependencies,omitempty"`
}

type Dependency struct {
	Type      ElementType `json:"type"`
	Direction Direction   `json:"direction"`
	ID        string      `json:"id"`
	Title     string      `json:"title,omitempty"`
}

// IsExternal reports whether the element is an event raised outside the
// system boundary, either by context or by an EXTERNAL dependency.
func (e *Element) IsExternal() bool {
	if e.Context == ExternalContext {
		return true
	}
	for _, dep := range e.Dependencies {
		if dep != nil && dep.Type == ElementExternal {
			return true
		}
	}
	return false
}

// DependsOn reports whether e declares a dependency on id in the given
// direction. An empty direction matches either.
func (e *Element) DependsOn(id string, dir Direction) bool {
	for _, dep := range e.Dependencies {
		if dep == nil || dep.ID != id {
			continue
		}
		if dir == "" || dep.Direction == dir {
			return true
		}
	}
	return false
}

// Authored documents are loose about scalar types, so ids, titles and slice
// types accept numbers and booleans as well as strings.

func (s *Slice) UnmarshalJSON(data []byte) error {
	type plain Slice
	var aux struct {
		*plain
		Title     json.RawMessage `json:"title"`
		SliceType json.RawMessage `json:"sliceType"`
	}
	aux.plain = (*plain)(s)
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	return scalars(
		scalar{"title", aux.Title, &s.Title},
		scalar{"sliceType", aux.SliceType, &s.SliceType},
	)
}

func (e *Element) UnmarshalJSON(data []byte) error {
	type plain Element
	var aux struct {
		*plain
		ID    json.RawMessage `json:"id"`
		Title json.RawMessage `json:"title"`
	}
	aux.plain = (*plain)(e)
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	return scalars(
		scalar{"id", aux.ID, &e.ID},
		scalar{"title", aux.Title, &e.Title},
	)
}

func (d *Dependency) UnmarshalJSON(data []byte) error {
	type plain Dependency
	var aux struct {
		*plain
		ID    json.RawMessage `json:"id"`
		Title json.RawMessage `json:"title"`
	}
	aux.plain = (*plain)(d)
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	return scalars(
		scalar{"id", aux.ID, &d.ID},
		scalar{"title", aux.Title, &d.Title},
	)
}

type scalar struct {
	name string
	raw  json.RawMessage
	dst  *string
}

func scalars(fields ...scalar) error {
	for _, f := range fields {
		text, err := ScalarText(f.raw)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.name, err)
		}
		*f.dst = text
	}
	return nil
}

// ScalarText returns the text of a JSON scalar. Strings are unquoted, numbers
// and booleans keep their literal form, and null or absent values are empty.
func ScalarText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case '{', '[':
		return "", fmt.Errorf("expected a scalar, got %s", raw)
	default:
		return string(raw), nil
	}
}
