package models

import "encoding/json"

// Specification is a given/when/then scenario attached to a slice.
type Specification struct {
	Title    string     `json:"title"`
	Comments []*Comment `json:"comments,omitempty"`
	Given    []*Step    `json:"given,omitempty"`
	When     []*Step    `json:"when,omitempty"`
	Then     []*Step    `json:"then,omitempty"`
}

type Comment struct {
	Description string `json:"description"`
}

// Step keeps Examples raw so object key order survives decoding.
type Step struct {
	Title    string          `json:"title"`
	Type     string          `json:"type"`
	Fields   []*Field        `json:"fields,omitempty"`
	Examples json.RawMessage `json:"examples,omitempty"`
}

type Field struct {
	Name    string          `json:"name"`
	Example json.RawMessage `json:"example,omitempty"`
}
