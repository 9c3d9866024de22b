package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion is the current Domain State schema tag.
const SchemaVersion = 1

// Business is display metadata only.
type Business struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// State is the single current ledger document. It is always persisted and
// synchronized as a whole.
type State struct {
	Version  int            `json:"version"`
	Business Business       `json:"business"`
	Products []Product      `json:"products"`
	Sales    []Sale         `json:"sales"`
	Expenses []Expense      `json:"expenses"`
	Tables   []TableSession `json:"tables"`
}

// NewState returns the seeded default state.
func NewState() *State {
	return &State{
		Version:  SchemaVersion,
		Business: Business{Name: "Mi Billar", Currency: "GTQ"},
		Products: []Product{},
		Sales:    []Sale{},
		Expenses: []Expense{},
		Tables:   []TableSession{},
	}
}

// IsEmpty reports whether the state holds no products, sales, expenses or
// table sessions. Business metadata does not count.
func (s *State) IsEmpty() bool {
	if s == nil {
		return true
	}
	return len(s.Products) == 0 && len(s.Sales) == 0 && len(s.Expenses) == 0 && len(s.Tables) == 0
}

// Clone returns a deep copy. Every hand-off across the live state / snapshot
// boundary goes through Clone.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := &State{
		Version:  s.Version,
		Business: s.Business,
		Products: append([]Product{}, s.Products...),
		Sales:    append([]Sale{}, s.Sales...),
		Expenses: append([]Expense{}, s.Expenses...),
		Tables:   make([]TableSession, len(s.Tables)),
	}
	for i, t := range s.Tables {
		if t.EndAt != nil {
			end := *t.EndAt
			t.EndAt = &end
		}
		if t.Total != nil {
			total := *t.Total
			t.Total = &total
		}
		out.Tables[i] = t
	}
	return out
}

// ProductByID returns the index of the product with id, or -1.
func (s *State) ProductByID(id string) int {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return i
		}
	}
	return -1
}

// requiredCollections must all be present and array-typed in any state
// document accepted from outside (file import, remote pull, legacy body).
var requiredCollections = []string{"products", "sales", "expenses", "tables"}

// ValidateShape checks the top-level structure of a raw state document.
func ValidateShape(raw []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return fmt.Errorf("state is not an object: %w", err)
	}
	if top == nil {
		return errors.New("state is null")
	}
	for _, key := range requiredCollections {
		v, ok := top[key]
		if !ok {
			return fmt.Errorf("missing %q", key)
		}
		if !bytes.HasPrefix(bytes.TrimSpace(v), []byte("[")) {
			return fmt.Errorf("%q is not an array", key)
		}
	}
	return nil
}

// DecodeState validates the shape of raw and decodes it. Nothing is returned
// unless the whole document is acceptable.
func DecodeState(raw []byte) (*State, error) {
	if err := ValidateShape(raw); err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if st.Version == 0 {
		st.Version = SchemaVersion
	}
	return &st, nil
}
