// Package ledger defines the transaction, event, offset, and filter types
// shared by the streaming engine, the transport boundary, and the wallet
// layer. Everything here is plain data; behaviour lives in the packages that
// consume it.
package ledger

import (
	"fmt"
	"strings"
	"time"
)

// Party identifies a ledger party, e.g. "alice::1220ab…".
type Party string

// TemplateID identifies a template or interface as package:module:entity.
type TemplateID struct {
	PackageID string `json:"package_id"`
	Module    string `json:"module"`
	Entity    string `json:"entity"`
}

func (t TemplateID) String() string {
	return t.PackageID + ":" + t.Module + ":" + t.Entity
}

// ParseTemplateID parses the package:module:entity form produced by String.
func ParseTemplateID(s string) (TemplateID, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return TemplateID{}, fmt.Errorf("cantonstream: malformed template id %q", s)
	}
	return TemplateID{PackageID: parts[0], Module: parts[1], Entity: parts[2]}, nil
}

// EventKind distinguishes the event types a transaction can carry.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventArchived  EventKind = "archived"
	EventExercised EventKind = "exercised"
)

// Event is a single create/archive/exercise within a committed transaction.
type Event struct {
	Kind       EventKind    `json:"kind"`
	ContractID string       `json:"contract_id"`
	Template   TemplateID   `json:"template"`
	Interfaces []TemplateID `json:"interfaces,omitempty"`
	Witnesses  []Party      `json:"witnesses"`
	Payload    []byte       `json:"payload,omitempty"`

	// CreatedEventBlob is the opaque re-creation blob, populated only when the
	// matching party filter asked for it.
	CreatedEventBlob []byte `json:"created_event_blob,omitempty"`
}

// Transaction is a committed, ordered unit of ledger change.
type Transaction struct {
	ID          string    `json:"id"`
	CommandID   string    `json:"command_id,omitempty"`
	WorkflowID  string    `json:"workflow_id,omitempty"`
	Offset      Offset    `json:"offset"`
	EffectiveAt time.Time `json:"effective_at"`
	Events      []Event   `json:"events"`
}
