package ledger

// PartyFilter describes which templates and interfaces are interesting for a
// single party. The zero value matches nothing; set Wildcard for "no template
// restriction".
type PartyFilter struct {
	Wildcard   bool         `json:"wildcard,omitempty"`
	Templates  []TemplateID `json:"templates,omitempty"`
	Interfaces []TemplateID `json:"interfaces,omitempty"`

	// IncludeCreatedEventBlob asks the server to attach the opaque
	// re-creation blob to matching created events.
	IncludeCreatedEventBlob bool `json:"include_created_event_blob,omitempty"`
}

// AllTemplates returns a PartyFilter without template restriction.
func AllTemplates() PartyFilter { return PartyFilter{Wildcard: true} }

// Templates returns a PartyFilter restricted to the given template IDs.
func Templates(ids ...TemplateID) PartyFilter { return PartyFilter{Templates: ids} }

// Interfaces returns a PartyFilter restricted to the given interface IDs.
func Interfaces(ids ...TemplateID) PartyFilter { return PartyFilter{Interfaces: ids} }

// TransactionFilter maps each party to its filter specification. Parties
// absent from the map match nothing.
type TransactionFilter map[Party]PartyFilter

// NewTransactionFilter builds an unrestricted filter for the given parties.
func NewTransactionFilter(parties ...Party) TransactionFilter {
	f := make(TransactionFilter, len(parties))
	for _, p := range parties {
		f[p] = AllTemplates()
	}
	return f
}

// Parties returns the parties covered by the filter, in map order.
func (f TransactionFilter) Parties() []Party {
	parties := make([]Party, 0, len(f))
	for p := range f {
		parties = append(parties, p)
	}
	return parties
}

// Admits reports whether the party filter includes the given event. An
// explicit, empty filter admits nothing for that party.
func (pf PartyFilter) Admits(ev Event) bool {
	if pf.Wildcard {
		return true
	}
	for _, id := range pf.Templates {
		if id == ev.Template {
			return true
		}
	}
	for _, want := range pf.Interfaces {
		for _, impl := range ev.Interfaces {
			if want == impl {
				return true
			}
		}
	}
	return false
}
