package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// Lookup is how a product is addressed from the outside: by id, or by a
// title/slug term. Exactly one of LookupByID or LookupByTerm.
type Lookup interface {
	lookup()
	String() string
}

type LookupByID struct {
	ID uuid.UUID
}

type LookupByTerm struct {
	Term string
}

func (LookupByID) lookup()   {}
func (LookupByTerm) lookup() {}

func (l LookupByID) String() string   { return l.ID.String() }
func (l LookupByTerm) String() string { return l.Term }

// TitleKey is compared against UPPER(title).
func (l LookupByTerm) TitleKey() string { return strings.ToUpper(l.Term) }

// SlugKey is compared against the stored (already lowercase) slug.
func (l LookupByTerm) SlugKey() string { return strings.ToLower(l.Term) }

// ParseLookup dispatches on the shape of the input: canonical UUIDs address
// by id, anything else is a title/slug term.
func ParseLookup(search string) Lookup {
	search = strings.TrimSpace(search)
	if id, err := uuid.Parse(search); err == nil && len(search) == 36 {
		return LookupByID{ID: id}
	}
	return LookupByTerm{Term: search}
}
