package facets

import (
	"sync"

	"github.com/randalmurphal/facets/pkg/facets/identity"
)

// Identifiable gives a host a unique identifier drawn from
// identity.Default. The identifier never changes once drawn.
//
// The zero value draws it on the first call to ID, so identifiers follow
// first use. Constructors that want identifiers to follow creation order
// call InitID.
type Identifiable struct {
	once sync.Once
	id   string
}

// InitID draws the identifier now unless it already exists.
func (i *Identifiable) InitID() {
	i.once.Do(func() {
		i.id = identity.New()
	})
}

// ID returns the instance identifier.
func (i *Identifiable) ID() string {
	i.InitID()
	return i.id
}
