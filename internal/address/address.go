package address

import (
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field is one recipient input (to, cc, or bcc). It is a closed tagged
// variant: a single address, an ordered list of addresses, or an ordered
// list of address/display-name pairs. The zero value means "not given".
type Field struct {
	kind  fieldKind
	addrs []string
	names []string
}

type fieldKind int

const (
	fieldNone fieldKind = iota
	fieldSingle
	fieldList
	fieldAliased
)

// Single wraps one bare address.
func Single(addr string) Field {
	return Field{kind: fieldSingle, addrs: []string{addr}}
}

// List wraps an ordered sequence of bare addresses.
func List(addrs ...string) Field {
	return Field{kind: fieldList, addrs: addrs}
}

// Alias pairs a mailbox address with a display name.
type Alias struct {
	Address string
	Name    string
}

// Aliased wraps an ordered sequence of address/display-name pairs. The
// addresses become recipients; the names form the display header.
func Aliased(aliases ...Alias) Field {
	f := Field{kind: fieldAliased}
	for _, a := range aliases {
		f.addrs = append(f.addrs, a.Address)
		f.names = append(f.names, a.Name)
	}
	return f
}

// IsZero reports whether the field was not given.
func (f Field) IsZero() bool { return f.kind == fieldNone }

// Addresses returns the mailbox addresses in input order.
func (f Field) Addresses() []string { return f.addrs }

// display returns the semicolon-joined header string: display names for
// aliased fields, raw addresses otherwise.
func (f Field) display() string {
	if f.kind == fieldAliased {
		return strings.Join(f.names, "; ")
	}
	return strings.Join(f.addrs, "; ")
}

// Set is the resolved recipient set plus the display headers to put on the
// message. Empty header strings mean the header is omitted.
type Set struct {
	Recipients []string
	To         string
	Cc         string
	Bcc        string
}

// Empty reports whether there is nothing to send to.
func (s Set) Empty() bool { return len(s.Recipients) == 0 }

// Resolver turns to/cc/bcc fields into a recipient set, defaulting to the
// authenticated user's own address when no explicit target is given.
type Resolver struct {
	self     string
	selfName string
	validate *validator.Validate
	logger   *slog.Logger
}

// NewResolver creates a resolver for the given authenticated identity.
// selfName is the display name used when the session mails itself; it may
// equal self.
func NewResolver(self, selfName string, logger *slog.Logger) *Resolver {
	if selfName == "" {
		selfName = self
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		self:     self,
		selfName: selfName,
		validate: validator.New(),
		logger:   logger,
	}
}

// Resolve builds the recipient set. Rules, in priority order:
//  1. to given: it becomes the recipient set and the To header.
//  2. both cc and bcc given: self-send (pure cc/bcc blast).
//  3. otherwise: self-send.
//
// cc and bcc are then appended to the recipients and recorded as headers.
// When validateAddrs is true every recipient is syntax-checked; invalid
// addresses are dropped with a warning, or fail the whole call when strict.
func (r *Resolver) Resolve(to, cc, bcc Field, validateAddrs, strict bool) (Set, error) {
	var set Set
	switch {
	case !to.IsZero():
		set.Recipients = append(set.Recipients, to.Addresses()...)
		set.To = to.display()
	case !cc.IsZero() && !bcc.IsZero():
		set.Recipients = append(set.Recipients, r.self)
		set.To = r.selfName
	default:
		set.Recipients = append(set.Recipients, r.self)
	}
	if !cc.IsZero() {
		set.Recipients = append(set.Recipients, cc.Addresses()...)
		set.Cc = cc.display()
	}
	if !bcc.IsZero() {
		set.Recipients = append(set.Recipients, bcc.Addresses()...)
		set.Bcc = bcc.display()
	}

	if !validateAddrs {
		return set, nil
	}

	kept := set.Recipients[:0]
	for _, addr := range set.Recipients {
		if err := r.validate.Var(addr, "required,email"); err != nil {
			if strict {
				return Set{}, &InvalidAddressError{Address: addr}
			}
			r.logger.Warn("dropping invalid recipient address", "address", addr)
			continue
		}
		kept = append(kept, addr)
	}
	set.Recipients = kept
	return set, nil
}
