package address

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

// Status is the visible state of the address section.
type Status string

const (
	StatusLocked         Status = "locked"
	StatusOpenEmpty      Status = "open_empty"
	StatusOpenAutoFilled Status = "open_auto_filled"
	StatusOpenManual     Status = "open_manual"
)

// Open reports whether the section is visible.
func (s Status) Open() bool {
	return s != StatusLocked
}

// Field names accepted by SetField.
const (
	FieldStreet       = "street"
	FieldNumber       = "number"
	FieldComplement   = "complement"
	FieldNeighborhood = "neighborhood"
	FieldCity         = "city"
	FieldState        = "state"
	FieldCountry      = "country"
)

// lookupFields are filled by a lookup and become read-only after a complete one.
var lookupFields = []string{FieldStreet, FieldNeighborhood, FieldCity, FieldState}

// Options tunes the controller's UX policies.
type Options struct {
	// RelockOnContactCleared closes the section again when a contact field is emptied.
	// A section opened with OpenManually is never relocked.
	RelockOnContactCleared bool
	// PreserveManual keeps values the buyer typed when a lookup fails.
	PreserveManual bool
	// Country is written back whenever the address is cleared. Defaults to "Brasil".
	Country string
}

// DefaultOptions relocks on cleared contact and does not preserve manual values.
func DefaultOptions() Options {
	return Options{RelockOnContactCleared: true, Country: DefaultCountry}
}

// Snapshot is a copy of the controller state for rendering or assertions.
type Snapshot struct {
	Status     Status        `json:"status"`
	CEP        string        `json:"cep"`
	CEPDisplay string        `json:"cep_display"`
	Address    types.Address `json:"address"`
	ReadOnly   bool          `json:"read_only"`
	Message    string        `json:"message,omitempty"`
}

// Controller gates the address form behind contact completeness and drives CEP auto-fill.
//
// Lookups are sequenced: each Blur takes a ticket and a result is applied only if no newer
// Blur was issued meanwhile. Fields are guarded by a mutex so a lookup finishing on another
// goroutine is applied safely.
type Controller struct {
	lookup Service
	opts   Options

	mu         sync.Mutex
	status     Status
	contact    [3]string
	cep        string
	fields     map[string]string
	autoFilled map[string]bool
	readOnly   bool
	manual     bool
	message    string
	seq        uint64
}

// NewController returns a locked, empty controller.
func NewController(lookup Service, opts Options) *Controller {
	if strings.TrimSpace(opts.Country) == "" {
		opts.Country = DefaultCountry
	}
	c := &Controller{lookup: lookup, opts: opts}
	c.resetLocked()
	return c
}

// Reset returns the controller to its initial locked and empty state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.seq++
}

func (c *Controller) resetLocked() {
	c.status = StatusLocked
	c.contact = [3]string{}
	c.cep = ""
	c.fields = map[string]string{FieldCountry: c.opts.Country}
	c.autoFilled = map[string]bool{}
	c.readOnly = false
	c.manual = false
	c.message = ""
}

// SetContact records the contact fields, opening the section once all are filled and
// re-locking it when one is cleared (if the policy says so).
func (c *Controller) SetContact(name, email, phone string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.contact = [3]string{strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(phone)}
	complete := c.contact[0] != "" && c.contact[1] != "" && c.contact[2] != ""

	switch {
	case complete && c.status == StatusLocked:
		c.status = c.openStatus()
	case !complete && c.status != StatusLocked && c.opts.RelockOnContactCleared && !c.manual:
		c.status = StatusLocked
	}
	return c.status
}

// OpenManually shows the section as a fully editable form regardless of contact state.
func (c *Controller) OpenManually() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = StatusOpenManual
	c.readOnly = false
	c.manual = true
}

// InputCEP stores the digits of raw and returns the display form. Short input clears the message.
func (c *Controller) InputCEP(raw string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cep = NormalizeCEP(raw)
	display := FormatCEP(c.cep)
	if len(display) < formattedCEPLength {
		c.message = ""
	}
	return display
}

// Blur runs the lookup for the current CEP. It reports false when the result was discarded
// because a newer Blur superseded it or the section is locked.
func (c *Controller) Blur(ctx context.Context) (Snapshot, bool) {
	c.mu.Lock()
	if c.status == StatusLocked {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, false
	}
	c.seq++
	ticket := c.seq
	cep := c.cep

	if len(cep) != CEPLength {
		c.message = MessageInvalidCEP
		c.toManualLocked()
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, true
	}
	lookup := c.lookup
	c.mu.Unlock()

	var (
		result Result
		err    error
	)
	if lookup == nil {
		err = errors.New(errors.CodeDependency, MessageCEPNotFound)
	} else {
		result, err = lookup.Lookup(ctx, cep)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ticket != c.seq {
		return c.snapshotLocked(), false
	}

	switch {
	case err != nil:
		c.message = MessageCEPNotFound
		c.toManualLocked()
	case !result.Complete():
		c.message = MessageIncomplete
		c.toManualLocked()
		c.fillLocked(result, false)
	default:
		c.message = ""
		c.fillLocked(result, true)
		c.readOnly = true
		c.status = StatusOpenAutoFilled
	}
	return c.snapshotLocked(), true
}

// SetField edits one address field. Lookup-owned fields are rejected while read-only.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case FieldStreet, FieldNumber, FieldComplement, FieldNeighborhood, FieldCity, FieldState, FieldCountry:
	default:
		return errors.Newf(errors.CodeValidation, "unknown address field %q", name)
	}
	if c.status == StatusLocked {
		return errors.New(errors.CodeStateConflict, "address section is locked")
	}
	if c.readOnly && isLookupField(name) {
		return errors.Newf(errors.CodeStateConflict, "field %s is filled from the postal code", name)
	}
	c.fields[name] = value
	delete(c.autoFilled, name)
	if c.status == StatusOpenEmpty {
		c.status = StatusOpenManual
	}
	return nil
}

// SetPreserveManual toggles whether typed values survive a failed lookup.
func (c *Controller) SetPreserveManual(preserve bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.PreserveManual = preserve
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Address returns the captured address with the CEP in display form.
func (c *Controller) Address() types.Address {
	return c.Snapshot().Address
}

func (c *Controller) openStatus() Status {
	switch {
	case c.readOnly:
		return StatusOpenAutoFilled
	case c.hasAnyField():
		return StatusOpenManual
	default:
		return StatusOpenEmpty
	}
}

func (c *Controller) hasAnyField() bool {
	for name, v := range c.fields {
		if name != FieldCountry && strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// toManualLocked makes the form editable and clears lookup values. Number and complement
// are never touched; country goes back to the default.
func (c *Controller) toManualLocked() {
	c.status = StatusOpenManual
	c.readOnly = false
	for _, name := range lookupFields {
		if c.opts.PreserveManual && !c.autoFilled[name] {
			continue
		}
		c.fields[name] = ""
		delete(c.autoFilled, name)
	}
	c.fields[FieldCountry] = c.opts.Country
}

func (c *Controller) fillLocked(r Result, complete bool) {
	values := map[string]string{
		FieldStreet:       r.Street,
		FieldNeighborhood: r.Neighborhood,
		FieldCity:         r.City,
		FieldState:        r.State,
	}
	for name, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if !complete && c.opts.PreserveManual && strings.TrimSpace(c.fields[name]) != "" && !c.autoFilled[name] {
			continue
		}
		c.fields[name] = v
		c.autoFilled[name] = true
	}
	if complete {
		for _, name := range lookupFields {
			if strings.TrimSpace(values[name]) == "" {
				c.fields[name] = ""
			}
		}
	}
	if strings.TrimSpace(c.fields[FieldCountry]) == "" {
		c.fields[FieldCountry] = c.opts.Country
	}
	if r.CEP != "" {
		c.cep = NormalizeCEP(r.CEP)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Status:     c.status,
		CEP:        c.cep,
		CEPDisplay: FormatCEP(c.cep),
		ReadOnly:   c.readOnly,
		Message:    c.message,
		Address: types.Address{
			CEP:          FormatCEP(c.cep),
			Street:       c.fields[FieldStreet],
			Number:       c.fields[FieldNumber],
			Complement:   c.fields[FieldComplement],
			Neighborhood: c.fields[FieldNeighborhood],
			City:         c.fields[FieldCity],
			State:        c.fields[FieldState],
			Country:      c.fields[FieldCountry],
		},
	}
}

func isLookupField(name string) bool {
	for _, f := range lookupFields {
		if f == name {
			return true
		}
	}
	return false
}
