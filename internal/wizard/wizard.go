// Package wizard models the two-step add-product flow as an explicit state
// machine: Listing -> Drafting -> Reviewing -> Creating -> Listing.
//
// A Machine is not safe for concurrent use; callers that share one across
// goroutines must serialise access.
package wizard

import (
	"fmt"

	"product-catalog/internal/model"
)

// Step names a wizard state.
type Step int

const (
	StepListing Step = iota
	StepDrafting
	StepReviewing
	StepCreating
)

func (s Step) String() string {
	switch s {
	case StepListing:
		return "listing"
	case StepDrafting:
		return "drafting"
	case StepReviewing:
		return "reviewing"
	case StepCreating:
		return "creating"
	default:
		return "unknown"
	}
}

// MarshalText lets steps appear by name in JSON.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a step name written by MarshalText.
func (s *Step) UnmarshalText(text []byte) error {
	for _, step := range []Step{StepListing, StepDrafting, StepReviewing, StepCreating} {
		if step.String() == string(text) {
			*s = step
			return nil
		}
	}
	return fmt.Errorf("unknown wizard step %q", text)
}

// State is one of Listing, Drafting, Reviewing or Creating.
type State interface {
	Step() Step
}

// Listing is the product list. Created holds the record returned by a
// successful creation until it is taken with TakeCreated.
type Listing struct {
	Created *model.Product
}

// Drafting is the add-product form. Errors holds the messages from the last
// rejected submission.
type Drafting struct {
	Errors model.FieldErrors
}

// Reviewing is the confirmation view for Draft. Errors holds field errors from
// a rejected edit; Message holds the last creation failure.
type Reviewing struct {
	Draft   model.Draft
	Errors  model.FieldErrors
	Message string
}

// Creating means the create call for Draft is in flight.
type Creating struct {
	Draft model.Draft
}

func (Listing) Step() Step   { return StepListing }
func (Drafting) Step() Step  { return StepDrafting }
func (Reviewing) Step() Step { return StepReviewing }
func (Creating) Step() Step  { return StepCreating }

// Machine holds the current wizard state.
type Machine struct {
	state State
}

// New returns a machine in Listing.
func New() *Machine {
	return &Machine{state: Listing{}}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Step returns the current step.
func (m *Machine) Step() Step {
	return m.state.Step()
}

// Open moves Listing -> Drafting. An untaken created record is discarded.
func (m *Machine) Open() error {
	if _, ok := m.state.(Listing); !ok {
		return model.ErrIllegalTransition
	}
	m.state = Drafting{}
	return nil
}

// Submit validates form. A valid form moves Drafting -> Reviewing carrying the
// draft and the active date range; an invalid one stays in Drafting and the
// field errors are returned.
func (m *Machine) Submit(form model.ProductForm, r model.DateRange) error {
	if _, ok := m.state.(Drafting); !ok {
		return model.ErrIllegalTransition
	}

	if err := r.Validate(); err != nil {
		return err
	}

	draft, errs := form.Validate()
	if errs != nil {
		m.state = Drafting{Errors: errs}
		return errs
	}

	m.state = Reviewing{Draft: draft.WithRange(r)}
	return nil
}

// Review returns the confirmation view. Without a carried draft it returns
// model.ErrNoDraft so the caller can offer the way back to the list.
func (m *Machine) Review() (Reviewing, error) {
	switch s := m.state.(type) {
	case Reviewing:
		return s, nil
	case Creating:
		return Reviewing{Draft: s.Draft}, nil
	default:
		return Reviewing{}, model.ErrNoDraft
	}
}

// Confirm moves Reviewing -> Creating with the possibly edited form and
// returns the request to send. Text fields are carried verbatim; price and
// stock are coerced to numbers. Invalid edits keep the machine in Reviewing.
func (m *Machine) Confirm(form model.ProductForm) (model.CreateProductRequest, error) {
	var current Reviewing
	switch s := m.state.(type) {
	case Reviewing:
		current = s
	case Creating:
		return model.CreateProductRequest{}, model.ErrCreationPending
	default:
		return model.CreateProductRequest{}, model.ErrNoDraft
	}

	edited, errs := form.Validate()
	if errs != nil {
		m.state = Reviewing{Draft: current.Draft, Errors: errs}
		return model.CreateProductRequest{}, errs
	}

	edited.StartDate = current.Draft.StartDate
	edited.EndDate = current.Draft.EndDate

	m.state = Creating{Draft: edited}
	return edited.CreateRequest(), nil
}

// Succeed moves Creating -> Listing holding the created record.
func (m *Machine) Succeed(created model.Product) error {
	if _, ok := m.state.(Creating); !ok {
		return model.ErrIllegalTransition
	}
	m.state = Listing{Created: &created}
	return nil
}

// Fail moves Creating -> Reviewing with message. The draft is kept so the
// user can retry or cancel.
func (m *Machine) Fail(message string) error {
	s, ok := m.state.(Creating)
	if !ok {
		return model.ErrIllegalTransition
	}
	m.state = Reviewing{Draft: s.Draft, Message: message}
	return nil
}

// Cancel moves Drafting or Reviewing back to Listing without changing data.
func (m *Machine) Cancel() error {
	switch m.state.(type) {
	case Drafting, Reviewing:
		m.state = Listing{}
		return nil
	case Creating:
		return model.ErrCreationPending
	default:
		return model.ErrIllegalTransition
	}
}

// TakeCreated returns the created record once and clears it, so replaying the
// machine (a reload) cannot insert it twice.
func (m *Machine) TakeCreated() (model.Product, bool) {
	s, ok := m.state.(Listing)
	if !ok || s.Created == nil {
		return model.Product{}, false
	}
	m.state = Listing{}
	return *s.Created, true
}
