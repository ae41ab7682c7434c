package service

import (
	"context"
	"sync"

	"product-catalog/internal/model"
	"product-catalog/internal/repository"
	"product-catalog/internal/wizard"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// createErrorMessage is shown when a failed creation carries no message.
const createErrorMessage = "Failed to create product"

type session struct {
	mu      sync.Mutex
	machine *wizard.Machine
}

// wizardService implements WizardService.
type wizardService struct {
	store  repository.LocalProductStore
	remote repository.RemoteProductSource
	logger zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewWizardService creates a new wizard service.
func NewWizardService(store repository.LocalProductStore, remote repository.RemoteProductSource, logger zerolog.Logger) WizardService {
	return &wizardService{
		store:    store,
		remote:   remote,
		logger:   logger.With().Str("service", "wizard").Logger(),
		sessions: make(map[string]*session),
	}
}

// Start opens a new session in the drafting step.
func (s *wizardService) Start(ctx context.Context) *Session {
	m := wizard.New()
	_ = m.Open()

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &session{machine: m}
	s.mu.Unlock()

	s.logger.Debug().Str("session_id", id).Msg("wizard session started")
	return snapshot(id, m)
}

// Get returns a snapshot of a session.
func (s *wizardService) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshot(id, sess.machine), nil
}

// Review returns the confirmation view of a session, or model.ErrNoDraft when
// the session carries no draft.
func (s *wizardService) Review(ctx context.Context, id string) (*Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if _, err := sess.machine.Review(); err != nil {
		return nil, err
	}
	return snapshot(id, sess.machine), nil
}

// Submit validates the form and moves the session to reviewing.
func (s *wizardService) Submit(ctx context.Context, id string, form model.ProductForm, r model.DateRange) (*Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.machine.Submit(form, r); err != nil {
		s.logger.Debug().Err(err).Str("session_id", id).Msg("draft rejected")
		return nil, err
	}

	return snapshot(id, sess.machine), nil
}

// Confirm sends the draft to the remote catalogue. On success the created
// product is inserted into the local store and the session is closed; on
// failure the session returns to reviewing with the failure message.
func (s *wizardService) Confirm(ctx context.Context, id string, form model.ProductForm) (*model.Product, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	req, err := sess.machine.Confirm(form)
	sess.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// The session lock is not held during the call so a concurrent confirm
	// sees the creating step and is rejected.
	created, createErr := s.remote.Create(ctx, req)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if createErr != nil {
		message := remoteMessage(createErr, createErrorMessage)
		_ = sess.machine.Fail(message)
		s.logger.Warn().Err(createErr).Str("session_id", id).Msg("product creation failed")
		return nil, model.NewDomainError(model.ErrCodeCreateFailed, message)
	}

	_ = sess.machine.Succeed(*created)
	product, _ := sess.machine.TakeCreated()

	// The record is stored even if the client went away after the remote call.
	if !s.store.Add(context.WithoutCancel(ctx), product) {
		s.logger.Info().Str("product_id", string(product.ID)).Msg("created product already stored")
	}

	s.remove(id)
	s.logger.Info().
		Str("session_id", id).
		Str("product_id", string(product.ID)).
		Msg("product created through wizard")

	return &product, nil
}

// Cancel discards the session without changing data.
func (s *wizardService) Cancel(ctx context.Context, id string) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.machine.Cancel(); err != nil {
		return err
	}

	s.remove(id)
	s.logger.Debug().Str("session_id", id).Msg("wizard session cancelled")
	return nil
}

func (s *wizardService) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return sess, nil
}

func (s *wizardService) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func snapshot(id string, m *wizard.Machine) *Session {
	out := &Session{ID: id, Step: m.Step()}

	switch st := m.State().(type) {
	case wizard.Drafting:
		out.Errors = st.Errors
	case wizard.Reviewing:
		draft := st.Draft
		out.Draft = &draft
		out.Errors = st.Errors
		out.Message = st.Message
	case wizard.Creating:
		draft := st.Draft
		out.Draft = &draft
	}
	return out
}
