package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trefstays/stays-backend/internal/session"
	"github.com/trefstays/stays-backend/internal/wizard"
)

// signInFailure is shown when sign in fails for a reason other than bad credentials
const signInFailure = "Failed to sign in"

// Authenticator signs an account in with its credentials
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*session.Session, error)
}

// CompleteResult is returned when a wizard submission succeeds.
// Session is nil when the account was created but could not be signed in.
type CompleteResult struct {
	Result  *wizard.Result   `json:"result"`
	Session *session.Session `json:"session,omitempty"`
}

// WizardService finishes wizard sessions: it runs the commit for sign ups,
// checks credentials for sign ins and hands the resulting session off
type WizardService struct {
	registry  *wizard.Registry
	sequencer *wizard.Sequencer
	auth      Authenticator
	broker    *session.Broker
	logger    *logrus.Logger
}

// NewWizardService creates a new wizard service
func NewWizardService(
	registry *wizard.Registry,
	sequencer *wizard.Sequencer,
	auth Authenticator,
	broker *session.Broker,
	logger *logrus.Logger,
) *WizardService {
	return &WizardService{
		registry:  registry,
		sequencer: sequencer,
		auth:      auth,
		broker:    broker,
		logger:    logger,
	}
}

// Complete submits a session sitting on its terminal step. On success the
// wizard session is destroyed and the new account is signed in; on failure
// the returned view carries the general error and the session may be resubmitted.
func (s *WizardService) Complete(ctx context.Context, id uuid.UUID) (*CompleteResult, wizard.View, error) {
	sub, view, err := s.registry.BeginSubmit(id)
	if err != nil {
		return nil, view, err
	}

	// A started commit runs to completion even if the client goes away
	commitCtx := context.WithoutCancel(ctx)

	result, err := s.sequencer.Commit(commitCtx, sub)
	if err != nil {
		msg := wizard.GenericCommitFailure
		log := s.logger.WithError(err).WithField("wizard_id", id)
		var commitErr *wizard.CommitError
		if errors.As(err, &commitErr) {
			msg = commitErr.Message()
			if commitErr.Orphaned() {
				log = log.WithField("orphaned_account_id", commitErr.AccountID)
			}
		}
		log.Warn("Wizard submission failed")

		view, endErr := s.registry.EndSubmit(id, err, msg)
		if endErr != nil {
			return nil, view, endErr
		}
		return nil, view, err
	}

	if _, err := s.registry.EndSubmit(id, nil, ""); err != nil {
		return nil, wizard.View{}, err
	}

	out := &CompleteResult{Result: result}
	sess, err := s.auth.SignIn(commitCtx, sub.Account.Email, sub.Account.Password)
	if err != nil {
		s.logger.WithError(err).WithField("account_id", result.AccountID).
			Warn("Account created but automatic sign in failed")
		return out, wizard.View{}, nil
	}

	out.Session = sess
	s.broker.Publish(session.Event{Kind: session.SignedIn, Session: *sess})
	return out, wizard.View{}, nil
}

// SignIn authenticates from a session in sign-in mode and destroys the session on success
func (s *WizardService) SignIn(ctx context.Context, id uuid.UUID, email, password string) (*session.Session, wizard.View, error) {
	view, err := s.registry.Update(id, func(ws *wizard.Session) error {
		if ws.Mode() != wizard.ModeSignIn {
			return fmt.Errorf("%w: session is in %s mode", wizard.ErrInvalidTransition, ws.Mode())
		}
		if errs := wizard.ValidateSignIn(email, password); !errs.Empty() {
			ws.FailSignIn(errs)
			return wizard.ErrStepInvalid
		}
		return nil
	})
	if err != nil {
		return nil, view, err
	}

	sess, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		msg := signInFailure
		if errors.Is(err, ErrInvalidCredentials) {
			msg = err.Error()
		} else {
			s.logger.WithError(err).Error("Sign in failed")
		}

		view, updateErr := s.registry.Update(id, func(ws *wizard.Session) error {
			ws.FailSignIn(wizard.FieldErrors{wizard.FieldGeneral: msg})
			return nil
		})
		if updateErr != nil {
			return nil, view, updateErr
		}
		return nil, view, err
	}

	if err := s.registry.Delete(id); err != nil && !errors.Is(err, wizard.ErrSessionNotFound) {
		s.logger.WithError(err).WithField("wizard_id", id).Warn("Failed to discard wizard session after sign in")
	}

	s.broker.Publish(session.Event{Kind: session.SignedIn, Session: *sess})
	return sess, wizard.View{}, nil
}
