package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trefstays/stays-backend/internal/database"
	"github.com/trefstays/stays-backend/internal/models"
	"github.com/trefstays/stays-backend/internal/session"
	"github.com/trefstays/stays-backend/internal/wizard"
)

type stubBackend struct {
	mu            sync.Mutex
	createErr     error
	accountID     uuid.UUID
	profiles      int
	roles         []string
	passwordsSeen []string
}

func (b *stubBackend) CreateAccount(_ context.Context, _, password string, _ map[string]string) (uuid.UUID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.passwordsSeen = append(b.passwordsSeen, password)
	if b.createErr != nil {
		return uuid.Nil, b.createErr
	}
	b.accountID = uuid.New()
	return b.accountID, nil
}

func (b *stubBackend) InsertProfile(context.Context, *models.Profile) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profiles++
	return nil
}

func (b *stubBackend) InsertUserRole(_ context.Context, _ uuid.UUID, role string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roles = append(b.roles, role)
	return nil
}

func (b *stubBackend) InsertProperty(context.Context, *models.Property) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (b *stubBackend) UploadObject(_ context.Context, path string, _ []byte, _ string) (string, error) {
	return "https://cdn.example.com/" + path, nil
}

func (b *stubBackend) InsertPropertyImage(context.Context, *models.PropertyImage) error {
	return nil
}

type stubAuth struct {
	err   error
	calls int
}

func (a *stubAuth) SignIn(_ context.Context, email, _ string) (*session.Session, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return &session.Session{
		AccountID:   uuid.New(),
		Email:       email,
		Roles:       []string{"renter"},
		AccessToken: "token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

func strPtr(s string) *string { return &s }

type wizardFixture struct {
	service  *WizardService
	registry *wizard.Registry
	backend  *stubBackend
	auth     *stubAuth
	events   []session.Event
}

func newWizardFixture(t *testing.T) *wizardFixture {
	t.Helper()
	f := &wizardFixture{
		registry: wizard.NewRegistry(wizard.DefaultMaxImages, 100, time.Hour, quietLogger()),
		backend:  &stubBackend{},
		auth:     &stubAuth{},
	}
	broker := session.NewBroker()
	unsubscribe := broker.Subscribe(func(ev session.Event) { f.events = append(f.events, ev) })
	t.Cleanup(unsubscribe)

	sequencer := wizard.NewSequencer(f.backend, quietLogger(), 2)
	f.service = NewWizardService(f.registry, sequencer, f.auth, broker, quietLogger())
	return f
}

func (f *wizardFixture) create(t *testing.T) uuid.UUID {
	t.Helper()
	id, _, err := f.registry.Create()
	require.NoError(t, err)
	return id
}

// renterReady creates a renter session on its terminal step with valid account data
func (f *wizardFixture) renterReady(t *testing.T) uuid.UUID {
	t.Helper()
	id := f.create(t)
	_, err := f.registry.Update(id, func(s *wizard.Session) error {
		if err := s.Choose(wizard.RoleRenter); err != nil {
			return err
		}
		s.UpdateAccount(wizard.AccountPatch{
			FirstName:       strPtr("Jane"),
			LastName:        strPtr("Doe"),
			Email:           strPtr("jane@example.com"),
			Phone:           strPtr("+15550000000"),
			Password:        strPtr("secret1"),
			ConfirmPassword: strPtr("secret1"),
		})
		return nil
	})
	require.NoError(t, err)
	return id
}

func TestWizardServiceComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("Renter Success Hands Off Session", func(t *testing.T) {
		f := newWizardFixture(t)
		id := f.renterReady(t)

		out, _, err := f.service.Complete(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, out.Session)
		assert.Equal(t, wizard.RoleRenter, out.Result.Role)
		assert.Equal(t, []string{"renter"}, f.backend.roles)
		assert.Equal(t, 1, f.backend.profiles)

		require.Len(t, f.events, 1)
		assert.Equal(t, session.SignedIn, f.events[0].Kind)

		_, err = f.registry.Get(id)
		assert.ErrorIs(t, err, wizard.ErrSessionNotFound)
	})

	t.Run("Duplicate Email Keeps Session For Retry", func(t *testing.T) {
		f := newWizardFixture(t)
		f.backend.createErr = database.ErrDuplicateEmail
		id := f.renterReady(t)

		out, view, err := f.service.Complete(ctx, id)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, database.ErrDuplicateEmail)
		assert.Equal(t, "User already registered", view.Errors.General())
		assert.False(t, view.Busy)
		assert.Equal(t, 0, f.auth.calls)
		assert.Empty(t, f.events)

		f.backend.createErr = nil
		out, _, err = f.service.Complete(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, out.Session)
		assert.Len(t, f.backend.passwordsSeen, 2)
	})

	t.Run("Internal Errors Are Not Shown", func(t *testing.T) {
		f := newWizardFixture(t)
		f.backend.createErr = errors.New("failed to create account: connection refused")
		id := f.renterReady(t)

		_, view, err := f.service.Complete(ctx, id)
		require.Error(t, err)
		assert.Equal(t, wizard.GenericCommitFailure, view.Errors.General())
	})

	t.Run("Sign In Failure After Commit Still Succeeds", func(t *testing.T) {
		f := newWizardFixture(t)
		f.auth.err = errors.New("redis down")
		id := f.renterReady(t)

		out, _, err := f.service.Complete(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, out.Session)
		assert.NotEqual(t, uuid.Nil, out.Result.AccountID)
		assert.Empty(t, f.events)
	})

	t.Run("Not On Terminal Step", func(t *testing.T) {
		f := newWizardFixture(t)
		id := f.create(t)

		_, _, err := f.service.Complete(ctx, id)
		assert.ErrorIs(t, err, wizard.ErrInvalidTransition)
		assert.Empty(t, f.backend.passwordsSeen)
	})
}

func TestWizardServiceSignIn(t *testing.T) {
	ctx := context.Background()

	signInSession := func(t *testing.T, f *wizardFixture) uuid.UUID {
		id := f.create(t)
		_, err := f.registry.Update(id, func(s *wizard.Session) error { return s.SetMode(wizard.ModeSignIn) })
		require.NoError(t, err)
		return id
	}

	t.Run("Success", func(t *testing.T) {
		f := newWizardFixture(t)
		id := signInSession(t, f)

		sess, _, err := f.service.SignIn(ctx, id, "jane@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", sess.Email)
		require.Len(t, f.events, 1)

		_, err = f.registry.Get(id)
		assert.ErrorIs(t, err, wizard.ErrSessionNotFound)
	})

	t.Run("Blank Fields", func(t *testing.T) {
		f := newWizardFixture(t)
		id := signInSession(t, f)

		_, view, err := f.service.SignIn(ctx, id, " ", "")
		assert.ErrorIs(t, err, wizard.ErrStepInvalid)
		assert.Equal(t, "Email is required", view.Errors[wizard.FieldEmail])
		assert.Equal(t, "Password is required", view.Errors[wizard.FieldPassword])
		assert.Equal(t, 0, f.auth.calls)
	})

	t.Run("Invalid Credentials", func(t *testing.T) {
		f := newWizardFixture(t)
		f.auth.err = ErrInvalidCredentials
		id := signInSession(t, f)

		_, view, err := f.service.SignIn(ctx, id, "jane@example.com", "bad")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, "Invalid login credentials", view.Errors.General())

		_, err = f.registry.Get(id)
		assert.NoError(t, err)
	})

	t.Run("Wrong Mode", func(t *testing.T) {
		f := newWizardFixture(t)
		id := f.create(t)

		_, _, err := f.service.SignIn(ctx, id, "jane@example.com", "secret1")
		assert.ErrorIs(t, err, wizard.ErrInvalidTransition)
	})
}
