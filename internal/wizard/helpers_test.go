package wizard

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trefstays/stays-backend/internal/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func pngFile(name string) ImageFile {
	return ImageFile{Filename: name, Data: append([]byte(nil), pngHeader...)}
}

func pngFiles(n int) []ImageFile {
	files := make([]ImageFile, n)
	for i := range files {
		files[i] = pngFile(fmt.Sprintf("photo-%d.png", i))
	}
	return files
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

func validAccountPatch() AccountPatch {
	return AccountPatch{
		FirstName:       strPtr("Jane"),
		LastName:        strPtr("Doe"),
		Email:           strPtr("jane@example.com"),
		Phone:           strPtr("+15550000000"),
		Password:        strPtr("secret1"),
		ConfirmPassword: strPtr("secret1"),
	}
}

// ownerAtPreview walks a fresh owner session through every step with valid data
func ownerAtPreview(t interface{ Fatalf(string, ...any) }, images int) *Session {
	s := NewSession(DefaultMaxImages)
	steps := []func() error{
		func() error { return s.Choose(RoleOwner) },
		func() error { s.UpdateAccount(validAccountPatch()); return s.Next() },
		func() error {
			s.UpdateListing(ListingPatch{
				Title:         strPtr("Cabin"),
				PropertyType:  strPtr("cabin"),
				PricePerNight: strPtr("150"),
			})
			return s.Next()
		},
		func() error {
			s.UpdateListing(ListingPatch{
				Address: strPtr("1 Main St"),
				City:    strPtr("Town"),
				Country: strPtr("us"),
			})
			return s.Next()
		},
		func() error {
			if err := s.AddImages(pngFiles(images)); err != nil {
				return err
			}
			return s.Next()
		},
		func() error {
			s.UpdateListing(ListingPatch{Description: strPtr("A quiet cabin by the lake with room for two.")})
			return s.Next()
		},
		func() error { return s.Next() },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v (errors: %v)", i, err, s.Errors())
		}
	}
	return s
}

// fakeBackend records writes in memory and fails on demand
type fakeBackend struct {
	mu sync.Mutex

	accounts   map[string]uuid.UUID
	profiles   []models.Profile
	roles      []models.UserRole
	properties []models.Property
	images     []models.PropertyImage
	uploads    map[string][]byte

	failProperty   error
	failProfile    error
	failUploadsFor map[string]bool // by filename suffix "-<index><ext>"
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts:       map[string]uuid.UUID{},
		uploads:        map[string][]byte{},
		failUploadsFor: map[string]bool{},
	}
}

// shownError mimics an identity error that is safe to show
type shownError string

func (e shownError) Error() string       { return string(e) }
func (e shownError) UserMessage() string { return string(e) }

var errDuplicateEmail error = shownError("User already registered")

func (f *fakeBackend) CreateAccount(_ context.Context, email, _ string, _ map[string]string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[email]; ok {
		return uuid.Nil, errDuplicateEmail
	}
	id := uuid.New()
	f.accounts[email] = id
	return id, nil
}

func (f *fakeBackend) InsertProfile(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failProfile != nil {
		return f.failProfile
	}
	f.profiles = append(f.profiles, *p)
	return nil
}

func (f *fakeBackend) InsertUserRole(_ context.Context, accountID uuid.UUID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles = append(f.roles, models.UserRole{ID: uuid.New(), UserID: accountID, Role: role})
	return nil
}

func (f *fakeBackend) InsertProperty(_ context.Context, p *models.Property) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failProperty != nil {
		return uuid.Nil, f.failProperty
	}
	p.ID = uuid.New()
	f.properties = append(f.properties, *p)
	return p.ID, nil
}

func (f *fakeBackend) UploadObject(_ context.Context, path string, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for suffix := range f.failUploadsFor {
		if len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix {
			return "", fmt.Errorf("storage unavailable")
		}
	}
	f.uploads[path] = data
	return "https://cdn.example.com/property-images/" + path, nil
}

func (f *fakeBackend) InsertPropertyImage(_ context.Context, img *models.PropertyImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, *img)
	return nil
}
