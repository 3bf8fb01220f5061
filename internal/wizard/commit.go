package wizard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/trefstays/stays-backend/internal/models"
	"github.com/trefstays/stays-backend/pkg/validator"
)

// DefaultUploadConcurrency bounds parallel image uploads when none is configured
const DefaultUploadConcurrency = 3

// GenericCommitFailure is shown for any commit failure that is not user facing
const GenericCommitFailure = "Failed to create account"

// UserFacing is implemented by errors whose text may be shown to the person signing up
type UserFacing interface {
	error
	UserMessage() string
}

// Backend is the set of remote operations a commit issues, in the order it issues them
type Backend interface {
	CreateAccount(ctx context.Context, email, password string, metadata map[string]string) (uuid.UUID, error)
	InsertProfile(ctx context.Context, profile *models.Profile) error
	InsertUserRole(ctx context.Context, accountID uuid.UUID, role string) error
	InsertProperty(ctx context.Context, property *models.Property) (uuid.UUID, error)
	UploadObject(ctx context.Context, path string, data []byte, contentType string) (string, error)
	InsertPropertyImage(ctx context.Context, image *models.PropertyImage) error
}

// Stage names the remote write a commit failed at
type Stage string

const (
	StageCreateAccount Stage = "create_account"
	StageProfile       Stage = "profile"
	StageRole          Stage = "role"
	StageProperty      Stage = "property"
)

// CommitError is a fatal commit failure. When Stage is past account creation,
// AccountID names the account left behind without a complete signup.
type CommitError struct {
	Stage     Stage
	AccountID uuid.UUID
	Err       error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit failed at %s: %v", e.Stage, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Orphaned reports whether an account exists even though the commit failed
func (e *CommitError) Orphaned() bool {
	return e.AccountID != uuid.Nil
}

// Message is the text shown to the user for this failure. Only a UserFacing
// error in the chain is shown; driver and storage errors become generic.
func (e *CommitError) Message() string {
	var uf UserFacing
	if errors.As(e.Err, &uf) {
		if msg := uf.UserMessage(); msg != "" {
			return msg
		}
	}
	return GenericCommitFailure
}

// Result describes a successful commit
type Result struct {
	AccountID  uuid.UUID `json:"account_id"`
	PropertyID uuid.UUID `json:"property_id,omitempty"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	// ImagesSaved counts images that were both uploaded and recorded
	ImagesSaved int `json:"images_saved"`
	// SkippedImages lists display indexes that could not be saved
	SkippedImages []int `json:"skipped_images,omitempty"`
}

// Sequencer runs the ordered remote writes that turn a submission into
// an account, and for owners a pending property with its photos
type Sequencer struct {
	backend     Backend
	logger      *logrus.Logger
	concurrency int
	now         func() time.Time
}

// NewSequencer creates a commit sequencer
func NewSequencer(backend Backend, logger *logrus.Logger, uploadConcurrency int) *Sequencer {
	if uploadConcurrency <= 0 {
		uploadConcurrency = DefaultUploadConcurrency
	}
	return &Sequencer{
		backend:     backend,
		logger:      logger,
		concurrency: uploadConcurrency,
		now:         time.Now,
	}
}

// Commit issues the writes for sub. Account, profile, role and property are
// written in order and the first failure stops the run; nothing already
// written is undone. Image failures are logged and skipped.
func (s *Sequencer) Commit(ctx context.Context, sub Submission) (*Result, error) {
	acct := sub.Account
	// account and profile must agree on the stored address
	email := validator.NormalizeEmail(acct.Email)

	accountID, err := s.backend.CreateAccount(ctx, email, acct.Password, map[string]string{
		"first_name": acct.FirstName,
		"last_name":  acct.LastName,
	})
	if err != nil {
		return nil, &CommitError{Stage: StageCreateAccount, Err: err}
	}

	log := s.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"role":       sub.Role,
	})

	profile := &models.Profile{
		UserID:    accountID,
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
		Email:     email,
		Phone:     acct.Phone,
	}
	if err := s.backend.InsertProfile(ctx, profile); err != nil {
		log.WithError(err).Error("Profile insert failed after account creation")
		return nil, &CommitError{Stage: StageProfile, AccountID: accountID, Err: err}
	}

	if err := s.backend.InsertUserRole(ctx, accountID, string(sub.Role)); err != nil {
		log.WithError(err).Error("Role insert failed after account creation")
		return nil, &CommitError{Stage: StageRole, AccountID: accountID, Err: err}
	}

	result := &Result{
		AccountID: accountID,
		Email:     email,
		Role:      sub.Role,
	}
	if sub.Role != RoleOwner {
		log.Info("Account created")
		return result, nil
	}

	property, err := propertyFromListing(accountID, sub.Listing)
	if err != nil {
		return nil, &CommitError{Stage: StageProperty, AccountID: accountID, Err: err}
	}
	propertyID, err := s.backend.InsertProperty(ctx, property)
	if err != nil {
		log.WithError(err).Error("Property insert failed after account creation")
		return nil, &CommitError{Stage: StageProperty, AccountID: accountID, Err: err}
	}
	result.PropertyID = propertyID

	result.ImagesSaved, result.SkippedImages = s.saveImages(ctx, log.WithField("property_id", propertyID),
		accountID, propertyID, sub.Images, sub.MainIndex)

	log.WithFields(logrus.Fields{
		"property_id":  propertyID,
		"images_saved": result.ImagesSaved,
		"images_total": len(sub.Images),
	}).Info("Account and property listing created")

	return result, nil
}

// saveImages uploads every staged image and records the ones that made it.
// A row is only inserted after its own upload succeeded.
func (s *Sequencer) saveImages(ctx context.Context, log *logrus.Entry, accountID, propertyID uuid.UUID, images []StagedImage, mainIndex int) (int, []int) {
	if len(images) == 0 {
		return 0, nil
	}

	var (
		mu      sync.Mutex
		skipped []int
	)
	skip := func(i int) {
		mu.Lock()
		skipped = append(skipped, i)
		mu.Unlock()
	}

	stamp := s.now().UnixMilli()

	// Failures are absorbed per image, so the group never cancels its siblings
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, img := range images {
		g.Go(func() error {
			path := ObjectPath(accountID, propertyID, stamp, i, img.Extension)
			entry := log.WithFields(logrus.Fields{"index": i, "path": path})

			url, err := s.backend.UploadObject(ctx, path, img.Data, img.ContentType)
			if err != nil {
				entry.WithError(err).Warn("Image upload failed, skipping")
				skip(i)
				return nil
			}

			row := &models.PropertyImage{
				PropertyID:   propertyID,
				ImageURL:     url,
				IsMain:       i == mainIndex,
				DisplayOrder: i,
			}
			if err := s.backend.InsertPropertyImage(ctx, row); err != nil {
				entry.WithError(err).Warn("Image row insert failed, skipping")
				skip(i)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Ints(skipped)
	return len(images) - len(skipped), skipped
}

// ObjectPath is the storage key of a listing photo: account/property/stamp-index.ext
func ObjectPath(accountID, propertyID uuid.UUID, stamp int64, index int, ext string) string {
	return fmt.Sprintf("%s/%s/%d-%d%s", accountID, propertyID, stamp, index, ext)
}

func propertyFromListing(ownerID uuid.UUID, l Listing) (*models.Property, error) {
	price, err := ParsePrice(l.PricePerNight)
	if err != nil {
		return nil, fmt.Errorf("invalid price per night: %w", err)
	}

	return &models.Property{
		OwnerID:       ownerID,
		Title:         l.Title,
		PropertyType:  l.PropertyType,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		MaxGuests:     l.MaxGuests,
		PricePerNight: price,
		Currency:      l.Currency,
		Address:       l.Address,
		City:          l.City,
		State:         models.NewNullString(l.State),
		Country:       l.Country,
		Zipcode:       models.NewNullString(l.Zipcode),
		Description:   l.Description,
		Amenities:     l.SelectedAmenities(),

		NearbyShul:                models.NewNullString(l.NearbyShul),
		NearbyShulDistance:        models.NewNullString(l.NearbyShulDistance),
		NearbyKosherShops:         models.NewNullString(l.NearbyKosherShops),
		NearbyKosherShopsDistance: models.NewNullString(l.NearbyKosherShopsDistance),
		NearbyMikva:               models.NewNullString(l.NearbyMikva),
		NearbyMikvaDistance:       models.NewNullString(l.NearbyMikvaDistance),
		KosherKitchen:             l.KosherKitchen,
		ShabbosFriendly:           l.ShabbosFriendly,

		Status: models.PropertyStatusPending,
	}, nil
}
