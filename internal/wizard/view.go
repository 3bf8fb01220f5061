package wizard

import (
	"github.com/google/uuid"

	"github.com/trefstays/stays-backend/pkg/currency"
)

// View is what a client renders for a session. It is derived from the
// session alone and never carries passwords or image bytes.
type View struct {
	ID             uuid.UUID   `json:"id"`
	Mode           Mode        `json:"mode"`
	Role           Role        `json:"role"`
	Step           string      `json:"step"`
	StepIndex      int         `json:"step_index"`
	LastStepIndex  int         `json:"last_step_index"`
	IsLastStep     bool        `json:"is_last_step"`
	Account        Account     `json:"account"`
	Listing        *Listing    `json:"listing,omitempty"`
	Images         []ImageView `json:"images"`
	MainImageIndex int         `json:"main_image_index"`
	MaxImages      int         `json:"max_images"`
	Errors         FieldErrors `json:"errors"`
	Busy           bool        `json:"busy"`
}

// ImageView describes a staged image without its contents
type ImageView struct {
	PreviewID   string `json:"preview_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	IsMain      bool   `json:"is_main"`
}

// Render builds the client view of s
func Render(id uuid.UUID, s *Session, busy bool) View {
	v := View{
		ID:             id,
		Mode:           s.mode,
		Role:           s.role,
		Step:           s.step.String(),
		StepIndex:      int(s.step),
		LastStepIndex:  int(LastStep(s.role)),
		IsLastStep:     s.IsLastStep(),
		Account:        s.account,
		Images:         make([]ImageView, 0, s.media.Len()),
		MainImageIndex: s.media.MainIndex(),
		MaxImages:      s.media.Capacity(),
		Errors:         s.errors.Clone(),
		Busy:           busy,
	}

	if s.role == RoleOwner {
		l := s.listing.clone()
		v.Listing = &l
	}

	for i, img := range s.media.images {
		v.Images = append(v.Images, ImageView{
			PreviewID:   img.PreviewID,
			Filename:    img.Filename,
			ContentType: img.ContentType,
			Size:        len(img.Data),
			IsMain:      i == s.media.mainIndex,
		})
	}

	return v
}

// Options lists the choices a client offers on the listing steps
type Options struct {
	PropertyTypes []string            `json:"property_types"`
	Amenities     []string            `json:"amenities"`
	Countries     []currency.Country  `json:"countries"`
	Currencies    []currency.Currency `json:"currencies"`
	MaxImages     int                 `json:"max_images"`
}

// ListingOptions returns the selectable property types, amenities, countries and currencies
func ListingOptions(maxImages int) Options {
	return Options{
		PropertyTypes: append([]string(nil), PropertyTypes...),
		Amenities:     append([]string(nil), PredefinedAmenities...),
		Countries:     currency.Countries(),
		Currencies:    currency.All(),
		MaxImages:     maxImages,
	}
}
