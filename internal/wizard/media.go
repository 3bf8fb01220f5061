package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultMaxImages is the staging capacity used when none is configured
const DefaultMaxImages = 10

var (
	// ErrCapacity is returned when a batch would push the staged count past capacity
	ErrCapacity = errors.New("too many images")

	// ErrNotImage is returned when a file in a batch is not an image
	ErrNotImage = errors.New("file is not an image")
)

// ImageFile is an uploaded file before staging
type ImageFile struct {
	Filename string
	Data     []byte
}

// StagedImage is an image held in memory until the commit uploads it.
// PreviewID is the local reference clients use to display it.
type StagedImage struct {
	PreviewID   string
	Filename    string
	ContentType string
	Extension   string
	Data        []byte
}

// MediaStager keeps the ordered staged images and the main-image pointer.
// It never persists anything.
type MediaStager struct {
	images    []StagedImage
	mainIndex int
	capacity  int
}

// NewMediaStager creates an empty stager holding at most capacity images
func NewMediaStager(capacity int) *MediaStager {
	if capacity <= 0 {
		capacity = DefaultMaxImages
	}
	return &MediaStager{capacity: capacity}
}

// Add appends files in arrival order. The batch is all-or-nothing: if it would
// exceed capacity, or any file is not an image, nothing is staged.
func (m *MediaStager) Add(files []ImageFile) error {
	if len(m.images)+len(files) > m.capacity {
		return fmt.Errorf("%w: maximum %d images allowed", ErrCapacity, m.capacity)
	}

	staged := make([]StagedImage, 0, len(files))
	for _, f := range files {
		mt := mimetype.Detect(f.Data)
		if !strings.HasPrefix(mt.String(), "image/") {
			return fmt.Errorf("%w: %s (%s)", ErrNotImage, f.Filename, mt.String())
		}
		staged = append(staged, StagedImage{
			PreviewID:   uuid.NewString(),
			Filename:    f.Filename,
			ContentType: mt.String(),
			Extension:   mt.Extension(),
			Data:        f.Data,
		})
	}

	m.images = append(m.images, staged...)
	return nil
}

// Remove drops the image at index and keeps the main pointer on the same
// underlying image, or resets it to 0 when the main image itself is removed.
func (m *MediaStager) Remove(index int) bool {
	if index < 0 || index >= len(m.images) {
		return false
	}

	m.images = append(m.images[:index:index], m.images[index+1:]...)

	switch {
	case m.mainIndex == index:
		m.mainIndex = 0
	case m.mainIndex > index:
		m.mainIndex--
	}
	return true
}

// SetMain designates the main image; out-of-range indexes are ignored
func (m *MediaStager) SetMain(index int) bool {
	if index < 0 || index >= len(m.images) {
		return false
	}
	m.mainIndex = index
	return true
}

// Len is the number of staged images
func (m *MediaStager) Len() int {
	return len(m.images)
}

// Capacity is the maximum number of staged images
func (m *MediaStager) Capacity() int {
	return m.capacity
}

// MainIndex is the designated main image. Meaningless when nothing is staged.
func (m *MediaStager) MainIndex() int {
	return m.mainIndex
}

// Images returns the staged images in display order. The slice is a copy;
// image bytes are shared and must not be modified.
func (m *MediaStager) Images() []StagedImage {
	out := make([]StagedImage, len(m.images))
	copy(out, m.images)
	return out
}

// Find returns the staged image with the given preview id
func (m *MediaStager) Find(previewID string) (StagedImage, bool) {
	for _, img := range m.images {
		if img.PreviewID == previewID {
			return img, true
		}
	}
	return StagedImage{}, false
}
