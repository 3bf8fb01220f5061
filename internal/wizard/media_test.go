package wizard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaStagerAdd(t *testing.T) {
	t.Run("Detects Type And Extension", func(t *testing.T) {
		m := NewMediaStager(DefaultMaxImages)
		jpeg := ImageFile{Filename: "front.jpg", Data: []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")}

		require.NoError(t, m.Add([]ImageFile{pngFile("a.png"), jpeg}))
		images := m.Images()
		require.Len(t, images, 2)
		assert.Equal(t, "image/png", images[0].ContentType)
		assert.Equal(t, ".png", images[0].Extension)
		assert.Equal(t, "image/jpeg", images[1].ContentType)
		assert.Equal(t, ".jpg", images[1].Extension)
		assert.NotEqual(t, images[0].PreviewID, images[1].PreviewID)
	})

	t.Run("Eleven At Once Rejected In Full", func(t *testing.T) {
		m := NewMediaStager(DefaultMaxImages)

		err := m.Add(pngFiles(11))
		assert.True(t, errors.Is(err, ErrCapacity))
		assert.Equal(t, 0, m.Len())
	})

	t.Run("Five Then Six", func(t *testing.T) {
		m := NewMediaStager(DefaultMaxImages)

		require.NoError(t, m.Add(pngFiles(5)))
		err := m.Add(pngFiles(6))
		assert.True(t, errors.Is(err, ErrCapacity))
		assert.Equal(t, 5, m.Len())

		require.NoError(t, m.Add(pngFiles(5)))
		assert.Equal(t, 10, m.Len())
	})

	t.Run("Non Image Rejects Batch", func(t *testing.T) {
		m := NewMediaStager(DefaultMaxImages)
		text := ImageFile{Filename: "notes.txt", Data: []byte("just some text")}

		err := m.Add([]ImageFile{pngFile("a.png"), text})
		assert.True(t, errors.Is(err, ErrNotImage))
		assert.Equal(t, 0, m.Len())
	})

	t.Run("Default Capacity", func(t *testing.T) {
		assert.Equal(t, DefaultMaxImages, NewMediaStager(0).Capacity())
	})
}

func TestMediaStagerRemove(t *testing.T) {
	stage := func(t *testing.T, n, main int) *MediaStager {
		m := NewMediaStager(DefaultMaxImages)
		require.NoError(t, m.Add(pngFiles(n)))
		require.True(t, m.SetMain(main))
		return m
	}

	t.Run("Removing Main Resets To Zero", func(t *testing.T) {
		m := stage(t, 4, 2)

		assert.True(t, m.Remove(2))
		assert.Equal(t, 3, m.Len())
		assert.Equal(t, 0, m.MainIndex())
	})

	t.Run("Removing Before Main Shifts Back", func(t *testing.T) {
		m := stage(t, 4, 2)
		mainID := m.Images()[2].PreviewID

		assert.True(t, m.Remove(0))
		assert.Equal(t, 1, m.MainIndex())
		assert.Equal(t, mainID, m.Images()[m.MainIndex()].PreviewID)
	})

	t.Run("Removing After Main Keeps It", func(t *testing.T) {
		m := stage(t, 4, 1)

		assert.True(t, m.Remove(3))
		assert.Equal(t, 1, m.MainIndex())
	})

	t.Run("Removing Last Image", func(t *testing.T) {
		m := stage(t, 1, 0)

		assert.True(t, m.Remove(0))
		assert.Equal(t, 0, m.Len())
		assert.Equal(t, 0, m.MainIndex())
	})

	t.Run("Out Of Range", func(t *testing.T) {
		m := stage(t, 2, 1)

		assert.False(t, m.Remove(-1))
		assert.False(t, m.Remove(2))
		assert.Equal(t, 2, m.Len())
		assert.Equal(t, 1, m.MainIndex())
	})

	t.Run("Preserves Order", func(t *testing.T) {
		m := stage(t, 3, 0)
		ids := []string{m.Images()[0].PreviewID, m.Images()[2].PreviewID}

		m.Remove(1)
		assert.Equal(t, ids[0], m.Images()[0].PreviewID)
		assert.Equal(t, ids[1], m.Images()[1].PreviewID)
	})
}

func TestMediaStagerSetMain(t *testing.T) {
	m := NewMediaStager(DefaultMaxImages)
	assert.False(t, m.SetMain(0))

	require.NoError(t, m.Add(pngFiles(3)))
	assert.True(t, m.SetMain(2))
	assert.Equal(t, 2, m.MainIndex())

	assert.False(t, m.SetMain(3))
	assert.False(t, m.SetMain(-1))
	assert.Equal(t, 2, m.MainIndex())
}

func TestMediaStagerFind(t *testing.T) {
	m := NewMediaStager(DefaultMaxImages)
	require.NoError(t, m.Add(pngFiles(2)))

	want := m.Images()[1]
	got, ok := m.Find(want.PreviewID)
	assert.True(t, ok)
	assert.Equal(t, want.Filename, got.Filename)

	_, ok = m.Find("missing")
	assert.False(t, ok)
}
