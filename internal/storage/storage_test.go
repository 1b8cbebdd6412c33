package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wondertwin-ai/backoffice/pkg/store"
)

func TestUploadDefaults(t *testing.T) {
	svc := New(store.NewClock())

	f := svc.Upload(UploadInput{Name: "invoice.pdf", Size: 2048})
	assert.Equal(t, "invoice.pdf", f.Name)
	assert.Equal(t, DefaultContentType, f.ContentType)
	assert.Equal(t, int64(2048), f.Size)
	assert.Equal(t, "/storage/"+f.ID, f.URL)
	assert.False(t, f.CreatedAt.IsZero())
}

func TestGetRemove(t *testing.T) {
	svc := New(store.NewClock())
	f := svc.Upload(UploadInput{Name: "a.txt", ContentType: "text/plain"})

	got, ok := svc.Get(f.ID)
	require.True(t, ok)
	assert.Equal(t, f, got)

	assert.True(t, svc.Remove(f.ID))
	assert.False(t, svc.Remove(f.ID), "second remove reports absence")
	_, ok = svc.Get(f.ID)
	assert.False(t, ok)
}

func TestListOldestFirst(t *testing.T) {
	svc := New(store.NewClock())
	a := svc.Upload(UploadInput{Name: "a"})
	b := svc.Upload(UploadInput{Name: "b"})

	files := svc.List()
	require.Len(t, files, 2)
	assert.Equal(t, a.ID, files[0].ID)
	assert.Equal(t, b.ID, files[1].ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSnapshotLoadReset(t *testing.T) {
	svc := New(store.NewClock())
	svc.Upload(UploadInput{Name: "a"})
	svc.Upload(UploadInput{Name: "b"})

	other := New(store.NewClock())
	other.Load(svc.Snapshot())
	assert.Equal(t, svc.List(), other.List())

	other.Reset()
	assert.Empty(t, other.List())
}
