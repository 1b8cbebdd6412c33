package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wondertwin-ai/backoffice/pkg/store"
)

func TestSendQueuesMessage(t *testing.T) {
	svc := New(Config{DefaultFrom: "facturen@example.nl"}, store.NewClock())

	res := svc.Send(SendInput{To: []string{"klant@example.nl"}, Subject: "Factuur 2024-001"})

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, StatusQueued, res.Status)
	assert.Equal(t, DefaultProvider, res.Provider)

	outbox := svc.Outbox()
	require.Len(t, outbox, 1)
	assert.Equal(t, "facturen@example.nl", outbox[0].From)
	assert.Equal(t, res.ID, outbox[0].ID)
}

func TestOutboxNewestFirst(t *testing.T) {
	svc := New(Config{Provider: "smtp"}, store.NewClock())
	first := svc.Send(SendInput{To: []string{"a@example.nl"}, Subject: "1"})
	second := svc.Send(SendInput{To: []string{"b@example.nl"}, Subject: "2", From: "me@example.nl"})

	outbox := svc.Outbox()
	require.Len(t, outbox, 2)
	assert.Equal(t, second.ID, outbox[0].ID)
	assert.Equal(t, first.ID, outbox[1].ID)
	assert.Equal(t, "me@example.nl", outbox[0].From)
	assert.Equal(t, "smtp", outbox[0].Provider)
}

func TestSnapshotLoadReset(t *testing.T) {
	svc := New(Config{}, store.NewClock())
	svc.Send(SendInput{To: []string{"a@example.nl"}, Subject: "1"})
	snap := svc.Snapshot()

	svc.Reset()
	assert.Empty(t, svc.Outbox())

	svc.Load(snap)
	assert.Equal(t, snap, svc.Snapshot())
}

func TestSendAfterLoadWithGapKeepsLoadedMessage(t *testing.T) {
	svc := New(Config{}, store.NewClock())
	svc.Load([]Message{{ID: "email_000002", Subject: "kept"}})

	res := svc.Send(SendInput{To: []string{"a@example.nl"}, Subject: "new"})
	assert.NotEqual(t, "email_000002", res.ID)

	outbox := svc.Outbox()
	require.Len(t, outbox, 2)
	assert.Equal(t, res.ID, outbox[0].ID)
	assert.Equal(t, "new", outbox[0].Subject)
	assert.Equal(t, "email_000002", outbox[1].ID)
	assert.Equal(t, "kept", outbox[1].Subject)
}
