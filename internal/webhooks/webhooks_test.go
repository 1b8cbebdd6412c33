package webhooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wondertwin-ai/backoffice/pkg/store"
)

func TestIngestAndList(t *testing.T) {
	svc := New(store.NewClock())
	a := svc.Ingest(IngestInput{Provider: "mollie", Type: "payment.paid", Payload: map[string]any{"id": "tr_1"}})
	b := svc.Ingest(IngestInput{Provider: "stripe", Type: "invoice.paid", Verified: true})
	c := svc.Ingest(IngestInput{Provider: "mollie", Type: "payment.failed"})

	assert.NotEmpty(t, a.ID)
	assert.False(t, a.Verified)
	assert.True(t, b.Verified)

	mollie := svc.List("mollie")
	require.Len(t, mollie, 2)
	assert.Equal(t, c.ID, mollie[0].ID)
	assert.Equal(t, a.ID, mollie[1].ID)
	assert.Equal(t, "tr_1", mollie[1].Payload["id"])

	all := svc.List("")
	require.Len(t, all, 3)
	assert.Equal(t, c.ID, all[0].ID)
	assert.Empty(t, svc.List("unknown"))
}

func TestSnapshotLoadReset(t *testing.T) {
	svc := New(store.NewClock())
	svc.Ingest(IngestInput{Provider: "p", Type: "t"})

	other := New(store.NewClock())
	other.Load(svc.Snapshot())
	assert.Equal(t, svc.List(""), other.List(""))

	other.Reset()
	assert.Empty(t, other.List(""))
}
