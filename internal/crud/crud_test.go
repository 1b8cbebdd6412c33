package crud

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wondertwin-ai/backoffice/pkg/store"
)

func newKlanten(t *testing.T) (*Service, *store.Clock) {
	t.Helper()
	clock := store.NewClock()
	svc, err := NewRegistry(clock).Resource("klanten")
	require.NoError(t, err)
	return svc, clock
}

func TestCreateAssignsEnvelope(t *testing.T) {
	svc, _ := newKlanten(t)

	e := svc.Create(map[string]any{"naam": "Jansen", "id": "spoofed", "createdAt": "fake"})

	assert.NotEmpty(t, e.ID)
	assert.NotEqual(t, "spoofed", e.ID)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
	assert.Equal(t, map[string]any{"naam": "Jansen"}, e.Fields)

	got, ok := svc.Get(e.ID)
	require.True(t, ok)
	assert.Equal(t, e, got)
}

func TestCreateIDsAreUnique(t *testing.T) {
	svc, _ := newKlanten(t)
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		e := svc.Create(map[string]any{"n": i})
		require.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
	assert.Len(t, svc.List(), 500)
}

func TestUpdateRestoresIdentity(t *testing.T) {
	svc, clock := newKlanten(t)
	e := svc.Create(map[string]any{"naam": "Jansen", "plaats": "Utrecht"})

	clock.Advance(time.Minute)
	got, ok := svc.Update(e.ID, map[string]any{"naam": "De Vries", "id": "other", "createdAt": "fake"})
	require.True(t, ok)

	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, e.CreatedAt, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(e.UpdatedAt))
	assert.Equal(t, "De Vries", got.Fields["naam"])
	assert.Equal(t, "Utrecht", got.Fields["plaats"])
}

func TestUpdatedAtNeverMovesBackwards(t *testing.T) {
	svc, clock := newKlanten(t)
	clock.Advance(time.Hour)
	e := svc.Create(map[string]any{})

	clock.Reset()
	got, ok := svc.Update(e.ID, map[string]any{"x": 1})
	require.True(t, ok)
	assert.False(t, got.UpdatedAt.Before(e.UpdatedAt))
}

func TestUpdateMissing(t *testing.T) {
	svc, _ := newKlanten(t)
	_, ok := svc.Update("nope", map[string]any{"x": 1})
	assert.False(t, ok)
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	svc, _ := newKlanten(t)
	e := svc.Create(map[string]any{"naam": "Jansen"})
	e.Fields["naam"] = "mutated"

	got, _ := svc.Get(e.ID)
	assert.Equal(t, "Jansen", got.Fields["naam"])
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, _ := newKlanten(t)
	e := svc.Create(map[string]any{})

	assert.True(t, svc.Remove(e.ID))
	assert.False(t, svc.Remove(e.ID))
	assert.False(t, svc.Remove("never-existed"))
	_, ok := svc.Get(e.ID)
	assert.False(t, ok)
}

func TestRegistryMemoizes(t *testing.T) {
	r := NewRegistry(nil)
	a, err := r.Resource("klanten")
	require.NoError(t, err)
	b, err := r.Resource("klanten")
	require.NoError(t, err)
	c, err := r.Resource("offertes")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)

	a.Create(map[string]any{})
	assert.Equal(t, 0, c.Count())
	assert.Equal(t, []string{"klanten", "offertes"}, r.Names())
}

func TestRegistryConcurrentFirstAccess(t *testing.T) {
	r := NewRegistry(nil)
	const workers = 64
	got := make([]*Service, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc, err := r.Resource("facturen")
			if err == nil {
				got[i] = svc
				svc.Create(map[string]any{"i": i})
			}
		}(i)
	}
	wg.Wait()

	for _, svc := range got {
		require.Same(t, got[0], svc)
	}
	assert.Equal(t, workers, got[0].Count())
}

func TestRegistryRejectsMalformedNames(t *testing.T) {
	r := NewRegistry(nil)
	for _, name := range []string{"", "../etc", "a b", "naam?x"} {
		_, err := r.Resource(name)
		assert.ErrorIs(t, err, ErrInvalidResource, name)
	}
}

func TestRegistryResetKeepsInstances(t *testing.T) {
	r := NewRegistry(nil)
	svc, _ := r.Resource("klanten")
	svc.Create(map[string]any{})

	r.Reset()

	again, _ := r.Resource("klanten")
	assert.Same(t, svc, again)
	assert.Equal(t, 0, svc.Count())
}

func TestEntityJSONRoundTripThroughSnapshot(t *testing.T) {
	r := NewRegistry(nil)
	svc, _ := r.Resource("klanten")
	e := svc.Create(map[string]any{"naam": "Jansen"})

	data, err := json.Marshal(r.Snapshot())
	require.NoError(t, err)

	var snap map[string][]Entity
	require.NoError(t, json.Unmarshal(data, &snap))

	r2 := NewRegistry(nil)
	require.NoError(t, r2.Load(snap))
	svc2, _ := r2.Resource("klanten")
	got, ok := svc2.Get(e.ID)
	require.True(t, ok)
	assert.Equal(t, "Jansen", got.Fields["naam"])
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))
}

func TestEntityMarshalFlattens(t *testing.T) {
	e := Entity{ID: "k1", Fields: map[string]any{"naam": "Jansen", "id": "ignored"}}
	data, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "k1", m["id"])
	assert.Equal(t, "Jansen", m["naam"])
	assert.Contains(t, m, "createdAt")
	assert.Contains(t, m, "updatedAt")
}
