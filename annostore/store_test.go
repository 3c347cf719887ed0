package annostore

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/benoitkugler/okmarker/annomarker"
	"github.com/benoitkugler/okmarker/annostate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState(markers int) *annostate.AnnotationState {
	st := annostate.New(640, 480)
	for i := 0; i < markers; i++ {
		m := annomarker.NewFrameMarker()
		m.Left, m.Top, m.Width, m.Height = float64(10*i), 20, 30, 40
		st.Markers = append(st.Markers, m.GetState())
	}
	return st
}

func encoded(t *testing.T, state *annostate.AnnotationState) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, annostate.Encode(&buf, state))
	return buf.String()
}

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveGet(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	state := sampleState(2)
	id, err := s.Save(ctx, "first", state)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, encoded(t, state), encoded(t, got))

	rec, err := s.Record(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "first", rec.Name)
	assert.Equal(t, 2, rec.MarkerCount)
	assert.Equal(t, 640., rec.Width)
	assert.False(t, rec.CreatedAt.IsZero())

	_, err = s.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	id, err := s.Save(ctx, "doc", sampleState(1))
	require.NoError(t, err)

	updated := sampleState(3)
	require.NoError(t, s.Update(ctx, id, updated))
	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Markers, 3)
	rec, err := s.Record(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.MarkerCount)

	require.NoError(t, s.Delete(ctx, id))
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, id, updated), ErrNotFound)
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	idA, err := s.Save(ctx, "a", sampleState(1))
	require.NoError(t, err)
	idB, err := s.Save(ctx, "b", sampleState(2))
	require.NoError(t, err)

	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, idA, list[0].ID)
	assert.Equal(t, idB, list[1].ID)
	assert.Equal(t, 2, list[1].MarkerCount)
	assert.Empty(t, list[0].State) // content is not loaded
}

func TestMemoryStoresAreDistinct(t *testing.T) {
	ctx := context.Background()
	s1, s2 := openMemory(t), openMemory(t)
	_, err := s1.Save(ctx, "only in s1", sampleState(0))
	require.NoError(t, err)

	list, err := s2.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.Save(ctx, "persisted", sampleState(1))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Markers, 1)
}
