package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
)

type mockSnapshotStore struct {
	saved  []models.Snapshot
	loaded models.Snapshot
	found  bool
}

func (m *mockSnapshotStore) Save(ctx context.Context, snap models.Snapshot) error {
	m.saved = append(m.saved, snap)
	return nil
}

func (m *mockSnapshotStore) Load(ctx context.Context) (models.Snapshot, bool, error) {
	return m.loaded, m.found, nil
}

func TestSnapshotSaveCapturesState(t *testing.T) {
	st := store.New(models.DefaultRegistrationPolicy())
	st.Update(func(s *store.State) {
		_, err := s.AddCourse("CS101", "Intro", 3, "")
		require.NoError(t, err)
		off, err := s.AddOffering("CS101", 1, "FALL2026", models.Schedule{Days: []string{"Mon"}, StartTime: "09:00", EndTime: "10:30"}, 5)
		require.NoError(t, err)
		s.CommitRegistration(10, off.ID)
	})

	repo := &mockSnapshotStore{}
	svc := NewSnapshotService(st, repo, nil, zap.NewNop())

	require.NoError(t, svc.Save(context.Background()))
	require.Len(t, repo.saved, 1)
	assert.Len(t, repo.saved[0].Courses, 1)
	assert.Len(t, repo.saved[0].Registrations, 1)
}

func TestSnapshotRestoreMissingIsNoop(t *testing.T) {
	st := store.New(models.DefaultRegistrationPolicy())
	st.Update(func(s *store.State) {
		_, err := s.AddCourse("CS101", "Intro", 3, "")
		require.NoError(t, err)
	})

	svc := NewSnapshotService(st, &mockSnapshotStore{found: false}, nil, zap.NewNop())
	require.NoError(t, svc.Restore(context.Background()))

	st.View(func(s *store.State) {
		assert.Len(t, s.Courses(), 1, "the store keeps its contents when no snapshot exists")
	})
}

func TestSnapshotRestoreReplacesState(t *testing.T) {
	st := store.New(models.DefaultRegistrationPolicy())
	repo := &mockSnapshotStore{
		found: true,
		loaded: models.Snapshot{
			Courses: []models.Course{{Code: "CS301", Title: "Algorithms", Credits: 3}},
			Policy:  models.RegistrationPolicy{MaxCredits: 12},
			Users:   []models.User{{ID: 7, Email: "ada@example.com", Role: models.RoleStudent, Active: true}},
			Terms:   []models.Term{{Name: "FALL2026", RegistrationOpen: false}},
		},
	}
	svc := NewSnapshotService(st, repo, nil, zap.NewNop())

	require.NoError(t, svc.Restore(context.Background()))

	st.View(func(s *store.State) {
		_, ok := s.CourseByCode("CS301")
		assert.True(t, ok)
		assert.Equal(t, 12, s.Policy().MaxCredits)
		assert.False(t, s.TermOpen("FALL2026"))
		_, ok = s.UserByEmail("ada@example.com")
		assert.True(t, ok)
	})
}
