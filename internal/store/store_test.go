package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unireg/registrar-api/internal/models"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

func newTestStore() *Store {
	return New(models.DefaultRegistrationPolicy())
}

func TestCatalogDuplicateCourse(t *testing.T) {
	st := newTestStore()
	st.Update(func(s *State) {
		_, err := s.AddCourse("CS101", "Intro", 3, "")
		require.NoError(t, err)

		_, err = s.AddCourse("CS101", "Intro again", 3, "")
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrDuplicateCourse.Code, appErr.Code)
	})
}

func TestRemoveCourseInUse(t *testing.T) {
	st := newTestStore()
	st.Update(func(s *State) {
		_, err := s.AddCourse("CS101", "Intro", 3, "")
		require.NoError(t, err)
		_, err = s.AddOffering("CS101", 1, "FALL2026", models.Schedule{}, 10)
		require.NoError(t, err)

		err = s.RemoveCourse("CS101")
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCourseInUse.Code, appErr.Code)
	})
}

func TestLedgerIDsMonotonic(t *testing.T) {
	st := newTestStore()
	st.Update(func(s *State) {
		_, err := s.AddCourse("CS101", "Intro", 3, "")
		require.NoError(t, err)
		off, err := s.AddOffering("CS101", 1, "FALL2026", models.Schedule{}, 10)
		require.NoError(t, err)

		first := s.CommitRegistration(10, off.ID)
		s.DropRegistration(first)
		second := s.CommitRegistration(10, off.ID)

		assert.Greater(t, second.ID, first.ID, "ids are never reused after a drop")
		assert.Len(t, s.Ledger(), 2, "dropped entries stay in the ledger")
	})
}

func TestEnrollmentCountFollowsLedger(t *testing.T) {
	st := newTestStore()
	st.Update(func(s *State) {
		_, err := s.AddCourse("CS101", "Intro", 3, "")
		require.NoError(t, err)
		off, err := s.AddOffering("CS101", 1, "FALL2026", models.Schedule{}, 2)
		require.NoError(t, err)

		reg := s.CommitRegistration(10, off.ID)
		stored, _ := s.OfferingByID(off.ID)
		assert.Equal(t, 1, stored.Enrolled)

		s.DropRegistration(reg)
		assert.Equal(t, 0, stored.Enrolled)

		s.DropRegistration(reg)
		assert.Equal(t, 0, stored.Enrolled, "enrollment never goes negative")
	})
}

func TestHasActiveRegistration(t *testing.T) {
	st := newTestStore()
	st.Update(func(s *State) {
		_, err := s.AddCourse("CS101", "Intro", 3, "")
		require.NoError(t, err)
		off, err := s.AddOffering("CS101", 1, "FALL2026", models.Schedule{}, 2)
		require.NoError(t, err)

		reg := s.CommitRegistration(10, off.ID)
		assert.True(t, s.HasActiveRegistration(10, off.ID))

		s.DropRegistration(reg)
		assert.False(t, s.HasActiveRegistration(10, off.ID), "a drop frees the student to re-register")
	})
}

func TestUserEmailCaseInsensitive(t *testing.T) {
	st := newTestStore()
	st.Update(func(s *State) {
		_, err := s.AddUser(models.User{Email: "Ada@Example.com", Role: models.RoleStudent})
		require.NoError(t, err)

		_, found := s.UserByEmail("ada@example.com")
		assert.True(t, found)

		_, err = s.AddUser(models.User{Email: "ADA@example.com", Role: models.RoleStudent})
		assert.Error(t, err)
	})
}

func TestTermsDefaultOpen(t *testing.T) {
	st := newTestStore()
	st.Update(func(s *State) {
		assert.True(t, s.TermOpen("FALL2026"))
		s.SetTermOpen("FALL2026", false)
		assert.False(t, s.TermOpen("FALL2026"))
		s.SetTermOpen("FALL2026", true)
		assert.True(t, s.TermOpen("FALL2026"))
	})
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	st := newTestStore()
	var snap models.Snapshot
	st.Update(func(s *State) {
		_, err := s.AddCourse("CS101", "Intro", 3, "")
		require.NoError(t, err)
		off, err := s.AddOffering("CS101", 1, "FALL2026", models.Schedule{Days: []string{"Mon"}, StartTime: "09:00", EndTime: "10:30"}, 5)
		require.NoError(t, err)

		first := s.CommitRegistration(10, off.ID)
		s.DropRegistration(first)
		s.CommitRegistration(11, off.ID)
		s.Emit(10, "hello")

		snap = s.Snapshot()
	})

	restored := newTestStore()
	restored.Update(func(s *State) {
		s.Restore(snap)

		off, ok := s.OfferingByID(1)
		require.True(t, ok)
		assert.Equal(t, 1, off.Enrolled, "enrollment is recomputed from REGISTERED entries")

		next := s.CommitRegistration(12, off.ID)
		assert.Equal(t, int64(3), next.ID, "id counters resume past restored ids")

		n := s.Emit(12, "after restore")
		assert.Equal(t, int64(2), n.ID)
	})
}
