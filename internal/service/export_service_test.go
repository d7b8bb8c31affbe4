package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

func newExportFixture(t *testing.T) (*ExportService, int64) {
	t.Helper()
	st := store.New(models.DefaultRegistrationPolicy())
	var offID int64
	st.Update(func(s *store.State) {
		student, err := s.AddUser(models.User{
			Email: "ada@example.com", FullName: "Ada Lovelace",
			Role: models.RoleStudent, Active: true,
			Student: &models.StudentProfile{Level: 2, Major: "Computer Science"},
		})
		require.NoError(t, err)
		_, err = s.AddCourse("CS101", "Intro to Programming", 3, "")
		require.NoError(t, err)
		off, err := s.AddOffering("CS101", 1, "FALL2026", models.Schedule{Days: []string{"Mon"}, StartTime: "09:00", EndTime: "10:30"}, 30)
		require.NoError(t, err)
		offID = off.ID
		s.CommitRegistration(student.ID, off.ID)
	})
	return NewExportService(st, zap.NewNop()), offID
}

func TestRosterCSV(t *testing.T) {
	svc, offID := newExportFixture(t)

	result, err := svc.Roster(offID, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Contains(t, result.Filename, ".csv")

	body := string(result.Content)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Registration ID")
	assert.Contains(t, lines[1], "Ada Lovelace")
	assert.Contains(t, lines[1], "Computer Science")
}

func TestRosterPDF(t *testing.T) {
	svc, offID := newExportFixture(t)

	result, err := svc.Roster(offID, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestRosterErrors(t *testing.T) {
	svc, offID := newExportFixture(t)

	_, err := svc.Roster(404, FormatCSV)
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err))

	_, err = svc.Roster(offID, ExportFormat("xlsx"))
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))
}
