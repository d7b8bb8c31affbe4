package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

func newCatalogFixture(t *testing.T) (*store.Store, *CatalogService) {
	t.Helper()
	st := store.New(models.DefaultRegistrationPolicy())
	st.Update(func(s *store.State) {
		_, err := s.AddUser(models.User{Email: "turing@example.com", FullName: "Alan Turing", Role: models.RoleInstructor, Active: true})
		require.NoError(t, err)
	})
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	return st, NewCatalogService(st, cache, validator.New(), zap.NewNop())
}

func TestCreateCourseAndPrerequisites(t *testing.T) {
	_, svc := newCatalogFixture(t)
	ctx := context.Background()

	course, err := svc.CreateCourse(ctx, CreateCourseRequest{Code: "CS101", Title: "Intro", Credits: 3})
	require.NoError(t, err)
	assert.Equal(t, "CS101", course.Code)

	_, err = svc.CreateCourse(ctx, CreateCourseRequest{Code: "CS101", Title: "Intro again", Credits: 3})
	assert.Equal(t, appErrors.ErrDuplicateCourse.Code, errCode(t, err))

	_, err = svc.CreateCourse(ctx, CreateCourseRequest{Code: "CS201", Title: "Data Structures", Credits: 3})
	require.NoError(t, err)

	updated, err := svc.AddPrerequisite(ctx, "CS201", AddPrerequisiteRequest{PrerequisiteCode: "CS101"})
	require.NoError(t, err)
	assert.Equal(t, []string{"CS101"}, updated.Prerequisites)

	_, err = svc.AddPrerequisite(ctx, "CS201", AddPrerequisiteRequest{PrerequisiteCode: "NOPE"})
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err))
}

func TestCreateOfferingValidation(t *testing.T) {
	_, svc := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.CreateCourse(ctx, CreateCourseRequest{Code: "CS101", Title: "Intro", Credits: 3})
	require.NoError(t, err)

	schedule := CreateOfferingRequest{
		CourseCode:   "CS101",
		InstructorID: 1,
		Semester:     "FALL2026",
		Days:         []string{"Mon", "Wed"},
		StartTime:    "09:00",
		EndTime:      "10:30",
		Capacity:     30,
	}

	off, err := svc.CreateOffering(ctx, schedule)
	require.NoError(t, err)
	assert.Equal(t, int64(1), off.ID)
	assert.Equal(t, 0, off.Enrolled)

	unknownCourse := schedule
	unknownCourse.CourseCode = "NOPE"
	_, err = svc.CreateOffering(ctx, unknownCourse)
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err))

	unknownInstructor := schedule
	unknownInstructor.InstructorID = 99
	_, err = svc.CreateOffering(ctx, unknownInstructor)
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err))
}

func TestDeleteCourseGuard(t *testing.T) {
	_, svc := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.CreateCourse(ctx, CreateCourseRequest{Code: "CS101", Title: "Intro", Credits: 3})
	require.NoError(t, err)
	_, err = svc.CreateOffering(ctx, CreateOfferingRequest{
		CourseCode: "CS101", InstructorID: 1, Semester: "FALL2026",
		Days: []string{"Mon"}, StartTime: "09:00", EndTime: "10:30", Capacity: 10,
	})
	require.NoError(t, err)

	err = svc.DeleteCourse(ctx, "CS101")
	assert.Equal(t, appErrors.ErrCourseInUse.Code, errCode(t, err))
}

func TestOfferingDetailJoins(t *testing.T) {
	_, svc := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.CreateCourse(ctx, CreateCourseRequest{Code: "CS101", Title: "Intro to Programming", Credits: 3})
	require.NoError(t, err)
	off, err := svc.CreateOffering(ctx, CreateOfferingRequest{
		CourseCode: "CS101", InstructorID: 1, Semester: "FALL2026",
		Days: []string{"Mon"}, StartTime: "09:00", EndTime: "10:30", Capacity: 10,
	})
	require.NoError(t, err)

	detail, err := svc.GetOffering(off.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro to Programming", detail.CourseTitle)
	assert.Equal(t, 3, detail.CourseCredits)
	assert.Equal(t, "Alan Turing", detail.InstructorName)

	list, err := svc.ListOfferings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	byCourse, err := svc.OfferingsForCourse("CS101")
	require.NoError(t, err)
	require.Len(t, byCourse, 1)

	_, err = svc.OfferingsForCourse("NOPE")
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(t, err))
}
