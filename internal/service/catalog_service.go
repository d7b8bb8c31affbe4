package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

const (
	cacheKeyCourses   = "catalog:courses"
	cacheKeyOfferings = "catalog:offerings"
	cachePatternAll   = "catalog:*"
)

// CreateCourseRequest is the payload for adding a catalog entry.
type CreateCourseRequest struct {
	Code        string `json:"code" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Credits     int    `json:"credits" validate:"required,gte=1"`
	Description string `json:"description"`
}

// AddPrerequisiteRequest links an existing course as a prerequisite.
type AddPrerequisiteRequest struct {
	PrerequisiteCode string `json:"prerequisite_code" validate:"required"`
}

// CreateOfferingRequest schedules a course for a semester.
type CreateOfferingRequest struct {
	CourseCode   string   `json:"course_code" validate:"required"`
	InstructorID int64    `json:"instructor_id" validate:"required,gt=0"`
	Semester     string   `json:"semester" validate:"required"`
	Days         []string `json:"days" validate:"required,min=1"`
	StartTime    string   `json:"start_time" validate:"required"`
	EndTime      string   `json:"end_time" validate:"required"`
	Capacity     int      `json:"capacity" validate:"required,gte=1"`
}

// CatalogService manages courses and offerings. Reads go through the cache
// when it is enabled; every mutation invalidates the catalog keys.
type CatalogService struct {
	store     *store.Store
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(st *store.Store, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CatalogService{store: st, cache: cache, validator: validate, logger: logger}
}

// CreateCourse adds a course to the catalog.
func (s *CatalogService) CreateCourse(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	var (
		created *models.Course
		addErr  error
	)
	s.store.Update(func(st *store.State) {
		course, err := st.AddCourse(req.Code, req.Title, req.Credits, req.Description)
		if err != nil {
			addErr = err
			return
		}
		copied := *course
		created = &copied
	})
	if addErr != nil {
		return nil, addErr
	}

	_ = s.cache.Invalidate(ctx, cachePatternAll)
	s.logger.Info("course created", zap.String("code", created.Code))
	return created, nil
}

// AddPrerequisite appends a prerequisite to an existing course.
func (s *CatalogService) AddPrerequisite(ctx context.Context, code string, req AddPrerequisiteRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid prerequisite payload")
	}

	var (
		updated *models.Course
		linkErr error
	)
	s.store.Update(func(st *store.State) {
		if err := st.AddPrerequisite(code, req.PrerequisiteCode); err != nil {
			linkErr = err
			return
		}
		course, _ := st.CourseByCode(code)
		copied := *course
		updated = &copied
	})
	if linkErr != nil {
		return nil, linkErr
	}

	_ = s.cache.Invalidate(ctx, cachePatternAll)
	return updated, nil
}

// GetCourse returns a single catalog entry.
func (s *CatalogService) GetCourse(code string) (*models.Course, error) {
	var found *models.Course
	s.store.View(func(st *store.State) {
		if course, ok := st.CourseByCode(code); ok {
			copied := *course
			found = &copied
		}
	})
	if found == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course "+code+" not found")
	}
	return found, nil
}

// ListCourses returns all catalog entries, via cache when possible.
func (s *CatalogService) ListCourses(ctx context.Context) ([]models.Course, error) {
	var cached []models.Course
	if hit, err := s.cache.Get(ctx, cacheKeyCourses, &cached); err == nil && hit {
		return cached, nil
	}

	var out []models.Course
	s.store.View(func(st *store.State) {
		out = st.Courses()
	})

	_ = s.cache.Set(ctx, cacheKeyCourses, out, 0)
	return out, nil
}

// DeleteCourse removes a course that has no offerings.
func (s *CatalogService) DeleteCourse(ctx context.Context, code string) error {
	var delErr error
	s.store.Update(func(st *store.State) {
		delErr = st.RemoveCourse(code)
	})
	if delErr != nil {
		return delErr
	}

	_ = s.cache.Invalidate(ctx, cachePatternAll)
	s.logger.Info("course deleted", zap.String("code", code))
	return nil
}

// CreateOffering schedules a course section. The instructor must be an
// existing account with the instructor role.
func (s *CatalogService) CreateOffering(ctx context.Context, req CreateOfferingRequest) (*models.Offering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offering payload")
	}

	var (
		created *models.Offering
		addErr  error
	)
	s.store.Update(func(st *store.State) {
		instructor, ok := st.UserByID(req.InstructorID)
		if !ok || instructor.Role != models.RoleInstructor {
			addErr = appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
			return
		}
		schedule := models.Schedule{Days: req.Days, StartTime: req.StartTime, EndTime: req.EndTime}
		off, err := st.AddOffering(req.CourseCode, req.InstructorID, req.Semester, schedule, req.Capacity)
		if err != nil {
			addErr = err
			return
		}
		copied := *off
		created = &copied
	})
	if addErr != nil {
		return nil, addErr
	}

	_ = s.cache.Invalidate(ctx, cachePatternAll)
	s.logger.Info("offering created",
		zap.Int64("offering_id", created.ID),
		zap.String("course_code", created.CourseCode))
	return created, nil
}

// GetOffering returns an offering joined with its catalog context.
func (s *CatalogService) GetOffering(id int64) (*models.OfferingDetail, error) {
	var found *models.OfferingDetail
	s.store.View(func(st *store.State) {
		off, ok := st.OfferingByID(id)
		if !ok {
			return
		}
		found = offeringDetail(st, off)
	})
	if found == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
	}
	return found, nil
}

// ListOfferings returns all offerings joined with catalog context, via cache
// when possible.
func (s *CatalogService) ListOfferings(ctx context.Context) ([]models.OfferingDetail, error) {
	var cached []models.OfferingDetail
	if hit, err := s.cache.Get(ctx, cacheKeyOfferings, &cached); err == nil && hit {
		return cached, nil
	}

	var out []models.OfferingDetail
	s.store.View(func(st *store.State) {
		for _, off := range st.Offerings() {
			copied := off
			out = append(out, *offeringDetail(st, &copied))
		}
	})

	_ = s.cache.Set(ctx, cacheKeyOfferings, out, 0)
	return out, nil
}

// OfferingsForCourse returns the sections scheduled for a course.
func (s *CatalogService) OfferingsForCourse(code string) ([]models.OfferingDetail, error) {
	var (
		out     []models.OfferingDetail
		lookErr error
	)
	s.store.View(func(st *store.State) {
		if _, ok := st.CourseByCode(code); !ok {
			lookErr = appErrors.Clone(appErrors.ErrNotFound, "course "+code+" not found")
			return
		}
		for _, off := range st.OfferingsByCourse(code) {
			copied := off
			out = append(out, *offeringDetail(st, &copied))
		}
	})
	if lookErr != nil {
		return nil, lookErr
	}
	return out, nil
}

func offeringDetail(st *store.State, off *models.Offering) *models.OfferingDetail {
	detail := &models.OfferingDetail{Offering: *off}
	if course, ok := st.CourseByCode(off.CourseCode); ok {
		detail.CourseTitle = course.Title
		detail.CourseCredits = course.Credits
	}
	if instructor, ok := st.UserByID(off.InstructorID); ok {
		detail.InstructorName = instructor.FullName
	}
	return detail
}
