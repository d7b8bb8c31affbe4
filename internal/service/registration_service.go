package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/eligibility"
	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

// RegisterCourseRequest is the payload for registering into an offering.
type RegisterCourseRequest struct {
	OfferingID int64 `json:"offering_id" validate:"required,gt=0"`
}

// RegistrationService runs the registration workflow. Every operation is a
// single store transaction: the ledger entry, the enrollment count and the
// emitted notifications commit together or not at all.
type RegistrationService struct {
	store     *store.Store
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService creates a registration service.
func NewRegistrationService(st *store.Store, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RegistrationService{store: st, metrics: metrics, validator: validate, logger: logger}
}

// activeCourses resolves a student's REGISTERED ledger entries against the
// catalog. Dropped entries do not count toward prerequisites, conflicts or
// credit load.
func activeCourses(st *store.State, studentID int64) []eligibility.ActiveCourse {
	var out []eligibility.ActiveCourse
	for _, reg := range st.StudentRegistrations(studentID) {
		if reg.Status != models.RegistrationStatusRegistered {
			continue
		}
		off, ok := st.OfferingByID(reg.OfferingID)
		if !ok {
			continue
		}
		course, ok := st.CourseByCode(off.CourseCode)
		if !ok {
			continue
		}
		out = append(out, eligibility.ActiveCourse{
			CourseCode: course.Code,
			Credits:    course.Credits,
			Schedule:   off.Schedule,
		})
	}
	return out
}

// Register attempts to enroll the student into an offering. Checks run in a
// fixed order and the first failure wins: offering lookup, term gate,
// duplicate gate, prerequisites, capacity, schedule conflict, credit limit.
// Failures emit a notification to the student and leave the ledger untouched.
func (s *RegistrationService) Register(studentID int64, req RegisterCourseRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	var (
		created *models.Registration
		regErr  *appErrors.Error
	)

	s.store.Update(func(st *store.State) {
		off, ok := st.OfferingByID(req.OfferingID)
		if !ok {
			regErr = appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
			st.Emit(studentID, "Registration failed: course offering not found.")
			return
		}
		course, ok := st.CourseByCode(off.CourseCode)
		if !ok {
			regErr = appErrors.Clone(appErrors.ErrInternal, "offering references unknown course "+off.CourseCode)
			return
		}

		if !st.TermOpen(off.Semester) {
			regErr = appErrors.Clone(appErrors.ErrRegistrationClosed, "registration is closed for "+off.Semester)
			st.Emit(studentID, "Registration failed: registration is closed for "+off.Semester+".")
			return
		}

		if st.HasActiveRegistration(studentID, off.ID) {
			regErr = appErrors.Clone(appErrors.ErrDuplicateRegistration, "already registered for "+course.Title)
			st.Emit(studentID, "Registration failed: already registered for "+course.Title+".")
			return
		}

		active := activeCourses(st, studentID)
		policy := st.Policy()

		if !policy.AllowPrereqOverride && !eligibility.PrerequisitesSatisfied(active, course) {
			regErr = appErrors.Clone(appErrors.ErrPrerequisitesUnmet, "prerequisites not met for "+course.Title)
			st.Emit(studentID, "Registration failed: prerequisites not met for "+course.Title+".")
			return
		}

		if !eligibility.HasCapacity(off) {
			regErr = appErrors.Clone(appErrors.ErrCapacityExceeded, "no available slots for "+course.Title)
			st.Emit(studentID, "Registration failed: no available slots for "+course.Title+".")
			return
		}

		if !policy.AllowConflicts && eligibility.ScheduleConflicts(active, off) {
			regErr = appErrors.Clone(appErrors.ErrScheduleConflict, "schedule conflict with an existing registration")
			st.Emit(studentID, "Registration failed: schedule conflict for "+course.Title+" ("+off.Schedule.String()+").")
			return
		}

		if policy.MaxCredits > 0 && eligibility.RegisteredCredits(active)+course.Credits > policy.MaxCredits {
			regErr = appErrors.Clone(appErrors.ErrCreditLimitExceeded, "registering would exceed the credit limit")
			st.Emit(studentID, "Registration failed: credit limit exceeded for "+course.Title+".")
			return
		}

		reg := st.CommitRegistration(studentID, off.ID)
		st.Emit(studentID, "Successfully registered for "+course.Title+".")
		copied := *reg
		created = &copied
	})

	if regErr != nil {
		s.metrics.ObserveRegistration(regErr.Code)
		s.logger.Info("registration rejected",
			zap.Int64("student_id", studentID),
			zap.Int64("offering_id", req.OfferingID),
			zap.String("outcome", regErr.Code))
		return nil, regErr
	}

	s.metrics.ObserveRegistration("REGISTERED")
	s.logger.Info("registration committed",
		zap.Int64("registration_id", created.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("offering_id", req.OfferingID))
	return created, nil
}

// Drop marks the student's registration as dropped and releases the seat.
// Only the owning student may drop, and an already dropped entry is rejected.
func (s *RegistrationService) Drop(studentID, registrationID int64) (*models.Registration, error) {
	var (
		dropped *models.Registration
		dropErr *appErrors.Error
	)

	s.store.Update(func(st *store.State) {
		reg, ok := st.RegistrationByID(registrationID)
		if !ok || reg.StudentID != studentID {
			dropErr = appErrors.Clone(appErrors.ErrNotFound, "registration not found")
			return
		}
		if reg.Status == models.RegistrationStatusDropped {
			dropErr = appErrors.Clone(appErrors.ErrPreconditionFailed, "registration is already dropped")
			return
		}
		st.DropRegistration(reg)

		title := "course"
		if off, ok := st.OfferingByID(reg.OfferingID); ok {
			if course, ok := st.CourseByCode(off.CourseCode); ok {
				title = course.Title
			}
		}
		st.Emit(studentID, "Successfully dropped "+title+".")

		copied := *reg
		dropped = &copied
	})

	if dropErr != nil {
		return nil, dropErr
	}

	s.metrics.ObserveRegistration("DROPPED")
	s.logger.Info("registration dropped",
		zap.Int64("registration_id", registrationID),
		zap.Int64("student_id", studentID))
	return dropped, nil
}

// History returns the student's full registration ledger, dropped entries
// included, in the order they were created.
func (s *RegistrationService) History(studentID int64) []models.Registration {
	var out []models.Registration
	s.store.View(func(st *store.State) {
		for _, reg := range st.StudentRegistrations(studentID) {
			out = append(out, *reg)
		}
	})
	return out
}

// StudentsInOffering lists the actively registered students of an offering in
// registration order.
func (s *RegistrationService) StudentsInOffering(offeringID int64) ([]models.UserInfo, error) {
	var (
		out     []models.UserInfo
		lookErr *appErrors.Error
	)
	s.store.View(func(st *store.State) {
		if _, ok := st.OfferingByID(offeringID); !ok {
			lookErr = appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
			return
		}
		for _, reg := range st.RegisteredInOffering(offeringID) {
			user, ok := st.UserByID(reg.StudentID)
			if !ok {
				continue
			}
			out = append(out, models.UserInfo{
				ID:       user.ID,
				Email:    user.Email,
				FullName: user.FullName,
				Role:     user.Role,
			})
		}
	})
	if lookErr != nil {
		return nil, lookErr
	}
	return out, nil
}
