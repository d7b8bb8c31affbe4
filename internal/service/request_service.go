package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

// SubmitRequestPayload is the body for filing a special request.
type SubmitRequestPayload struct {
	OfferingID int64  `json:"offering_id" validate:"required,gt=0"`
	Reason     string `json:"reason" validate:"required"`
}

// RequestService manages special requests: overrides a student files against
// an offering, reviewed by the offering's instructor.
type RequestService struct {
	store     *store.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService creates a request service.
func NewRequestService(st *store.Store, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RequestService{store: st, validator: validate, logger: logger}
}

// Submit files a PENDING request and notifies both the student and the
// instructor who owns the offering.
func (s *RequestService) Submit(studentID int64, payload SubmitRequestPayload) (*models.SpecialRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidRequest.Code, appErrors.ErrInvalidRequest.Status, "an offering id and a reason are required")
	}

	var (
		created *models.SpecialRequest
		subErr  *appErrors.Error
	)
	s.store.Update(func(st *store.State) {
		off, ok := st.OfferingByID(payload.OfferingID)
		if !ok {
			subErr = appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
			return
		}
		title := off.CourseCode
		if course, ok := st.CourseByCode(off.CourseCode); ok {
			title = course.Title
		}

		req := st.AppendRequest(studentID, off.ID, payload.Reason)
		st.Emit(studentID, "Special request submitted for "+title+".")

		studentName := "a student"
		if student, ok := st.UserByID(studentID); ok {
			studentName = student.FullName
		}
		st.Emit(off.InstructorID, "New special request from "+studentName+" for "+title+".")

		copied := *req
		created = &copied
	})
	if subErr != nil {
		return nil, subErr
	}

	s.logger.Info("special request submitted",
		zap.Int64("request_id", created.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("offering_id", payload.OfferingID))
	return created, nil
}

// Pending returns the instructor's review queue: PENDING requests against
// offerings the instructor owns, oldest first.
func (s *RequestService) Pending(instructorID int64) []models.SpecialRequest {
	var out []models.SpecialRequest
	s.store.View(func(st *store.State) {
		out = st.PendingRequestsForInstructor(instructorID)
	})
	return out
}

// StudentRequests lists the requests the student has filed.
func (s *RequestService) StudentRequests(studentID int64) []models.SpecialRequest {
	var out []models.SpecialRequest
	s.store.View(func(st *store.State) {
		out = st.StudentRequests(studentID)
	})
	return out
}

// Approve resolves a pending request in the student's favor. Administrators
// may resolve any request; instructors only those against their offerings.
func (s *RequestService) Approve(actorID int64, actorRole models.UserRole, requestID int64) (*models.SpecialRequest, error) {
	return s.resolve(actorID, actorRole, requestID, models.RequestStatusApproved)
}

// Reject resolves a pending request against the student.
func (s *RequestService) Reject(actorID int64, actorRole models.UserRole, requestID int64) (*models.SpecialRequest, error) {
	return s.resolve(actorID, actorRole, requestID, models.RequestStatusRejected)
}

func (s *RequestService) resolve(actorID int64, actorRole models.UserRole, requestID int64, status models.RequestStatus) (*models.SpecialRequest, error) {
	var (
		resolved *models.SpecialRequest
		resErr   *appErrors.Error
	)
	s.store.Update(func(st *store.State) {
		req, ok := st.RequestByID(requestID)
		if !ok {
			resErr = appErrors.Clone(appErrors.ErrNotFound, "special request not found")
			return
		}
		if req.Status != models.RequestStatusPending {
			resErr = appErrors.Clone(appErrors.ErrPreconditionFailed, "special request is already resolved")
			return
		}
		if actorRole != models.RoleAdmin {
			off, ok := st.OfferingByID(req.OfferingID)
			if !ok || off.InstructorID != actorID {
				resErr = appErrors.Clone(appErrors.ErrForbidden, "request belongs to another instructor")
				return
			}
		}

		req.Status = status

		title := "the course"
		if off, ok := st.OfferingByID(req.OfferingID); ok {
			if course, ok := st.CourseByCode(off.CourseCode); ok {
				title = course.Title
			}
		}
		if status == models.RequestStatusApproved {
			st.Emit(req.StudentID, "Your special request for "+title+" was approved.")
		} else {
			st.Emit(req.StudentID, "Your special request for "+title+" was rejected.")
		}

		copied := *req
		resolved = &copied
	})
	if resErr != nil {
		return nil, resErr
	}

	s.logger.Info("special request resolved",
		zap.Int64("request_id", requestID),
		zap.Int64("actor_id", actorID),
		zap.String("status", string(status)))
	return resolved, nil
}
