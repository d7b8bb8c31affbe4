package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

// UpdatePolicyRequest replaces the active registration policy. A MaxCredits
// of zero disables the credit limit.
type UpdatePolicyRequest struct {
	MaxCredits          int  `json:"max_credits" validate:"gte=0"`
	AllowConflicts      bool `json:"allow_conflicts"`
	AllowPrereqOverride bool `json:"allow_prereq_override"`
}

// TermRequest names the semester to open or close.
type TermRequest struct {
	Name string `json:"name" validate:"required"`
}

// PolicyService lets administrators tune registration rules and gate terms.
type PolicyService struct {
	store     *store.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPolicyService creates a policy service.
func NewPolicyService(st *store.Store, validate *validator.Validate, logger *zap.Logger) *PolicyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PolicyService{store: st, validator: validate, logger: logger}
}

// Policy returns the active registration policy.
func (s *PolicyService) Policy() models.RegistrationPolicy {
	var policy models.RegistrationPolicy
	s.store.View(func(st *store.State) {
		policy = st.Policy()
	})
	return policy
}

// UpdatePolicy replaces the registration policy. The new rules apply to
// subsequent registrations only; committed ledger entries are untouched.
func (s *PolicyService) UpdatePolicy(req UpdatePolicyRequest) (models.RegistrationPolicy, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.RegistrationPolicy{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid policy payload")
	}

	policy := models.RegistrationPolicy{
		MaxCredits:          req.MaxCredits,
		AllowConflicts:      req.AllowConflicts,
		AllowPrereqOverride: req.AllowPrereqOverride,
	}
	s.store.Update(func(st *store.State) {
		st.SetPolicy(policy)
	})

	s.logger.Info("registration policy updated",
		zap.Int("max_credits", policy.MaxCredits),
		zap.Bool("allow_conflicts", policy.AllowConflicts),
		zap.Bool("allow_prereq_override", policy.AllowPrereqOverride))
	return policy, nil
}

// OpenTerm opens registration for a semester label.
func (s *PolicyService) OpenTerm(req TermRequest) error {
	return s.setTerm(req, true)
}

// CloseTerm closes registration for a semester label.
func (s *PolicyService) CloseTerm(req TermRequest) error {
	return s.setTerm(req, false)
}

func (s *PolicyService) setTerm(req TermRequest, open bool) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}
	s.store.Update(func(st *store.State) {
		st.SetTermOpen(req.Name, open)
	})
	s.logger.Info("term gate updated", zap.String("term", req.Name), zap.Bool("open", open))
	return nil
}

// Terms lists the explicitly configured terms.
func (s *PolicyService) Terms() []models.Term {
	var out []models.Term
	s.store.View(func(st *store.State) {
		out = st.Terms()
	})
	return out
}
