package service

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
)

func TestUpdatePolicyAppliesToNewRegistrationsOnly(t *testing.T) {
	st := store.New(models.DefaultRegistrationPolicy())
	policySvc := NewPolicyService(st, validator.New(), zap.NewNop())
	engine := NewRegistrationService(st, nil, validator.New(), zap.NewNop())

	var offID int64
	st.Update(func(s *store.State) {
		_, err := s.AddCourse("CS101", "Intro", 6, "")
		require.NoError(t, err)
		off, err := s.AddOffering("CS101", 1, "FALL2026", models.Schedule{Days: []string{"Mon"}, StartTime: "09:00", EndTime: "10:30"}, 30)
		require.NoError(t, err)
		offID = off.ID
	})

	committed, err := engine.Register(10, RegisterCourseRequest{OfferingID: offID})
	require.NoError(t, err)

	updated, err := policySvc.UpdatePolicy(UpdatePolicyRequest{MaxCredits: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.MaxCredits)
	assert.Equal(t, updated, policySvc.Policy())

	history := engine.History(10)
	require.Len(t, history, 1)
	assert.Equal(t, committed.ID, history[0].ID, "tightening the policy never revokes committed entries")

	_, err = engine.Register(20, RegisterCourseRequest{OfferingID: offID})
	assert.Error(t, err, "new registrations see the tightened limit")
}

func TestTermGates(t *testing.T) {
	st := store.New(models.DefaultRegistrationPolicy())
	svc := NewPolicyService(st, validator.New(), zap.NewNop())

	require.NoError(t, svc.CloseTerm(TermRequest{Name: "FALL2026"}))
	terms := svc.Terms()
	require.Len(t, terms, 1)
	assert.False(t, terms[0].RegistrationOpen)

	require.NoError(t, svc.OpenTerm(TermRequest{Name: "FALL2026"}))
	terms = svc.Terms()
	require.Len(t, terms, 1)
	assert.True(t, terms[0].RegistrationOpen)
}
