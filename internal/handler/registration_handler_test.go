package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/middleware"
	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/service"
	"github.com/unireg/registrar-api/internal/store"
)

func newRegistrationHandlerFixture(t *testing.T) (*RegistrationHandler, int64) {
	t.Helper()
	st := store.New(models.DefaultRegistrationPolicy())
	var offID int64
	st.Update(func(s *store.State) {
		_, err := s.AddCourse("CS101", "Intro", 3, "")
		require.NoError(t, err)
		off, err := s.AddOffering("CS101", 1, "FALL2026", models.Schedule{Days: []string{"Mon"}, StartTime: "09:00", EndTime: "10:30"}, 1)
		require.NoError(t, err)
		offID = off.ID
	})
	svc := service.NewRegistrationService(st, nil, validator.New(), zap.NewNop())
	return NewRegistrationHandler(svc), offID
}

func performRegister(t *testing.T, h *RegistrationHandler, studentID, offeringID int64) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.RegisterCourseRequest{OfferingID: offeringID})
	req, _ := http.NewRequest(http.MethodPost, "/registrations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: studentID, Role: models.RoleStudent})

	h.Register(c)
	return w
}

func TestRegistrationHandlerRegister(t *testing.T) {
	h, offID := newRegistrationHandlerFixture(t)

	w := performRegister(t, h, 10, offID)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"REGISTERED"`)
}

func TestRegistrationHandlerRegisterCapacityConflict(t *testing.T) {
	h, offID := newRegistrationHandlerFixture(t)

	require.Equal(t, http.StatusCreated, performRegister(t, h, 10, offID).Code)

	w := performRegister(t, h, 20, offID)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CAPACITY_EXCEEDED")
}

func TestRegistrationHandlerRegisterInvalidBody(t *testing.T) {
	h, _ := newRegistrationHandlerFixture(t)
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/registrations", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 10, Role: models.RoleStudent})

	h.Register(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistrationHandlerDropUnknownID(t *testing.T) {
	h, _ := newRegistrationHandlerFixture(t)
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/registrations/404", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "404"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 10, Role: models.RoleStudent})

	h.Drop(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
