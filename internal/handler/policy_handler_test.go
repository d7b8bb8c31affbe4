package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/service"
	"github.com/unireg/registrar-api/internal/store"
)

func performTermChange(t *testing.T, h *PolicyHandler, name string, apply func(*gin.Context)) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/terms/"+name+"/open", nil)
	c.Params = gin.Params{{Key: "name", Value: name}}
	apply(c)
	c.Writer.WriteHeaderNow()
	return w
}

func TestPolicyHandlerTermGate(t *testing.T) {
	st := store.New(models.DefaultRegistrationPolicy())
	h := NewPolicyHandler(service.NewPolicyService(st, validator.New(), zap.NewNop()))

	w := performTermChange(t, h, "FALL2026", h.CloseTerm)
	require.Equal(t, http.StatusNoContent, w.Code)
	st.View(func(s *store.State) {
		assert.False(t, s.TermOpen("FALL2026"))
	})

	w = performTermChange(t, h, "FALL2026", h.OpenTerm)
	require.Equal(t, http.StatusNoContent, w.Code)
	st.View(func(s *store.State) {
		assert.True(t, s.TermOpen("FALL2026"))
	})
}
