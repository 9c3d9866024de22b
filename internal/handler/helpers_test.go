package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/dto"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() { gin.SetMode(gin.TestMode) }

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperror.Shape("import", "products no es una lista"), http.StatusUnprocessableEntity},
		{apperror.NotFound("snapshot.get", "snapshot x"), http.StatusNotFound},
		{apperror.Conflict("sync.push", "remoto más reciente"), http.StatusConflict},
		{apperror.Transport("sync.pull", errors.New("HTTP 500")), http.StatusBadGateway},
		{apperror.Storage("kv.put state", errors.New("disk full")), http.StatusInternalServerError},
		{apperror.Invalid("sale.record", "stock insuficiente"), http.StatusBadRequest},
		{fmt.Errorf("load: %w", service.ErrNotLoaded), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestWriteError_HidesStorageCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	writeError(c, apperror.Storage("kv.put state", errors.New("dial tcp 10.0.0.3:6379: refused")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.3")
}

func TestBindAndValidate_Decimal(t *testing.T) {
	bind := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var req dto.CrearGastoRequest
		if bindAndValidate(c, &req) {
			c.Status(http.StatusNoContent)
		}
		return w
	}

	assert.Equal(t, http.StatusNoContent, bind(`{"tipo":"luz","monto":"10.50"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, bind(`{"tipo":"luz","monto":"-1"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, bind(`{"monto":"3"}`).Code)
	assert.Equal(t, http.StatusBadRequest, bind(`{"tipo":`).Code)
}
