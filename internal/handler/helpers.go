package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/dto"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/middleware"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apperror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apperror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apperror.NewValidation(fields))
		return false
	}
	return true
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, service.ErrNotLoaded) {
		return http.StatusServiceUnavailable
	}
	return apperror.HTTPStatus(err)
}

// writeError logs and writes the envelope for err.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("path", c.FullPath()).
		Int("status", status).
		Err(err).
		Msg("request failed")

	if errors.Is(err, service.ErrNotLoaded) {
		c.JSON(status, apperror.New("Los datos todavía no están disponibles"))
		return
	}
	c.JSON(status, apperror.FromError(err))
}

// respond writes a mutation result with its soft warnings.
func respond(c *gin.Context, status int, data any, ws []apperror.Warning) {
	c.JSON(status, dto.MutationResponse{Data: data, Warnings: ws})
}

// pathID returns the :id parameter, writing a 400 when it is blank.
func pathID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, apperror.New("ID invalido"))
		return "", false
	}
	return id, true
}
