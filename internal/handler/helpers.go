package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/DavidJaure/CRUDapiDB/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido"))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			respondError(c, err)
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError writes the envelope for a service error. Anything that is not
// an *apierror.AppError is treated as internal and attached to the context so
// middleware.ErrorHandler logs it.
func respondError(c *gin.Context, err error) {
	ae, ok := apierror.As(err)
	if !ok {
		ae = apierror.NewInternal(err)
	}
	if ae.Kind == apierror.Internal {
		_ = c.Error(err)
	}
	c.JSON(ae.StatusCode(), ae.Response())
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return 0, false
	}
	return uint(id), true
}
