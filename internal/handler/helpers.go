package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/AmericableSA/Sistema-sub001/internal/apierror"
	"github.com/AmericableSA/Sistema-sub001/internal/apperror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
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
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps domain errors to HTTP statuses:
//
//	404 — missing resources
//	403 — permission denied, acting without an open drawer
//	400 — business rule violations (stock, double cancel, reconciliation)
//	500 — everything unexpected
func respondError(c *gin.Context, err error) {
	var stockErr *apperror.InsufficientStockError
	var reconErr *apperror.JustificationRequiredError

	switch {
	case errors.Is(err, apperror.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New("resource not found"))
	case errors.Is(err, apperror.ErrNoOpenSession):
		c.JSON(http.StatusForbidden, apierror.New("no open cash session"))
	case errors.Is(err, apperror.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, apierror.New("insufficient permissions"))
	case errors.Is(err, apperror.ErrSessionAlreadyOpen):
		c.JSON(http.StatusBadRequest, apierror.New("user already has an open cash session"))
	case errors.Is(err, apperror.ErrAlreadyCancelled):
		c.JSON(http.StatusBadRequest, apierror.New("transaction already cancelled"))
	case errors.Is(err, apperror.ErrReasonRequired):
		c.JSON(http.StatusBadRequest, apierror.New("cancellation reason is required"))
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, apierror.New(stockErr.Error()))
	case errors.As(err, &reconErr):
		// The client re-submits with a closing note; it needs the totals to
		// show the cashier what is off.
		c.JSON(http.StatusBadRequest, apierror.NewReconciliation(
			reconErr.SystemTotal.StringFixed(2),
			reconErr.PhysicalAmount.StringFixed(2),
			reconErr.Difference.StringFixed(2),
		))
	default:
		// Do not leak internals; the error middleware logs it.
		_ = c.Error(err)
	}
}
