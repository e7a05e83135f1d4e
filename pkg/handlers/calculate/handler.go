package calculate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/de-tools/tco-atlas/pkg/adapters"
	"github.com/de-tools/tco-atlas/pkg/handlers/respond"
	"github.com/de-tools/tco-atlas/pkg/models/api"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/de-tools/tco-atlas/pkg/services/calculator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type Handler struct {
	calc     calculator.Calculator
	validate *validator.Validate
}

func NewHandler(calc calculator.Calculator) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	return &Handler{
		calc:     calc,
		validate: v,
	}
}

func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Debug().Err(err).Msg("malformed calculate request")
		respond.InvalidInput(w, r, decodeErrorDetails(err))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			logger.Error().Err(err).Msg("failed to validate calculate request")
			respond.InternalError(w, r)
			return
		}
		respond.InvalidInput(w, r, validationDetails(verrs))
		return
	}

	results, err := h.calc.Calculate(ctx, adapters.MapCalculateRequestApiToDomain(req))
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			respond.InvalidInput(w, r, verr.Fields)
			return
		}

		logger.Error().Err(err).Msg("failed to calculate costs")
		respond.InternalError(w, r)
		return
	}

	respond.JSON(w, r, http.StatusOK, adapters.MapCostBreakdownsDomainToApi(results))
}

func (h *Handler) ListTargets(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.calc.Targets())
}

func decodeErrorDetails(err error) map[string]string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		msg := "must be a number"
		switch typeErr.Type.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			msg = "must be an integer"
		}
		return map[string]string{typeErr.Field: msg}
	}

	if errors.Is(err, io.EOF) {
		return map[string]string{"body": "request body is empty"}
	}
	return map[string]string{"body": "request body must be a JSON object"}
}

func validationDetails(verrs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			details[fe.Field()] = "is required"
		case "gte":
			details[fe.Field()] = fmt.Sprintf("must be greater than or equal to %s", fe.Param())
		default:
			details[fe.Field()] = fmt.Sprintf("failed %s validation", fe.Tag())
		}
	}
	return details
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
