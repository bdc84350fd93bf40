package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/dom/roleplay-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it. Failures are reported
// with the given status, 422 for most endpoints.
func decode(r *http.Request, dst any, status int) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewError(status, domain.CodeBadRequest, "invalid request body")
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.NewError(status, domain.CodeBadRequest, validationMessage(verrs[0]))
		}
		return domain.NewError(status, domain.CodeBadRequest, err.Error())
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid url", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// pathID parses a UUID route parameter. Malformed ids cannot name a row, so
// they are reported as notFound.
func pathID(r *http.Request, name string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}
