package api

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator builds the request validator. Field names in validation
// errors follow the json tags so problem responses talk about the wire
// shape, not Go struct fields.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate parses the JSON body into dst and runs struct
// validation. On failure it writes the problem response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return false
	}

	if err := v.Struct(dst); err != nil {
		fields := make(map[string][]string)
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok {
			for _, fe := range verrs {
				fields[fe.Field()] = append(fields[fe.Field()], validationMessage(fe))
			}
		} else {
			fields["body"] = []string{err.Error()}
		}
		writeValidationProblem(w, r, fields)
		return false
	}

	return true
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid4":
		return "must be a valid UUID"
	case "email":
		return "must be a valid email address"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
