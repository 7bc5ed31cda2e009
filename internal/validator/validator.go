package validator

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"

	"github.com/neuronalfit/assessment-backend/internal/scoring"
)

// trans is the singleton French translator for validation errors.
var trans ut.Translator

// Setup registers the validator with French translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		if err := Register(v); err != nil {
			panic(err)
		}
	}
}

// Register wires the JSON tag names, the custom rules and the French
// translations into v.
func Register(v *govalidator.Validate) error {
	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("answer_score", validateAnswerScore); err != nil {
		return err
	}

	frLocale := fr.New()
	uni := ut.New(frLocale, frLocale)
	trans, _ = uni.GetTranslator("fr")
	if err := fr_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return err
	}

	return v.RegisterTranslation("answer_score", trans,
		func(ut ut.Translator) error {
			return ut.Add("answer_score", "{0} doit être compris entre 0 et 3", true)
		},
		func(ut ut.Translator, fe govalidator.FieldError) string {
			t, _ := ut.T("answer_score", fe.Field())
			return t
		},
	)
}

// validateAnswerScore accepts a finite score within the answer scale.
func validateAnswerScore(fl govalidator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		s := f.Float()
		return !math.IsNaN(s) && s >= 0 && s <= scoring.MaxAnswerScore
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s := f.Int()
		return s >= 0 && s <= scoring.MaxAnswerScore
	default:
		return false
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) && trans != nil {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst any) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
