package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// LogValidationErrors logs one line per failed field. Aggregated errors are unpacked; anything that is not
// a validator error is logged as is.
func LogValidationErrors(err error) {
	if err == nil {
		return
	}
	var aggregate *multierror.Error
	if errors.As(err, &aggregate) {
		for _, err := range aggregate.Errors {
			LogValidationErrors(err)
		}
		return
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			logFieldError(fieldError)
		}
		return
	}
	var fieldError validator.FieldError
	if errors.As(err, &fieldError) {
		logFieldError(fieldError)
		return
	}
	log.Errorf("ConfigError: %s", err)
}

func logFieldError(err validator.FieldError) {
	fieldName := stripPrefix(err.Namespace())
	switch err.Tag() {
	case "required":
		log.Errorf("ConfigError: Field %s is required but was not found", fieldName)
	default:
		log.Errorf("ConfigError: Field %s has invalid value %v: %s %s", fieldName, err.Value(), err.Tag(), err.Param())
	}
}

func stripPrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}
