package config

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name    string `validate:"required"`
	Workers int    `validate:"gte=1"`
}

func messages(hook *test.Hook) []string {
	var result []string
	for _, entry := range hook.AllEntries() {
		result = append(result, entry.Message)
	}
	return result
}

func TestLogValidationErrors(t *testing.T) {
	validationErr := validator.New().Struct(sample{Workers: 0})

	tests := map[string]struct {
		err      error
		expected []string
	}{
		"nil": {
			err: nil,
		},
		"validation errors": {
			err: validationErr,
			expected: []string{
				"ConfigError: Field Name is required but was not found",
				"ConfigError: Field Workers has invalid value 0: gte 1",
			},
		},
		"aggregated": {
			err: multierror.Append(nil, errors.New("files overlap"), validationErr.(validator.ValidationErrors)[1]),
			expected: []string{
				"ConfigError: files overlap",
				"ConfigError: Field Workers has invalid value 0: gte 1",
			},
		},
		"plain": {
			err:      errors.New("unreadable"),
			expected: []string{"ConfigError: unreadable"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			hook := test.NewGlobal()
			defer hook.Reset()

			LogValidationErrors(tc.err)

			assert.Equal(t, tc.expected, messages(hook))
		})
	}
}
