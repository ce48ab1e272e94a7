package configuration

import (
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

func (c TrafficMonitorConfiguration) Validate() error {
	var result *multierror.Error
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fieldError := range validationErrors {
				result = multierror.Append(result, fieldError)
			}
		} else {
			result = multierror.Append(result, err)
		}
	}
	if c.ReportFile != "" && c.MetricsFile != "" && filepath.Clean(c.ReportFile) == filepath.Clean(c.MetricsFile) {
		result = multierror.Append(result, errors.Errorf("reportFile and metricsFile must differ but both are %s", c.ReportFile))
	}
	if c.ReportFile != "" && filepath.Clean(c.ReportFile) == filepath.Clean(c.InputFile) {
		result = multierror.Append(result, errors.Errorf("reportFile must not overwrite the input file %s", c.InputFile))
	}
	return result.ErrorOrNil()
}
