package config

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateConnector checks struct tags and the rules tags cannot express.
func ValidateConnector(cfg *Connector) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	for name, expr := range map[string]string{
		"exclude.unallowed_files_REGEXP": cfg.Exclude.UnallowedFilesRegexp,
		"exclude.unallowed_dirs_REGEXP":  cfg.Exclude.UnallowedDirsRegexp,
	} {
		if expr == "" {
			continue
		}
		if _, err := regexp.Compile(expr); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if cfg.Connector.ServerRoot == "" && cfg.Options.FileRoot == "" {
		return fmt.Errorf("connector.serverRoot is required when options.fileRoot is false")
	}
	return nil
}

func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return fmt.Errorf("validation error: %w", err)
}
