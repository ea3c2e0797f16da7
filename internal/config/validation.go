package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	apperrors "github.com/conneroisu/formpulse/internal/errors"
)

// ValidationError is one problem found in a configuration.
type ValidationError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds errors that block startup and warnings that don't.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

func (vr *ValidationResult) HasErrors() bool   { return len(vr.Errors) > 0 }
func (vr *ValidationResult) HasWarnings() bool { return len(vr.Warnings) > 0 }

// String formats every issue, one per line.
func (vr *ValidationResult) String() string {
	var b strings.Builder
	write := func(prefix string, issues []ValidationError) {
		for _, issue := range issues {
			fmt.Fprintf(&b, "%s %s: %s\n", prefix, issue.Field, issue.Message)
			if issue.Suggestion != "" {
				fmt.Fprintf(&b, "  hint: %s\n", issue.Suggestion)
			}
		}
	}
	write("error", vr.Errors)
	write("warning", vr.Warnings)
	return b.String()
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("langtag", func(fl validator.FieldLevel) bool {
			_, err := language.Parse(fl.Field().String())
			return err == nil
		})
		_ = validate.RegisterValidation("safepath", func(fl validator.FieldLevel) bool {
			return safePath(fl.Field().String())
		})
	})
	return validate
}

// safePath rejects relative paths that climb out of the working directory.
func safePath(p string) bool {
	clean := filepath.ToSlash(filepath.Clean(p))
	return clean != ".." && !strings.HasPrefix(clean, "../")
}

// Validate checks config against its struct tags. The returned error is a
// config AppError listing every failing field.
func Validate(config *Config) error {
	result := Check(config)
	if !result.HasErrors() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		msgs = append(msgs, e.Error())
	}
	return apperrors.NewConfigError("INVALID", strings.Join(msgs, "; "), nil)
}

// Check runs the struct-tag validation and collects warnings about settings
// that are legal but probably unintended.
func Check(config *Config) *ValidationResult {
	result := &ValidationResult{}

	if err := validatorInstance().Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			result.Errors = append(result.Errors, ValidationError{Field: "config", Message: err.Error()})
			return result
		}
		for _, fe := range verrs {
			result.Errors = append(result.Errors, fieldError(fe))
		}
	}

	if config.Storage.Driver == DefaultDriver {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:      "storage.driver",
			Value:      config.Storage.Driver,
			Message:    "high score and theme are lost on restart",
			Suggestion: "use the file, sqlite or redis driver to persist them",
		})
	}
	if config.Server.Host == "0.0.0.0" && len(config.Server.AllowedOrigins) == 0 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:      "server.allowed_origins",
			Message:    "listening on all interfaces with same-origin websockets only",
			Suggestion: "list the public origins that serve the page",
		})
	}
	return result
}

func fieldError(fe validator.FieldError) ValidationError {
	// Namespace is "Config.server.port"; drop the root type name.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	ve := ValidationError{Field: field, Value: fe.Value()}
	switch fe.Tag() {
	case "required":
		ve.Message = "is required"
	case "oneof":
		ve.Message = fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gte", "lte":
		ve.Message = fmt.Sprintf("%v is out of range", fe.Value())
	case "hostname|ip":
		ve.Message = fmt.Sprintf("%q is not a hostname or IP address", fe.Value())
	case "hostname_port":
		ve.Message = fmt.Sprintf("%q is not host:port", fe.Value())
		ve.Suggestion = "for example localhost:6379"
	case "langtag":
		ve.Message = fmt.Sprintf("%q is not a BCP 47 language tag", fe.Value())
		ve.Suggestion = "en and es are translated"
	case "safepath":
		ve.Message = fmt.Sprintf("%q escapes the working directory", fe.Value())
	default:
		ve.Message = fmt.Sprintf("failed %q check", fe.Tag())
	}
	return ve
}
