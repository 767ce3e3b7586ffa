package cli

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/stagegen/internal/validator"
	playground "github.com/go-playground/validator/v10"
)

// Output formats of the run report.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Config holds every command-line setting of a generate run.
type Config struct {
	SpecPath      string   `flag:"spec"`
	Input         string   `flag:"input" validate:"required"`
	OutputDir     string   `flag:"output-dir" validate:"required"`
	ReferenceDir  string   `flag:"reference-dir" validate:"required_if=Validate true"`
	Validate      bool     `flag:"validate"`
	Wells         string   `flag:"wells"`
	Stages        []string `flag:"stage" validate:"dive,required"`
	Concurrency   int      `flag:"concurrency" validate:"min=0"`
	MaxMismatches int      `flag:"max-mismatches" validate:"min=1"`
	MetricsFile   string   `flag:"metrics-file"`
	BasePath      string   `flag:"base-path" validate:"omitempty,startswith=/"`
	LogLevel      string   `flag:"log-level" validate:"oneof=debug info warn error"`
	LogFormat     string   `flag:"log-format" validate:"oneof=text json"`
	Format        string   `flag:"format" validate:"oneof=text json markdown"`
}

// DefaultConfig returns the flag defaults.
func DefaultConfig() Config {
	return Config{
		OutputDir:     ".",
		MaxMismatches: validator.DefaultMaxMismatches,
		LogLevel:      "warn",
		LogFormat:     "text",
		Format:        FormatText,
	}
}

var configValidate = newConfigValidator()

func newConfigValidator() *playground.Validate {
	v := playground.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return "--" + f.Tag.Get("flag")
	})
	return v
}

// Check fills derived defaults and validates the config.
// References default to the output directory.
func (c *Config) Check() error {
	if c.Validate && c.ReferenceDir == "" {
		c.ReferenceDir = c.OutputDir
	}

	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	usage := &UsageError{}
	for _, fe := range verrs {
		usage.Problems = append(usage.Problems, describe(fe))
	}
	return usage
}

func describe(fe playground.FieldError) string {
	name := fe.Field()
	if i := strings.Index(name, "["); i > 0 {
		name = name[:i]
	}
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "required_if":
		return name + " is required with --validate"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "startswith":
		return fmt.Sprintf("%s must be absolute", name)
	default:
		return fmt.Sprintf("%s failed %q", name, fe.Tag())
	}
}
