package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"posecorpus/internal/services"
)

var (
	validateOnce sync.Once
	structCheck  *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("toml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		structCheck = v
	})
	return structCheck
}

// Validate ensures the configuration is usable. Tag rules run first, then the
// cross-field checks that tags cannot express.
func (c *Config) Validate() error {
	if err := c.validateTags(); err != nil {
		return err
	}
	if err := c.validateFrameRate(); err != nil {
		return err
	}
	if err := c.validateSplit(); err != nil {
		return err
	}
	return nil
}

// ValidateBuild adds the checks that only apply when a split is computed: the
// seed and the dev/test size must be given explicitly.
func (c *Config) ValidateBuild() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Split.Seed == nil {
		return configError("split.seed is required (set it in the config file or pass --seed)")
	}
	if c.Split.DevTestSize == nil {
		return configError("split.devtest_size is required (set it in the config file or pass --devtest-size)")
	}
	if strings.TrimSpace(c.Paths.InputDir) == "" {
		return configError("paths.input_dir is required (set POSECORPUS_INPUT_DIR or pass --input)")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return configError("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateTags() error {
	err := structValidator().Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
	}
	fe := fieldErrs[0]
	key := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "oneof":
		return configError(fmt.Sprintf("%s must be one of [%s], got %v", key, fe.Param(), fe.Value()))
	case "min":
		return configError(fmt.Sprintf("%s must be >= %s", key, fe.Param()))
	case "required":
		return configError(fmt.Sprintf("%s must be set", key))
	case "excludes":
		return configError(fmt.Sprintf("%s must not contain %q", key, fe.Param()))
	default:
		return configError(fmt.Sprintf("%s failed %s validation", key, fe.Tag()))
	}
}

func (c *Config) validateFrameRate() error {
	target := c.FrameRate.TargetFPS
	native := c.FrameRate.NativeFPS
	if target > 0 && native > 0 && !ConvertibleRates(native, target) {
		return services.Wrap(services.ErrUnsupported, "config", "validate",
			fmt.Sprintf("framerate.native_fps %d cannot be converted to framerate.target_fps %d", native, target), nil)
	}
	return nil
}

func (c *Config) validateSplit() error {
	if c.Split.TrainSize != nil && *c.Split.TrainSize < 0 {
		return configError("split.train_size must be >= 0")
	}
	if c.Split.DevTestSize != nil && *c.Split.DevTestSize < 0 {
		return configError("split.devtest_size must be >= 0")
	}
	return nil
}

// ConvertibleRates reports whether a native rate can be converted to target.
func ConvertibleRates(native, target int) bool {
	switch {
	case target <= 0 || native == target:
		return true
	case native == 2*target:
		return true
	case native == 30 && target == 25:
		return true
	default:
		return false
	}
}

func configError(message string) error {
	return services.Wrap(services.ErrConfiguration, "config", "validate", message, nil)
}
