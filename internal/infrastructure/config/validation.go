package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

// newValidate registers the factory's custom tags.
// "material" accepts any catalog material name, case-insensitively.
func newValidate() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("material", func(fl validator.FieldLevel) bool {
		_, err := factory.ParseMaterialKind(fl.Field().String())
		return err == nil
	})
	return v
}

// ValidateConfig checks the struct tags plus the rules tags cannot express,
// reporting every problem found
func ValidateConfig(cfg *Config) error {
	var problems []error

	if err := newValidate().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			problems = append(problems, fmt.Errorf("%s: failed %q (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}

	machines := make(map[string]struct{}, len(cfg.Factory.Machines))
	for _, m := range cfg.Factory.Machines {
		if _, dup := machines[m.ID]; dup {
			problems = append(problems, fmt.Errorf("factory.machines: duplicate machine id %q", m.ID))
		}
		machines[m.ID] = struct{}{}
	}

	if cfg.Factory.TargetBudget > 0 && cfg.Factory.TargetBudget <= cfg.Factory.StartingBudget {
		problems = append(problems, fmt.Errorf("factory.target_budget: %v must exceed starting_budget %v",
			cfg.Factory.TargetBudget, cfg.Factory.StartingBudget))
	}

	if len(problems) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(problems...))
	}
	return nil
}
