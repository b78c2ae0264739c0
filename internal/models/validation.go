package models

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidTask is wrapped by every error ValidateTask returns
var ErrInvalidTask = errors.New("invalid task")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func taskValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
			return TaskStatus(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("task_priority", func(fl validator.FieldLevel) bool {
			return TaskPriority(fl.Field().String()).IsValid()
		})
		validate = v
	})
	return validate
}

// ValidateTask checks the fields a user fills in before the task is sent anywhere.
// The returned error names the first offending field.
func ValidateTask(task Task) error {
	err := taskValidator().Struct(task)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "notblank":
			return fmt.Errorf("%w: %s is required", ErrInvalidTask, strings.ToLower(fe.Field()))
		case "task_status":
			return fmt.Errorf("%w: unknown status %q", ErrInvalidTask, fe.Value())
		case "task_priority":
			return fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, fe.Value())
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidTask, err)
}
