package validator

import (
	"micasa/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// validateUserRole accepts any known role.
func validateUserRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}

// validateSelfRole accepts the roles a user may pick without an admin.
func validateSelfRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).SelfAssignable()
}

// Register adds the custom validations to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("userrole", validateUserRole); err != nil {
		return err
	}
	return v.RegisterValidation("selfrole", validateSelfRole)
}

// RegisterCustomValidators registers all custom validators with gin's validator
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = Register(v)
	}
}
