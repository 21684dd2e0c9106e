package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"cloudbox/models"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var folderNameRegex = regexp.MustCompile(`^[^/\\:*?"<>|]+$`)

func init() {
	validate = validator.New()

	validate.RegisterValidation("permission", validatePermission)
	validate.RegisterValidation("folder_name", validateFolderName)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateStruct validates a struct using validator tags
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

func validatePermission(fl validator.FieldLevel) bool {
	return models.Permission(fl.Field().String()).Valid()
}

func validateFolderName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return name != "" && name != "." && name != ".." && folderNameRegex.MatchString(name)
}

func formatValidationErrors(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var messages []string
	for _, fieldError := range validationErrors {
		messages = append(messages, formatFieldError(fieldError))
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must have at least %s items", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", fe.Field(), fe.Param())
	case "permission":
		return fmt.Sprintf("%s must be one of VIEW, EDIT, ADMIN", fe.Field())
	case "folder_name":
		return fmt.Sprintf("%s contains invalid characters", fe.Field())
	default:
		return fmt.Sprintf("%s failed validation on %s", fe.Field(), fe.Tag())
	}
}
