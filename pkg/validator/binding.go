package validator

import (
	"errors"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var aspectRatioPattern = regexp.MustCompile(`^[1-9][0-9]*:[1-9][0-9]*$`)

// AspectRatio accepts ratios such as "16:9" and the literal "custom"
func AspectRatio(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "custom" || aspectRatioPattern.MatchString(value)
}

// RegisterBindings adds the custom rules used in request struct tags to
// gin's validator
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return v.RegisterValidation("aspect_ratio", AspectRatio)
}
