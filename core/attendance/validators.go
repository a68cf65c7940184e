package attendance

import (
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	// custom validation tags & texts
	statusTag  = "attendancestatus"
	statusText = "must be one of present, absent, late or excused"

	dayKeyTag  = "daykey"
	dayKeyText = "must be a day of month between 1 and 31"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)

	_ = validate.RegisterValidation(dayKeyTag, dayKeyValidation)
	core.RegisterCustomTranslation(validate, translator, dayKeyTag, dayKeyText)
}

// statusValidation checks that the value is a canonical Status.
func statusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).Valid()
}

// dayKeyValidation checks that the value is a day-of-month key.
func dayKeyValidation(fl validator.FieldLevel) bool {
	d, err := strconv.Atoi(fl.Field().String())
	return err == nil && d >= 1 && d <= 31
}
