package schedule

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	// custom validation tags & texts
	eventKindTag  = "eventkind"
	eventKindText = "must be one of: " + strings.Join(Kinds, ", ")
)

// InitValidators registers this package's custom validators.
// core.InitValidators must have been called on `validate` first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(eventKindTag, eventKindValidation)
	core.RegisterCustomTranslation(validate, translator, eventKindTag, eventKindText)
}

func eventKindValidation(fl validator.FieldLevel) bool {
	return KnownKind(fl.Field().String())
}
