// Package contact validates the contact form and relays it to the site mailbox.
package contact

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form is the contact form as posted by the browser.
type Form struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// FieldErrors maps a form field name to the message shown under it.
type FieldErrors map[string]string

type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Report fields by their form names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate returns nil for a valid form.
func (v *Validator) Validate(form Form) FieldErrors {
	err := v.v.Struct(form)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return FieldErrors{"form": friendlyMessage("")}
	}

	fieldErrors := make(FieldErrors, len(validationErrs))
	for _, e := range validationErrs {
		if _, ok := fieldErrors[e.Field()]; ok {
			continue
		}
		fieldErrors[e.Field()] = friendlyMessage(e.Tag())
	}
	return fieldErrors
}

func friendlyMessage(tag string) string {
	switch tag {
	case "required":
		return "1文字以上の文字列である必要があります"
	case "email":
		return "メールアドレスの形式で入力してください"
	default:
		return "入力内容が正しくありません"
	}
}
