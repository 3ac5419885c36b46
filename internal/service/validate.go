package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Правила для полей, которые проверяются без структуры.
const (
	userRule           = "required"
	commentContentRule = "notblank,max=2000"
	tagNameRule        = "notblank,max=50"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

// jsonFieldName - в ошибке поле называется так же, как в JSON.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// checkStruct проверяет теги validate и возвращает первую ошибку как ValidationError.
func checkStruct(s any) error {
	return fieldError("", validate.Struct(s))
}

func checkVar(field string, value any, rule string) error {
	return fieldError(field, validate.Var(value, rule))
}

func requireUser(userID string) error {
	return checkVar("user", userID, userRule)
}

func fieldError(field string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	if fe.Field() != "" {
		field = fe.Field()
	}
	return &domain.ValidationError{Field: field, Msg: fieldMessage(field, fe)}
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "notblank":
		return field + " cannot be empty"
	case "max":
		return fmt.Sprintf("%s is longer than %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("unknown %s %q, expected one of: %s", field, fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}
