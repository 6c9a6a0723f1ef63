package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

type IngestParams struct {
	Text     string `json:"text" validate:"required"`
	Category string `json:"category" validate:"required"`
	Title    string `json:"title"`
}

type QueryParams struct {
	Query    string `json:"query" validate:"required"`
	Category string `json:"category"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *IngestParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *QueryParams) Validate() map[string]string {
	return validateStruct(params)
}

func validateStruct(v any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(v); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}
