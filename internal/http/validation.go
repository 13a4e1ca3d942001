package http

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// redactedValue replaces secrets in logs and error bodies.
const redactedValue = "********"

// RegisterRequest is the JSON body accepted by the registration endpoint.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,max=255,email"`
	Password  string `json:"password" validate:"required,min=6,max=72,maxbytes=72"`
}

func (r *RegisterRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
}

// redacted returns the body as a loggable map with the password masked.
func (r RegisterRequest) redacted() map[string]string {
	return map[string]string{
		"firstName": r.FirstName,
		"lastName":  r.LastName,
		"email":     r.Email,
		"password":  redactedValue,
	}
}

// FieldError is one entry of a 400 response body.
type FieldError struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// bcrypt rejects inputs longer than 72 bytes, which max=72 (runes) does not catch
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// validateRegister returns field errors in struct declaration order, or nil.
func validateRegister(v *validator.Validate, req RegisterRequest) ([]FieldError, error) {
	err := v.Struct(req)
	if err == nil {
		return nil, nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, err
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		value := fmt.Sprint(fe.Value())
		if fe.Field() == "password" {
			value = redactedValue
		}
		out = append(out, FieldError{
			Type:     "field",
			Value:    value,
			Msg:      fieldMessage(fe),
			Path:     fe.Field(),
			Location: "body",
		})
	}
	return out, nil
}

func bodyError(err error) FieldError {
	return FieldError{
		Type:     "body",
		Msg:      fmt.Sprintf("request body must be valid JSON: %v", err),
		Location: "body",
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
