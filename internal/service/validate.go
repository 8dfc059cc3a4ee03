package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("jobtype", func(fl validator.FieldLevel) bool {
		return model.JobType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("candidatestatus", func(fl validator.FieldLevel) bool {
		return model.Status(fl.Field().String()).Valid()
	})
	return v
}

// checkStruct validates s and renders the first failure as a validation
// error.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation("invalid input", err)
	}
	return apperr.Validation(describe(fieldErrs[0]), err)
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "jobtype":
		return field + " is not a recognised job type"
	case "candidatestatus":
		return field + " is not a recognised status"
	default:
		return field + " is invalid"
	}
}

// checkPatch validates only the fields present in a partial update.
func checkPatch(p model.CandidatePatch) error {
	if p.Name != nil {
		if err := validate.Var(strings.TrimSpace(*p.Name), "required,max=200"); err != nil {
			return apperr.Validation("name must be between 1 and 200 characters", err)
		}
	}
	if p.Email != nil && strings.TrimSpace(*p.Email) != "" {
		if err := validate.Var(strings.TrimSpace(*p.Email), "email"); err != nil {
			return apperr.Validation("email must be a valid email address", err)
		}
	}
	bounded := []struct {
		field string
		value *string
		max   int
	}{
		{"phone", p.Phone, 100},
		{"wechat", p.Wechat, 100},
		{"currentCompany", p.CurrentCompany, 200},
		{"school", p.School, 200},
		{"linkedinUrl", p.LinkedinURL, 500},
		{"googleScholar", p.GoogleScholar, 500},
	}
	for _, b := range bounded {
		if b.value == nil {
			continue
		}
		if err := validate.Var(strings.TrimSpace(*b.value), fmt.Sprintf("max=%d", b.max)); err != nil {
			return apperr.Validation(fmt.Sprintf("%s must be at most %d characters", b.field, b.max), err)
		}
	}
	if p.JobType != nil && !p.JobType.Valid() {
		return apperr.Validation("jobType is not a recognised job type", nil)
	}
	if p.Status != nil && !p.Status.Valid() {
		return apperr.Validation("status is not a recognised status", nil)
	}
	return nil
}

// validID rejects ids that cannot name a stored record.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
