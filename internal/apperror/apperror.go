// Package apperror provides utilities to handle and map custom validation errors.
package apperror

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	errRequired        = errors.New("is required")
	errMustBeNonNeg    = errors.New("must be zero or a positive number")
	errInvalidDate     = errors.New("must be a date in YYYY-MM-DD format")
	errInvalidClock    = errors.New("must be a time in 24-hour HH:MM format")
	errInvalidCurrency = errors.New("must be one of the supported currency codes")
	errNameTooShort    = errors.New("must not be empty")
)

var customErrors = map[string]error{
	"EntryRequest.Date.required":        errRequired,
	"EntryRequest.Date.datefmt":         errInvalidDate,
	"EntryRequest.StartTime.required":   errRequired,
	"EntryRequest.StartTime.clock":      errInvalidClock,
	"EntryRequest.EndTime.clock":        errInvalidClock,
	"EntryRequest.BreakTime.gte":        errMustBeNonNeg,
	"EntryRequest.HourlyRate.gte":       errMustBeNonNeg,
	"EntryRequest.Currency.required":    errRequired,
	"EntryRequest.Currency.currency":    errInvalidCurrency,
	"TemplateRequest.Name.required":     errNameTooShort,
	"TemplateRequest.Name.min":          errNameTooShort,
	"TemplateRequest.StartTime.clock":   errInvalidClock,
	"TemplateRequest.EndTime.clock":     errInvalidClock,
	"TemplateRequest.BreakTime.gte":     errMustBeNonNeg,
	"TemplateRequest.HourlyRate.gte":    errMustBeNonNeg,
	"TemplateRequest.Currency.required": errRequired,
	"TemplateRequest.Currency.currency": errInvalidCurrency,
	"ReportRequest.From.required":       errRequired,
	"ReportRequest.From.datefmt":        errInvalidDate,
	"ReportRequest.To.required":         errRequired,
	"ReportRequest.To.datefmt":          errInvalidDate,
}

// CustomValidationError converts validator errors into a standardized format.
func CustomValidationError(err error) []map[string]string {
	errList := make([]map[string]string, 0)

	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		for _, e := range validationErr {
			field := e.StructNamespace()
			key := field + "." + e.Tag()

			errMsg := fmt.Sprintf("%s is invalid", field)
			if v, ok := customErrors[key]; ok {
				errMsg = v.Error()
			}

			errList = append(errList, map[string]string{e.Field(): errMsg})
		}
	}
	return errList
}
