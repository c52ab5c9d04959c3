package handlers

import (
	"reflect"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators teaches gin's validator about decimal.Decimal and adds
// the decimal_gt0 and decimal_gte0 sign tags plus the money and rate scale tags.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	// Decimals are validated through their string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("decimal_gt0", func(fl validator.FieldLevel) bool {
		d, ok := fieldDecimal(fl)
		return ok && d.IsPositive()
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
		d, ok := fieldDecimal(fl)
		return ok && !d.IsNegative()
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, ok := fieldDecimal(fl)
		return ok && domain.IsMoney(d)
	}); err != nil {
		return err
	}
	return v.RegisterValidation("rate", func(fl validator.FieldLevel) bool {
		d, ok := fieldDecimal(fl)
		return ok && domain.IsRate(d)
	})
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	switch f := fl.Field(); f.Kind() {
	case reflect.String:
		d, err := decimal.NewFromString(f.String())
		return d, err == nil
	default:
		d, ok := f.Interface().(decimal.Decimal)
		return d, ok
	}
}
