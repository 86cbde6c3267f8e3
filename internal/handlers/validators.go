package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

// RegisterCustomValidators installs the enum validators used by binding tags.
// Safe to call more than once.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("ratetype", func(fl validator.FieldLevel) bool {
		switch domain.RateType(fl.Field().String()) {
		case domain.RateHour, domain.RateMonth:
			return true
		}
		return false
	})

	_ = v.RegisterValidation("doctype", func(fl validator.FieldLevel) bool {
		switch domain.DocumentType(fl.Field().String()) {
		case domain.DocTypeAct, domain.DocTypeInvoice, domain.DocTypeTimesheet, domain.DocTypePackage, domain.DocTypeCustom:
			return true
		}
		return false
	})
}
