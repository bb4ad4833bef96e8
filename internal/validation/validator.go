package validation

import (
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// register struct-level validation for CreateDrugRequest to ensure the
	// manufacture date is strictly before the expiry date.
	v.RegisterStructValidation(createDrugStructValidation, CreateDrugRequest{})

	return v
}

// createDrugStructValidation enforces mfg_date < exp_date. Field-level
// datetime tags already guarantee both parse.
func createDrugStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateDrugRequest)

	mfg, err1 := time.Parse("2006-01-02", req.MfgDate)
	exp, err2 := time.Parse("2006-01-02", req.ExpDate)
	if err1 != nil || err2 != nil {
		return // datetime tag reports these
	}
	if !mfg.Before(exp) {
		sl.ReportError(req.ExpDate, "exp_date", "ExpDate", "exp_after_mfg", "")
	}
}
