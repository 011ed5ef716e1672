// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// This file contains the shared validator instance and the input limits
// applied on top of gin's binding tags: field-size caps and a custom "money"
// validation restricting amounts to whole cents.

package datatypes

import (
	"math"

	"github.com/go-playground/validator/v10"
)

// financeValidate is the validator instance for finance datatypes.
// Initialized in init() with custom validators.
var financeValidate *validator.Validate

func init() {
	financeValidate = validator.New()
	_ = financeValidate.RegisterValidation("money", validateMoney)
}

// validateMoney enforces that a float amount carries at most two decimal
// places, i.e. is representable in whole cents.
func validateMoney(fl validator.FieldLevel) bool {
	cents := fl.Field().Float() * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

// Validate applies the `validate` tags gin's binding step does not evaluate.
func (r *CreateExpenseRequest) Validate() error {
	return financeValidate.Struct(r)
}

// Validate applies the `validate` tags gin's binding step does not evaluate.
func (r *UpdateIncomeRequest) Validate() error {
	return financeValidate.Struct(r)
}

// Validate applies the `validate` tags gin's binding step does not evaluate.
func (r *GoalPlanRequest) Validate() error {
	return financeValidate.Struct(r)
}
