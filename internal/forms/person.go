package forms

import (
	"strings"

	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
)

const aadharLength = 12

// Person is the contact block shared by the owner and partner forms.
type Person struct {
	Name         string `json:"name" validate:"required,max=100"`
	Mobile       string `json:"mobile" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Address      string `json:"address" validate:"max=500"`
	AadharNumber string `json:"aadhar_number"`
	DOB          string `json:"dob"`
}

// Normalize trims the fields, keeps only digits in mobile and aadhar and
// converts the date of birth to backend form.
func (p Person) Normalize() (Person, error) {
	out := Person{
		Name:         strings.TrimSpace(p.Name),
		Mobile:       Mobile(p.Mobile),
		Email:        strings.TrimSpace(p.Email),
		Address:      strings.TrimSpace(p.Address),
		AadharNumber: DigitsOnly(p.AadharNumber, aadharLength),
	}

	invalid := map[string]string{}
	if out.Name == "" {
		invalid["name"] = "is required"
	}
	if len(out.Mobile) != MobileLength {
		invalid["mobile"] = "must be 10 digits"
	}
	if out.AadharNumber != "" && len(out.AadharNumber) != aadharLength {
		invalid["aadhar_number"] = "must be 12 digits"
	}
	dob, err := NormalizeDate("dob", p.DOB)
	if err != nil {
		invalid["dob"] = "must be a date"
	}
	out.DOB = dob

	if len(invalid) > 0 {
		return out, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(invalid)
	}
	return out, nil
}
