package patient

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrDuplicatePhoneNumber = errors.New("patient with this phone number already exists")
	ErrInvalidPhoneNumber   = errors.New("phone number must match 010-XXXX-XXXX")
	ErrInvalidGender        = errors.New("invalid gender value")
	ErrInvalidBirthDate     = errors.New("birth date cannot be in the future")
)
