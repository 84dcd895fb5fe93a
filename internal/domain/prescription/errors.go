package prescription

import "errors"

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrInvalidStatus        = errors.New("invalid prescription status")
	ErrNoMedications        = errors.New("prescription requires at least one medication line")
)
