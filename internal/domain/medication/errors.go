package medication

import "errors"

var (
	ErrMedicationNotFound = errors.New("medication not found")
	ErrInvalidDateRange   = errors.New("end date must not precede start date")
	ErrInvalidFrequency   = errors.New("frequency must be at least once per day")
	ErrInvalidStatus      = errors.New("invalid medication status")
	ErrInvalidTimeOfDay   = errors.New("invalid time-of-day bucket")
)
