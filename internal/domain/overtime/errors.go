package overtime

import "errors"

var (
	ErrOvertimeNotFound  = errors.New("overtime claim not found")
	ErrInvalidHours      = errors.New("overtime hours must be between 0 and 24")
	ErrForbiddenOvertime = errors.New("not allowed to act on overtime for another worker")
)
