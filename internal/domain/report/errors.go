package report

import "errors"

var (
	ErrForbiddenScope = errors.New("not allowed to view reports for other workers")
)
