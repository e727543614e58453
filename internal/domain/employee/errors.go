package employee

import "errors"

var (
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrStoreSettingsNotFound = errors.New("store settings not found")
)
