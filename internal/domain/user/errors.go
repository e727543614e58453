package user

import "errors"

var (
	ErrInvalidToken          = errors.New("invalid token")
	ErrManagerAccessRequired = errors.New("manager access required")
	ErrNoEmployeeProfile     = errors.New("no employee profile linked to this account")
	ErrStoreRequired         = errors.New("account is not linked to a store")
)
