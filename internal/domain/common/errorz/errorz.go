package errorz

import "errors"

var (
	ErrInvalidCallbackData = errors.New("invalid callback data")
	ErrCallbackExpired     = errors.New("callback data expired")
	ErrInvalidState        = errors.New("invalid state")
	ErrForbidden           = errors.New("forbidden")
	ErrRenderExpired       = errors.New("render expired")
	ErrNoFile              = errors.New("qr code has no stored file")
)
