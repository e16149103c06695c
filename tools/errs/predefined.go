package errs

// Stable codes shared with clients. 1xxx validation/auth, 12xx storage,
// 15xx internal.
var (
	ErrArgs             = NewCodeError(1001, "invalid argument")
	ErrTokenInvalid     = NewCodeError(1002, "token invalid")
	ErrIdentityMismatch = NewCodeError(1003, "identity mismatch")
	ErrPersistence      = NewCodeError(1201, "message persistence failed")
	ErrInternal         = NewCodeError(1500, "server internal error")
)
