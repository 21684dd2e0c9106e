// Package errtypes defines the error vocabulary shared by the service layer.
// Controllers map these to HTTP statuses; services return them wrapped with
// context so callers can branch with errors.As.
package errtypes

// NotFound is the error to use when a resource, user or link does not exist.
type NotFound string

func (e NotFound) Error() string { return "not found: " + string(e) }

// IsNotFound marks the error as a not-found condition.
func (e NotFound) IsNotFound() {}

// PermissionDenied is the error to use when the subject lacks the required
// permission on a resource.
type PermissionDenied string

func (e PermissionDenied) Error() string { return "permission denied: " + string(e) }

// IsPermissionDenied marks the error as an authorization denial.
func (e PermissionDenied) IsPermissionDenied() {}

// InvalidArgument is the error to use for malformed or rejected input:
// bad emails, non-future expiries, non-positive quotas, self-shares.
type InvalidArgument string

func (e InvalidArgument) Error() string { return "invalid argument: " + string(e) }

// IsInvalidArgument marks the error as a validation failure.
func (e InvalidArgument) IsInvalidArgument() {}

// AlreadyExists is the error to use when a uniqueness invariant would be
// violated, e.g. sibling folders with the same name under the same owner.
type AlreadyExists string

func (e AlreadyExists) Error() string { return "already exists: " + string(e) }

// IsAlreadyExists marks the error as a uniqueness conflict.
func (e AlreadyExists) IsAlreadyExists() {}

// Expired is the link-resolution denial for a link whose expiry has passed.
type Expired string

func (e Expired) Error() string { return "expired: " + string(e) }

// IsExpired marks the error as an expiry denial.
func (e Expired) IsExpired() {}

// Inactive is the link-resolution denial for a revoked link.
type Inactive string

func (e Inactive) Error() string { return "inactive: " + string(e) }

// IsInactive marks the error as a revoked-link denial.
func (e Inactive) IsInactive() {}

// QuotaExceeded is the link-resolution denial for an exhausted download quota.
type QuotaExceeded string

func (e QuotaExceeded) Error() string { return "quota exceeded: " + string(e) }

// IsQuotaExceeded marks the error as a quota denial.
func (e QuotaExceeded) IsQuotaExceeded() {}

// WrongPassword is the link-resolution denial for a missing or mismatched
// link password. Kept distinct from NotFound internally; the transport layer
// decides how much of the distinction to reveal.
type WrongPassword string

func (e WrongPassword) Error() string { return "wrong password: " + string(e) }

// IsWrongPassword marks the error as a password denial.
func (e WrongPassword) IsWrongPassword() {}

// IsNotFound is the interface to implement to signal a not-found condition.
type IsNotFound interface {
	IsNotFound()
}

// IsPermissionDenied is the interface to implement to signal an authorization
// denial.
type IsPermissionDenied interface {
	IsPermissionDenied()
}

// IsInvalidArgument is the interface to implement to signal a validation
// failure.
type IsInvalidArgument interface {
	IsInvalidArgument()
}

// IsAlreadyExists is the interface to implement to signal a uniqueness
// conflict.
type IsAlreadyExists interface {
	IsAlreadyExists()
}

// IsExpired is the interface to implement to signal link expiry.
type IsExpired interface {
	IsExpired()
}

// IsInactive is the interface to implement to signal a revoked link.
type IsInactive interface {
	IsInactive()
}

// IsQuotaExceeded is the interface to implement to signal quota exhaustion.
type IsQuotaExceeded interface {
	IsQuotaExceeded()
}

// IsWrongPassword is the interface to implement to signal a password
// mismatch.
type IsWrongPassword interface {
	IsWrongPassword()
}
