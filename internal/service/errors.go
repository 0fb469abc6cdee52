package service

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// statuses; services wrap them with context via fmt.Errorf("...: %w", err).
var (
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("not an authorized approver")
	ErrAlreadyApproved      = errors.New("already approved by this user")
	ErrAlreadySuspended     = errors.New("document is already suspended")
	ErrNotSuspended         = errors.New("document is not suspended")
	ErrDocumentSuspended    = errors.New("document is suspended")
	ErrPhaseLocked          = errors.New("phase is locked")
	ErrPhaseReadOnly        = errors.New("phase is approved and read-only")
	ErrDuplicateName        = errors.New("name already exists")
	ErrDuplicateCode        = errors.New("code already exists")
	ErrReferenceNotApproved = errors.New("referenced document is not approved")
	ErrCostCenterDenied     = errors.New("cost center access denied")
	ErrAlreadyReviewed      = errors.New("file has already been reviewed")
)
