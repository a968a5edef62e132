package v1

var (
	// common errors
	ErrSuccess             = newError(0, "ok")
	ErrBadRequest          = newError(400, "bad request")
	ErrUnauthorized        = newError(401, "unauthorized")
	ErrNotFound            = newError(404, "not found")
	ErrInternalServerError = newError(500, "internal server error")

	// user errors
	ErrEmailAlreadyUse    = newError(1001, "The email is already in use.")
	ErrUsernameAlreadyUse = newError(1002, "The username is already in use.")

	// instance errors
	ErrInstanceNotFound    = newError(2001, "instance not found")
	ErrInstanceUnreachable = newError(2002, "instance unreachable")
	ErrInstanceDisabled    = newError(2003, "instance disabled")

	// configuration errors
	ErrConfigurationNotFound = newError(3001, "configuration not found")
	ErrInvalidConfigType     = newError(3002, "invalid configuration type")
	ErrInvalidStatusChange   = newError(3003, "invalid status transition")
	ErrVersionNotFound       = newError(3004, "configuration version not found")
	ErrNoPreviousVersion     = newError(3005, "no previous version to roll back to")

	// deployment errors
	ErrDeploymentNotFound    = newError(4001, "deployment not found")
	ErrValidationFailed      = newError(4002, "configuration validation failed")
	ErrAuthenticationFailed  = newError(4003, "instance authentication failed")
	ErrBackupFailed          = newError(4004, "pre-deployment backup failed")
	ErrTestFailed            = newError(4005, "post-deployment check failed")
	ErrRollbackUnavailable   = newError(4006, "rollback unavailable: no backup or rollback disabled")
	ErrDeploymentTimeout     = newError(4007, "deployment timed out")
	ErrInstanceBusy          = newError(4008, "another deployment is running against this instance")
	ErrDeploymentNotTerminal = newError(4009, "deployment is still running")

	// backup errors
	ErrBackupNotFound = newError(5001, "backup not found")
	ErrRestoreFailed  = newError(5002, "backup restore failed")

	// notification errors
	ErrSubscriptionNotFound = newError(6001, "subscription not found")
	ErrInvalidChannel       = newError(6002, "invalid notification channel")
	ErrInvalidTrigger       = newError(6003, "invalid notification trigger")
)
