package domain

import "time"

// AuditEventType identifies what happened to an account.
type AuditEventType string

const (
	AuditLoginSucceeded AuditEventType = "login_succeeded"
	AuditLoginFailed    AuditEventType = "login_failed"
	AuditUserCreated    AuditEventType = "user_created"
	AuditUserUpdated    AuditEventType = "user_updated"
	AuditUserDeleted    AuditEventType = "user_deleted"
)

// AuditEvent records an authentication or account-management action.
type AuditEvent struct {
	Type      AuditEventType
	Username  string
	SubjectID int64
	// ActorID is the id of the authenticated caller; zero for anonymous
	// routes such as login and register.
	ActorID   int64
	Success   bool
	RequestID string
	At        time.Time
}
