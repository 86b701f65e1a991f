package types

type AuditAction string

const (
	AuditActionUserCreated           AuditAction = "user_created"
	AuditActionOrderCreated          AuditAction = "order_created"
	AuditActionPaymentCompleted      AuditAction = "payment_completed"
	AuditActionPaymentFailed         AuditAction = "payment_failed"
	AuditActionFulfillmentDispatched AuditAction = "fulfillment_dispatched"
	AuditActionOrderStatusChanged    AuditAction = "order_status_changed"
	AuditActionTelcoCreated          AuditAction = "telco_created"
	AuditActionBundleCreated         AuditAction = "bundle_created"
	AuditActionBundleUpdated         AuditAction = "bundle_updated"
	AuditActionBundleDeactivated     AuditAction = "bundle_deactivated"
	AuditActionTelcoDeactivated      AuditAction = "telco_deactivated"
	AuditActionAuditSweep            AuditAction = "audit_sweep"
)

// RequestMeta carries actor and request metadata into audited mutations.
// It is passed explicitly; there is no ambient request context.
type RequestMeta struct {
	ActorID   string `json:"actor_id,omitempty"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}
