package model

import "time"

// CRM object types
const (
	ObjectContacts  = "contacts"
	ObjectCompanies = "companies"
	ObjectDeals     = "deals"
)

// RemoteObject is a CRM record (contact, company or deal)
type RemoteObject struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	Archived   bool              `json:"archived"`
}

// Property returns a property value or empty string
func (o *RemoteObject) Property(name string) string {
	if o.Properties == nil {
		return ""
	}
	return o.Properties[name]
}

// AccountInfo is the portal metadata returned by the CRM
type AccountInfo struct {
	PortalID    int64  `json:"portalId"`
	CompanyName string `json:"companyName"`
}

// WebhookEvent is a CRM change notification
type WebhookEvent struct {
	EventType     string `json:"eventType"`
	ObjectID      int64  `json:"objectId"`
	PropertyName  string `json:"propertyName,omitempty"`
	PropertyValue string `json:"propertyValue,omitempty"`
	PortalID      int64  `json:"portalId,omitempty"`
}

// TokenGrant is the result of an authorization-code or refresh grant
type TokenGrant struct {
	AccessToken  string `masq:"secret"`
	RefreshToken string `masq:"secret"`
	ExpiresAt    time.Time
}
