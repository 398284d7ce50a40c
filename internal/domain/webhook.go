package domain

type WebhookEndpoint struct {
	ID           string  `json:"endpoint_id"`
	Name         string  `json:"name"`
	URL          string  `json:"url"`
	Method       string  `json:"method"` // GET or POST
	SharedSecret *string `json:"shared_secret"`
	IsActive     bool    `json:"is_active"`
	EventFilter  *string `json:"event_filter"`
	Version      int32   `json:"-"`
}

type IncomingRegistration struct {
	ID           string  `json:"registration_id"`
	Name         string  `json:"name"`
	SharedSecret *string `json:"shared_secret"`
	IsActive     bool    `json:"is_active"`
}

type AlertRule struct {
	ID                     string  `json:"rule_id"`
	Name                   string  `json:"name"`
	IsActive               bool    `json:"is_active"`
	TriggerType            string  `json:"trigger_type"` // incoming_webhook
	IncomingRegistrationID *string `json:"incoming_registration_id"`
	EventFilter            *string `json:"event_filter"`
	ActionType             string  `json:"action_type"` // webhook
	EndpointID             *string `json:"endpoint_id"`
	Version                int32   `json:"-"`
}
