package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

func (r *Repository) CreateWebhookEndpoint(ep *domain.WebhookEndpoint) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if ep.ID == "" {
		ep.ID = uuid.NewString()
	}

	query := `
		INSERT INTO webhook_endpoints (id, name, url, method, shared_secret, is_active, event_filter)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING version
	`

	args := []any{ep.ID, ep.Name, ep.URL, ep.Method, ep.SharedSecret, ep.IsActive, ep.EventFilter}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&ep.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetWebhookEndpointByID(id string) (*domain.WebhookEndpoint, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT name, url, method, shared_secret, is_active, event_filter, version
		FROM webhook_endpoints WHERE id = $1
	`

	ep := &domain.WebhookEndpoint{
		ID: id,
	}

	dst := []any{&ep.Name, &ep.URL, &ep.Method, &ep.SharedSecret, &ep.IsActive, &ep.EventFilter, &ep.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return ep, nil
}

func (r *Repository) GetAllWebhookEndpoints(activeOnly bool) ([]*domain.WebhookEndpoint, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, name, url, method, shared_secret, is_active, event_filter, version
		FROM webhook_endpoints
	`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	endpoints := make([]*domain.WebhookEndpoint, 0)
	for rows.Next() {
		ep := &domain.WebhookEndpoint{}
		dst := []any{&ep.ID, &ep.Name, &ep.URL, &ep.Method, &ep.SharedSecret, &ep.IsActive, &ep.EventFilter, &ep.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		endpoints = append(endpoints, ep)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return endpoints, nil
}

func (r *Repository) UpdateWebhookEndpoint(ep *domain.WebhookEndpoint) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE webhook_endpoints
		SET
			name = $1,
			url = $2,
			method = $3,
			shared_secret = $4,
			is_active = $5,
			event_filter = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	args := []any{ep.Name, ep.URL, ep.Method, ep.SharedSecret, ep.IsActive, ep.EventFilter, ep.ID, ep.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&ep.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteWebhookEndpoint(id string) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		DELETE FROM webhook_endpoints WHERE id = $1
	`

	res, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}

func (r *Repository) CreateIncomingRegistration(reg *domain.IncomingRegistration) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}

	query := `
		INSERT INTO incoming_registrations (id, name, shared_secret, is_active)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.dbpool.ExecContext(ctx, query, reg.ID, reg.Name, reg.SharedSecret, reg.IsActive); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetIncomingRegistrationByID(id string) (*domain.IncomingRegistration, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT name, shared_secret, is_active
		FROM incoming_registrations WHERE id = $1
	`

	reg := &domain.IncomingRegistration{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&reg.Name, &reg.SharedSecret, &reg.IsActive); err != nil {
		return nil, err
	}

	return reg, nil
}

func (r *Repository) GetAllIncomingRegistrations() ([]*domain.IncomingRegistration, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, name, shared_secret, is_active
		FROM incoming_registrations
		ORDER BY name
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]*domain.IncomingRegistration, 0)
	for rows.Next() {
		reg := &domain.IncomingRegistration{}
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.SharedSecret, &reg.IsActive); err != nil {
			return nil, err
		}
		registrations = append(registrations, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return registrations, nil
}

func (r *Repository) DeleteIncomingRegistration(id string) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		DELETE FROM incoming_registrations WHERE id = $1
	`

	res, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}

func (r *Repository) CreateAlertRule(rule *domain.AlertRule) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}

	query := `
		INSERT INTO alert_rules (id, name, is_active, trigger_type, incoming_registration_id, event_filter, action_type, endpoint_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING version
	`

	args := []any{rule.ID, rule.Name, rule.IsActive, rule.TriggerType, rule.IncomingRegistrationID, rule.EventFilter, rule.ActionType, rule.EndpointID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&rule.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAlertRuleByID(id string) (*domain.AlertRule, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT name, is_active, trigger_type, incoming_registration_id, event_filter, action_type, endpoint_id, version
		FROM alert_rules WHERE id = $1
	`

	rule := &domain.AlertRule{
		ID: id,
	}

	dst := []any{&rule.Name, &rule.IsActive, &rule.TriggerType, &rule.IncomingRegistrationID, &rule.EventFilter, &rule.ActionType, &rule.EndpointID, &rule.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return rule, nil
}

func (r *Repository) GetAllAlertRules() ([]*domain.AlertRule, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, name, is_active, trigger_type, incoming_registration_id, event_filter, action_type, endpoint_id, version
		FROM alert_rules
		ORDER BY name
	`

	return r.scanAlertRules(ctx, query)
}

// GetActiveAlertRulesByRegistrationID returns active rules listening on one
// incoming registration.
func (r *Repository) GetActiveAlertRulesByRegistrationID(registrationID string) ([]*domain.AlertRule, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, name, is_active, trigger_type, incoming_registration_id, event_filter, action_type, endpoint_id, version
		FROM alert_rules
		WHERE is_active AND incoming_registration_id = $1
		ORDER BY name
	`

	return r.scanAlertRules(ctx, query, registrationID)
}

func (r *Repository) UpdateAlertRule(rule *domain.AlertRule) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE alert_rules
		SET
			name = $1,
			is_active = $2,
			trigger_type = $3,
			incoming_registration_id = $4,
			event_filter = $5,
			action_type = $6,
			endpoint_id = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`

	args := []any{rule.Name, rule.IsActive, rule.TriggerType, rule.IncomingRegistrationID, rule.EventFilter, rule.ActionType, rule.EndpointID, rule.ID, rule.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&rule.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteAlertRule(id string) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		DELETE FROM alert_rules WHERE id = $1
	`

	res, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}

func (r *Repository) scanAlertRules(ctx context.Context, query string, args ...any) ([]*domain.AlertRule, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]*domain.AlertRule, 0)
	for rows.Next() {
		rule := &domain.AlertRule{}
		dst := []any{&rule.ID, &rule.Name, &rule.IsActive, &rule.TriggerType, &rule.IncomingRegistrationID, &rule.EventFilter, &rule.ActionType, &rule.EndpointID, &rule.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rules, nil
}
