package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tallysheet/tally/internal/model"
)

const templatesPath = "/rest/v1/entry_templates"

// ListTemplates returns the user's entry templates ordered by name.
func (c *Client) ListTemplates(ctx context.Context, userID string) ([]model.Template, error) {
	q := url.Values{}
	q.Set("user_id", "eq."+userID)
	q.Set("order", "name.asc")

	var templates []model.Template
	if err := c.do(ctx, http.MethodGet, templatesPath, q, nil, &templates); err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	return templates, nil
}

// GetTemplate returns a single template by ID, scoped to the user.
func (c *Client) GetTemplate(ctx context.Context, userID, id string) (model.Template, error) {
	q := url.Values{}
	q.Set("user_id", "eq."+userID)
	q.Set("id", "eq."+id)

	var templates []model.Template
	if err := c.do(ctx, http.MethodGet, templatesPath, q, nil, &templates); err != nil {
		return model.Template{}, fmt.Errorf("fetching template %s: %w", id, err)
	}
	if len(templates) == 0 {
		return model.Template{}, ErrNotFound
	}
	return templates[0], nil
}

// CreateTemplate stores a new template and returns it with the
// server-assigned ID.
func (c *Client) CreateTemplate(ctx context.Context, t model.Template) (model.Template, error) {
	var created []model.Template
	if err := c.do(ctx, http.MethodPost, templatesPath, nil, t, &created); err != nil {
		return model.Template{}, fmt.Errorf("creating template: %w", err)
	}
	if len(created) == 0 {
		return model.Template{}, fmt.Errorf("creating template: empty response")
	}
	return created[0], nil
}

// DeleteTemplate removes the template with the given ID.
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	if err := c.do(ctx, http.MethodDelete, templatesPath, q, nil, nil); err != nil {
		return fmt.Errorf("deleting template %s: %w", id, err)
	}
	return nil
}
