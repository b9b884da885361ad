package store

import (
	"context"
	"net/url"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func templateFromRow(row gjson.Result) TaskTemplate {
	return TaskTemplate{
		ID:                   row.Get("id").String(),
		WorkspaceID:          row.Get("workspace_id").String(),
		Name:                 row.Get("name").String(),
		Title:                row.Get("title").String(),
		Description:          row.Get("description").String(),
		DefaultDeadlineHours: int(row.Get("default_deadline_hours").Int()),
	}
}

func (c *Client) CreateTaskTemplate(ctx context.Context, workspaceID, name, title, description string, defaultDeadlineHours int) (TaskTemplate, error) {
	body, _ := sjson.SetBytes(nil, "workspace_id", workspaceID)
	body, _ = sjson.SetBytes(body, "name", name)
	body, _ = sjson.SetBytes(body, "title", title)
	body, _ = sjson.SetBytes(body, "description", description)
	body, _ = sjson.SetBytes(body, "default_deadline_hours", defaultDeadlineHours)
	row, err := c.insert(ctx, "task_templates", body)
	if err != nil {
		return TaskTemplate{}, err
	}
	return templateFromRow(row), nil
}

func (c *Client) TaskTemplates(ctx context.Context, workspaceID string) ([]TaskTemplate, error) {
	q := url.Values{}
	q.Set("select", "id,workspace_id,name,title,description,default_deadline_hours")
	q.Set("workspace_id", eq(workspaceID))
	q.Set("order", "name.asc")
	rows, err := c.selectRows(ctx, "task_templates", q)
	if err != nil {
		return nil, err
	}
	var templates []TaskTemplate
	for _, row := range rows.Array() {
		templates = append(templates, templateFromRow(row))
	}
	return templates, nil
}

func (c *Client) TaskTemplateByID(ctx context.Context, templateID string) (TaskTemplate, error) {
	q := url.Values{}
	q.Set("select", "id,workspace_id,name,title,description,default_deadline_hours")
	q.Set("id", eq(templateID))
	row, err := c.selectOne(ctx, "task_templates", q)
	if err != nil {
		return TaskTemplate{}, err
	}
	return templateFromRow(row), nil
}

func (c *Client) DeleteTaskTemplate(ctx context.Context, templateID string) error {
	q := url.Values{}
	q.Set("id", eq(templateID))
	return c.delete(ctx, "task_templates", q)
}
