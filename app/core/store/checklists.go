package store

import (
	"context"

	"github.com/tidwall/sjson"
)

// ChecklistItemSpec is one line of a checklist template to store.
type ChecklistItemSpec struct {
	Title         string
	XPReward      int
	RequiresPhoto bool
}

// CreateChecklistTemplate stores the template row and then its items
// one by one. Item inserts after the first failure are abandoned; the
// template row is left in place.
func (c *Client) CreateChecklistTemplate(ctx context.Context, workspaceID, name, checklistType string, items []ChecklistItemSpec) (string, error) {
	body, _ := sjson.SetBytes(nil, "workspace_id", workspaceID)
	body, _ = sjson.SetBytes(body, "name", name)
	body, _ = sjson.SetBytes(body, "type", checklistType)
	row, err := c.insert(ctx, "checklist_templates", body)
	if err != nil {
		return "", err
	}
	templateID := row.Get("id").String()

	for i, item := range items {
		body, _ := sjson.SetBytes(nil, "template_id", templateID)
		body, _ = sjson.SetBytes(body, "title", item.Title)
		body, _ = sjson.SetBytes(body, "xp_reward", item.XPReward)
		body, _ = sjson.SetBytes(body, "requires_photo", item.RequiresPhoto)
		body, _ = sjson.SetBytes(body, "position", i+1)
		if _, err := c.insert(ctx, "checklist_items", body); err != nil {
			return templateID, err
		}
	}
	return templateID, nil
}
