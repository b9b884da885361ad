package store

import (
	"context"
	"net/url"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func issueFromRow(row gjson.Result) Issue {
	return Issue{
		ID:          row.Get("id").String(),
		Category:    row.Get("category").String(),
		Description: row.Get("description").String(),
		PhotoURL:    row.Get("photo_url").String(),
		Status:      row.Get("status").String(),
		ReportedBy:  row.Get("reported_by").String(),
		CreatedAt:   parseTime(row.Get("created_at")),
	}
}

// CreateIssue records a problem report and returns its id. workspaceID
// and photoURL may be empty; both land as null, never as an empty
// string a uuid column would reject.
func (c *Client) CreateIssue(ctx context.Context, reporterID, workspaceID, category, description, photoURL string) (string, error) {
	body, _ := sjson.SetBytes(nil, "reported_by", reporterID)
	body, _ = sjson.SetBytes(body, "category", category)
	body, _ = sjson.SetBytes(body, "description", description)
	body, _ = sjson.SetBytes(body, "status", IssueNew)
	if workspaceID == "" {
		body, _ = sjson.SetBytes(body, "workspace_id", nil)
	} else {
		body, _ = sjson.SetBytes(body, "workspace_id", workspaceID)
	}
	if photoURL == "" {
		body, _ = sjson.SetBytes(body, "photo_url", nil)
	} else {
		body, _ = sjson.SetBytes(body, "photo_url", photoURL)
	}
	row, err := c.insert(ctx, "issues", body)
	if err != nil {
		return "", err
	}
	return row.Get("id").String(), nil
}

// WorkspaceIssues lists issues reported by the workspace's members,
// newest first. The issue rows carry no workspace column of their own
// on older deployments, so membership is resolved through reporters.
func (c *Client) WorkspaceIssues(ctx context.Context, workspaceID string) ([]Issue, error) {
	q := url.Values{}
	q.Set("select", "id,category,description,photo_url,status,reported_by,created_at")
	q.Set("status", in(IssueNew, IssueInProgress, IssueResolved))
	q.Set("order", "created_at.desc")
	rows, err := c.selectRows(ctx, "issues", q)
	if err != nil {
		return nil, err
	}

	members, err := c.UsersByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	memberIDs := make(map[string]bool, len(members))
	for _, m := range members {
		memberIDs[m.ID] = true
	}

	var issues []Issue
	for _, row := range rows.Array() {
		issue := issueFromRow(row)
		if memberIDs[issue.ReportedBy] {
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

func (c *Client) SetIssueStatus(ctx context.Context, issueID, status string) error {
	q := url.Values{}
	q.Set("id", eq(issueID))
	body, _ := sjson.SetBytes(nil, "status", status)
	return c.update(ctx, "issues", q, body)
}
