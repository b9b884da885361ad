package store

import (
	"context"
	"math/rand"
	"net/url"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// inviteAlphabet omits 0/O/1/I to keep codes readable over chat.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const inviteCodeLength = 6

func generateInviteCode() string {
	code := make([]byte, inviteCodeLength)
	for i := range code {
		code[i] = inviteAlphabet[rand.Intn(len(inviteAlphabet))]
	}
	return string(code)
}

func workspaceFromRow(row gjson.Result) Workspace {
	return Workspace{
		ID:         row.Get("id").String(),
		Name:       row.Get("name").String(),
		InviteCode: row.Get("invite_code").String(),
		Timezone:   row.Get("timezone").String(),
		CreatedAt:  parseTime(row.Get("created_at")),
	}
}

// CreateWorkspace inserts the workspace with a fresh invite code. The
// code is regenerated up to five times if it collides with an existing
// one; after that the last candidate is used regardless.
func (c *Client) CreateWorkspace(ctx context.Context, name, timezone string) (Workspace, error) {
	code := generateInviteCode()
	for i := 0; i < 5; i++ {
		if _, err := c.WorkspaceByInviteCode(ctx, code); err == ErrNotFound {
			break
		}
		code = generateInviteCode()
	}

	body, _ := sjson.SetBytes(nil, "name", name)
	body, _ = sjson.SetBytes(body, "invite_code", code)
	body, _ = sjson.SetBytes(body, "timezone", timezone)
	row, err := c.insert(ctx, "workspaces", body)
	if err != nil {
		return Workspace{}, err
	}
	return workspaceFromRow(row), nil
}

func (c *Client) WorkspaceByID(ctx context.Context, id string) (Workspace, error) {
	q := url.Values{}
	q.Set("select", "id,name,invite_code,timezone,created_at")
	q.Set("id", eq(id))
	row, err := c.selectOne(ctx, "workspaces", q)
	if err != nil {
		return Workspace{}, err
	}
	return workspaceFromRow(row), nil
}

func (c *Client) WorkspaceByInviteCode(ctx context.Context, code string) (Workspace, error) {
	q := url.Values{}
	q.Set("select", "id,name,invite_code,timezone,created_at")
	q.Set("invite_code", eq(code))
	row, err := c.selectOne(ctx, "workspaces", q)
	if err != nil {
		return Workspace{}, err
	}
	return workspaceFromRow(row), nil
}
