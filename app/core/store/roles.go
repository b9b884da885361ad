package store

import (
	"context"
	"net/url"

	"github.com/tidwall/sjson"
)

// ListRoles returns every role ordered by access level, highest first.
func (c *Client) ListRoles(ctx context.Context) ([]Role, error) {
	q := url.Values{}
	q.Set("select", "id,name,access_level")
	q.Set("order", "access_level.desc")
	rows, err := c.selectRows(ctx, "roles", q)
	if err != nil {
		return nil, err
	}
	var roles []Role
	for _, row := range rows.Array() {
		roles = append(roles, Role{
			ID:          row.Get("id").Int(),
			Name:        row.Get("name").String(),
			AccessLevel: int(row.Get("access_level").Int()),
		})
	}
	return roles, nil
}

// RoleByName matches the role name exactly, or ErrNotFound.
func (c *Client) RoleByName(ctx context.Context, name string) (Role, error) {
	q := url.Values{}
	q.Set("select", "id,name,access_level")
	q.Set("name", eq(name))
	row, err := c.selectOne(ctx, "roles", q)
	if err != nil {
		return Role{}, err
	}
	return Role{
		ID:          row.Get("id").Int(),
		Name:        row.Get("name").String(),
		AccessLevel: int(row.Get("access_level").Int()),
	}, nil
}

// AssignRole links the user to the role, merging on the pair so a
// repeat assignment is a no-op.
func (c *Client) AssignRole(ctx context.Context, userID string, roleID int64) error {
	body, _ := sjson.SetBytes(nil, "user_id", userID)
	body, _ = sjson.SetBytes(body, "role_id", roleID)
	return c.upsert(ctx, "user_roles", "user_id,role_id", body)
}

// UserAccessLevel returns the highest access level among the user's
// roles, zero when the user has none.
func (c *Client) UserAccessLevel(ctx context.Context, userID string) (int, error) {
	q := url.Values{}
	q.Set("select", "roles(name,access_level)")
	q.Set("user_id", eq(userID))
	rows, err := c.selectRows(ctx, "user_roles", q)
	if err != nil {
		return 0, err
	}
	level := 0
	for _, row := range rows.Array() {
		if l := int(row.Get("roles.access_level").Int()); l > level {
			level = l
		}
	}
	return level, nil
}

// UserRoleName returns the name of one of the user's roles, empty when
// the user has none.
func (c *Client) UserRoleName(ctx context.Context, userID string) (string, error) {
	q := url.Values{}
	q.Set("select", "roles(name)")
	q.Set("user_id", eq(userID))
	row, err := c.selectOne(ctx, "user_roles", q)
	if err == ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.Get("roles.name").String(), nil
}
