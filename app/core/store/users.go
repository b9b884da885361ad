package store

import (
	"context"
	"net/url"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func userFromRow(row gjson.Result) User {
	return User{
		ID:          row.Get("id").String(),
		TelegramID:  row.Get("telegram_id").String(),
		Username:    row.Get("username").String(),
		TotalXP:     int(row.Get("total_xp").Int()),
		WorkspaceID: row.Get("workspace_id").String(),
	}
}

// UserByTelegramID returns the user record keyed by the chat identity,
// or ErrNotFound for someone the bot has never seen.
func (c *Client) UserByTelegramID(ctx context.Context, telegramID string) (User, error) {
	q := url.Values{}
	q.Set("select", "id,telegram_id,username,total_xp,workspace_id")
	q.Set("telegram_id", eq(telegramID))
	row, err := c.selectOne(ctx, "users", q)
	if err != nil {
		return User{}, err
	}
	return userFromRow(row), nil
}

// EnsureUser registers a first-time user and returns the record either
// way. Reports whether the record was created by this call.
func (c *Client) EnsureUser(ctx context.Context, telegramID, username string) (User, bool, error) {
	u, err := c.UserByTelegramID(ctx, telegramID)
	if err == nil {
		return u, false, nil
	}
	if err != ErrNotFound {
		return User{}, false, err
	}

	body, _ := sjson.SetBytes(nil, "telegram_id", telegramID)
	body, _ = sjson.SetBytes(body, "username", username)
	row, err := c.insert(ctx, "users", body)
	if err != nil {
		return User{}, false, err
	}
	return userFromRow(row), true, nil
}

// UserByUsername matches the stored username exactly, without the "@".
func (c *Client) UserByUsername(ctx context.Context, username string) (User, error) {
	q := url.Values{}
	q.Set("select", "id,telegram_id,username,total_xp,workspace_id")
	q.Set("username", eq(username))
	row, err := c.selectOne(ctx, "users", q)
	if err != nil {
		return User{}, err
	}
	return userFromRow(row), nil
}

func (c *Client) UsersByWorkspace(ctx context.Context, workspaceID string) ([]User, error) {
	q := url.Values{}
	q.Set("select", "id,telegram_id,username,total_xp,workspace_id")
	q.Set("workspace_id", eq(workspaceID))
	q.Set("order", "username.asc")
	rows, err := c.selectRows(ctx, "users", q)
	if err != nil {
		return nil, err
	}
	var users []User
	for _, row := range rows.Array() {
		users = append(users, userFromRow(row))
	}
	return users, nil
}

func (c *Client) SetUserWorkspace(ctx context.Context, userID, workspaceID string) error {
	q := url.Values{}
	q.Set("id", eq(userID))
	body, _ := sjson.SetBytes(nil, "workspace_id", workspaceID)
	return c.update(ctx, "users", q, body)
}

func (c *Client) SetUsername(ctx context.Context, userID, username string) error {
	q := url.Values{}
	q.Set("id", eq(userID))
	body, _ := sjson.SetBytes(nil, "username", username)
	return c.update(ctx, "users", q, body)
}
