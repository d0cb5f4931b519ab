package men4u

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

const pathAdminHome = "/admin/admin_home"

// AdminHome carries the dashboard counters. The backend names them freely, so
// every numeric top-level field is kept.
type AdminHome struct {
	Counts map[string]int64 `json:"counts"`
}

func (c *Client) AdminHome(ctx context.Context, token string) (*AdminHome, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: pathAdminHome, token: token})
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := decodeObject(pathAdminHome, raw, &fields); err != nil {
		return nil, err
	}

	home := &AdminHome{Counts: map[string]int64{}}
	for key, value := range fields {
		value = bytes.TrimSpace(value)
		if len(value) == 0 {
			continue
		}
		if value[0] == '"' {
			var text string
			if err := json.Unmarshal(value, &text); err != nil {
				continue
			}
			if n, err := strconv.ParseInt(text, 10, 64); err == nil {
				home.Counts[key] = n
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(value, &n); err != nil {
			continue
		}
		if i, err := n.Int64(); err == nil {
			home.Counts[key] = i
		}
	}
	return home, nil
}
