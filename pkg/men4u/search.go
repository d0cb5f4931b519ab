package men4u

import (
	"context"
	"net/http"

	"github.com/angelmondragon/men4u-admin/pkg/types"
)

const pathSearch = "/admin/search"

// SearchRequest looks users up by name or mobile, optionally limited to one role.
type SearchRequest struct {
	Search string `json:"search"`
	Value  string `json:"value"`
	Role   string `json:"role,omitempty"`
}

// SearchHit is one matching user.
type SearchHit struct {
	UserID   types.ID   `json:"user_id"`
	Name     string     `json:"name"`
	Mobile   string     `json:"mobile"`
	Email    string     `json:"email,omitempty"`
	Role     string     `json:"role"`
	IsActive types.Flag `json:"is_active"`
}

func (c *Client) Search(ctx context.Context, token string, req SearchRequest) ([]SearchHit, error) {
	raw, err := c.do(ctx, request{method: http.MethodPost, path: pathSearch, token: token, body: req})
	if err != nil {
		return nil, err
	}
	return decodeList[SearchHit](pathSearch, raw, "data", "results", "users")
}
