package foundryapi

import (
	"context"
	"net/http"
	"net/url"
)

// GetProgress lists the pending department assignments of username.
func (c *Client) GetProgress(ctx context.Context, username string) ([]Progress, error) {
	var items []Progress
	q := url.Values{"username": {username}}
	if err := c.doRequest(ctx, http.MethodGet, "/api/department-progress", q, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateDepartment advances a trial to req.NextDepartmentID.
func (c *Client) UpdateDepartment(ctx context.Context, req UpdateDepartmentRequest) error {
	return c.doRequest(ctx, http.MethodPut, "/api/department-progress/update-department", nil, req, nil)
}

// UpdateDepartmentRole completes the role-level step of the current
// department.
func (c *Client) UpdateDepartmentRole(ctx context.Context, req UpdateDepartmentRoleRequest) error {
	return c.doRequest(ctx, http.MethodPut, "/api/department-progress/update-role", nil, req, nil)
}
