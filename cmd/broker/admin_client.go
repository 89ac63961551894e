package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
)

// adminClient talks to the admin API of a running broker.
type adminClient struct {
	http *http.Client
	base string
}

func newAdminClient(socketPath string) *adminClient {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
	}
	return &adminClient{http: &http.Client{Transport: transport}, base: "http://broker"}
}

func (c *adminClient) do(ctx context.Context, method, path string, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("broker admin API unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var body struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &body) == nil && body.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, body.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %s", method, path, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *adminClient) Permissions(ctx context.Context) (*PermissionsView, error) {
	var view PermissionsView
	if err := c.do(ctx, http.MethodGet, "/permissions", http.StatusOK, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *adminClient) Decide(ctx context.Context, identity string, granted bool) (*DecisionView, error) {
	action := "deny"
	if granted {
		action = "grant"
	}
	var view DecisionView
	path := "/permissions/" + url.PathEscape(identity) + "/" + action
	if err := c.do(ctx, http.MethodPost, path, http.StatusOK, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *adminClient) Revoke(ctx context.Context, identity string) error {
	return c.do(ctx, http.MethodDelete, "/permissions/"+url.PathEscape(identity), http.StatusNoContent, nil)
}
