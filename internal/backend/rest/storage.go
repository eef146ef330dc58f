package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

type uploadResponse struct {
	Bucket    string `json:"bucket"`
	Name      string `json:"name"`
	PublicURL string `json:"public_url"`
}

// Upload stores an object and returns its public URL. Re-uploading under
// the same name replaces the object.
func (c *Client) Upload(ctx context.Context, bucket, name string, data []byte) (string, error) {
	path := fmt.Sprintf("/storage/%s/%s", url.PathEscape(bucket), url.PathEscape(name))

	respBody, err := c.doRequest(ctx, "POST", path, data, "application/octet-stream")
	if err != nil {
		return "", err
	}

	var resp uploadResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", err
	}
	return resp.PublicURL, nil
}

// PublicURL returns the URL an object is publicly served under.
func (c *Client) PublicURL(bucket, name string) string {
	return fmt.Sprintf("%s/storage/%s/%s", c.BaseURL, url.PathEscape(bucket), url.PathEscape(name))
}
