package garmin

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// SocialProfile is the public profile of the signed-in user.
type SocialProfile struct {
	ID          int64  `json:"id"`
	ProfileID   int64  `json:"profileId"`
	DisplayName string `json:"displayName"`
	FullName    string `json:"fullName"`
	UserName    string `json:"userName"`
	Location    string `json:"location,omitempty"`
}

// Name picks the label shown to an operator: display name, then user name.
func (p SocialProfile) Name() string {
	switch {
	case p.DisplayName != "":
		return p.DisplayName
	case p.UserName != "":
		return p.UserName
	default:
		return "Unknown"
	}
}

// UserProfile fetches the social profile of the authenticated account.
func (c *Client) UserProfile(ctx context.Context) (*SocialProfile, error) {
	if c.api == nil {
		return nil, ErrNotAuthenticated
	}
	var profile SocialProfile
	resp, err := c.api.R().SetContext(ctx).
		SetResult(&profile).
		Get("/userprofile-service/socialProfile")
	if err := classify("social profile", statusOf(resp), bodyOf(resp), err); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FullName is the cheapest authenticated call available and doubles as the
// session liveness probe.
func (c *Client) FullName(ctx context.Context) (string, error) {
	profile, err := c.UserProfile(ctx)
	if err != nil {
		return "", fmt.Errorf("full name: %w", err)
	}
	return profile.FullName, nil
}

func statusOf(resp *resty.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode()
}

func bodyOf(resp *resty.Response) string {
	if resp == nil {
		return ""
	}
	return resp.String()
}
