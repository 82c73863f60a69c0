package garmin

import (
	"context"
	"fmt"
	"regexp"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

const serviceTicketGrant = "https://connectapi.garmin.com/di-oauth2-service/oauth/grant/service_ticket"

var (
	csrfRe   = regexp.MustCompile(`name="_csrf"\s+value="(.+?)"`)
	titleRe  = regexp.MustCompile(`<title>(.+?)</title>`)
	ticketRe = regexp.MustCompile(`embed\?ticket=([^"]+)"`)
	mfaRe    = regexp.MustCompile(`(?i)mfa`)
)

// Login signs in with email and password and stores the resulting tokens on
// the client. Any previous tokens are replaced only on success.
func (c *Client) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password required", ErrAuthentication)
	}

	ticket, err := c.serviceTicket(ctx, email, password)
	if err != nil {
		return err
	}
	tok, err := c.exchangeTicket(ctx, ticket)
	if err != nil {
		return err
	}
	c.bind(tok)
	return nil
}

func (c *Client) embedURL() string { return c.ssoURL + "/sso/embed" }

// serviceTicket drives the embedded SSO widget: load it for cookies, fetch
// the sign-in form for its CSRF token, post the credentials and scrape the
// ticket from the success page.
func (c *Client) serviceTicket(ctx context.Context, email, password string) (string, error) {
	embed := c.embedURL()

	resp, err := c.sso.R().SetContext(ctx).
		SetQueryParams(map[string]string{
			"id":          "gauth-widget",
			"embedWidget": "true",
			"gauthHost":   c.ssoURL + "/sso",
		}).
		Get("/sso/embed")
	if err := classify("sso embed", statusOf(resp), bodyOf(resp), err); err != nil {
		return "", err
	}

	signinParams := map[string]string{
		"id":                              "gauth-widget",
		"embedWidget":                     "true",
		"gauthHost":                       embed,
		"service":                         embed,
		"source":                          embed,
		"redirectAfterAccountLoginUrl":    embed,
		"redirectAfterAccountCreationUrl": embed,
	}
	resp, err = c.sso.R().SetContext(ctx).SetQueryParams(signinParams).Get("/sso/signin")
	if err := classify("sso signin form", statusOf(resp), bodyOf(resp), err); err != nil {
		return "", err
	}
	csrf := firstGroup(csrfRe, resp.String())
	if csrf == "" {
		return "", fmt.Errorf("sso signin form: csrf token not found")
	}

	resp, err = c.sso.R().SetContext(ctx).
		SetQueryParams(signinParams).
		SetHeader("Referer", c.ssoURL+"/sso/signin").
		SetFormData(map[string]string{
			"username": email,
			"password": password,
			"embed":    "true",
			"_csrf":    csrf,
		}).
		Post("/sso/signin")
	if err := classify("sso signin", statusOf(resp), bodyOf(resp), err); err != nil {
		return "", err
	}

	page := resp.String()
	switch title := firstGroup(titleRe, page); title {
	case "Success":
	case "":
		return "", fmt.Errorf("%w: unexpected sign-in response", ErrAuthentication)
	default:
		if mfaRe.MatchString(title) {
			return "", ErrMFARequired
		}
		return "", fmt.Errorf("%w: sign-in returned %q", ErrAuthentication, title)
	}

	ticket := firstGroup(ticketRe, page)
	if ticket == "" {
		return "", fmt.Errorf("%w: service ticket not found", ErrAuthentication)
	}
	return ticket, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// exchangeTicket trades an SSO service ticket for an OAuth2 token.
func (c *Client) exchangeTicket(ctx context.Context, ticket string) (*oauth2.Token, error) {
	resp, err := c.sso.R().SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":     serviceTicketGrant,
			"client_id":      c.clientID,
			"service_ticket": ticket,
			"service_url":    c.embedURL(),
		}).
		Post(c.tokenURL)
	if err := classify("ticket exchange", statusOf(resp), bodyOf(resp), err); err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp.Body(), &tr); err != nil {
		return nil, fmt.Errorf("ticket exchange: decode token: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: ticket exchange returned no access token", ErrAuthentication)
	}

	tok := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: tr.RefreshToken,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tok, nil
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
