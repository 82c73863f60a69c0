// Package garmintest provides an in-process fake of the Garmin SSO, token and
// profile endpoints for tests.
package garmintest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fitsync/fitsync/client/garmin"
)

const (
	csrfToken     = "csrf-7f3a"
	serviceTicket = "ST-0123456-fake-cas"
	TokenPath     = "/di-oauth2-service/oauth/token"
)

// Server is a fake Garmin backend. Exported fields may be changed between
// requests; counters are guarded by the embedded mutex.
type Server struct {
	*httptest.Server

	Email        string
	Password     string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	Profile      garmin.SocialProfile

	// RejectTokens makes the profile endpoint answer 401 for every token.
	RejectTokens bool
	// RequireMFA makes a correct password land on the MFA challenge page.
	RequireMFA bool

	mu           sync.Mutex
	logins       int
	refreshes    int
	profileCalls int
	refreshed    string
}

// NewServer starts a fake that accepts user@example.com / hunter2.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		Email:        "user@example.com",
		Password:     "hunter2",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresIn:    3600,
		Profile: garmin.SocialProfile{
			ID:          42,
			DisplayName: "runner42",
			FullName:    "Test Runner",
			UserName:    "runner42@example.com",
		},
		refreshed: "access-refreshed",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/sso/embed", s.embed)
	mux.HandleFunc("/sso/signin", s.signin)
	mux.HandleFunc(TokenPath, s.token)
	mux.HandleFunc("/userprofile-service/socialProfile", s.profile)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Options points a garmin.Client at this server.
func (s *Server) Options() []garmin.Option {
	return []garmin.Option{
		garmin.WithSSOURL(s.URL),
		garmin.WithAPIURL(s.URL),
		garmin.WithTokenURL(s.URL + TokenPath),
	}
}

// Logins is the number of successful credential sign-ins.
func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// Refreshes is the number of refresh_token grants served.
func (s *Server) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

// ProfileCalls is the number of profile requests, authorised or not.
func (s *Server) ProfileCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileCalls
}

func (s *Server) embed(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "GARMIN-SSO", Value: "1", Path: "/"})
	_, _ = fmt.Fprint(w, "<html><title>GARMIN SSO</title></html>")
}

func (s *Server) signin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		_, _ = fmt.Fprintf(w, `<html><title>GARMIN Authentication Application</title>
<form><input type="hidden" name="_csrf" value="%s" /></form></html>`, csrfToken)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("_csrf") != csrfToken {
			http.Error(w, "csrf mismatch", http.StatusForbidden)
			return
		}
		if r.PostForm.Get("username") != s.Email || r.PostForm.Get("password") != s.Password {
			_, _ = fmt.Fprint(w, "<html><title>GARMIN Authentication Application</title>Invalid sign in.</html>")
			return
		}
		if s.RequireMFA {
			_, _ = fmt.Fprint(w, "<html><title>GARMIN > MFA Challenge</title></html>")
			return
		}
		s.mu.Lock()
		s.logins++
		s.mu.Unlock()
		_, _ = fmt.Fprintf(w, `<html><title>Success</title>
<script>var response_url = "%s/sso/embed?ticket=%s";</script></html>`, s.URL, serviceTicket)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var access string
	switch r.PostForm.Get("grant_type") {
	case "refresh_token":
		if r.PostForm.Get("refresh_token") != s.RefreshToken {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprint(w, `{"error":"invalid_grant"}`)
			return
		}
		s.mu.Lock()
		s.refreshes++
		s.mu.Unlock()
		access = s.refreshed
	default:
		if !strings.HasSuffix(r.PostForm.Get("grant_type"), "/service_ticket") || r.PostForm.Get("service_ticket") != serviceTicket {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		access = s.AccessToken
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  access,
		"token_type":    "Bearer",
		"refresh_token": s.RefreshToken,
		"expires_in":    s.ExpiresIn,
	})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.profileCalls++
	s.mu.Unlock()

	auth := r.Header.Get("Authorization")
	if s.RejectTokens || (auth != "Bearer "+s.AccessToken && auth != "Bearer "+s.refreshed) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Profile)
}
