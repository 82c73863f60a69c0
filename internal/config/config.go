// Package config loads tool configuration from the environment.
//
// Values come from process environment variables, optionally seeded from a
// .env file in the working directory. Each tool has its own prefix:
// NOTION_* for the duplicate cleanup and GARMIN_* for the session manager.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// ErrInvalid is matched by every configuration failure.
var ErrInvalid = errors.New("invalid configuration")

// Error lists the variables that were missing or malformed.
type Error struct {
	Missing []string
	Invalid []string
	Err     error
}

func (e *Error) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	if len(parts) == 0 && e.Err != nil {
		return e.Err.Error()
	}
	return strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool { return target == ErrInvalid }

func (e *Error) Unwrap() error { return e.Err }

// Common holds settings shared by both tools.
type Common struct {
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	MetricsTextfile string `envconfig:"METRICS_TEXTFILE"`
}

// Notion configures the duplicate cleanup.
type Notion struct {
	Token       string        `envconfig:"TOKEN" validate:"required"`
	DatabaseID  string        `envconfig:"DB_ID" validate:"required,notion_id"`
	BaseURL     string        `envconfig:"BASE_URL" default:"https://api.notion.com" validate:"required,url"`
	Version     string        `envconfig:"VERSION" default:"2022-06-28"`
	PageSize    int           `envconfig:"PAGE_SIZE" default:"100" validate:"min=1,max=100"`
	MaxRetries  int           `envconfig:"MAX_RETRIES" default:"0" validate:"min=0,max=10"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s" validate:"gt=0"`
}

// Garmin configures the session manager. Email and Password are only needed
// when a fresh login happens, so they are not validated here.
type Garmin struct {
	Email       string        `envconfig:"EMAIL"`
	Password    string        `envconfig:"PASSWORD"`
	Session     string        `envconfig:"SESSION"`
	SessionDir  string        `envconfig:"SESSION_DIR" default:".garmin_session" validate:"required"`
	SSOURL      string        `envconfig:"SSO_URL" default:"https://sso.garmin.com" validate:"required,url"`
	APIURL      string        `envconfig:"API_URL" default:"https://connectapi.garmin.com" validate:"required,url"`
	TokenURL    string        `envconfig:"TOKEN_URL" default:"https://diauth.garmin.com/di-oauth2-service/oauth/token" validate:"required,url"`
	ClientID    string        `envconfig:"CLIENT_ID"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s" validate:"gt=0"`
}

// LoadDotEnv reads .env from the working directory if one exists. Variables
// already set in the environment win.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &Error{Err: fmt.Errorf("load .env: %w", err)}
	}
	return nil
}

// LoadCommon reads LOG_LEVEL and METRICS_TEXTFILE.
func LoadCommon() (*Common, error) {
	var cfg Common
	if err := load("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadNotion reads NOTION_* variables.
func LoadNotion() (*Notion, error) {
	var cfg Notion
	if err := load("NOTION", &cfg); err != nil {
		return nil, err
	}
	log.Debug().
		Str("database_id", cfg.DatabaseID).
		Str("base_url", cfg.BaseURL).
		Int("page_size", cfg.PageSize).
		Int("max_retries", cfg.MaxRetries).
		Msg("notion configuration loaded")
	return &cfg, nil
}

// LoadGarmin reads GARMIN_* variables.
func LoadGarmin() (*Garmin, error) {
	var cfg Garmin
	if err := load("GARMIN", &cfg); err != nil {
		return nil, err
	}
	log.Debug().
		Str("session_dir", cfg.SessionDir).
		Bool("email_present", cfg.Email != "").
		Bool("password_present", cfg.Password != "").
		Bool("session_present", cfg.Session != "").
		Msg("garmin configuration loaded")
	return &cfg, nil
}

func load(prefix string, target any) error {
	if err := envconfig.Process(prefix, target); err != nil {
		return &Error{Err: fmt.Errorf("failed to process environment variables: %w", err)}
	}
	return validate(prefix, target)
}

var validate = newValidator()

func newValidator() func(prefix string, target any) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("envconfig")
	})
	_ = v.RegisterValidation("notion_id", func(fl validator.FieldLevel) bool {
		_, err := uuid.Parse(strings.TrimSpace(fl.Field().String()))
		return err == nil
	})

	return func(prefix string, target any) error {
		err := v.Struct(target)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &Error{Err: err}
		}
		out := &Error{Err: err}
		for _, fe := range verrs {
			name := fe.Field()
			if prefix != "" {
				name = prefix + "_" + name
			}
			if fe.Tag() == "required" {
				out.Missing = append(out.Missing, name)
			} else {
				out.Invalid = append(out.Invalid, name)
			}
		}
		return out
	}
}
