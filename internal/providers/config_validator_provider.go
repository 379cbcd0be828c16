package providers

import (
	"errors"
	"fmt"
	"github.com/gookit/validate"
	"onegoodthing/internal/structures"
	"time"
)

type CnfValidatorInterface interface {
	Validate() error
}

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) CnfValidatorInterface {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	for _, section := range []interface{}{&c.conf.WebServer, &c.conf.Logger, &c.conf.Storage} {
		v := validate.Struct(section)
		if !v.Validate() {
			return errors.New(v.Errors.String())
		}
	}
	return c.validateDomain()
}

// validateDomain covers the rules that depend on other fields.
func (c *CnfValidator) validateDomain() error {
	conf := c.conf
	if conf.App.DefaultTimezone != "" {
		if _, err := time.LoadLocation(conf.App.DefaultTimezone); err != nil {
			return fmt.Errorf("app.defaultTimezone: %w", err)
		}
	}

	switch conf.Storage.Driver {
	case "memory":
	case "postgres":
		if conf.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the postgres driver")
		}
	case "supabase":
		if conf.Storage.SupabaseURL == "" {
			return errors.New("storage.supabaseUrl is required for the supabase driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", conf.Storage.Driver)
	}

	if conf.Auth.JWTSecret == "" && conf.Auth.SupabaseURL == "" {
		return errors.New("auth.jwtSecret or auth.supabaseUrl is required")
	}
	if conf.AI.Enabled && conf.AI.APIKey == "" {
		return errors.New("ai.apiKey is required when ai is enabled")
	}
	if conf.Mail.Enabled && (conf.Mail.APIKey == "" || conf.Mail.From == "") {
		return errors.New("mail.apiKey and mail.from are required when mail is enabled")
	}
	return nil
}
