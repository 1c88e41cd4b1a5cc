package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  public_base_url: https://admin.example.org
database:
  driver: memory
jwt:
  secret: `+testSecret+`
email:
  admin_recipients: [a@x.org]
`)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EMAIL_ADMIN_RECIPIENTS", "owner@x.org,second@x.org")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "https://admin.example.org", cfg.Server.PublicBaseURL)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "log", cfg.Email.Provider)
	assert.Equal(t, []string{"owner@x.org", "second@x.org"}, cfg.Email.AdminRecipients)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "/registration-complete", cfg.Workflow.CompletionPath)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTTL())
	assert.Equal(t, 90*24*time.Hour, cfg.Scheduler.RejectedRetention())
	assert.Equal(t, "0 0 3 * * *", cfg.Scheduler.PurgeRejectedRequests)
	assert.Empty(t, cfg.GRPCAddress())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Missing File", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("Bad YAML", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [oops"))
		assert.ErrorContains(t, err, "failed to parse config file")
	})

	t.Run("Short Secret", func(t *testing.T) {
		_, err := Load(writeConfig(t, "database:\n  driver: memory\njwt:\n  secret: short\n"))
		assert.ErrorContains(t, err, "at least 32 characters")
	})
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{JWT: JWTConfig{Secret: testSecret}}
	}

	t.Run("Postgres Requires Host", func(t *testing.T) {
		cfg := base()
		assert.ErrorContains(t, cfg.Validate(), "database host is required")
	})

	t.Run("Postgres Defaults", func(t *testing.T) {
		cfg := base()
		cfg.Database = DatabaseConfig{Host: "db", User: "app", Database: "ministry"}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, uint(5), cfg.Database.ConnectAttempts)
		assert.Equal(t, "host=db port=5432 user=app password= dbname=ministry sslmode=disable", cfg.Database.DSN())
	})

	t.Run("Sendgrid Requires Key", func(t *testing.T) {
		cfg := base()
		cfg.Database.Driver = "memory"
		cfg.Email.Provider = "sendgrid"
		assert.ErrorContains(t, cfg.Validate(), "api key")
	})

	t.Run("Unknown Driver", func(t *testing.T) {
		cfg := base()
		cfg.Database.Driver = "mongo"
		assert.ErrorContains(t, cfg.Validate(), "unknown database driver")
	})

	t.Run("Completion Path Is Rooted", func(t *testing.T) {
		cfg := base()
		cfg.Database.Driver = "memory"
		cfg.Workflow.CompletionPath = "join"
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "/join", cfg.Workflow.CompletionPath)
	})
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel(RouteSubmitRequest))
	assert.Equal(t, SecurityPublic, GetSecurityLevel(RouteCompleteRequest))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel(RouteApproveRequest))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel("something_new"))
}
