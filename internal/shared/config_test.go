package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./espy.db" {
			t.Errorf("expected database path ./espy.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8001 {
			t.Errorf("expected server port 8001, got %d", config.Server.Port)
		}

		if config.Client.BackendURL != "http://127.0.0.1:8001" {
			t.Errorf("expected backend URL http://127.0.0.1:8001, got %s", config.Client.BackendURL)
		}

		if config.Client.CallbackPort != 53682 {
			t.Errorf("expected callback port 53682, got %d", config.Client.CallbackPort)
		}

		if config.Discord.Configured() {
			t.Error("expected default discord credentials to be empty")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[client]
backend_url = "https://dash.example.com"

[discord]
client_id = "123"
client_secret = "shh"
bot_token = "bot"

[server]
port = 9000
cors_origins = ["https://dash.example.com"]
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Client.BackendURL != "https://dash.example.com" {
			t.Errorf("expected backend URL override, got %s", config.Client.BackendURL)
		}
		if config.Server.Port != 9000 {
			t.Errorf("expected server port 9000, got %d", config.Server.Port)
		}
		if !config.Discord.Configured() {
			t.Error("expected discord credentials to be configured")
		}
		if config.Database.Path != "./espy.db" {
			t.Errorf("expected unspecified values to keep defaults, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		env := map[string]string{
			"BACKEND_URL":       "https://api.example.com/",
			"DISCORD_CLIENT_ID": "abc",
			"DISCORD_BOT_TOKEN": "bot-token",
			"JWT_SECRET":        "secret",
			"CORS_ORIGINS":      "https://a.example.com, https://b.example.com,",
			"PORT":              "8100",
		}
		config := DefaultConfig()

		if err := config.ApplyEnv(func(k string) string { return env[k] }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Client.BackendURL != "https://api.example.com" {
			t.Errorf("expected trailing slash trimmed, got %s", config.Client.BackendURL)
		}
		if config.Discord.ClientID != "abc" || config.Discord.BotToken != "bot-token" {
			t.Errorf("discord env not applied: %+v", config.Discord)
		}
		if config.Server.JWTSecret != "secret" || config.Server.Port != 8100 {
			t.Errorf("server env not applied: %+v", config.Server)
		}
		if len(config.Server.CORSOrigins) != 2 {
			t.Errorf("expected 2 cors origins, got %v", config.Server.CORSOrigins)
		}
	})

	t.Run("ApplyEnv Invalid Port", func(t *testing.T) {
		config := DefaultConfig()
		err := config.ApplyEnv(func(k string) string {
			if k == "PORT" {
				return "eighty"
			}
			return ""
		})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadDotEnv", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("ESPY_TEST_DOTENV=loaded\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("ESPY_TEST_DOTENV") })

		if err := LoadDotEnv(envPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := os.Getenv("ESPY_TEST_DOTENV"); got != "loaded" {
			t.Errorf("expected env var loaded, got %q", got)
		}

		if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Errorf("missing env file should be ignored, got %v", err)
		}
	})

	t.Run("ResolvedTokenPath", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory")
		}

		got, err := ClientConfig{TokenPath: "~/.espy/token"}.ResolvedTokenPath()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != filepath.Join(home, ".espy", "token") {
			t.Errorf("unexpected path %s", got)
		}

		abs, _ := ClientConfig{TokenPath: "/tmp/token"}.ResolvedTokenPath()
		if abs != "/tmp/token" {
			t.Errorf("absolute paths should be unchanged, got %s", abs)
		}
	})
}
