package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Content.PollInterval != MinPollInterval {
		t.Errorf("poll interval = %v, want %v", cfg.Content.PollInterval, MinPollInterval)
	}
}

func TestContentConfig_PollIntervalBounds(t *testing.T) {
	cases := map[string]struct {
		interval time.Duration
		ok       bool
	}{
		"lower bound": {MinPollInterval, true},
		"upper bound": {MaxPollInterval, true},
		"half second": {500 * time.Millisecond, true},
		"too fast":    {50 * time.Millisecond, false},
		"too slow":    {2 * time.Second, false},
		"unset":       {0, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := ContentConfig{Path: "./markdown", PollInterval: tc.interval}
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestContentConfig_PathRequired(t *testing.T) {
	cfg := ContentConfig{PollInterval: MinPollInterval}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty content path should fail")
	}
}

func TestContentConfig_EmptyHiddenCategory(t *testing.T) {
	cfg := ContentConfig{Path: "./markdown", PollInterval: MinPollInterval, HiddenCategories: []string{"drafts", ""}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("blank hidden category should fail")
	}
}

func TestSiteConfig_PageSize(t *testing.T) {
	cfg := SiteConfig{Name: "blog", PageSize: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero page size should fail")
	}
	cfg.PageSize = 20
	if err := cfg.Validate(); err != nil {
		t.Fatalf("page size 20 should pass: %v", err)
	}
}

func TestLogConfig_NegativeRotation(t *testing.T) {
	cfg := LogConfig{File: "quiet.log", MaxBackups: -1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative max_backups should fail")
	}
}
