package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("GYM_URL", "https://booking.example.com")
	t.Setenv("GYM_EMAIL", "me@example.com")
	t.Setenv("GYM_PASSWORD", "hunter2")
	t.Setenv("CLASS_SCHEDULE", `{"3": "Spin Class 18:30 2"}`)
}

func TestFromEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/x")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.SiteURL != "https://booking.example.com" {
		t.Errorf("SiteURL = %q", cfg.SiteURL)
	}
	if len(cfg.Schedule) != 1 {
		t.Errorf("expected 1 schedule entry, got %d", len(cfg.Schedule))
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.Timeouts.Confirmation != 60*time.Second {
		t.Errorf("Confirmation timeout = %v", cfg.Timeouts.Confirmation)
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
}

func TestFromEnvMissingRequired(t *testing.T) {
	cases := []struct{ clear, want string }{
		{"GYM_URL", "GYM_URL"},
		{"GYM_EMAIL", "GYM_EMAIL"},
		{"GYM_PASSWORD", "GYM_PASSWORD"},
		{"CLASS_SCHEDULE", "CLASS_SCHEDULE"},
	}
	for _, tc := range cases {
		t.Run(tc.clear, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.clear, "")
			_, err := FromEnv()
			if err == nil {
				t.Fatalf("expected error with %s unset", tc.clear)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %s", err, tc.want)
			}
		})
	}
}

func TestFromEnvBadSchedule(t *testing.T) {
	setRequired(t)
	t.Setenv("CLASS_SCHEDULE", `{"3": "Spin Class"}`)
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected schedule parse error")
	}
}

func TestFromEnvTimeoutOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("GYM_CONFIRMATION_SECONDS", "15")
	t.Setenv("GYM_RUN_DEADLINE_SECONDS", "120")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Timeouts.Confirmation != 15*time.Second {
		t.Errorf("Confirmation = %v, want 15s", cfg.Timeouts.Confirmation)
	}
	if cfg.Timeouts.RunDeadline != 2*time.Minute {
		t.Errorf("RunDeadline = %v, want 2m", cfg.Timeouts.RunDeadline)
	}

	t.Setenv("GYM_CONFIRMATION_SECONDS", "zero")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for non-numeric timeout")
	}
}
