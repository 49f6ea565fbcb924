package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/gym-scheduler/internal/schedule"
)

// Timeouts gathers every bounded wait the booking flow performs, so the
// worst-case run latency is visible in one place. RunDeadline bounds the
// whole run regardless of how the individual waits stack up.
type Timeouts struct {
	Login            time.Duration // whole two-step login form
	Navigation       time.Duration // page loads and reloads
	ElementWait      time.Duration // individual element visibility waits
	PaginationWindow time.Duration // total budget for the next-date-range loop
	PaginationSettle time.Duration // pause after each next-date-range click
	DialogSettle     time.Duration // pause after opening/closing the class dialog
	Confirmation     time.Duration // attendees API response wait
	UIConfirmation   time.Duration // fallback confirmed-text scan
	RunDeadline      time.Duration
}

type Config struct {
	SiteURL  string
	Email    string
	Password string

	Schedule schedule.Weekly

	// WebhookURL is optional; empty disables notifications.
	WebhookURL string

	// BookingAPIFragment identifies the attendees endpoint whose response
	// confirms a booking, matched as a URL substring.
	BookingAPIFragment string

	Headless   bool
	MaxRetries int
	CronExpr   string

	Timeouts Timeouts
}

func FromEnv() (Config, error) {
	cfg := Config{
		SiteURL:            strings.TrimSpace(os.Getenv("GYM_URL")),
		Email:              strings.TrimSpace(os.Getenv("GYM_EMAIL")),
		Password:           os.Getenv("GYM_PASSWORD"),
		WebhookURL:         strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),
		BookingAPIFragment: getenv("GYM_BOOKING_API_FRAGMENT", "api.uk.resamania.com/brooklands/attendees"),
		Headless:           getenv("GYM_HEADLESS", "1") != "0",
		MaxRetries:         3,
		CronExpr:           getenv("GYM_CRON", "0 7 * * *"),
		Timeouts: Timeouts{
			Login:            30 * time.Second,
			Navigation:       60 * time.Second,
			ElementWait:      5 * time.Second,
			PaginationWindow: 45 * time.Second,
			PaginationSettle: 2 * time.Second,
			DialogSettle:     time.Second,
			Confirmation:     60 * time.Second,
			UIConfirmation:   60 * time.Second,
			RunDeadline:      10 * time.Minute,
		},
	}

	if cfg.SiteURL == "" {
		return Config{}, fmt.Errorf("GYM_URL is required")
	}
	if cfg.Email == "" || cfg.Password == "" {
		return Config{}, fmt.Errorf("GYM_EMAIL and GYM_PASSWORD are required")
	}

	rawSchedule := strings.TrimSpace(os.Getenv("CLASS_SCHEDULE"))
	if rawSchedule == "" {
		return Config{}, fmt.Errorf("CLASS_SCHEDULE is required")
	}
	var err error
	cfg.Schedule, err = schedule.ParseWeekly(rawSchedule)
	if err != nil {
		return Config{}, fmt.Errorf("CLASS_SCHEDULE: %w", err)
	}

	if cfg.Timeouts.RunDeadline, err = durationEnv("GYM_RUN_DEADLINE_SECONDS", cfg.Timeouts.RunDeadline); err != nil {
		return Config{}, err
	}
	if cfg.Timeouts.Confirmation, err = durationEnv("GYM_CONFIRMATION_SECONDS", cfg.Timeouts.Confirmation); err != nil {
		return Config{}, err
	}
	if cfg.Timeouts.UIConfirmation, err = durationEnv("GYM_UI_CONFIRMATION_SECONDS", cfg.Timeouts.UIConfirmation); err != nil {
		return Config{}, err
	}
	if cfg.Timeouts.PaginationWindow, err = durationEnv("GYM_PAGINATION_WINDOW_SECONDS", cfg.Timeouts.PaginationWindow); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	sec, err := strconv.Atoi(v)
	if err != nil || sec < 1 {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return time.Duration(sec) * time.Second, nil
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
