// README: Config loader tests.
package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8000" {
		t.Fatalf("unexpected addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Fulfillment.PollInterval != time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.Fulfillment.PollInterval)
	}
	if cfg.Providers.UberWebhookToken == "" {
		t.Fatal("uber webhook token must have a default")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CATERING_HTTP_ADDR", ":9000")
	t.Setenv("CATERING_COOKING_WINDOW", "5m")
	t.Setenv("CATERING_DELIVERY_WINDOW", "90")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9000" {
		t.Fatalf("override ignored: %s", cfg.HTTP.Addr)
	}
	if cfg.Fulfillment.CookingWindow != 5*time.Minute {
		t.Fatalf("unexpected cooking window: %s", cfg.Fulfillment.CookingWindow)
	}
	// Bare integers are read as seconds.
	if cfg.Fulfillment.DeliveryWindow != 90*time.Second {
		t.Fatalf("unexpected delivery window: %s", cfg.Fulfillment.DeliveryWindow)
	}
}
