package services_test

import (
	"net"
	"testing"

	"github.com/sqlizer/sqlizer/internal/config"
	"github.com/sqlizer/sqlizer/internal/services"
)

func TestHealthCheckWithoutMailer(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.Config{DBType: "sqlite", DBDatabase: ":memory:"}

	result := services.HealthCheck(cfg, db)
	if result.Status != "healthy" {
		t.Errorf("Expected healthy, got %s (%s)", result.Status, result.ErrorMessage)
	}
	if result.Database != "ok" {
		t.Errorf("Expected database ok, got %s", result.Database)
	}
	if result.Mailer != "not_configured" {
		t.Errorf("Expected mailer not_configured, got %s", result.Mailer)
	}
}

func TestHealthCheckPingsMailer(t *testing.T) {
	db := setupTestDB(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to open listener: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	cfg := &config.Config{
		DBType:     "sqlite",
		DBDatabase: ":memory:",
		SMTPHost:   "127.0.0.1",
		SMTPPort:   port,
	}

	result := services.HealthCheck(cfg, db)
	if result.Status != "healthy" || result.Mailer != "ok" {
		t.Errorf("Expected healthy mailer, got status %s mailer %s", result.Status, result.Mailer)
	}

	listener.Close()

	result = services.HealthCheck(cfg, db)
	if result.Status != "unhealthy" || result.Mailer != "unreachable" {
		t.Errorf("Expected unreachable mailer, got status %s mailer %s", result.Status, result.Mailer)
	}
	if result.ErrorMessage == "" {
		t.Error("Expected an error message for the failed ping")
	}
}
