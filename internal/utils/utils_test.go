package utils

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetupLogging(t *testing.T) {
	// Default log level
	logger := SetupLogging("")
	if logger == nil {
		t.Fatal("Expected logger to be created, got nil")
	}

	logger = SetupLogging("debug")
	if logger.Level != logrus.DebugLevel {
		t.Errorf("Expected log level to be debug, got %s", logger.Level)
	}

	logger = SetupLogging("warn")
	if logger.Level != logrus.WarnLevel {
		t.Errorf("Expected log level to be warn, got %s", logger.Level)
	}

	// Invalid level falls back to info
	logger = SetupLogging("invalid")
	if logger.Level != logrus.InfoLevel {
		t.Errorf("Expected log level to be info for invalid input, got %s", logger.Level)
	}
}

func TestGetEnvInt(t *testing.T) {
	os.Setenv("TEST_ENV_INT", "42")
	if value := GetEnvInt("TEST_ENV_INT", 10); value != 42 {
		t.Errorf("Expected value to be 42, got %d", value)
	}

	os.Unsetenv("TEST_ENV_INT")
	if value := GetEnvInt("TEST_ENV_INT", 10); value != 10 {
		t.Errorf("Expected value to be 10 (default), got %d", value)
	}

	os.Setenv("TEST_ENV_INT", "not-an-int")
	if value := GetEnvInt("TEST_ENV_INT", 10); value != 10 {
		t.Errorf("Expected value to be 10 (default) for invalid input, got %d", value)
	}
	os.Unsetenv("TEST_ENV_INT")
}

func TestValidateConnectionParams(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	if !ValidateConnectionParams("localhost", "postgres", "bookings", "5432", logger) {
		t.Error("Expected validation to pass with valid parameters")
	}

	if ValidateConnectionParams("", "postgres", "bookings", "5432", logger) {
		t.Error("Expected validation to fail with missing host")
	}

	if ValidateConnectionParams("localhost", "", "bookings", "5432", logger) {
		t.Error("Expected validation to fail with missing user")
	}

	if ValidateConnectionParams("localhost", "postgres", "", "5432", logger) {
		t.Error("Expected validation to fail with missing database")
	}

	if ValidateConnectionParams("localhost", "postgres", "bookings", "not-a-port", logger) {
		t.Error("Expected validation to fail with invalid port")
	}
}
