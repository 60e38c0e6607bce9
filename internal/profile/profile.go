package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where voxsense stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// Timezone is the IANA timezone used to derive day boundaries for
	// context windows (default UTC)
	Timezone string
	// StalenessSweepHours is the cadence of the staleness runner in hours
	// (default 24, 0 disables the runner)
	StalenessSweepHours int
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from VOXSENSE_* environment variables.
func (p *Profile) FromEnv() {
	p.Mode = getEnvOrDefault("VOXSENSE_MODE", p.Mode)
	p.Addr = getEnvOrDefault("VOXSENSE_ADDR", p.Addr)
	p.Data = getEnvOrDefault("VOXSENSE_DATA", p.Data)
	p.DSN = getEnvOrDefault("VOXSENSE_DSN", p.DSN)
	p.Driver = getEnvOrDefault("VOXSENSE_DRIVER", p.Driver)
	p.Timezone = getEnvOrDefault("VOXSENSE_TIMEZONE", p.Timezone)

	if port := os.Getenv("VOXSENSE_PORT"); port != "" {
		if v, err := strconv.Atoi(port); err == nil {
			p.Port = v
		}
	}
	if hours := os.Getenv("VOXSENSE_STALENESS_SWEEP_HOURS"); hours != "" {
		if v, err := strconv.Atoi(hours); err == nil {
			p.StalenessSweepHours = v
		}
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes the profile and fills in derived defaults.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Timezone == "" {
		p.Timezone = "UTC"
	}
	if p.StalenessSweepHours < 0 {
		p.StalenessSweepHours = 0
	}

	if p.Driver == "sqlite" {
		if p.Data == "" {
			p.Data = "."
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return errors.Wrap(err, "failed to check data directory")
		}
		p.Data = dataDir
		if p.DSN == "" {
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("voxsense_%s.db", p.Mode))
		}
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	return nil
}
