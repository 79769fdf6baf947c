package configs

import "time"

const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
)

// Флаги запуска Chromium для headless-режима
var baseLaunchArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--disable-web-security",
	"--disable-features=VizDisplayCompositor",
	"--disable-background-timer-throttling",
	"--disable-backgrounding-occluded-windows",
	"--disable-renderer-backgrounding",
	"--disable-extensions",
	"--disable-plugins",
	"--disable-images",
	"--disable-java",
}

// Дополнительные флаги для ограниченных контейнеров
var deploymentLaunchArgs = []string{
	"--single-process",
	"--no-zygote",
	"--disable-setuid-sandbox",
	"--disable-accelerated-2d-canvas",
	"--no-first-run",
	"--disable-default-apps",
	"--disable-sync",
	"--disable-translate",
	"--hide-scrollbars",
	"--metrics-recording-only",
	"--mute-audio",
	"--no-default-browser-check",
	"--no-pings",
	"--password-store=basic",
	"--use-mock-keychain",
	"--memory-pressure-off",
}

// BrowserConfig собирается один раз при старте и передается драйверу
type BrowserConfig struct {
	Driver         string
	Headless       bool
	DeploymentMode bool

	LaunchTimeout     time.Duration
	NavigationTimeout time.Duration // таймаут одной навигации и действий по умолчанию
	PageTimeout       time.Duration

	UserAgent      string
	ViewportWidth  int
	ViewportHeight int

	MaxSessions int
}

// LaunchArgs возвращает флаги запуска с учетом режима развертывания
func (c BrowserConfig) LaunchArgs() []string {
	args := make([]string, 0, len(baseLaunchArgs)+len(deploymentLaunchArgs))
	args = append(args, baseLaunchArgs...)
	if c.DeploymentMode {
		args = append(args, deploymentLaunchArgs...)
	}
	return args
}

// DefaultBrowserConfig - значения без учета окружения
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Driver:            DriverPlaywright,
		Headless:          true,
		LaunchTimeout:     30 * time.Second,
		NavigationTimeout: 8 * time.Second,
		PageTimeout:       20 * time.Second,
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		ViewportWidth:     1920,
		ViewportHeight:    1080,
		MaxSessions:       2,
	}
}

func loadBrowserConfig() BrowserConfig {
	cfg := DefaultBrowserConfig()

	cfg.Driver = getEnvAsString("BROWSER_DRIVER", cfg.Driver)
	if cfg.Driver != DriverPlaywright && cfg.Driver != DriverChromedp {
		cfg.Driver = DriverPlaywright
	}
	cfg.Headless = getEnvAsBool("BROWSER_HEADLESS", cfg.Headless)
	cfg.DeploymentMode = getEnvAsBool("BROWSER_DEPLOYMENT_MODE", false)
	if cfg.DeploymentMode {
		cfg.LaunchTimeout = 60 * time.Second
	}

	cfg.NavigationTimeout = getEnvAsMillis("BDS_NAVIGATION_TIMEOUT_MS", cfg.NavigationTimeout)
	cfg.PageTimeout = getEnvAsMillis("BDS_PAGE_TIMEOUT_MS", cfg.PageTimeout)

	cfg.MaxSessions = getEnvAsInt("BROWSER_MAX_SESSIONS", cfg.MaxSessions)
	if cfg.MaxSessions < 1 {
		cfg.MaxSessions = 1
	}
	return cfg
}
