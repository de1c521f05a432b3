package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/go-drift/permissions-helper/cmd/permhelper/internal/config"
	"github.com/go-drift/permissions-helper/cmd/permhelper/internal/simulator"
	"github.com/go-drift/permissions-helper/pkg/errors"
	"github.com/go-drift/permissions-helper/pkg/permissions"
)

// Env is what a command runs against.
type Env struct {
	Out        io.Writer
	ConfigPath string
	Config     *config.Config
	Logger     *logrus.Logger
	Device     *simulator.Simulator
	Service    *permissions.Service
}

func newEnv(opts globalOptions, stdout, stderr io.Writer) (*Env, error) {
	cfg, err := config.LoadOptional(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.platform != "" {
		cfg.Device.Platform = opts.platform
	}
	if opts.osVersion != "" {
		cfg.Device.OSVersion = opts.osVersion
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	level, err := cfg.Log.LogLevel()
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	catalog, err := loadCatalog(opts.catalogPath, cfg.Device)
	if err != nil {
		return nil, err
	}
	if err := cfg.CheckCapabilities(catalog); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", opts.configPath, err)
	}

	errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: level >= logrus.DebugLevel})

	var diagnostics permissions.Diagnostics = permissions.LogDiagnostics{Logger: logger}
	if opts.quiet || !cfg.Log.DiagnosticsEnabled() {
		diagnostics = permissions.NopDiagnostics{}
	}

	device := simulator.New(cfg.Device, logger)
	device.CheckWith(func(c *config.Config) error { return c.CheckCapabilities(catalog) })
	return &Env{
		Out:        stdout,
		ConfigPath: opts.configPath,
		Config:     cfg,
		Logger:     logger,
		Device:     device,
		Service:    permissions.NewService(catalog, device, permissions.WithDiagnostics(diagnostics)),
	}, nil
}

// loadCatalog reads the catalog file at path, or picks the built-in catalog
// of the device platform when path is empty.
func loadCatalog(path string, device config.Device) (*permissions.Catalog, error) {
	if path == "" {
		platform := device.Platform
		if platform == "" {
			platform = permissions.PlatformIOS
		}
		catalog, err := permissions.NewPlatformCatalog(platform, device.OSVersion)
		if err != nil {
			return nil, fmt.Errorf("device: %w", err)
		}
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	catalog, err := permissions.LoadCatalog(data, device.OSVersion)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

// Close releases the service and restores the default error handler.
func (e *Env) Close() {
	e.Service.Close()
	errors.SetHandler(nil)
}

var statusColors = map[permissions.Status]*color.Color{
	permissions.StatusGranted:      color.New(color.FgGreen),
	permissions.StatusDenied:       color.New(color.FgRed),
	permissions.StatusRestricted:   color.New(color.FgYellow),
	permissions.StatusUndetermined: color.New(color.FgCyan),
}

func colorStatus(s permissions.Status) string {
	if c, ok := statusColors[s]; ok {
		return c.Sprint(s.String())
	}
	return s.String()
}

func colorBool(b bool) string {
	if b {
		return color.GreenString("true")
	}
	return color.RedString("false")
}
