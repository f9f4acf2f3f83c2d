// Package config provides XML-based configuration management for
// standalone deployment of the inference server.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"InferenceServer"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Inference configuration
	Inference InferenceConfig `xml:"Inference"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
}

// StorageConfig contains result storage settings
type StorageConfig struct {
	ResultsRoot     string `xml:"ResultsRoot"`
	StaticDirectory string `xml:"StaticDirectory"`
}

// InferenceConfig contains detection engine settings
type InferenceConfig struct {
	WeightsPath       string `xml:"WeightsPath"`
	LabelsPath        string `xml:"LabelsPath"`
	MaxFileSizeMB     int    `xml:"MaxFileSizeMB"`
	MaxBatchFiles     int    `xml:"MaxBatchFiles"`
	AllowedExtensions string `xml:"AllowedExtensions"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	EnableCompression    bool   `xml:"EnableCompression"`
	CompressionLevel     int    `xml:"CompressionLevel"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         5000,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 60,
			IdleTimeout:  120,
		},
		Storage: StorageConfig{
			ResultsRoot:     "./runs/api_test",
			StaticDirectory: "./static",
		},
		Inference: InferenceConfig{
			WeightsPath:       "./weights/yolov8n.pt",
			LabelsPath:        "./weights/labels.yaml",
			MaxFileSizeMB:     16,
			MaxBatchFiles:     10,
			AllowedExtensions: "jpg,jpeg,png,bmp,tiff",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			EnableCompression:    true,
			CompressionLevel:     5,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Inference Server Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.ResultsRoot = dataDir
	}

	// WEIGHTS_PATH override
	if weights := os.Getenv("WEIGHTS_PATH"); weights != "" {
		c.Inference.WeightsPath = weights
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.ResultsRoot) {
		c.Storage.ResultsRoot = filepath.Join(configDir, c.Storage.ResultsRoot)
	}
	if !filepath.IsAbs(c.Storage.StaticDirectory) {
		c.Storage.StaticDirectory = filepath.Join(configDir, c.Storage.StaticDirectory)
	}
	if !filepath.IsAbs(c.Inference.WeightsPath) {
		c.Inference.WeightsPath = filepath.Join(configDir, c.Inference.WeightsPath)
	}
	if !filepath.IsAbs(c.Inference.LabelsPath) {
		c.Inference.LabelsPath = filepath.Join(configDir, c.Inference.LabelsPath)
	}
}

// GetResultsRoot returns the absolute results root path
func (c *AppConfig) GetResultsRoot() string {
	return c.Storage.ResultsRoot
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// MaxBodyLimit returns the echo body-limit string for the configured
// upload cap, e.g. "16M".
func (c *AppConfig) MaxBodyLimit() string {
	return fmt.Sprintf("%dM", c.Inference.MaxFileSizeMB)
}

// AllowedExtensionList returns the configured extensions, lowercased,
// without dots.
func (c *AppConfig) AllowedExtensionList() []string {
	parts := strings.Split(c.Inference.AllowedExtensions, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(p, ".")))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsAllowedExtension reports whether a filename carries one of the
// configured extensions.
func (c *AppConfig) IsAllowedExtension(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	for _, allowed := range c.AllowedExtensionList() {
		if ext == allowed {
			return true
		}
	}
	return false
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.ResultsRoot,
		filepath.Join(c.Storage.ResultsRoot, "uploads"),
		filepath.Join(c.Storage.ResultsRoot, "visualizations"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
