package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/vango-dev/vango-export/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vango.json"

	// EnvFileName is the optional environment file next to vango.json.
	EnvFileName = ".env"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultPreviewPort is the default preview server port.
	DefaultPreviewPort = 4000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultOutput is the default export output directory.
	DefaultOutput = "dist"

	// DefaultReadyTimeout is how long a started dev server has to answer.
	DefaultReadyTimeout = "30s"
)

// Environment variables that override vango.json.
const (
	EnvDevURL        = "VANGO_DEV_URL"
	EnvExportBucket  = "VANGO_EXPORT_BUCKET"
	EnvExportPrefix  = "VANGO_EXPORT_PREFIX"
	EnvPublishRegion = "AWS_REGION"
)

// Config represents the vango.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Paths contains project directory configuration.
	Paths PathsConfig `json:"paths,omitempty"`

	// Build contains output configuration.
	Build BuildConfig `json:"build,omitempty"`

	// Export contains static export configuration.
	Export ExportConfig `json:"export,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Publish contains object storage configuration.
	Publish PublishConfig `json:"publish,omitempty"`

	// Preview contains preview server configuration.
	Preview PreviewConfig `json:"preview,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PathsConfig contains path configuration for project directories.
type PathsConfig struct {
	// Routes is the path to the file-based routes directory.
	Routes string `json:"routes,omitempty"`
}

// BuildConfig contains output settings.
type BuildConfig struct {
	// Output is the export output directory.
	Output string `json:"output,omitempty"`
}

// ExportConfig contains static export settings.
type ExportConfig struct {
	// Scripts are appended to every exported page.
	Scripts []string `json:"scripts,omitempty"`

	// Minify asks the dev server for minified output.
	Minify bool `json:"minify,omitempty"`

	// Strict fails the export when two routes export the same file.
	Strict bool `json:"strict,omitempty"`

	// Concurrency bounds in-flight renders. Zero means unbounded.
	Concurrency int `json:"concurrency,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// URL is the dev server base URL. It takes precedence over Host and Port.
	URL string `json:"url,omitempty"`

	// Host is the dev server host.
	Host string `json:"host,omitempty"`

	// Port is the dev server port.
	Port int `json:"port,omitempty"`

	// HTTPS selects https for the dev server URL.
	HTTPS bool `json:"https,omitempty"`

	// Command starts the dev server, e.g. ["vango", "dev"].
	Command []string `json:"command,omitempty"`

	// ReadyTimeout is how long a started dev server has to answer (e.g. "30s").
	ReadyTimeout string `json:"readyTimeout,omitempty"`
}

// PublishConfig contains object storage settings.
type PublishConfig struct {
	// Bucket is the S3 bucket. Empty disables publishing.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the key prefix inside the bucket.
	Prefix string `json:"prefix,omitempty"`

	// Region is the bucket region.
	Region string `json:"region,omitempty"`
}

// PreviewConfig contains preview server settings.
type PreviewConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Paths: PathsConfig{
			Routes: "app/routes",
		},
		Build: BuildConfig{
			Output: DefaultOutput,
		},
		Dev: DevConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			Command:      []string{"vango", "dev"},
			ReadyTimeout: DefaultReadyTimeout,
		},
		Preview: PreviewConfig{
			Host: DefaultHost,
			Port: DefaultPreviewPort,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for vango.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path, then applies
// the .env file next to it and the process environment.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No vango.json found in " + filepath.Dir(path)).
				WithSuggestion("Create vango.json or pass --dev-url")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse vango.json: " + err.Error()).
			WithSuggestion("Check that vango.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.LoadEnv(filepath.Dir(path)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadEnv applies dir/.env and the process environment. Variables already
// set in the process win over the file.
func (c *Config) LoadEnv(dir string) error {
	fileEnv := map[string]string{}
	envPath := filepath.Join(dir, EnvFileName)
	if _, err := os.Stat(envPath); err == nil {
		fileEnv, err = godotenv.Read(envPath)
		if err != nil {
			return errors.New("E120").
				WithDetail("Failed to parse " + envPath + ": " + err.Error())
		}
	}

	c.applyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	})
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDevURL); ok && v != "" {
		c.Dev.URL = v
	}
	if v, ok := lookup(EnvExportBucket); ok {
		c.Publish.Bucket = v
	}
	if v, ok := lookup(EnvExportPrefix); ok {
		c.Publish.Prefix = v
	}
	if v, ok := lookup(EnvPublishRegion); ok && v != "" {
		c.Publish.Region = v
	}
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Paths.Routes == "" {
		c.Paths.Routes = "app/routes"
	}
	if c.Build.Output == "" {
		c.Build.Output = DefaultOutput
	}

	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.ReadyTimeout == "" {
		c.Dev.ReadyTimeout = DefaultReadyTimeout
	}

	if c.Preview.Host == "" {
		c.Preview.Host = DefaultHost
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = DefaultPreviewPort
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E122").
			WithDetail("dev.port must be between 0 and 65535")
	}
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return errors.New("E122").
			WithDetail("preview.port must be between 0 and 65535")
	}
	if c.Export.Concurrency < 0 {
		return errors.New("E122").
			WithDetail("export.concurrency must not be negative")
	}
	if _, err := c.ReadyTimeout(); err != nil {
		return err
	}
	return nil
}

// ReadyTimeout parses dev.readyTimeout.
func (c *Config) ReadyTimeout() (time.Duration, error) {
	raw := c.Dev.ReadyTimeout
	if raw == "" {
		raw = DefaultReadyTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, errors.New("E122").
			WithDetail("dev.readyTimeout must be a positive duration like \"30s\", got " + raw)
	}
	return d, nil
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	if c.Dev.URL != "" {
		return c.Dev.URL
	}
	scheme := "http"
	if c.Dev.HTTPS {
		scheme = "https"
	}
	return scheme + "://" + c.DevAddress()
}

// PreviewAddress returns the listen address for the preview server.
func (c *Config) PreviewAddress() string {
	return c.Preview.Host + ":" + itoa(c.Preview.Port)
}

// OutputPath returns the path to the export output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Build.Output)
}

// RoutesPath returns the path to the routes directory.
func (c *Config) RoutesPath() string {
	path := c.Paths.Routes
	if path == "" {
		path = "app/routes"
	}
	return c.resolve(path)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing vango.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No vango.json found in " + startDir + " or any parent directory").
				WithSuggestion("Create vango.json or pass --dev-url")
		}
		dir = parent
	}
}

// LoadOrDefault loads the project configuration, or returns the defaults
// with the environment of dir applied when there is no vango.json.
func LoadOrDefault(dir string) (*Config, error) {
	root, err := FindProjectRoot(dir)
	if err != nil {
		if !errors.HasCode(err, "E141") {
			return nil, err
		}
		cfg := New()
		if err := cfg.LoadEnv(dir); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(root)
}

// itoa converts int to string without importing strconv.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	digits := make([]byte, 0, 10)
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	// Reverse
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}
