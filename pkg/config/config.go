package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-ozzo/ozzo-validation/v4/is"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mitchellh/mapstructure"

	"github.com/spf13/viper"
)

const (
	defaultExtension = "yaml"
	defaultTagName   = "yaml"
)

type Binder interface {
	Bind(v *viper.Viper) error
}

type Loader interface {
	Load(name, path, envPrefix string, binder Binder) (Config, error)
}

type Config struct {
	Server    Server    `yaml:"server"`
	Workspace Workspace `yaml:"workspace"`
	Agent     Agent     `yaml:"agent"`
	Prompts   Prompts   `yaml:"prompts"`
	BigQuery  BigQuery  `yaml:"big_query"`
	CORS      CORS      `yaml:"cors"`

	// Mode is the default prompt-assembly mode, overridable with ETL_MODE.
	Mode     string `yaml:"mode"`
	LogLevel string `yaml:"log_level"`
	Debug    bool   `yaml:"debug"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server, validation.Required),
		validation.Field(&c.Workspace, validation.Required),
		validation.Field(&c.Agent, validation.Required),
		validation.Field(&c.BigQuery, validation.Required),
		validation.Field(&c.Mode, validation.Required, validation.In("interactive", "automated")),
		validation.Field(&c.LogLevel, validation.Required),
	)
}

type Server struct {
	Address string `yaml:"address"`
	Port    string `yaml:"port"`
}

func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Address, validation.Required, is.Host),
		validation.Field(&s.Port, validation.Required, is.Port),
	)
}

type Workspace struct {
	// BaseDir is the directory under which workspace instances are created.
	BaseDir string `yaml:"base_dir"`
	// MaxUploadBytes caps the total size of a single multipart upload.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

func (w Workspace) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.BaseDir, validation.Required),
		validation.Field(&w.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
	)
}

type Agent struct {
	// Binary is the path to the agent CLI.
	Binary string `yaml:"binary"`
	Model  string `yaml:"model"`
	// MaxTurns bounds the number of agent turns per query.
	MaxTurns       int    `yaml:"max_turns"`
	PermissionMode string `yaml:"permission_mode"`
	// QueryTimeoutSeconds bounds a single request/response generation,
	// chat turns are not subject to it.
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds"`
}

func (a Agent) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Binary, validation.Required),
		validation.Field(&a.Model, validation.Required),
		validation.Field(&a.MaxTurns, validation.Required, validation.Min(1)),
		validation.Field(&a.QueryTimeoutSeconds, validation.Required, validation.Min(1)),
	)
}

func (a Agent) QueryTimeout() time.Duration {
	return time.Duration(a.QueryTimeoutSeconds) * time.Second
}

type Prompts struct {
	// Dir overrides the embedded prompt fragments when set.
	Dir string `yaml:"dir"`
}

type BigQuery struct {
	Endpoint   string `yaml:"endpoint"`
	EnableAuth bool   `yaml:"enable_auth"`
	GCPRegion  string `yaml:"gcp_region"`
	// DefaultProject is used when a request doesn't name one.
	DefaultProject string `yaml:"default_project"`
}

func (b BigQuery) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.GCPRegion, validation.Required),
		validation.Field(&b.DefaultProject, validation.Required),
	)
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type FileParts struct {
	FileName string
	Path     string
}

func ProcessConfigPath(configFile string) (FileParts, error) {
	absolutePath, err := filepath.Abs(configFile)
	if err != nil {
		return FileParts{}, fmt.Errorf("convert to absolute path: %w", err)
	}

	fileName := filepath.Base(absolutePath)
	path := filepath.Dir(absolutePath)
	extension := filepath.Ext(fileName)

	if strings.ReplaceAll(strings.ToLower(extension), ".", "") != defaultExtension {
		return FileParts{}, fmt.Errorf("config file must have extension %s, got: %s", defaultExtension, extension)
	}

	return FileParts{
		FileName: fileName[:len(fileName)-len(extension)],
		Path:     path,
	}, nil
}

func NewFileSystemLoader() *FileSystemLoader {
	return &FileSystemLoader{}
}

type FileSystemLoader struct{}

func (fs *FileSystemLoader) Load(name, path, envPrefix string, b Binder) (Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName(name)
	v.SetConfigType(defaultExtension)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // So that env vars are translated properly
	v.AutomaticEnv()

	if b != nil {
		err := b.Bind(v)
		if err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix(envPrefix)

	err := v.ReadInConfig()
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var config Config

	err = v.Unmarshal(&config, func(cfg *mapstructure.DecoderConfig) {
		cfg.TagName = defaultTagName // We use yaml tags in the config structs so we can marshal to yaml
	})
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return config, nil
}

type EnvBinder struct {
	binders map[string]string
}

func (e *EnvBinder) Bind(v *viper.Viper) error {
	for envVar, key := range e.binders {
		err := v.BindEnv(key, envVar)
		if err != nil {
			return fmt.Errorf("bind env var %s to key %s: %w", envVar, key, err)
		}
	}

	return nil
}

func NewEnvBinder(binders map[string]string) *EnvBinder {
	return &EnvBinder{
		binders: binders,
	}
}

func NewDefaultEnvBinder() *EnvBinder {
	return NewEnvBinder(map[string]string{
		"ETL_MODE":          "mode",
		"ANTHROPIC_MODEL":   "agent.model",
		"BIGQUERY_ENDPOINT": "big_query.endpoint",
	})
}
