package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Media    MediaConfig    `mapstructure:"media"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Video    VideoConfig    `mapstructure:"video"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	BasePath    string   `mapstructure:"base_path"`
	Mode        string   `mapstructure:"mode"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	URI            string        `mapstructure:"uri"`
	Name           string        `mapstructure:"name"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// MediaConfig points at the S3-compatible host that stores screenshots,
// reports, videos and profile pictures.
type MediaConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	PublicBaseURL   string        `mapstructure:"public_base_url"`
	UploadTimeout   time.Duration `mapstructure:"upload_timeout"`
}

// Enabled reports whether enough is configured to talk to the media host.
func (m MediaConfig) Enabled() bool {
	return m.BucketName != "" && m.AccessKeyID != "" && m.SecretAccessKey != ""
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	File        string `mapstructure:"file"`
	ToStdout    bool   `mapstructure:"to_stdout"`
	JSON        bool   `mapstructure:"json"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
}

// VideoConfig drives the video processing gateway. Activities binds the exact
// activity name sent by clients to a script file inside ScriptsDir. It is a
// list rather than a map because viper lower-cases map keys.
type VideoConfig struct {
	Interpreter   string           `mapstructure:"interpreter"`
	ScriptsDir    string           `mapstructure:"scripts_dir"`
	UploadsDir    string           `mapstructure:"uploads_dir"`
	OutputsDir    string           `mapstructure:"outputs_dir"`
	FFmpegPath    string           `mapstructure:"ffmpeg_path"`
	FrameRate     int              `mapstructure:"frame_rate"`
	ScriptTimeout time.Duration    `mapstructure:"script_timeout"`
	LiveDelay     time.Duration    `mapstructure:"live_delay"`
	Activities    []ActivityScript `mapstructure:"activities"`
}

type ActivityScript struct {
	Name   string `mapstructure:"name"`
	Script string `mapstructure:"script"`
}

type CacheConfig struct {
	SizeMB    int           `mapstructure:"size_mb"`
	RosterTTL time.Duration `mapstructure:"roster_ttl"`
}

// DefaultActivities is the activity to script mapping used when none is configured.
var DefaultActivities = []ActivityScript{
	{Name: "Push-ups", Script: "pushups.py"},
	{Name: "Squats", Script: "squats.py"},
	{Name: "Sit-ups", Script: "situps.py"},
	{Name: "Pull-ups", Script: "pullups.py"},
	{Name: "Vertical Jump", Script: "vertical_jump.py"},
	{Name: "Shuttle Run", Script: "shuttle_run.py"},
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in the working directory, when present, is loaded first so its
// values take part in the environment overlay.
func LoadConfig(path string) (config Config, err error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	if len(config.Video.Activities) == 0 {
		config.Video.Activities = DefaultActivities
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.base_path", "/api")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "workout_telemetry")
	v.SetDefault("database.connect_timeout", "10s")

	v.SetDefault("media.region", "us-east-1")
	v.SetDefault("media.upload_timeout", "2m")
	// env-only keys still need a default so AutomaticEnv picks them up on Unmarshal
	v.SetDefault("media.endpoint", "")
	v.SetDefault("media.access_key_id", "")
	v.SetDefault("media.secret_access_key", "")
	v.SetDefault("media.bucket_name", "")
	v.SetDefault("media.public_base_url", "")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.to_stdout", true)
	v.SetDefault("log.json", false)
	v.SetDefault("log.sentry_dsn", "")
	v.SetDefault("log.environment", "development")

	v.SetDefault("video.interpreter", "python3")
	v.SetDefault("video.scripts_dir", "./scripts")
	v.SetDefault("video.uploads_dir", "./uploads")
	v.SetDefault("video.outputs_dir", "./outputs")
	v.SetDefault("video.ffmpeg_path", "ffmpeg")
	v.SetDefault("video.frame_rate", 1)
	v.SetDefault("video.script_timeout", "0s")
	v.SetDefault("video.live_delay", "3s")

	v.SetDefault("cache.size_mb", 16)
	v.SetDefault("cache.roster_ttl", "30s")
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.Database.URI == "" {
		errs = append(errs, errors.New("database.uri is required"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.Video.FrameRate <= 0 {
		errs = append(errs, errors.New("video.frame_rate must be positive"))
	}
	return errors.Join(errs...)
}
