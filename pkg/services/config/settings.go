package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
	"github.com/de-tools/ledger-sync/pkg/services/export"
)

type HostSettings struct {
	AppID           string `mapstructure:"app_id"`
	AppName         string `mapstructure:"app_name"`
	CompanyFile     string `mapstructure:"company_file"`
	Profile         string `mapstructure:"profile"`
	Version         string `mapstructure:"version"`
	FallbackVersion string `mapstructure:"fallback_version"`
}

type ScheduleSettings struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

type S3Settings struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

type ExportSettings struct {
	Dir    string     `mapstructure:"dir"`
	Format string     `mapstructure:"format"`
	S3     S3Settings `mapstructure:"s3"`
}

type DatabaseSettings struct {
	Path string `mapstructure:"path"`
}

type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

type Settings struct {
	Host     HostSettings     `mapstructure:"host"`
	Schedule ScheduleSettings `mapstructure:"schedule"`
	Export   ExportSettings   `mapstructure:"export"`
	Database DatabaseSettings `mapstructure:"database"`
	Server   ServerSettings   `mapstructure:"server"`
	Log      LogSettings      `mapstructure:"log"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("host.app_name", "ledger-sync")
	v.SetDefault("host.version", "16.0")
	v.SetDefault("host.fallback_version", "13.0")

	v.SetDefault("schedule.interval_minutes", 15)

	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.format", string(export.FormatXLSX))

	v.SetDefault("database.path", "ledger-sync.db")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")

	v.SetDefault("log.level", "info")
}

// LoadSettings reads path (yaml, toml or json by extension) over the
// defaults. An empty path yields defaults plus LEDGER_SYNC_* environment
// overrides.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("ledger_sync")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Settings) Validate() error {
	if !domain.IntervalAllowed(s.Schedule.IntervalMinutes) {
		return fmt.Errorf("schedule.interval_minutes must be one of %v, got %d",
			domain.AllowedIntervals, s.Schedule.IntervalMinutes)
	}
	switch export.Format(strings.ToLower(s.Export.Format)) {
	case export.FormatXLSX, export.FormatCSV:
	default:
		return fmt.Errorf("export.format must be xlsx or csv, got %q", s.Export.Format)
	}
	if s.Database.Path == "" {
		return fmt.Errorf("database.path cannot be empty")
	}
	return nil
}

// ApplyProfile overrides host settings with the non-empty profile fields.
func (s *Settings) ApplyProfile(p *Profile) {
	if p == nil {
		return
	}
	s.Host.Profile = p.Name
	if p.CompanyFile != "" {
		s.Host.CompanyFile = p.CompanyFile
	}
	if p.AppName != "" {
		s.Host.AppName = p.AppName
	}
	if p.AppID != "" {
		s.Host.AppID = p.AppID
	}
}
