package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

const profileFileName = ".ledgersynccfg"

// Profile names a company file and the application identity used to open it.
type Profile struct {
	Name        string
	CompanyFile string
	AppName     string
	AppID       string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, profile string) (*Profile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func DefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return profileFileName
	}
	return filepath.Join(home, profileFileName)
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, profile string) (*Profile, error) {
	section, err := cr.cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", profile)
	}

	companyFile := section.Key("company_file").String()
	if companyFile == "" {
		return nil, fmt.Errorf("profile %s has no company_file", profile)
	}

	return &Profile{
		Name:        profile,
		CompanyFile: companyFile,
		AppName:     section.Key("app_name").String(),
		AppID:       section.Key("app_id").String(),
	}, nil
}
