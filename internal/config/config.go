// Copyright 2026 The Clubledger Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ikubchain/clubledger/club"
	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/treasury"
	"github.com/ikubchain/clubledger/types"
)

type ctxKey string

const configContextKey ctxKey = "clubledger.config"

const (
	DefaultShutdownTimeout = "30s"
	envPrefix              = "clubledger"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type ClubConfig struct {
	MaxMembersPerClub int `yaml:"maxMembersPerClub" split_words:"true"`
}

type GovernanceConfig struct {
	ProposalDeposit               uint64 `yaml:"proposalDeposit"               split_words:"true"`
	MaxVotingDuration             uint64 `yaml:"maxVotingDuration"             split_words:"true"`
	MaxActiveProposalsPerClub     int    `yaml:"maxActiveProposalsPerClub"     split_words:"true"`
	MaxActiveProposalsPerProposer int    `yaml:"maxActiveProposalsPerProposer" split_words:"true"`
	EmergencySupermajority        uint8  `yaml:"emergencySupermajority"        split_words:"true"`
}

type TreasuryConfig struct {
	DefaultContributionPeriod uint64 `yaml:"defaultContributionPeriod" split_words:"true"`
	MinContribution           uint64 `yaml:"minContribution"           split_words:"true"`
	MinSignatures             int    `yaml:"minSignatures"             split_words:"true"`
	MaxSigners                int    `yaml:"maxSigners"                split_words:"true"`
}

type Config struct {
	DatabasePath       string           `yaml:"databasePath"       split_words:"true"`
	BindAddr           string           `yaml:"bindAddr"           split_words:"true"`
	ShutdownTimeout    string           `yaml:"shutdownTimeout"    split_words:"true"`
	BlockInterval      string           `yaml:"blockInterval"      split_words:"true"`
	EndowAuthority     string           `yaml:"endowAuthority"     split_words:"true"`
	TracingEndpoint    string           `yaml:"tracingEndpoint"    split_words:"true"`
	VacuumSchedule     string           `yaml:"vacuumSchedule"     split_words:"true"`
	CheckpointSchedule string           `yaml:"checkpointSchedule" split_words:"true"`
	BlobCacheSize      uint64           `yaml:"blobCacheSize"      split_words:"true"`
	ApiPort            uint             `yaml:"apiPort"            split_words:"true"`
	MetricsPort        uint             `yaml:"metricsPort"        split_words:"true"`
	Tracing            bool             `yaml:"tracing"`
	TracingStdout      bool             `yaml:"tracingStdout"      split_words:"true"`
	Club               ClubConfig       `yaml:"club"`
	Governance         GovernanceConfig `yaml:"governance"`
	Treasury           TreasuryConfig   `yaml:"treasury"`
}

// DefaultConfig returns the built-in defaults, which the config file and the
// environment are overlaid onto
func DefaultConfig() *Config {
	gov := governance.DefaultConfig()
	tre := treasury.DefaultConfig()
	return &Config{
		DatabasePath:    ".clubledger",
		BindAddr:        "0.0.0.0",
		ShutdownTimeout: DefaultShutdownTimeout,
		ApiPort:         8080,
		MetricsPort:     12799,
		Governance: GovernanceConfig{
			ProposalDeposit:               uint64(gov.ProposalDeposit),
			MaxVotingDuration:             gov.MaxVotingDuration,
			MaxActiveProposalsPerClub:     gov.MaxActiveProposalsPerClub,
			MaxActiveProposalsPerProposer: gov.MaxActiveProposalsPerProposer,
			EmergencySupermajority:        gov.EmergencySupermajority,
		},
		Treasury: TreasuryConfig{
			DefaultContributionPeriod: tre.DefaultContributionPeriod,
			MinContribution:           uint64(tre.MinContribution),
			MinSignatures:             tre.MinSignatures,
			MaxSigners:                tre.MaxSigners,
		},
	}
}

var globalConfig = DefaultConfig()

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.clubledger/clubledger.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".clubledger", "clubledger.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/clubledger/clubledger.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/clubledger/clubledger.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	err := envconfig.Process(envPrefix, globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}

func (c *Config) validate() error {
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.BlockIntervalDuration(); err != nil {
		return err
	}
	if c.EndowAuthority != "" {
		if err := types.AccountId(c.EndowAuthority).Validate(); err != nil {
			return fmt.Errorf("invalid endowAuthority: %w", err)
		}
	}
	if c.ApiPort == 0 {
		return fmt.Errorf("invalid apiPort: %d", c.ApiPort)
	}
	return nil
}

// ShutdownTimeoutDuration parses the shutdown timeout
func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return time.ParseDuration(DefaultShutdownTimeout)
	}
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdownTimeout: %w", err)
	}
	return d, nil
}

// BlockIntervalDuration parses the dev block producer interval. An empty
// value disables the producer.
func (c *Config) BlockIntervalDuration() (time.Duration, error) {
	if c.BlockInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.BlockInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid blockInterval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid blockInterval: %s is negative", d)
	}
	return d, nil
}

func (c *Config) ClubConfig() club.Config {
	return club.Config{
		MaxMembersPerClub: c.Club.MaxMembersPerClub,
	}
}

// GovernanceConfig returns the engine config. The conviction table is not
// configurable.
func (c *Config) GovernanceConfig() governance.Config {
	ret := governance.DefaultConfig()
	ret.ProposalDeposit = types.Amount(c.Governance.ProposalDeposit)
	ret.MaxVotingDuration = c.Governance.MaxVotingDuration
	ret.MaxActiveProposalsPerClub = c.Governance.MaxActiveProposalsPerClub
	ret.MaxActiveProposalsPerProposer = c.Governance.MaxActiveProposalsPerProposer
	ret.EmergencySupermajority = c.Governance.EmergencySupermajority
	return ret
}

func (c *Config) TreasuryConfig() treasury.Config {
	return treasury.Config{
		DefaultContributionPeriod: c.Treasury.DefaultContributionPeriod,
		MinContribution:           types.Amount(c.Treasury.MinContribution),
		MinSignatures:             c.Treasury.MinSignatures,
		MaxSigners:                c.Treasury.MaxSigners,
	}
}
