package run

import (
	"fmt"

	"github.com/relex/syslog-rfc5424/msgfilter"
	"github.com/relex/syslog-rfc5424/output/msgpackstream"
	"github.com/relex/syslog-rfc5424/sysloginput"
	"github.com/relex/syslog-rfc5424/util"
)

// Config defines the root of the server config file
type Config struct {
	Input  sysloginput.Config   `yaml:"input"`
	Filter msgfilter.Config     `yaml:"filter"`
	Output msgpackstream.Config `yaml:"output"`
}

// LoadConfigFile loads config from the path and verifies all sections
func LoadConfigFile(filepath string) (*Config, error) {
	cref := &Config{}
	if err := util.UnmarshalYamlFile(filepath, cref); err != nil {
		return nil, err
	}
	if err := cref.Input.VerifyConfig(); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if err := cref.Filter.VerifyConfig(); err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	if err := cref.Output.VerifyConfig(); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	return cref, nil
}
