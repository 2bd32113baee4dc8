// Package msgfilter drops unwanted messages by glob patterns on selected fields
package msgfilter

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/relex/gotils/logger"
	"github.com/relex/syslog-rfc5424/defs"
	"github.com/relex/syslog-rfc5424/syslogprotocol"
)

// Field names accepted in RuleConfig.Field
const (
	FieldHostname = "hostname"
	FieldAppName  = "appname"
	FieldProcID   = "procid"
	FieldMsgID    = "msgid"
	FieldSDID     = "sdid"
	FieldMessage  = "msg"
)

// RuleConfig is one exclusion rule: messages whose field matches the pattern are dropped
type RuleConfig struct {
	Field   string `yaml:"field"`   // one of hostname, appname, procid, msgid, sdid, msg
	Pattern string `yaml:"pattern"` // glob pattern, e.g. "debug-*"
}

// Config provides configuration for Filter
type Config struct {
	Rules []RuleConfig `yaml:"rules"`
}

// VerifyConfig checks configuration
func (cfg *Config) VerifyConfig() error {
	for i, rule := range cfg.Rules {
		if !isKnownField(rule.Field) {
			return fmt.Errorf(".rules[%d].field: unknown field %q", i, rule.Field)
		}
		if rule.Pattern == "" {
			return fmt.Errorf(".rules[%d].pattern is empty", i)
		}
		if _, err := glob.Compile(rule.Pattern); err != nil {
			return fmt.Errorf(".rules[%d].pattern: %w", i, err)
		}
	}
	return nil
}

// NewFilter compiles the rules into a Filter
func (cfg *Config) NewFilter(parentLogger logger.Logger) (*Filter, error) {
	rules := make([]rule, 0, len(cfg.Rules))
	for i, rcfg := range cfg.Rules {
		matcher, err := glob.Compile(rcfg.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rules = append(rules, rule{field: rcfg.Field, matcher: matcher})
	}
	return &Filter{
		logger: parentLogger.WithField(defs.LabelComponent, "MessageFilter"),
		rules:  rules,
	}, nil
}

type rule struct {
	field   string
	matcher glob.Glob
}

// Filter excludes messages matching any of its rules. Safe for concurrent use.
type Filter struct {
	logger logger.Logger
	rules  []rule
}

// Exclude reports whether msg matches an exclusion rule and should be dropped
//
// Nil header fields never match; a rule on sdid is tested against every SD-ID present.
func (f *Filter) Exclude(msg *syslogprotocol.SyslogMessage) bool {
	for _, rule := range f.rules {
		if rule.match(msg) {
			return true
		}
	}
	return false
}

func (r *rule) match(msg *syslogprotocol.SyslogMessage) bool {
	switch r.field {
	case FieldHostname:
		return msg.Hostname != nil && r.matcher.Match(*msg.Hostname)
	case FieldAppName:
		return msg.AppName != nil && r.matcher.Match(*msg.AppName)
	case FieldProcID:
		return msg.ProcID != nil && r.matcher.Match(msg.ProcID.String())
	case FieldMsgID:
		return msg.MsgID != nil && r.matcher.Match(*msg.MsgID)
	case FieldSDID:
		for sdid := range msg.StructuredData {
			if r.matcher.Match(sdid) {
				return true
			}
		}
		return false
	case FieldMessage:
		return r.matcher.Match(msg.Message)
	default:
		return false
	}
}

func isKnownField(field string) bool {
	switch field {
	case FieldHostname, FieldAppName, FieldProcID, FieldMsgID, FieldSDID, FieldMessage:
		return true
	}
	return false
}
