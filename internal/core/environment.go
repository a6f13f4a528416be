package core

import "strings"

// Environment is the deployment stage ShopBot runs in. It selects the log format.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

var environmentAliases = map[string]Environment{
	"development": Development,
	"dev":         Development,
	"local":       Development,
	"staging":     Staging,
	"stage":       Staging,
	"testing":     Testing,
	"test":        Testing,
	"production":  Production,
	"prod":        Production,
}

func (e Environment) String() string {
	return string(e)
}

func (e Environment) IsProduction() bool {
	return e == Production
}

// Decode implements envconfig.Decoder so ENVIRONMENT binds straight into the config.
func (e *Environment) Decode(value string) error {
	*e = ParseEnvironment(value)
	return nil
}

// ParseEnvironment accepts the full names and the usual short forms, ignoring case.
// Anything else is Development.
func ParseEnvironment(v string) Environment {
	if env, ok := environmentAliases[strings.ToLower(strings.TrimSpace(v))]; ok {
		return env
	}
	return Development
}
