package config

import (
	"net/url"
	"os"
	"strings"

	"github.com/phelipetls/seriesbr-sub000/pkg/providers/ipea"
	"github.com/phelipetls/seriesbr-sub000/pkg/providers/sgs"
	"github.com/phelipetls/seriesbr-sub000/pkg/providers/sidra"
)

// ValueSource tells where a setting came from.
type ValueSource string

const (
	SourceEnv     ValueSource = "env"
	SourceConfig  ValueSource = "config"
	SourceDefault ValueSource = "default"
)

// EndpointStatus describes one configured endpoint.
type EndpointStatus struct {
	Name   string      `json:"name"   yaml:"name"`
	URL    string      `json:"url"    yaml:"url"` // credentials masked
	Source ValueSource `json:"source" yaml:"source"`
}

// Endpoints returns every configured endpoint and where its value came from.
func Endpoints(cfg *Config) []EndpointStatus {
	s := cfg.Sources
	return []EndpointStatus{
		checkEndpoint("sgs.base_url", s.SGS.BaseURL, sgs.DefaultBaseURL),
		checkEndpoint("sgs.search_url", s.SGS.SearchURL, sgs.DefaultSearchURL),
		checkEndpoint("sgs.feed_url", s.SGS.FeedURL, sgs.DefaultFeedURL),
		checkEndpoint("ipea.base_url", s.IPEA.BaseURL, ipea.DefaultBaseURL),
		checkEndpoint("sidra.base_url", s.SIDRA.BaseURL, sidra.DefaultBaseURL),
		checkEndpoint("sidra.localities_url", s.SIDRA.LocalitiesURL, sidra.DefaultLocalitiesURL),
		checkEndpoint("sidra.feed_url", s.SIDRA.FeedURL, sidra.DefaultFeedURL),
	}
}

// envVar returns the variable overriding sources.<key>.
func envVar(key string) string {
	return EnvPrefix + "_SOURCES_" + strings.ToUpper(envReplacer.Replace(key))
}

func checkEndpoint(key, value, def string) EndpointStatus {
	status := EndpointStatus{Name: key, URL: maskURL(value)}
	switch {
	case os.Getenv(envVar(key)) != "":
		status.Source = SourceEnv
	case value == def:
		status.Source = SourceDefault
	default:
		status.Source = SourceConfig
	}
	return status
}

// maskURL hides the password of a URL carrying credentials.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxx")
	}
	return u.String()
}
