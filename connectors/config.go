package connectors

import (
	"strconv"

	"dario.cat/mergo"
)

/*
 * ----------------------------------------------------------------------------
 * CONNECTION CONFIGURATION
 * ----------------------------------------------------------------------------
 *
 * Config describes where a connection goes and how its session is prepared.
 * Read and Write list optional endpoints for a read/write split: each entry
 * overrides the top-level fields it sets, everything else is inherited.
 *
 * @author Ahmet ALTUN
 * @github github.com/biyonik
 * @linkedin linkedin.com/in/biyonik
 * @email ahmet.altun60@gmail.com
 * ----------------------------------------------------------------------------
 */

// Config is the configuration of one named connection.
type Config struct {
	Driver      string            `mapstructure:"driver" yaml:"driver" json:"driver"`
	Host        string            `mapstructure:"host" yaml:"host,omitempty" json:"host,omitempty"`
	Port        int               `mapstructure:"port" yaml:"port,omitempty" json:"port,omitempty"`
	UnixSocket  string            `mapstructure:"unix_socket" yaml:"unix_socket,omitempty" json:"unix_socket,omitempty"`
	Database    string            `mapstructure:"database" yaml:"database,omitempty" json:"database,omitempty"`
	Username    string            `mapstructure:"username" yaml:"username,omitempty" json:"username,omitempty"`
	Password    string            `mapstructure:"password" yaml:"password,omitempty" json:"password,omitempty"`
	Charset     string            `mapstructure:"charset" yaml:"charset,omitempty" json:"charset,omitempty"`
	Collation   string            `mapstructure:"collation" yaml:"collation,omitempty" json:"collation,omitempty"`
	Strict      bool              `mapstructure:"strict" yaml:"strict,omitempty" json:"strict,omitempty"`
	Prefix      string            `mapstructure:"prefix" yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Lazy        bool              `mapstructure:"lazy" yaml:"lazy,omitempty" json:"lazy,omitempty"`
	Schema      string            `mapstructure:"schema" yaml:"schema,omitempty" json:"schema,omitempty"`
	PgsqlDriver string            `mapstructure:"pgsql_driver" yaml:"pgsql_driver,omitempty" json:"pgsql_driver,omitempty"`
	TLS         bool              `mapstructure:"tls" yaml:"tls,omitempty" json:"tls,omitempty"`
	Options     map[string]string `mapstructure:"options" yaml:"options,omitempty" json:"options,omitempty"`
	Read        []Config          `mapstructure:"read" yaml:"read,omitempty" json:"read,omitempty"`
	Write       []Config          `mapstructure:"write" yaml:"write,omitempty" json:"write,omitempty"`
}

// HasReadWriteSplit reports whether the config lists read endpoints.
func (c Config) HasReadWriteSplit() bool {
	return len(c.Read) > 0
}

// Merge returns c with the fields set on endpoint applied on top. The result never
// carries Read or Write lists.
func (c Config) Merge(endpoint Config) (Config, error) {
	merged := c
	merged.Read, merged.Write = nil, nil
	if c.Options != nil {
		merged.Options = make(map[string]string, len(c.Options))
		for k, v := range c.Options {
			merged.Options[k] = v
		}
	}

	endpoint.Read, endpoint.Write = nil, nil
	if err := mergo.Merge(&merged, endpoint, mergo.WithOverride); err != nil {
		return Config{}, err
	}
	return merged, nil
}

// Params returns the configuration as name/value pairs for error messages.
// The password and the endpoint lists are left out.
func (c Config) Params() map[string]any {
	params := map[string]any{
		"driver":   c.Driver,
		"host":     c.Host,
		"database": c.Database,
		"username": c.Username,
		"prefix":   c.Prefix,
	}
	if c.Port > 0 {
		params["port"] = strconv.Itoa(c.Port)
	}
	if c.UnixSocket != "" {
		params["unix_socket"] = c.UnixSocket
	}
	if c.Charset != "" {
		params["charset"] = c.Charset
	}
	if c.Collation != "" {
		params["collation"] = c.Collation
	}
	if c.Schema != "" {
		params["schema"] = c.Schema
	}
	return params
}
