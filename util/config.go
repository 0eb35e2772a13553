package util

import (
	"log"
	"os"

	"github.com/go-yaml/yaml"
)

// Config is the gateway base configuration
type Config struct {
	Server  Server  `yaml:"server"`
	Store   Store   `yaml:"store"`
	Gateway Gateway `yaml:"gateway"`
}

type Server struct {
	Addr          string `yaml:"addr"`
	Dsn           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redisAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Store struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type Gateway struct {
	JwtSecret            string   `yaml:"jwtSecret"`
	Admins               []string `yaml:"admins"`
	TenantRefreshMinutes int      `yaml:"tenantRefreshMinutes"`
}

// Load loads gateway config from given path
func (c *Config) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal("failed to open configuration file:", err)
		return err
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&c)
	if err != nil {
		log.Fatal("failed to load configuration file:", err)
		return err
	}

	if c.Store.TimeoutSeconds == 0 {
		c.Store.TimeoutSeconds = 30
	}
	if c.Gateway.TenantRefreshMinutes == 0 {
		c.Gateway.TenantRefreshMinutes = 5
	}

	return nil
}

// IsAdmin reports whether the given address is a configured administrator.
func (c Config) IsAdmin(email string) bool {
	for _, admin := range c.Gateway.Admins {
		if admin == email {
			return true
		}
	}
	return false
}
