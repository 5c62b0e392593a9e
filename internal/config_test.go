package internal

import (
	"testing"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		AESKey:            "0123456789abcdef",
		AESIV:             "fedcba9876543210",
		JWTSecret:         "secret",
		AuthTokenDuration: time.Hour,
		RequestTimeout:    30 * time.Second,
		BadgerFilepath:    "/tmp/badger",
		CooldownBackend:   CooldownMemory,
		CharReplacement:   "*",
		DefaultMaxMembers: 100,
		MaxMessageLength:  4096,
		CooldownSweep:     10 * time.Minute,
		ValueLogGC:        10 * time.Minute,
	}
}

func TestConfig_FromEnvironment(t *testing.T) {
	req := require.New(t)
	environ := env.EnvSet{
		"AES_KEY":         "0123456789abcdef",
		"AES_IV":          "fedcba9876543210",
		"JWT_SECRET":      "secret",
		"BADGER_FILEPATH": "/data/badger",
		"CENSORED_WORDS":  "darn, heck,,",
	}

	var cfg Config
	req.NoError(env.Unmarshal(environ, &cfg))

	req.NoError(cfg.Validate())
	req.Equal(time.Hour, cfg.AuthTokenDuration)
	req.Equal(3000, cfg.Port)
	req.Equal(30*time.Second, cfg.RequestTimeout)
	req.Equal(CooldownMemory, cfg.CooldownBackend)
	req.Equal(100, cfg.DefaultMaxMembers)
	req.Equal(4096, cfg.MaxMessageLength)
	req.Equal("INFO", cfg.LogLevel)
	req.Equal(10*time.Minute, cfg.CooldownSweep)
	req.Equal([]string{"darn", "heck"}, cfg.CensoredWordList())
	req.Equal(":3000", cfg.Addr())
}

func TestConfig_RequiresSecrets(t *testing.T) {
	var cfg Config
	err := env.Unmarshal(env.EnvSet{"BADGER_FILEPATH": "/data/badger"}, &cfg)
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"should reject a short key", func(c *Config) { c.AESKey = "short" }},
		{"should reject a long iv", func(c *Config) { c.AESIV = "fedcba98765432100" }},
		{"should reject a redis backend without url", func(c *Config) { c.CooldownBackend = CooldownRedis }},
		{"should reject an unknown backend", func(c *Config) { c.CooldownBackend = "disk" }},
		{"should reject a tiny default capacity", func(c *Config) { c.DefaultMaxMembers = 1 }},
		{"should reject a zero message length", func(c *Config) { c.MaxMessageLength = 0 }},
		{"should reject a multi character replacement", func(c *Config) { c.CharReplacement = "**" }},
		{"should reject a non positive token duration", func(c *Config) { c.AuthTokenDuration = 0 }},
		{"should reject a zero gc interval", func(c *Config) { c.ValueLogGC = 0 }},
		{"should reject a zero request timeout", func(c *Config) { c.RequestTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	t.Run("should accept a redis backend with url", func(t *testing.T) {
		cfg := validConfig()
		cfg.CooldownBackend = CooldownRedis
		cfg.RedisURL = "redis://localhost:6379/0"
		require.NoError(t, cfg.Validate())
	})
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("#")
	req.NoError(err)
	req.Equal('#', r)

	_, err = CharacterRune("")
	req.Error(err)
}
