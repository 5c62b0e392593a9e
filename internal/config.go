package internal

import (
	"fmt"
	"strings"
	"time"

	"secure-chat/codec"
)

const (
	CooldownMemory = "memory"
	CooldownRedis  = "redis"
)

type Config struct {
	AESKey            string        `env:"AES_KEY,required=true"`
	AESIV             string        `env:"AES_IV,required=true"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=1h"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	Host              string        `env:"HOST"`
	Port              int           `env:"PORT,default=3000"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT,default=30s"`
	CooldownBackend   string        `env:"COOLDOWN_BACKEND,default=memory"`
	RedisURL          string        `env:"REDIS_URL"`
	CensoredWords     string        `env:"CENSORED_WORDS"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT,default=*"`
	DefaultMaxMembers int           `env:"DEFAULT_MAX_MEMBERS,default=100"`
	MaxMessageLength  int           `env:"MAX_MESSAGE_LENGTH,default=4096"`
	DebugInspect      bool          `env:"DEBUG_INSPECT,default=false"`
	CooldownSweep     time.Duration `env:"COOLDOWN_SWEEP_INTERVAL,default=10m"`
	ValueLogGC        time.Duration `env:"VALUE_LOG_GC_INTERVAL,default=10m"`
}

// Validate rejects a configuration the server must not start with.
func (c Config) Validate() error {
	if len(c.AESKey) != codec.KeySize || len(c.AESIV) != codec.KeySize {
		return fmt.Errorf("AES_KEY and AES_IV must be exactly %d bytes", codec.KeySize)
	}
	if c.AuthTokenDuration <= 0 {
		return fmt.Errorf("AUTH_TOKEN_DURATION must be positive, got %s", c.AuthTokenDuration)
	}
	if c.RequestTimeout <= 0 || c.CooldownSweep <= 0 || c.ValueLogGC <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT, COOLDOWN_SWEEP_INTERVAL and VALUE_LOG_GC_INTERVAL must be positive")
	}
	if c.DefaultMaxMembers < 2 {
		return fmt.Errorf("DEFAULT_MAX_MEMBERS must be at least 2, got %d", c.DefaultMaxMembers)
	}
	if c.MaxMessageLength < 1 {
		return fmt.Errorf("MAX_MESSAGE_LENGTH must be positive, got %d", c.MaxMessageLength)
	}
	switch c.CooldownBackend {
	case CooldownMemory:
	case CooldownRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when COOLDOWN_BACKEND=%s", CooldownRedis)
		}
	default:
		return fmt.Errorf("COOLDOWN_BACKEND must be %q or %q, got %q", CooldownMemory, CooldownRedis, c.CooldownBackend)
	}
	if _, err := CharacterRune(c.CharReplacement); err != nil {
		return err
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CensoredWordList splits CENSORED_WORDS on commas, dropping blanks.
func (c Config) CensoredWordList() []string {
	var words []string
	for _, w := range strings.Split(c.CensoredWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
