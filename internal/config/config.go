// Package config resolves the one configuration key the engine needs at
// startup: the mapping profile name, via spf13/viper and spf13/pflag.
//
// Resolution happens once, memoised behind sync.Once: reads happen once
// at first construction, and the memoised cache makes subsequent reads
// see the same value.
package config

import (
	"os"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soar/xidishim/profile"
)

const envProfileOverride = "XIDISHIM_PROFILE"

var (
	once     sync.Once
	resolved profile.Name
)

// Flags registers the command-line flags Resolve consults. Call it
// before pflag.Parse(), exactly once, from the demo host's main.
func Flags(fs *pflag.FlagSet) {
	fs.String("profile", string(profile.XInputNative), "mapping profile: StandardGamepad, ExtendedGamepad, XInputNative, XInputSharedTriggers")
	fs.String("listen", ":8080", "debug server listen address")
	fs.String("log-level", "info", "log level: trace, debug, info, warn, error")
}

// Resolve returns the process's mapping profile name, resolving it once
// from (in priority order) the XIDISHIM_PROFILE environment variable,
// the --profile flag, and viper config, falling back to XInputNative for
// anything unrecognised.
func Resolve(v *viper.Viper, fs *pflag.FlagSet) profile.Name {
	once.Do(func() {
		resolved = resolveOnce(v, fs)
	})
	return resolved
}

func resolveOnce(v *viper.Viper, fs *pflag.FlagSet) profile.Name {
	if env, ok := os.LookupEnv(envProfileOverride); ok {
		if n, ok := parseName(env); ok {
			return n
		}
	}

	if v != nil {
		if fs != nil {
			_ = v.BindPFlags(fs)
		}
		if n, ok := parseName(v.GetString("profile")); ok {
			return n
		}
	} else if fs != nil {
		if s, err := fs.GetString("profile"); err == nil {
			if n, ok := parseName(s); ok {
				return n
			}
		}
	}

	return profile.XInputNative
}

func parseName(s string) (profile.Name, bool) {
	switch strings.TrimSpace(s) {
	case string(profile.StandardGamepad):
		return profile.StandardGamepad, true
	case string(profile.ExtendedGamepad):
		return profile.ExtendedGamepad, true
	case string(profile.XInputNative):
		return profile.XInputNative, true
	case string(profile.XInputSharedTriggers):
		return profile.XInputSharedTriggers, true
	default:
		return "", false
	}
}

// NewViper builds a viper.Viper preconfigured to read XIDISHIM_-prefixed
// environment variables and an optional config file named
// "xidishim.yaml" in the working directory.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("XIDISHIM")
	v.AutomaticEnv()
	v.SetConfigName("xidishim")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()
	return v
}
