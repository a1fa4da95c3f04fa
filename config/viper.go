package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	bankcommon "github.com/tranvictor/bankdapp/common"
)

const EnvPrefix = "BANKDAPP"

func DefaultConfigFile() string {
	return filepath.Join(bankcommon.DataDir(), "config.yaml")
}

// Load overlays flags that were not set on the command line with values
// from the BANKDAPP_* environment and then the config file. Keys are the
// long flag names, "gas-fee-cap" reads BANKDAPP_GAS_FEE_CAP. A missing
// config file is fine.
func Load(flags *pflag.FlagSet, configFile string) error {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", configFile, err)
		}
	}
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		value := v.GetString(f.Name)
		if value == f.DefValue {
			return
		}
		if err := flags.Set(f.Name, value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}
