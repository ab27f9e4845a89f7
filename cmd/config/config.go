/*
Copyright © 2024 - 2026 The ykprov Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config reads the runtime configuration for a CLI invocation:
// compiled-in defaults, then the YAML config file, then YKPROV_* environment
// variables, each layer overriding the previous one.
package config

import (
	"io"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/ykprov/ykprov-cli/pkg/config"
	"github.com/ykprov/ykprov-cli/pkg/constants"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

// decodeHook parses the timeout values, so the config file can say "90s"
// instead of nanosecond integers.
var decodeHook = viper.DecodeHook(
	mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	),
)

// ReadConfigRun builds the RunConfig for one command invocation. configDir
// falls back to the compiled-in default when empty; a missing config file is
// not an error, the defaults simply stand.
func ReadConfigRun(configDir string, opts ...config.GenericOptions) (*v1.RunConfig, error) {
	cfg := config.NewRunConfig(opts...)

	configLogger(cfg.Logger, cfg.Fs)

	if configDir == "" {
		configDir = constants.ConfigDir
	}
	viper.AddConfigPath(configDir)
	viper.SetConfigType("yaml")
	viper.SetConfigName(strings.TrimSuffix(constants.RunConfigFile, ".yaml"))
	// If a config file is found, read it in.
	_ = viper.MergeInConfig()

	// Set the prefix for vars so we get only the ones starting with YKPROV
	viper.SetEnvPrefix("YKPROV")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// unmarshal all the vars into the config object
	err := viper.Unmarshal(cfg, decodeHook)
	if err != nil {
		cfg.Logger.Warnf("error unmarshalling RunConfig: %s", err)
	}

	err = cfg.Sanitize()
	cfg.Logger.Debugf("Full config loaded: ykman=%s age-plugin=%s registry=%s",
		cfg.Ykman, cfg.AgePlugin, cfg.RegistryPath)
	return cfg, err
}

func configLogger(log v1.Logger, vfs v1.FS) {
	// Set debug level
	if viper.GetBool("debug") {
		log.SetLevel(v1.DebugLevel())
	}

	// Set formatter so both file and stdout format are equal
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:      true,
		DisableColors:    false,
		DisableTimestamp: false,
		FullTimestamp:    true,
	})

	// Logfile
	logfile := viper.GetString("logfile")
	if logfile != "" {
		o, err := vfs.OpenFile(logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, constants.FilePerm)

		if err != nil {
			log.Errorf("Could not open %s for logging to file: %s", logfile, err.Error())
		}

		if viper.GetBool("quiet") { // if quiet is set, only set the log to the file
			log.SetOutput(o)
		} else { // else set it to both stdout and the file
			mw := io.MultiWriter(os.Stdout, o)
			log.SetOutput(mw)
		}
	} else { // no logfile
		if viper.GetBool("quiet") { // quiet is enabled so discard all logging
			log.SetOutput(io.Discard)
		} else { // default to stdout
			log.SetOutput(os.Stdout)
		}
	}
}
