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

// Package config assembles the runtime collaborators an operation needs.
// Every collaborator can be swapped through a functional option, which is
// how tests inject fakes.
package config

import (
	"github.com/twpayne/go-vfs/v4"

	"github.com/ykprov/ykprov-cli/pkg/constants"
	"github.com/ykprov/ykprov-cli/pkg/registry"
	"github.com/ykprov/ykprov-cli/pkg/session"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

type GenericOptions func(a *v1.Config) error

func WithFs(fs v1.FS) func(r *v1.Config) error {
	return func(r *v1.Config) error {
		r.Fs = fs
		return nil
	}
}

func WithLogger(logger v1.Logger) func(r *v1.Config) error {
	return func(r *v1.Config) error {
		r.Logger = logger
		return nil
	}
}

func WithRunner(runner v1.Runner) func(r *v1.Config) error {
	return func(r *v1.Config) error {
		r.Runner = runner
		return nil
	}
}

func WithSessions(controller v1.SessionController) func(r *v1.Config) error {
	return func(r *v1.Config) error {
		r.Sessions = controller
		return nil
	}
}

func WithRegistry(reg v1.Registry) func(r *v1.Config) error {
	return func(r *v1.Config) error {
		r.Registry = reg
		return nil
	}
}

func WithProgress(sink v1.ProgressSink) func(r *v1.Config) error {
	return func(r *v1.Config) error {
		r.Progress = sink
		return nil
	}
}

func WithLocks(locks v1.DeviceLock) func(r *v1.Config) error {
	return func(r *v1.Config) error {
		r.Locks = locks
		return nil
	}
}

// NewConfig builds a Config with usable defaults for everything the given
// options left unset.
func NewConfig(opts ...GenericOptions) *v1.Config {
	log := v1.NewLogger()
	c := &v1.Config{
		Fs:     vfs.OSFS,
		Logger: log,
	}
	for _, o := range opts {
		err := o(c)
		if err != nil {
			log.Errorf("error applying config option: %s", err.Error())
			return nil
		}
	}

	// runner and sessions come last so they pick up the configured logger
	if c.Runner == nil {
		c.Runner = &v1.RealRunner{Logger: c.Logger}
	}
	if c.Runner.GetLogger() == nil {
		c.Runner.SetLogger(c.Logger)
	}
	if c.Sessions == nil {
		c.Sessions = session.NewController(c.Logger)
	}
	if c.Locks == nil {
		c.Locks = session.NewSerialLocks()
	}
	if c.Progress == nil {
		c.Progress = v1.NullSink{}
	}
	return c
}

// NewRunConfig returns a RunConfig with the compiled-in defaults applied on
// top of NewConfig. The registry is attached last so it sees the final
// filesystem and registry path.
func NewRunConfig(opts ...GenericOptions) *v1.RunConfig {
	config := NewConfig(opts...)
	r := &v1.RunConfig{
		Ykman:          constants.YkmanBinary,
		AgePlugin:      constants.AgePluginBinary,
		RegistryPath:   constants.RegistryPath,
		CommandTimeout: constants.CommandTimeout,
		TouchTimeout:   constants.TouchTimeout,
		PinInjectDelay: constants.PinInjectDelay,
		Config:         *config,
	}
	if r.Registry == nil {
		r.Registry = registry.New(r)
	}
	return r
}

// NewProvisionSpec returns a ProvisionSpec with defaults for everything a
// flag or config file may leave unset. PIN and PUK have no default on
// purpose: factory values are never assumed for the new credentials.
func NewProvisionSpec() *v1.ProvisionSpec {
	return &v1.ProvisionSpec{
		TouchPolicy: constants.TouchPolicyCached,
	}
}

func NewRetrieveSpec() *v1.RetrieveSpec {
	return &v1.RetrieveSpec{}
}

func NewStatusSpec() *v1.StatusSpec {
	return &v1.StatusSpec{}
}

func NewResetSpec() *v1.ResetSpec {
	return &v1.ResetSpec{}
}
