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

package v1

import (
	"context"
	"os/exec"
	"strings"
)

// Runner executes one-shot external commands over plain pipes. All utility
// probes and credential mutations run through it; anything that needs a
// pseudo-terminal goes through a SessionController instead.
type Runner interface {
	InitCmd(string, ...string) *exec.Cmd
	Run(string, ...string) ([]byte, error)
	RunContext(ctx context.Context, command string, args ...string) ([]byte, error)
	RunCmd(cmd *exec.Cmd) ([]byte, error)
	CommandExists(command string) bool
	GetLogger() Logger
	SetLogger(logger Logger)
}

type RealRunner struct {
	Logger Logger
}

func (r RealRunner) CommandExists(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}

func (r RealRunner) InitCmd(command string, args ...string) *exec.Cmd {
	return exec.Command(command, args...)
}

func (r RealRunner) RunCmd(cmd *exec.Cmd) ([]byte, error) {
	return cmd.CombinedOutput()
}

func (r RealRunner) Run(command string, args ...string) ([]byte, error) {
	r.debug("Running cmd: '%s %s'", command, strings.Join(args, " "))
	return r.RunCmd(r.InitCmd(command, args...))
}

// RunContext runs the command with combined output, killing the child when
// the context deadline elapses. It does not log the command line: callers
// log it themselves since credentials may ride on argv.
func (r RealRunner) RunContext(ctx context.Context, command string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return out, ctx.Err()
	}
	return out, err
}

func (r RealRunner) GetLogger() Logger {
	return r.Logger
}

func (r *RealRunner) SetLogger(logger Logger) {
	r.Logger = logger
}

func (r RealRunner) debug(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Debugf(format, args...)
	}
}
