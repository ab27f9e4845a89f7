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

package session

import (
	"time"

	"github.com/ykprov/ykprov-cli/pkg/terminal"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

// Controller spawns supervised utility sessions using the platform line
// discipline.
type Controller struct {
	log v1.Logger
}

func NewController(log v1.Logger) *Controller {
	return &Controller{log: log}
}

// Spawn starts name with args in the given mode, bounded by the timeout.
// The returned session is already running. Each session gets its own
// protocol adapter: the adapter tracks query fragments split across output
// chunks, state that must never leak between concurrent sessions.
func (c *Controller) Spawn(name string, args []string, mode v1.SessionMode, timeout time.Duration) (v1.Session, error) {
	c.log.Debugf("Spawning %s session: '%s'", mode, commandLine(name, args))
	if mode == v1.InteractiveMode {
		return newInteractive(c.log, terminal.NewProtocol(), name, args, timeout)
	}
	return newDirect(c.log, terminal.NewProtocol(), name, args, timeout)
}
