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

package action

import (
	"github.com/ykprov/ykprov-cli/pkg/ageplugin"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
	"github.com/ykprov/ykprov-cli/pkg/ykman"
)

// ListAction answers the read-only enumeration queries the CLI exposes.
// Everything here runs over direct sessions and touches nothing.
type ListAction struct {
	cfg *v1.RunConfig
}

func NewListAction(cfg *v1.RunConfig) *ListAction {
	return &ListAction{cfg: cfg}
}

// Devices lists the connected tokens.
func (l *ListAction) Devices() ([]v1.Device, error) {
	return ykman.New(l.cfg).ListDevices()
}

// Recipients lists the identities of all connected tokens as the identity
// utility reports them.
func (l *ListAction) Recipients() ([]v1.Recipient, error) {
	return ageplugin.New(l.cfg).ListRecipients()
}

// Registered lists the devices the registry already owns.
func (l *ListAction) Registered() ([]v1.RegistryEntry, error) {
	return l.cfg.Registry.List()
}
