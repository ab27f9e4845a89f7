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

// Package registry persists the record of provisioned tokens as a single
// YAML document. The registry holds serials, labels and public material
// only, never credentials, so the file is plain data at rest.
package registry

import (
	"fmt"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ykprov/ykprov-cli/pkg/constants"
	ykprovError "github.com/ykprov/ykprov-cli/pkg/error"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
	"github.com/ykprov/ykprov-cli/pkg/utils"
)

type registryDoc struct {
	Entries []v1.RegistryEntry `yaml:"entries"`
}

// FileRegistry reads and writes the registry file through the configured
// filesystem. A missing file is an empty registry.
type FileRegistry struct {
	log  v1.Logger
	fs   v1.FS
	path string
}

func New(cfg *v1.RunConfig) *FileRegistry {
	return &FileRegistry{
		log:  cfg.Logger,
		fs:   cfg.Fs,
		path: cfg.RegistryPath,
	}
}

// List returns all registered entries in file order.
func (r *FileRegistry) List() ([]v1.RegistryEntry, error) {
	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

// IsRegistered reports whether the serial already has a registry entry.
func (r *FileRegistry) IsRegistered(serial string) (bool, error) {
	doc, err := r.load()
	if err != nil {
		return false, err
	}
	for _, entry := range doc.Entries {
		if entry.Serial == serial {
			return true, nil
		}
	}
	return false, nil
}

// Add appends a new entry and rewrites the file. Duplicate serials are
// rejected, one token holds one identity. A zero CreatedAt is stamped here.
func (r *FileRegistry) Add(entry v1.RegistryEntry) error {
	doc, err := r.load()
	if err != nil {
		return err
	}
	for _, existing := range doc.Entries {
		if existing.Serial == entry.Serial {
			return ykprovError.New(
				fmt.Sprintf("device %s is already registered as '%s'", entry.Serial, existing.Label),
				ykprovError.DeviceAlreadyRegistered)
		}
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	doc.Entries = append(doc.Entries, entry)
	err = r.save(doc)
	if err != nil {
		return err
	}
	r.log.Infof("Registered device %s as '%s'", entry.Serial, entry.Label)
	return nil
}

func (r *FileRegistry) load() (*registryDoc, error) {
	doc := &registryDoc{}
	if ok, _ := utils.Exists(r.fs, r.path); !ok {
		return doc, nil
	}
	data, err := r.fs.ReadFile(r.path)
	if err != nil {
		return nil, ykprovError.NewFromError(err, ykprovError.ReadingRegistry)
	}
	err = yaml.Unmarshal(data, doc)
	if err != nil {
		return nil, ykprovError.NewFromError(err, ykprovError.ReadingRegistry)
	}
	return doc, nil
}

func (r *FileRegistry) save(doc *registryDoc) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return ykprovError.NewFromError(err, ykprovError.WritingRegistry)
	}
	err = utils.MkdirAll(r.fs, filepath.Dir(r.path), constants.DirPerm)
	if err != nil {
		return ykprovError.NewFromError(err, ykprovError.CreateDir)
	}
	err = r.fs.WriteFile(r.path, data, constants.RegistryFilePerm)
	if err != nil {
		return ykprovError.NewFromError(err, ykprovError.WritingRegistry)
	}
	return nil
}
