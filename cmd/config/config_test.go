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

package config_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sanity-io/litter"
	"github.com/spf13/viper"
	"github.com/twpayne/go-vfs/v4/vfst"

	cmdConfig "github.com/ykprov/ykprov-cli/cmd/config"
	"github.com/ykprov/ykprov-cli/pkg/config"
	"github.com/ykprov/ykprov-cli/pkg/constants"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

func TestCmdConfigSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CLI config test suite")
}

var _ = Describe("ReadConfigRun", Label("config", "cmd"), func() {
	var fs *vfst.TestFS
	var cleanup func()

	BeforeEach(func() {
		var err error
		fs, cleanup, err = vfst.NewTestFS(map[string]interface{}{})
		Expect(err).To(BeNil())
	})
	AfterEach(func() {
		cleanup()
		viper.Reset()
	})

	It("returns the defaults when no config file exists", func() {
		cfg, err := cmdConfig.ReadConfigRun("/nonexisting",
			config.WithFs(fs), config.WithLogger(v1.NewNullLogger()))
		Expect(err).To(BeNil())
		Expect(cfg.Ykman).To(Equal(constants.YkmanBinary), litter.Sdump(cfg))
		Expect(cfg.CommandTimeout).To(Equal(constants.CommandTimeout))
	})

	It("overrides defaults from the config file", func() {
		// viper reads through the real filesystem, so seed the fixture when
		// building the test FS and resolve its real path
		fixtureFS, fixtureCleanup, err := vfst.NewTestFS(map[string]interface{}{
			"/etc/ykprov.yaml": "ykman: /usr/local/bin/ykman\ncommand-timeout: 90s\nregistry-path: /tmp/reg.yaml\n",
		})
		Expect(err).To(BeNil())
		defer fixtureCleanup()
		dir, err := fixtureFS.RawPath("/etc")
		Expect(err).To(BeNil())
		viper.SetConfigFile(dir + "/ykprov.yaml")
		Expect(viper.ReadInConfig()).To(Succeed())

		cfg, err := cmdConfig.ReadConfigRun("/nonexisting",
			config.WithFs(fixtureFS), config.WithLogger(v1.NewNullLogger()))
		Expect(err).To(BeNil())
		Expect(cfg.Ykman).To(Equal("/usr/local/bin/ykman"))
		Expect(cfg.CommandTimeout).To(Equal(90 * time.Second))
		Expect(cfg.RegistryPath).To(Equal("/tmp/reg.yaml"))
	})

	It("fails sanitize on broken values", func() {
		viper.Set("command-timeout", "0s")
		_, err := cmdConfig.ReadConfigRun("/nonexisting",
			config.WithFs(fs), config.WithLogger(v1.NewNullLogger()))
		Expect(err).To(HaveOccurred())
	})
})
