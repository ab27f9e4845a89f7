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

package v1_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ykprov/ykprov-cli/pkg/constants"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

var _ = Describe("Specs", Label("types", "specs"), func() {
	Describe("ProvisionSpec", func() {
		var spec *v1.ProvisionSpec
		BeforeEach(func() {
			spec = &v1.ProvisionSpec{
				Serial:      "12345678",
				Label:       "backup-key",
				Pin:         "481516",
				Puk:         "23424243",
				TouchPolicy: constants.TouchPolicyCached,
			}
		})
		It("passes with a complete spec", func() {
			Expect(spec.Sanitize()).To(Succeed())
		})
		It("passes without a serial, discovery fills it in", func() {
			spec.Serial = ""
			Expect(spec.Sanitize()).To(Succeed())
		})
		It("fails without a label", func() {
			spec.Label = ""
			Expect(spec.Sanitize()).NotTo(Succeed())
		})
		It("fails on a short PIN", func() {
			spec.Pin = "12345"
			err := spec.Sanitize()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("PIN"))
		})
		It("fails on a long PUK", func() {
			spec.Puk = "123456789"
			err := spec.Sanitize()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("PUK"))
		})
		It("fails on non-digit credentials", func() {
			spec.Pin = "12345a"
			Expect(spec.Sanitize()).NotTo(Succeed())
		})
		It("fails on an unknown touch policy", func() {
			spec.TouchPolicy = "sometimes"
			err := spec.Sanitize()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("touch policy"))
		})
	})
	Describe("RetrieveSpec", func() {
		It("requires a serial", func() {
			spec := &v1.RetrieveSpec{}
			Expect(spec.Sanitize()).NotTo(Succeed())
			spec.Serial = "12345678"
			Expect(spec.Sanitize()).To(Succeed())
		})
	})
	Describe("ResetSpec", func() {
		It("requires serial and explicit confirmation", func() {
			spec := &v1.ResetSpec{Serial: "12345678"}
			Expect(spec.Sanitize()).NotTo(Succeed())
			spec.Force = true
			Expect(spec.Sanitize()).To(Succeed())
			spec.Serial = ""
			Expect(spec.Sanitize()).NotTo(Succeed())
		})
	})
	Describe("RunConfig", func() {
		var cfg *v1.RunConfig
		BeforeEach(func() {
			cfg = &v1.RunConfig{
				Ykman:          constants.YkmanBinary,
				AgePlugin:      constants.AgePluginBinary,
				CommandTimeout: constants.CommandTimeout,
				TouchTimeout:   constants.TouchTimeout,
				PinInjectDelay: constants.PinInjectDelay,
			}
		})
		It("passes with defaults", func() {
			Expect(cfg.Sanitize()).To(Succeed())
		})
		It("fails without binaries", func() {
			cfg.Ykman = ""
			Expect(cfg.Sanitize()).NotTo(Succeed())
		})
		It("fails on non-positive timeouts", func() {
			cfg.TouchTimeout = -time.Second
			Expect(cfg.Sanitize()).NotTo(Succeed())
		})
	})
})
