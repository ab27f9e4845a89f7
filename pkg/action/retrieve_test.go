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

package action_test

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ykprov/ykprov-cli/pkg/action"
	"github.com/ykprov/ykprov-cli/pkg/config"
	"github.com/ykprov/ykprov-cli/pkg/constants"
	ykprovError "github.com/ykprov/ykprov-cli/pkg/error"
	"github.com/ykprov/ykprov-cli/pkg/mocks"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

var _ = Describe("RetrieveAction", Label("action", "retrieve"), func() {
	var cfg *v1.RunConfig
	var spec *v1.RetrieveSpec
	var controller *mocks.FakeController
	var recorder *mocks.ProgressRecorder
	var memLog *bytes.Buffer

	BeforeEach(func() {
		controller = mocks.NewFakeController()
		recorder = mocks.NewProgressRecorder()
		memLog = &bytes.Buffer{}
		logger := v1.NewBufferLogger(memLog)
		cfg = config.NewRunConfig(
			config.WithLogger(logger),
			config.WithRunner(mocks.NewFakeRunner()),
			config.WithSessions(controller),
			config.WithRegistry(mocks.NewFakeRegistry()),
			config.WithProgress(recorder),
		)
		spec = config.NewRetrieveSpec()
		spec.Serial = testSerial
	})

	It("reads the identity over a direct session with no input", func() {
		s := mocks.NewFakeSession(v1.DirectMode)
		controller.Queue(s)
		controller.OnSpawn = func(call mocks.SpawnCall, fake *mocks.FakeSession) {
			fake.Emit(identityFile + "\n")
			fake.Exit(0)
		}
		result, err := action.NewRetrieveAction(cfg, spec).Run()
		Expect(err).To(BeNil())
		Expect(result.IdentityTag).To(HavePrefix(constants.IdentityPrefix))
		Expect(result.Recipient).To(HavePrefix(constants.RecipientPrefix))
		Expect(s.WrittenLines()).To(BeEmpty())
		Expect(s.WrittenBytes()).To(BeEmpty())
		Expect(recorder.Phases()).To(Equal([]v1.ProgressPhase{
			v1.PhaseStarting,
			v1.PhaseCompleted,
		}))
	})

	It("still parses an identity line lacking its final newline", func() {
		controller.Queue(mocks.NewFakeSession(v1.DirectMode))
		controller.OnSpawn = func(call mocks.SpawnCall, fake *mocks.FakeSession) {
			// output ends exactly at the identity tag, no terminator
			fake.Emit(identityFile)
			fake.Exit(0)
		}
		result, err := action.NewRetrieveAction(cfg, spec).Run()
		Expect(err).To(BeNil())
		Expect(result.IdentityTag).To(Equal("AGE-PLUGIN-YUBIKEY-1ABCDEF2GHIJKL3MNOPQR"))
	})

	It("classifies a spawn failure", func() {
		controller.SpawnErr = errFake
		_, err := action.NewRetrieveAction(cfg, spec).Run()
		Expect(err).To(HaveOccurred())
		Expect(ykprovError.IsKind(err, ykprovError.KindProcessSpawnFailed)).To(BeTrue())
		last, ok := recorder.Last()
		Expect(ok).To(BeTrue())
		Expect(last.Phase).To(Equal(v1.PhaseFailed))
	})

	It("classifies a timed out session", func() {
		controller.Queue(mocks.NewFakeSession(v1.DirectMode))
		controller.OnSpawn = func(call mocks.SpawnCall, fake *mocks.FakeSession) {
			fake.TimeoutNow()
		}
		_, err := action.NewRetrieveAction(cfg, spec).Run()
		Expect(err).To(HaveOccurred())
		Expect(ykprovError.IsKind(err, ykprovError.KindProtocolTimeout)).To(BeTrue())
	})

	It("requires a serial", func() {
		spec.Serial = ""
		_, err := action.NewRetrieveAction(cfg, spec).Run()
		Expect(err).To(HaveOccurred())
		Expect(controller.Spawned()).To(BeEmpty())
	})
})

var _ = Describe("StatusAction", Label("action", "status"), func() {
	var cfg *v1.RunConfig
	var runner *mocks.FakeRunner
	var controller *mocks.FakeController
	var reg *mocks.FakeRegistry

	BeforeEach(func() {
		runner = mocks.NewFakeRunner()
		controller = mocks.NewFakeController()
		reg = mocks.NewFakeRegistry()
		cfg = config.NewRunConfig(
			config.WithLogger(v1.NewNullLogger()),
			config.WithRunner(runner),
			config.WithSessions(controller),
			config.WithRegistry(reg),
		)
		runner.SideEffect = func(_ string, args ...string) ([]byte, error) {
			return []byte(customPivInfo), nil
		}
	})

	It("reports a registered device with its registry label", func() {
		Expect(reg.Add(v1.RegistryEntry{
			Serial: testSerial, Label: "backups", IdentityTag: "AGE-PLUGIN-YUBIKEY-1TAG",
			CreatedAt: time.Now(),
		})).To(Succeed())
		controller.Queue(mocks.NewFakeSession(v1.DirectMode))
		controller.OnSpawn = func(call mocks.SpawnCall, fake *mocks.FakeSession) {
			fake.Emit(listingWithIdentity)
			fake.Exit(0)
		}
		spec := config.NewStatusSpec()
		spec.Serial = testSerial
		device, state, err := action.NewStatusAction(cfg, spec).Run()
		Expect(err).To(BeNil())
		Expect(state).To(Equal(v1.StateRegistered))
		Expect(device.Name).To(Equal("backups"))
		Expect(device.IdentityTag).To(Equal("AGE-PLUGIN-YUBIKEY-1TAG"))
		Expect(device.Recipient).To(HavePrefix(constants.RecipientPrefix))
	})

	It("reports a blank reused device", func() {
		controller.Queue(mocks.NewFakeSession(v1.DirectMode))
		controller.OnSpawn = func(call mocks.SpawnCall, fake *mocks.FakeSession) {
			fake.Exit(1)
		}
		spec := config.NewStatusSpec()
		spec.Serial = testSerial
		_, state, err := action.NewStatusAction(cfg, spec).Run()
		Expect(err).To(BeNil())
		Expect(state).To(Equal(v1.StateReusedNoHardening))
	})
})

var _ = Describe("ListAction", Label("action", "list"), func() {
	var cfg *v1.RunConfig
	var runner *mocks.FakeRunner
	var controller *mocks.FakeController
	var reg *mocks.FakeRegistry

	BeforeEach(func() {
		runner = mocks.NewFakeRunner()
		controller = mocks.NewFakeController()
		reg = mocks.NewFakeRegistry()
		cfg = config.NewRunConfig(
			config.WithLogger(v1.NewNullLogger()),
			config.WithRunner(runner),
			config.WithSessions(controller),
			config.WithRegistry(reg),
		)
	})

	It("lists connected devices with their serials", func() {
		runner.SideEffect = func(_ string, _ ...string) ([]byte, error) {
			return []byte("YubiKey 5 NFC (5.4.3) [OTP+FIDO+CCID] Serial: 12345678\n"), nil
		}
		devices, err := action.NewListAction(cfg).Devices()
		Expect(err).To(BeNil())
		Expect(devices).To(HaveLen(1))
		Expect(devices[0].Serial).To(Equal(testSerial))
		Expect(devices[0].Name).To(ContainSubstring("YubiKey 5 NFC"))
	})

	It("lists recipients from the identity listing", func() {
		controller.Queue(mocks.NewFakeSession(v1.DirectMode))
		controller.OnSpawn = func(call mocks.SpawnCall, fake *mocks.FakeSession) {
			fake.Emit(listingWithIdentity)
			fake.Exit(0)
		}
		recipients, err := action.NewListAction(cfg).Recipients()
		Expect(err).To(BeNil())
		Expect(recipients).To(HaveLen(1))
		Expect(recipients[0].Serial).To(Equal(testSerial))
		Expect(recipients[0].Name).To(Equal("backups"))
	})

	It("lists registered devices from the registry", func() {
		Expect(reg.Add(v1.RegistryEntry{Serial: testSerial, Label: "backups"})).To(Succeed())
		entries, err := action.NewListAction(cfg).Registered()
		Expect(err).To(BeNil())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Label).To(Equal("backups"))
	})
})

var _ = Describe("ResetAction", Label("action", "reset"), func() {
	var cfg *v1.RunConfig
	var runner *mocks.FakeRunner

	BeforeEach(func() {
		runner = mocks.NewFakeRunner()
		cfg = config.NewRunConfig(
			config.WithLogger(v1.NewNullLogger()),
			config.WithRunner(runner),
			config.WithSessions(mocks.NewFakeController()),
			config.WithRegistry(mocks.NewFakeRegistry()),
		)
	})

	It("refuses to run without confirmation", func() {
		spec := config.NewResetSpec()
		spec.Serial = testSerial
		err := action.NewResetAction(cfg, spec).Run()
		Expect(err).To(HaveOccurred())
		Expect(runner.GetCmds()).To(BeEmpty())
	})

	It("resets the PIV application when forced", func() {
		spec := config.NewResetSpec()
		spec.Serial = testSerial
		spec.Force = true
		Expect(action.NewResetAction(cfg, spec).Run()).To(Succeed())
		Expect(runner.CmdsMatch([][]string{
			{"ykman", "--device", testSerial, "piv", "reset", "-f"},
		})).To(BeNil())
	})
})
