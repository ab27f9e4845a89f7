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

package ykman_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ykprov/ykprov-cli/pkg/constants"
	ykprovError "github.com/ykprov/ykprov-cli/pkg/error"
	"github.com/ykprov/ykprov-cli/pkg/mocks"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
	"github.com/ykprov/ykprov-cli/pkg/ykman"
)

func TestYkmanSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ykman test suite")
}

const infoOutput = `Device type: YubiKey 5 NFC
Serial: 17754321
Firmware version: 5.4.3
Enabled USB interfaces: OTP, FIDO, CCID
`

const factoryPivInfo = `PIV version:              5.4.3
PIN tries remaining:      3/3
Management key algorithm: TDES
WARNING: Using default PIN!
WARNING: Using default PUK!
WARNING: Using default Management key!
CHUID: No data available
CCC:   No data available
`

const hardenedPivInfo = `PIV version:              5.7.1
PIN tries remaining:      3/3
Management key algorithm: TDES
Management key is stored on the YubiKey, protected by PIN
CHUID: 3019d4e739da739ced39ce739d836858210842108421c84210c3eb
`

var _ = Describe("Ykman", Label("ykman"), func() {
	var config *v1.RunConfig
	var runner *mocks.FakeRunner
	var logger v1.Logger
	var memLog *bytes.Buffer
	var yk *ykman.Ykman

	BeforeEach(func() {
		runner = mocks.NewFakeRunner()
		memLog = &bytes.Buffer{}
		logger = v1.NewBufferLogger(memLog)
		logger.SetLevel(v1.DebugLevel())
		config = &v1.RunConfig{
			Ykman:          constants.YkmanBinary,
			AgePlugin:      constants.AgePluginBinary,
			CommandTimeout: constants.CommandTimeout,
			Config: v1.Config{
				Logger: logger,
				Runner: runner,
			},
		}
		yk = ykman.New(config)
	})

	Describe("FindSerial", func() {
		It("parses the serial out of the info report", func() {
			runner.ReturnValue = []byte(infoOutput)
			serial, err := yk.FindSerial()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(serial).To(Equal("17754321"))
			Expect(runner.CmdsMatch([][]string{{"ykman", "info"}})).To(BeNil())
		})
		It("fails as device not found when the report has no serial", func() {
			runner.ReturnValue = []byte("Device type: YubiKey 5 NFC\n")
			_, err := yk.FindSerial()
			Expect(err).Should(HaveOccurred())
			Expect(ykprovError.IsKind(err, ykprovError.KindDeviceNotFound)).To(BeTrue())
		})
		It("fails as device not found when the utility errors out", func() {
			runner.SideEffect = func(_ string, _ ...string) ([]byte, error) {
				return []byte("ERROR: Failed connecting to the YubiKey"), errors.New("exit status 1")
			}
			_, err := yk.FindSerial()
			Expect(err).Should(HaveOccurred())
			Expect(ykprovError.IsKind(err, ykprovError.KindDeviceNotFound)).To(BeTrue())
		})
		It("keeps a timeout as a timeout", func() {
			runner.SideEffect = func(_ string, _ ...string) ([]byte, error) {
				return nil, context.DeadlineExceeded
			}
			_, err := yk.FindSerial()
			Expect(err).Should(HaveOccurred())
			Expect(ykprovError.IsKind(err, ykprovError.KindProtocolTimeout)).To(BeTrue())
		})
	})

	Describe("ListDevices", func() {
		It("reports every connected token", func() {
			runner.ReturnValue = []byte(
				"YubiKey 5 NFC (5.4.3) [OTP+FIDO+CCID] Serial: 17754321\n\n" +
					"YubiKey 5C (5.7.1) [CCID] Serial: 99887766\n",
			)
			devices, err := yk.ListDevices()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(devices).To(HaveLen(2))
			Expect(devices[0].Serial).To(Equal("17754321"))
			Expect(devices[0].Name).To(Equal("YubiKey 5 NFC (5.4.3) [OTP+FIDO+CCID]"))
			Expect(devices[1].Serial).To(Equal("99887766"))
			Expect(runner.CmdsMatch([][]string{{"ykman", "list"}})).To(BeNil())
		})
		It("reports no tokens on empty output", func() {
			runner.ReturnValue = []byte("\n")
			devices, err := yk.ListDevices()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(devices).To(BeEmpty())
		})
	})

	Describe("Probe", func() {
		It("recognizes a factory fresh token", func() {
			runner.ReturnValue = []byte(factoryPivInfo)
			device, err := yk.Probe("17754321")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(device.Serial).To(Equal("17754321"))
			Expect(device.PinIsDefault).To(BeTrue())
			Expect(device.PukIsDefault).To(BeTrue())
			Expect(device.HasHardenedKey).To(BeFalse())
			Expect(device.FirmwareVersion).To(Equal("5.4.3"))
			Expect(runner.CmdsMatch([][]string{
				{"ykman", "--device", "17754321", "piv", "info"},
			})).To(BeNil())
		})
		It("recognizes a hardened token", func() {
			runner.ReturnValue = []byte(hardenedPivInfo)
			device, err := yk.Probe("17754321")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(device.PinIsDefault).To(BeFalse())
			Expect(device.PukIsDefault).To(BeFalse())
			Expect(device.HasHardenedKey).To(BeTrue())
			Expect(device.FirmwareVersion).To(Equal("5.7.1"))
		})
		It("classifies a vanished device", func() {
			runner.SideEffect = func(_ string, _ ...string) ([]byte, error) {
				return []byte("ERROR: Failed connecting to the YubiKey"), errors.New("exit status 1")
			}
			_, err := yk.Probe("17754321")
			Expect(err).Should(HaveOccurred())
			Expect(ykprovError.IsKind(err, ykprovError.KindDeviceNotFound)).To(BeTrue())
		})
	})

	Describe("ChangePIN", func() {
		It("sends old and new PIN on the command line", func() {
			err := yk.ChangePIN("17754321", "123456", "481516")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(runner.CmdsMatch([][]string{
				{"ykman", "--device", "17754321", "piv", "access", "change-pin", "-P", "123456", "-n", "481516"},
			})).To(BeNil())
		})
		It("never logs the credentials", func() {
			err := yk.ChangePIN("17754321", "123456", "481516")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(memLog.String()).NotTo(ContainSubstring("481516"))
			Expect(memLog.String()).NotTo(ContainSubstring("123456"))
			Expect(memLog.String()).To(ContainSubstring("******"))
		})
		It("reports a rejected PIN with the remaining attempts", func() {
			runner.SideEffect = func(_ string, _ ...string) ([]byte, error) {
				return []byte("ERROR: Wrong PIN, 2 tries remaining."), errors.New("exit status 1")
			}
			err := yk.ChangePIN("17754321", "111111", "481516")
			Expect(err).Should(HaveOccurred())
			Expect(ykprovError.IsKind(err, ykprovError.KindCredentialRejected)).To(BeTrue())
			var perr *ykprovError.YKProvError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.AttemptsRemaining()).To(Equal(2))
		})
		It("reports a blocked PIN without an attempt count", func() {
			runner.SideEffect = func(_ string, _ ...string) ([]byte, error) {
				return []byte("ERROR: PIN is blocked."), errors.New("exit status 1")
			}
			err := yk.ChangePIN("17754321", "111111", "481516")
			Expect(err).Should(HaveOccurred())
			Expect(ykprovError.IsKind(err, ykprovError.KindCredentialRejected)).To(BeTrue())
			var perr *ykprovError.YKProvError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.AttemptsRemaining()).To(Equal(-1))
		})
		It("maps an expired deadline to a protocol timeout", func() {
			runner.SideEffect = func(_ string, _ ...string) ([]byte, error) {
				return nil, context.DeadlineExceeded
			}
			err := yk.ChangePIN("17754321", "123456", "481516")
			Expect(err).Should(HaveOccurred())
			Expect(ykprovError.IsKind(err, ykprovError.KindProtocolTimeout)).To(BeTrue())
			var perr *ykprovError.YKProvError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.ExitCode()).To(Equal(ykprovError.ProtocolTimeout))
		})
	})

	Describe("ChangePUK", func() {
		It("sends old and new PUK on the command line", func() {
			err := yk.ChangePUK("17754321", "12345678", "23424243")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(runner.CmdsMatch([][]string{
				{"ykman", "--device", "17754321", "piv", "access", "change-puk", "-p", "12345678", "-n", "23424243"},
			})).To(BeNil())
		})
		It("reports a rejected PUK", func() {
			runner.SideEffect = func(_ string, _ ...string) ([]byte, error) {
				return []byte("ERROR: Wrong PUK, 1 try remaining."), errors.New("exit status 1")
			}
			err := yk.ChangePUK("17754321", "87654321", "23424243")
			Expect(err).Should(HaveOccurred())
			Expect(ykprovError.IsKind(err, ykprovError.KindCredentialRejected)).To(BeTrue())
		})
	})

	Describe("ProtectManagementKey", func() {
		It("generates a protected TDES key authenticating with the default", func() {
			err := yk.ProtectManagementKey("17754321", "481516")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(runner.CmdsMatch([][]string{
				{
					"ykman", "--device", "17754321", "piv", "access", "change-management-key",
					"-a", "tdes", "-p", "-g",
					"-m", constants.DefaultManagementKey,
					"-P", "481516",
				},
			})).To(BeNil())
		})
		It("masks the default key and the PIN in the log", func() {
			err := yk.ProtectManagementKey("17754321", "481516")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(memLog.String()).NotTo(ContainSubstring(constants.DefaultManagementKey))
			Expect(memLog.String()).NotTo(ContainSubstring("481516"))
		})
	})

	Describe("ResetPIV", func() {
		It("forces the reset", func() {
			err := yk.ResetPIV("17754321")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(runner.CmdsMatch([][]string{
				{"ykman", "--device", "17754321", "piv", "reset", "-f"},
			})).To(BeNil())
		})
		It("classifies unknown failures as unexpected output", func() {
			runner.SideEffect = func(_ string, _ ...string) ([]byte, error) {
				return []byte("something odd happened"), errors.New("exit status 1")
			}
			err := yk.ResetPIV("17754321")
			Expect(err).Should(HaveOccurred())
			Expect(ykprovError.IsKind(err, ykprovError.KindUnexpectedOutput)).To(BeTrue())
		})
	})

	Describe("failure classification", func() {
		It("reports a missing binary as a spawn failure", func() {
			runner.SideEffect = func(_ string, _ ...string) ([]byte, error) {
				return nil, &exec.Error{Name: "ykman", Err: exec.ErrNotFound}
			}
			err := yk.ResetPIV("17754321")
			Expect(err).Should(HaveOccurred())
			Expect(ykprovError.IsKind(err, ykprovError.KindProcessSpawnFailed)).To(BeTrue())
		})
		It("keeps the utility error text in the message", func() {
			runner.SideEffect = func(_ string, _ ...string) ([]byte, error) {
				return []byte("ERROR: Wrong PIN, 2 tries remaining."), errors.New("exit status 1")
			}
			err := yk.ChangePIN("17754321", "111111", "481516")
			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Wrong PIN"))
		})
	})

	Describe("ParseAttempts", func() {
		It("understands the wording variants", func() {
			for msg, expected := range map[string]int{
				"ERROR: Wrong PIN, 2 tries remaining.": 2,
				"Wrong PUK, 1 try remaining":           1,
				"wrong PIN, 3 attempts left":           3,
				"1 attempt remaining":                  1,
				"PIN is blocked":                       -1,
				"":                                     -1,
			} {
				Expect(ykman.ParseAttempts(msg)).To(Equal(expected), fmt.Sprintf("input %q", msg))
			}
		})
	})
})
