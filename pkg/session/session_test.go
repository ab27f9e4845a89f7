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

package session_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ykprov/ykprov-cli/pkg/session"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

func TestSessionSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session test suite")
}

var _ = Describe("Controller", Label("session"), func() {
	var ctl *session.Controller
	BeforeEach(func() {
		ctl = session.NewController(v1.NewNullLogger())
	})

	Describe("direct sessions", func() {
		It("captures output and exit status of a short lived child", func() {
			s, err := ctl.Spawn("echo", []string{"session output"}, v1.DirectMode, 5*time.Second)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(s.Mode()).To(Equal(v1.DirectMode))
			Eventually(s.Done(), "3s").Should(BeClosed())
			code, exited := s.ExitStatus()
			Expect(exited).To(BeTrue())
			Expect(code).To(Equal(0))
			Expect(s.TimedOut()).To(BeFalse())
			Expect(string(s.Output())).To(ContainSubstring("session output"))
		})
		It("reports the child exit code", func() {
			s, err := ctl.Spawn("sh", []string{"-c", "exit 3"}, v1.DirectMode, 5*time.Second)
			Expect(err).ShouldNot(HaveOccurred())
			Eventually(s.Done(), "3s").Should(BeClosed())
			code, exited := s.ExitStatus()
			Expect(exited).To(BeTrue())
			Expect(code).To(Equal(3))
		})
		It("shows the child no terminal", func() {
			s, err := ctl.Spawn("sh", []string{"-c", "test -t 0 && echo isatty || echo notty"}, v1.DirectMode, 5*time.Second)
			Expect(err).ShouldNot(HaveOccurred())
			Eventually(s.Done(), "3s").Should(BeClosed())
			Expect(string(s.Output())).To(ContainSubstring("notty"))
		})
		It("feeds input lines to the child", func() {
			s, err := ctl.Spawn("cat", nil, v1.DirectMode, 10*time.Second)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(s.WriteLine("hello device")).To(Succeed())
			Eventually(func() string {
				return string(s.Output())
			}, "3s").Should(ContainSubstring("hello device"))
			Expect(s.Kill()).To(Succeed())
			Eventually(s.Done(), "3s").Should(BeClosed())
			_, exited := s.ExitStatus()
			Expect(exited).To(BeTrue())
		})
		It("drains output incrementally and only once", func() {
			s, err := ctl.Spawn("sh", []string{"-c", "printf 'first\\nsecond\\n'"}, v1.DirectMode, 5*time.Second)
			Expect(err).ShouldNot(HaveOccurred())
			Eventually(s.Done(), "3s").Should(BeClosed())
			drained := s.PollOutput()
			Expect(string(drained)).To(ContainSubstring("first"))
			Expect(string(drained)).To(ContainSubstring("second"))
			Expect(s.PollOutput()).To(BeNil())
			Expect(string(s.Output())).To(ContainSubstring("first"))
		})
		It("kills the child once the deadline expires", func() {
			s, err := ctl.Spawn("sleep", []string{"5"}, v1.DirectMode, 100*time.Millisecond)
			Expect(err).ShouldNot(HaveOccurred())
			Eventually(s.Done(), "3s").Should(BeClosed())
			Expect(s.TimedOut()).To(BeTrue())
			code, exited := s.ExitStatus()
			Expect(exited).To(BeTrue())
			Expect(code).NotTo(Equal(0))
		})
		It("fails to spawn a missing binary", func() {
			_, err := ctl.Spawn("thisbinarydoesnotexist", nil, v1.DirectMode, time.Second)
			Expect(err).Should(HaveOccurred())
		})
	})

	Describe("interactive sessions", func() {
		It("shows the child a terminal", func() {
			s, err := ctl.Spawn("sh", []string{"-c", "test -t 0 && echo isatty || echo notty"}, v1.InteractiveMode, 5*time.Second)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(s.Mode()).To(Equal(v1.InteractiveMode))
			Eventually(s.Done(), "3s").Should(BeClosed())
			Expect(string(s.Output())).To(ContainSubstring("isatty"))
		})
		It("delivers written lines to the child", func() {
			s, err := ctl.Spawn("sh", []string{"-c", "read line; echo \"got:$line\""}, v1.InteractiveMode, 10*time.Second)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(s.WriteLine("ping")).To(Succeed())
			Eventually(func() string {
				return string(s.Output())
			}, "3s").Should(ContainSubstring("got:ping"))
			Eventually(s.Done(), "3s").Should(BeClosed())
			code, exited := s.ExitStatus()
			Expect(exited).To(BeTrue())
			Expect(code).To(Equal(0))
		})
		It("kills the child once the deadline expires", func() {
			s, err := ctl.Spawn("sleep", []string{"5"}, v1.InteractiveMode, 150*time.Millisecond)
			Expect(err).ShouldNot(HaveOccurred())
			Eventually(s.Done(), "3s").Should(BeClosed())
			Expect(s.TimedOut()).To(BeTrue())
		})
		It("collects output produced right before exit", func() {
			s, err := ctl.Spawn("sh", []string{"-c", "echo late output"}, v1.InteractiveMode, 5*time.Second)
			Expect(err).ShouldNot(HaveOccurred())
			Eventually(s.Done(), "3s").Should(BeClosed())
			Expect(string(s.Output())).To(ContainSubstring("late output"))
		})
	})
})
