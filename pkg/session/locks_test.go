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
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ykprov/ykprov-cli/pkg/session"
)

var _ = Describe("SerialLocks", Label("session", "locks"), func() {
	var locks *session.SerialLocks
	BeforeEach(func() {
		locks = session.NewSerialLocks()
	})
	It("holds one serial at a time", func() {
		locks.Lock("12345678")
		Expect(locks.TryLock("12345678")).To(BeFalse())
		locks.Unlock("12345678")
		Expect(locks.TryLock("12345678")).To(BeTrue())
		locks.Unlock("12345678")
	})
	It("keeps serials independent", func() {
		locks.Lock("12345678")
		Expect(locks.TryLock("87654321")).To(BeTrue())
		locks.Unlock("87654321")
		locks.Unlock("12345678")
	})
	It("blocks a second operation until the first releases", func() {
		var stage int32
		locks.Lock("12345678")
		released := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			locks.Lock("12345678")
			defer locks.Unlock("12345678")
			Expect(atomic.LoadInt32(&stage)).To(Equal(int32(1)))
			close(released)
		}()
		// the second operation must not enter while the serial is held
		Consistently(released, "200ms").ShouldNot(BeClosed())
		atomic.StoreInt32(&stage, 1)
		locks.Unlock("12345678")
		Eventually(released, "2s").Should(BeClosed())
	})
	It("reports waiting through a failed try", func() {
		locks.Lock("12345678")
		acquired := locks.TryLock("12345678")
		Expect(acquired).To(BeFalse())
		done := make(chan struct{})
		go func() {
			locks.Lock("12345678")
			locks.Unlock("12345678")
			close(done)
		}()
		time.Sleep(50 * time.Millisecond)
		locks.Unlock("12345678")
		Eventually(done, "2s").Should(BeClosed())
	})
})
