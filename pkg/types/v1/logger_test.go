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
	"bytes"
	"reflect"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

// Test logger is same type as a logrus.Logger
func TestNewLogger(t *testing.T) {
	RegisterTestingT(t)
	l1 := v1.NewLogger()
	l2 := logrus.New()
	Expect(reflect.TypeOf(l1).Kind()).To(Equal(reflect.TypeOf(l2).Kind()))
}

// Test logger is same type as a logrus.Logger
func TestNewNullLogger(t *testing.T) {
	RegisterTestingT(t)
	l1 := v1.NewNullLogger()
	l2 := logrus.New()
	Expect(reflect.TypeOf(l1).Kind()).To(Equal(reflect.TypeOf(l2).Kind()))
}

func TestNewBufferLogger(t *testing.T) {
	RegisterTestingT(t)
	b := &bytes.Buffer{}
	l := v1.NewBufferLogger(b)
	l.Info("some message")
	Expect(b.String()).To(ContainSubstring("some message"))
}

func TestIsDebugLevel(t *testing.T) {
	RegisterTestingT(t)
	l := v1.NewNullLogger()
	Expect(v1.IsDebugLevel(l)).To(BeFalse())
	l.SetLevel(v1.DebugLevel())
	Expect(v1.IsDebugLevel(l)).To(BeTrue())
}
