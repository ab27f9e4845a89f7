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

package error

import "errors"

// Kind classifies a provisioning failure. The orchestrator never retries on
// its own; callers switch on the kind to decide what to offer the user.
type Kind string

const (
	// KindUnknown is the zero value for errors raised outside the
	// classified failure paths.
	KindUnknown Kind = "unknown"
	// KindDeviceNotFound means no token with the requested serial is
	// reachable.
	KindDeviceNotFound Kind = "device_not_found"
	// KindInvalidState means probing found an inconsistent combination,
	// for example a factory-default PIN on a token that already holds an
	// identity.
	KindInvalidState Kind = "invalid_state"
	// KindCredentialRejected means the utility refused the current PIN or
	// PUK. The remaining-attempts counter, when present in the output, is
	// carried on the error but never consumed for automatic retries.
	KindCredentialRejected Kind = "credential_rejected"
	// KindProtocolTimeout means a session deadline elapsed. Treated as
	// "touch possibly not given", never as a tool defect.
	KindProtocolTimeout Kind = "protocol_timeout"
	// KindUnexpectedOutput means a required line never appeared in the
	// utility output, which usually indicates a version mismatch. Fatal.
	KindUnexpectedOutput Kind = "unexpected_output"
	// KindProcessSpawnFailed means the utility executable is missing or
	// not runnable.
	KindProcessSpawnFailed Kind = "process_spawn_failed"
)

// YKProvError carries an exit code and a failure kind along the error chain.
type YKProvError struct {
	err      string
	code     int
	kind     Kind
	attempts int
}

func (e *YKProvError) Error() string {
	return e.err
}

func (e *YKProvError) ExitCode() int {
	return e.code
}

func (e *YKProvError) Kind() Kind {
	return e.kind
}

// AttemptsRemaining reports the retry counter parsed from a credential
// rejection, or -1 when the utility did not include one.
func (e *YKProvError) AttemptsRemaining() int {
	return e.attempts
}

// New generates a YKProvError from a string
func New(err string, code int) error {
	return &YKProvError{err: err, code: code, kind: KindUnknown, attempts: -1}
}

// NewFromError generates a YKProvError from an existing error, maintaining
// its error message
func NewFromError(err error, code int) error {
	if err == nil {
		return nil
	}
	return &YKProvError{err: err.Error(), code: code, kind: KindUnknown, attempts: -1}
}

// NewKind generates a classified YKProvError
func NewKind(kind Kind, err string, code int) error {
	return &YKProvError{err: err, code: code, kind: kind, attempts: -1}
}

// NewCredentialRejected builds a KindCredentialRejected error carrying the
// remaining-attempts counter (-1 when unknown).
func NewCredentialRejected(err string, attempts int) error {
	return &YKProvError{err: err, code: CredentialRejected, kind: KindCredentialRejected, attempts: attempts}
}

// KindOf extracts the failure kind from an error chain, KindUnknown when the
// chain holds no YKProvError.
func KindOf(err error) Kind {
	var yErr *YKProvError
	if errors.As(err, &yErr) {
		return yErr.Kind()
	}
	return KindUnknown
}

// IsKind reports whether the error chain carries the given failure kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
