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

package v1

import "io"

// TermProtocol hides the platform line discipline from session code. The
// Unix flavor terminates lines with LF and ignores control queries; the
// Windows flavor terminates with CRLF and answers cursor-position reports so
// ConPTY-style utilities do not stall waiting for a reply.
type TermProtocol interface {
	// WriteLine writes text plus the platform line terminator.
	WriteLine(w io.Writer, text string) error
	// RespondToQuery scans a raw output chunk for terminal queries that
	// demand an answer and writes the reply. It reports whether a reply
	// was sent. Chunks must be fed in arrival order: queries may split
	// across chunk boundaries.
	RespondToQuery(w io.Writer, chunk []byte) (bool, error)
}
