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

package interpreter

import "regexp"

// ansiEscapes matches CSI sequences (colors, cursor moves, status queries),
// OSC sequences (window titles) and two-byte ESC codes. An escape cut off at
// the end of a chunk stays in place until the rest arrives.
var ansiEscapes = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(\x07|\x1b\\)|\x1b[@-Z\\-_]`)

// StripEscapes removes terminal escape sequences from raw utility output.
// Interactive utilities repaint prompts with colors and cursor movement that
// would otherwise defeat substring matching.
func StripEscapes(raw []byte) []byte {
	return ansiEscapes.ReplaceAll(raw, nil)
}
