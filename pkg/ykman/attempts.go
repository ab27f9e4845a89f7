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

package ykman

import (
	"regexp"
	"strconv"
)

// Utility versions disagree on the wording: "2 tries remaining",
// "3 attempts left", "1 attempt remaining" have all been observed.
var attemptsExp = regexp.MustCompile(`(?i)(\d+)\s+(?:tries|attempts?|try)\s+(?:remaining|left)`)

// ParseAttempts extracts the remaining credential attempts from utility
// output. Returns -1 when the output does not state a count.
func ParseAttempts(msg string) int {
	match := attemptsExp.FindStringSubmatch(msg)
	if match == nil {
		return -1
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return -1
	}
	return n
}
