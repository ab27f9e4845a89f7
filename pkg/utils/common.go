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

package utils

import "strings"

// IsDigits reports whether s is non-empty and made of ASCII digits only.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// RedactArgs renders a command line for logging with every argument that
// matches one of the given secrets replaced by a mask. Credentials travel on
// argv to the utilities but must never reach a log.
func RedactArgs(args []string, secrets ...string) string {
	masked := make([]string, len(args))
	for i, arg := range args {
		masked[i] = arg
		for _, secret := range secrets {
			if secret != "" && arg == secret {
				masked[i] = "******"
				break
			}
		}
	}
	return strings.Join(masked, " ")
}
