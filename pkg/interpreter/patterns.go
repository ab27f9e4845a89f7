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

import "strings"

// The identity utility renders prompts differently across versions and
// platforms, so recognition is substring based and deliberately loose.

func isGenerating(line string) bool {
	return strings.Contains(line, "Generating key")
}

func isPinPrompt(line string) bool {
	return strings.Contains(line, "Enter PIN") ||
		strings.Contains(line, "PIN:") ||
		strings.Contains(line, "PIN for")
}

func isTouchPrompt(line string) bool {
	return strings.Contains(line, "Please touch") ||
		strings.Contains(line, "Touch your") ||
		strings.Contains(line, "👆") ||
		strings.Contains(line, "touch") ||
		// age CLI reports a pending plugin touch as "waiting on"
		strings.Contains(line, "waiting on")
}

func isErrorOutput(line string) bool {
	return strings.Contains(line, "error") ||
		strings.Contains(line, "Error") ||
		strings.Contains(line, "failed") ||
		strings.Contains(line, "Failed")
}
