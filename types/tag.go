// Copyright 2026 The Clubledger Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"fmt"
)

// TagName returns the variant name for v, or a placeholder for unknown tags
func TagName[T ~uint8](names []string, typeName string, v T) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", typeName, uint8(v))
}

func MarshalTag[T ~uint8](names []string, what string, v T) ([]byte, error) {
	if int(v) >= len(names) {
		return nil, NewDomainError(
			KindInvalidParameters,
			"unknown %s tag %d",
			what,
			uint8(v),
		)
	}
	return []byte(names[v]), nil
}

// UnmarshalTag matches the variant name exactly. Unknown tags are rejected
// instead of falling back to a default variant.
func UnmarshalTag[T ~uint8](names []string, what string, data []byte, out *T) error {
	for i, name := range names {
		if name == string(data) {
			*out = T(i) //nolint:gosec // len(names) is tiny
			return nil
		}
	}
	return NewDomainError(
		KindInvalidParameters,
		"unknown %s %q",
		what,
		string(data),
	)
}
