// Copyright 2025 Blink Labs Software
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
	"encoding/binary"
	"errors"
)

const (
	ActionBlobKeyPrefix = "al"
	CommitMarkerBlobKey = "metadata_commit_seq"
)

func Uint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

// ActionBlobKey returns the action log key for a sequence number. Keys sort
// in sequence order.
func ActionBlobKey(seq uint64) []byte {
	key := []byte(ActionBlobKeyPrefix)
	key = append(key, Uint64ToBytes(seq)...)
	return key
}

// ActionBlobKeySeq extracts the sequence number from an action log key
func ActionBlobKeySeq(key []byte) (uint64, error) {
	if len(key) != len(ActionBlobKeyPrefix)+8 ||
		string(key[:len(ActionBlobKeyPrefix)]) != ActionBlobKeyPrefix {
		return 0, errors.New("not an action log key")
	}
	return binary.BigEndian.Uint64(key[len(ActionBlobKeyPrefix):]), nil
}
