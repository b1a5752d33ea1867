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

package governance

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/ikubchain/clubledger/types"
)

// ConvictionEntry maps a minimum lock length to a rational multiplier
type ConvictionEntry struct {
	LockBlocks  uint64 `yaml:"lockBlocks"  json:"lockBlocks"`
	Numerator   uint64 `yaml:"numerator"   json:"numerator"`
	Denominator uint64 `yaml:"denominator" json:"denominator"`
}

// ConvictionTable is a versioned lock-to-multiplier curve. The version is
// recorded on every conviction proposal because the curve decides outcomes.
type ConvictionTable struct {
	Version string            `yaml:"version" json:"version"`
	Entries []ConvictionEntry `yaml:"entries" json:"entries"`
}

// DefaultConvictionTable is conviction/v1: 0.1x without a lock, then 1x to 6x
// as the lock doubles from 100 to 3200 blocks
var DefaultConvictionTable = ConvictionTable{
	Version: "conviction/v1",
	Entries: []ConvictionEntry{
		{LockBlocks: 0, Numerator: 1, Denominator: 10},
		{LockBlocks: 100, Numerator: 1, Denominator: 1},
		{LockBlocks: 200, Numerator: 2, Denominator: 1},
		{LockBlocks: 400, Numerator: 3, Denominator: 1},
		{LockBlocks: 800, Numerator: 4, Denominator: 1},
		{LockBlocks: 1600, Numerator: 5, Denominator: 1},
		{LockBlocks: 3200, Numerator: 6, Denominator: 1},
	},
}

// Validate requires a named table starting at lock 0 that strictly increases
// in both lock length and multiplier
func (t ConvictionTable) Validate() error {
	if t.Version == "" {
		return errors.New("conviction table version must not be empty")
	}
	if len(t.Entries) == 0 {
		return errors.New("conviction table must have at least one entry")
	}
	if t.Entries[0].LockBlocks != 0 {
		return errors.New("conviction table must start at lock 0")
	}
	for i, entry := range t.Entries {
		if entry.Denominator == 0 {
			return fmt.Errorf("conviction entry %d has zero denominator", i)
		}
		if i == 0 {
			continue
		}
		prev := t.Entries[i-1]
		if entry.LockBlocks <= prev.LockBlocks {
			return fmt.Errorf(
				"conviction entry %d lock %d does not increase",
				i,
				entry.LockBlocks,
			)
		}
		if !ratLess(prev, entry) {
			return fmt.Errorf(
				"conviction entry %d multiplier %d/%d does not increase",
				i,
				entry.Numerator,
				entry.Denominator,
			)
		}
	}
	return nil
}

// Lookup returns the entry with the largest lock not exceeding lockBlocks
func (t ConvictionTable) Lookup(lockBlocks uint64) ConvictionEntry {
	ret := t.Entries[0]
	for _, entry := range t.Entries[1:] {
		if entry.LockBlocks > lockBlocks {
			break
		}
		ret = entry
	}
	return ret
}

// Weight returns floor(stake * multiplier)
func (e ConvictionEntry) Weight(stake types.Amount) (uint64, error) {
	hi, lo := bits.Mul64(uint64(stake), e.Numerator)
	if hi >= e.Denominator {
		return 0, types.NewDomainError(
			types.KindInvalidParameters,
			"conviction weight of stake %s overflows",
			stake,
		)
	}
	q, _ := bits.Div64(hi, lo, e.Denominator)
	return q, nil
}

// ratLess reports a.Numerator/a.Denominator < b.Numerator/b.Denominator
func ratLess(a, b ConvictionEntry) bool {
	lhsHi, lhsLo := bits.Mul64(a.Numerator, b.Denominator)
	rhsHi, rhsLo := bits.Mul64(b.Numerator, a.Denominator)
	if lhsHi != rhsHi {
		return lhsHi < rhsHi
	}
	return lhsLo < rhsLo
}
