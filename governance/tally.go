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
	"math/bits"

	"github.com/ikubchain/clubledger/types"
)

// Tally holds mechanism-dependent vote weights per choice
type Tally struct {
	Aye     uint64 `json:"aye,string"`
	Nay     uint64 `json:"nay,string"`
	Abstain uint64 `json:"abstain,string"`
}

func (t *Tally) add(choice VoteChoice, weight uint64) error {
	var target *uint64
	switch choice {
	case ChoiceAye:
		target = &t.Aye
	case ChoiceNay:
		target = &t.Nay
	case ChoiceAbstain:
		target = &t.Abstain
	default:
		return types.NewInvariantError("tally: unknown vote choice %d", choice)
	}
	sum, carry := bits.Add64(*target, weight, 0)
	if carry != 0 {
		return types.NewDomainError(
			types.KindInvalidParameters,
			"%s tally overflows",
			choice,
		)
	}
	*target = sum
	return nil
}

func (t *Tally) sub(choice VoteChoice, weight uint64) error {
	var target *uint64
	switch choice {
	case ChoiceAye:
		target = &t.Aye
	case ChoiceNay:
		target = &t.Nay
	case ChoiceAbstain:
		target = &t.Abstain
	default:
		return types.NewInvariantError("tally: unknown vote choice %d", choice)
	}
	if *target < weight {
		return types.NewInvariantError(
			"tally: removing weight %d from %s total %d",
			weight,
			choice,
			*target,
		)
	}
	*target -= weight
	return nil
}

// MeetsThreshold reports whether aye*100 >= threshold*(aye+nay) with aye+nay
// non-zero. Abstentions never enter the denominator. The comparison is done
// on 128-bit integers.
func MeetsThreshold(t Tally, threshold uint8) bool {
	sumLo, sumHi := bits.Add64(t.Aye, t.Nay, 0)
	if sumLo == 0 && sumHi == 0 {
		return false
	}
	lhsHi, lhsLo := bits.Mul64(t.Aye, 100)
	rhsHi, rhsLo := bits.Mul64(sumLo, uint64(threshold))
	rhsHi += sumHi * uint64(threshold)
	if lhsHi != rhsHi {
		return lhsHi > rhsHi
	}
	return lhsLo >= rhsLo
}

// resolveDelegated credits the direct votes of active members, then every
// non-voting active member to the choice of the first of those voters along
// its delegation chain. A member who left keeps no say.
func resolveDelegated(
	votes map[types.AccountId]*Vote,
	delegates map[types.AccountId]types.AccountId,
	activeMembers []types.AccountId,
) (Tally, error) {
	direct := make(map[types.AccountId]*Vote, len(votes))
	for _, member := range activeMembers {
		if v, ok := votes[member]; ok {
			direct[member] = v
		}
	}
	var ret Tally
	for _, v := range direct {
		if err := ret.add(v.Choice, 1); err != nil {
			return Tally{}, err
		}
	}
	for _, member := range activeMembers {
		if _, voted := direct[member]; voted {
			continue
		}
		cur := member
		// A delegation chain can be at most as long as the delegate map
		for range len(delegates) {
			next, ok := delegates[cur]
			if !ok {
				break
			}
			if v, voted := direct[next]; voted {
				if err := ret.add(v.Choice, 1); err != nil {
					return Tally{}, err
				}
				break
			}
			cur = next
		}
	}
	return ret, nil
}
