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
	"encoding/json"
	"fmt"
	"math/bits"
	"strconv"
)

type ClubId uint64

type ProposalId uint64

type CycleId uint64

type WithdrawalId uint64

type DisputeId uint64

type BlockNumber uint64

const MaxAccountIdLength = 64

// AccountId is an opaque account identifier supplied by the caller. It is
// never verified here.
type AccountId string

func (a AccountId) Validate() error {
	if a == "" {
		return NewDomainError(KindInvalidParameters, "account id must not be empty")
	}
	if len(a) > MaxAccountIdLength {
		return NewDomainError(
			KindInvalidParameters,
			"account id exceeds %d bytes",
			MaxAccountIdLength,
		)
	}
	return nil
}

// Amount is an unsigned currency amount. It crosses every external boundary as
// a decimal string so that clients never round it through a float.
type Amount uint64

func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// ParseAmount accepts only a non-empty string of ASCII digits
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return 0, NewDomainError(KindInvalidParameters, "amount must not be empty")
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return 0, NewDomainError(
				KindInvalidParameters,
				"amount %q is not a decimal integer",
				s,
			)
		}
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, NewDomainError(
			KindInvalidParameters,
			"amount %q is out of range",
			s,
		)
	}
	return Amount(v), nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return NewDomainError(
			KindInvalidParameters,
			"amount must be a decimal string",
		)
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// CheckedAdd returns false when the sum overflows
func (a Amount) CheckedAdd(b Amount) (Amount, bool) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return 0, false
	}
	return Amount(sum), true
}

// CheckedSub returns false when b is larger than a
func (a Amount) CheckedSub(b Amount) (Amount, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

func (a Amount) SaturatingAdd(b Amount) Amount {
	if sum, ok := a.CheckedAdd(b); ok {
		return sum
	}
	return Amount(^uint64(0))
}

// MulDiv computes floor(a*b/c) with a 128-bit intermediate product
func MulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, NewInvariantError("division by zero in MulDiv(%d, %d, 0)", a, b)
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return 0, NewInvariantError(
			"quotient of %d*%d/%d does not fit in 64 bits",
			a,
			b,
			c,
		)
	}
	q, _ := bits.Div64(hi, lo, c)
	return q, nil
}

// RequirePositive rejects a zero amount
func RequirePositive(name string, a Amount) error {
	if a == 0 {
		return NewDomainError(KindInvalidParameters, "%s must be positive", name)
	}
	return nil
}

func (b BlockNumber) String() string {
	return fmt.Sprintf("#%d", uint64(b))
}
