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

package treasury

import (
	"cmp"
	"errors"
	"math/bits"
	"slices"
	"strings"

	"github.com/ikubchain/clubledger/types"
)

const (
	DefaultContributionPeriod uint64       = 10000
	DefaultMinContribution    types.Amount = 1000
	DefaultMinSignatures                   = 3
	DefaultMaxSigners                      = 10
)

type Config struct {
	DefaultContributionPeriod uint64
	MinContribution           types.Amount
	MinSignatures             int
	MaxSigners                int
}

func DefaultConfig() Config {
	return Config{
		DefaultContributionPeriod: DefaultContributionPeriod,
		MinContribution:           DefaultMinContribution,
		MinSignatures:             DefaultMinSignatures,
		MaxSigners:                DefaultMaxSigners,
	}
}

func (c Config) Validate() error {
	if c.DefaultContributionPeriod == 0 {
		return errors.New("default contribution period must be positive")
	}
	if c.MinContribution == 0 {
		return errors.New("minimum contribution must be positive")
	}
	if c.MinSignatures < 1 || c.MaxSigners < c.MinSignatures {
		return errors.New("signature limits must satisfy 1 <= min <= max")
	}
	return nil
}

// Funds is the account balance view the treasury pays into and out of
type Funds interface {
	Free(types.AccountId) types.Amount
	CanCredit(types.AccountId, types.Amount) error
	Credit(types.AccountId, types.Amount) error
	Debit(types.AccountId, types.Amount) error
}

type cycleEntry struct {
	cycle         Cycle
	contributions []Contribution
	totals        map[types.AccountId]types.Amount
	entitlements  map[types.AccountId]*Entitlement
}

type clubTreasury struct {
	balance        types.Amount
	nextCycle      types.CycleId
	activeCycle    types.CycleId
	cycles         map[types.CycleId]*cycleEntry
	nextWithdrawal types.WithdrawalId
	withdrawals    map[types.WithdrawalId]*Withdrawal
}

// Engine owns the club treasuries, their contribution cycles and withdrawal
// requests. It is not safe for concurrent use. Every operation validates fully
// before mutating, so a DomainError means nothing changed.
type Engine struct {
	config Config
	clubs  map[types.ClubId]*clubTreasury
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		config: cfg,
		clubs:  make(map[types.ClubId]*clubTreasury),
	}, nil
}

func (e *Engine) Config() Config {
	return e.config
}

func (e *Engine) treasuryFor(club types.ClubId) *clubTreasury {
	t, ok := e.clubs[club]
	if !ok {
		t = &clubTreasury{
			nextCycle:      1,
			nextWithdrawal: 1,
			cycles:         make(map[types.CycleId]*cycleEntry),
			withdrawals:    make(map[types.WithdrawalId]*Withdrawal),
		}
		e.clubs[club] = t
	}
	return t
}

func (e *Engine) lookupCycle(club types.ClubId, id types.CycleId) (*clubTreasury, *cycleEntry, error) {
	if t, ok := e.clubs[club]; ok {
		if entry, ok := t.cycles[id]; ok {
			return t, entry, nil
		}
	}
	return nil, nil, types.NewDomainError(
		types.KindNotFound,
		"cycle %d does not exist in club %d",
		id,
		club,
	)
}

// Balance returns the club treasury balance, excluding payout pools
func (e *Engine) Balance(club types.ClubId) types.Amount {
	if t, ok := e.clubs[club]; ok {
		return t.balance
	}
	return 0
}

// Deposit moves funds from an account into the club treasury
func (e *Engine) Deposit(
	club types.ClubId,
	account types.AccountId,
	amount types.Amount,
	funds Funds,
) error {
	if err := types.RequirePositive("deposit", amount); err != nil {
		return err
	}
	if _, ok := e.Balance(club).CheckedAdd(amount); !ok {
		return types.NewDomainError(types.KindInvalidParameters, "treasury balance of club %d overflows", club)
	}
	if err := funds.Debit(account, amount); err != nil {
		return err
	}
	t := e.treasuryFor(club)
	t.balance += amount
	return nil
}

// Forfeit credits a slashed proposal deposit to the club treasury
func (e *Engine) Forfeit(club types.ClubId, amount types.Amount) error {
	balance, ok := e.Balance(club).CheckedAdd(amount)
	if !ok {
		return types.NewInvariantError("forfeit overflows treasury balance of club %d", club)
	}
	e.treasuryFor(club).balance = balance
	return nil
}

// OpenCycle starts a contribution cycle at block now. Missing parameters
// take the configured defaults.
func (e *Engine) OpenCycle(
	club types.ClubId,
	period *uint64,
	minimum *types.Amount,
	now types.BlockNumber,
) (Cycle, error) {
	if t, ok := e.clubs[club]; ok && t.activeCycle != 0 {
		return Cycle{}, types.NewDomainError(
			types.KindCycleAlreadyOpen,
			"cycle %d of club %d is still open",
			t.activeCycle,
			club,
		)
	}
	cyclePeriod := e.config.DefaultContributionPeriod
	if period != nil {
		cyclePeriod = *period
	}
	if cyclePeriod == 0 {
		return Cycle{}, types.NewDomainError(types.KindInvalidParameters, "cycle period must be positive")
	}
	minContribution := e.config.MinContribution
	if minimum != nil {
		minContribution = *minimum
	}
	if err := types.RequirePositive("minimum contribution", minContribution); err != nil {
		return Cycle{}, err
	}
	end, carry := bits.Add64(uint64(now), cyclePeriod, 0)
	if carry != 0 {
		return Cycle{}, types.NewDomainError(types.KindInvalidParameters, "cycle end overflows")
	}
	t := e.treasuryFor(club)
	id := t.nextCycle
	t.nextCycle++
	t.activeCycle = id
	entry := &cycleEntry{
		cycle: Cycle{
			Id:                  id,
			ClubId:              club,
			StartBlock:          now,
			EndBlock:            types.BlockNumber(end),
			MinimumContribution: minContribution,
			Status:              CycleOpen,
		},
		totals: make(map[types.AccountId]types.Amount),
	}
	t.cycles[id] = entry
	return entry.cycle, nil
}

// Contribute deposits into the open cycle of a club. The end block itself is
// still inside the window.
func (e *Engine) Contribute(
	club types.ClubId,
	account types.AccountId,
	amount types.Amount,
	now types.BlockNumber,
	funds Funds,
) (Contribution, error) {
	t, ok := e.clubs[club]
	if !ok || t.activeCycle == 0 {
		return Contribution{}, types.NewDomainError(types.KindCycleClosed, "club %d has no open cycle", club)
	}
	entry := t.cycles[t.activeCycle]
	c := &entry.cycle
	if c.Status != CycleOpen {
		return Contribution{}, types.NewInvariantError("active cycle %d of club %d is %s", c.Id, club, c.Status)
	}
	if now > c.EndBlock {
		return Contribution{}, types.NewDomainError(
			types.KindCycleClosed,
			"cycle %d ended at block %d",
			c.Id,
			c.EndBlock,
		)
	}
	if amount < c.MinimumContribution {
		return Contribution{}, types.NewDomainError(
			types.KindBelowMinimum,
			"contribution %s is below minimum %s",
			amount,
			c.MinimumContribution,
		)
	}
	total, ok := c.TotalContributions.CheckedAdd(amount)
	if !ok {
		return Contribution{}, types.NewDomainError(types.KindInvalidParameters, "cycle %d total overflows", c.Id)
	}
	balance, ok := t.balance.CheckedAdd(amount)
	if !ok {
		return Contribution{}, types.NewDomainError(types.KindInvalidParameters, "treasury balance of club %d overflows", club)
	}
	if err := funds.Debit(account, amount); err != nil {
		return Contribution{}, err
	}
	contribution := Contribution{
		ClubId:        club,
		CycleId:       c.Id,
		Seq:           len(entry.contributions),
		Contributor:   account,
		Amount:        amount,
		ContributedAt: now,
	}
	entry.contributions = append(entry.contributions, contribution)
	if _, seen := entry.totals[account]; !seen {
		c.Contributors++
	}
	// Per-member totals never exceed the cycle total, which was checked above
	entry.totals[account] += amount
	c.TotalContributions = total
	t.balance = balance
	return contribution, nil
}

// CloseCycle freezes the open cycle of a club
func (e *Engine) CloseCycle(club types.ClubId, now types.BlockNumber) (Cycle, error) {
	t, ok := e.clubs[club]
	if !ok || t.activeCycle == 0 {
		return Cycle{}, types.NewDomainError(types.KindCycleClosed, "club %d has no open cycle", club)
	}
	entry := t.cycles[t.activeCycle]
	entry.cycle.Status = CycleClosed
	entry.cycle.ClosedAt = now
	t.activeCycle = 0
	return entry.cycle, nil
}

// DistributeReturns fixes every member entitlement of a closed cycle as
// floor(returns * memberTotal / cycleTotal). The entitled sum leaves the
// treasury balance for the payout pool and the residual stays behind.
func (e *Engine) DistributeReturns(
	club types.ClubId,
	id types.CycleId,
	returns types.Amount,
	now types.BlockNumber,
) (Cycle, error) {
	t, entry, err := e.lookupCycle(club, id)
	if err != nil {
		return Cycle{}, err
	}
	c := &entry.cycle
	if c.Status != CycleClosed {
		return Cycle{}, types.NewDomainError(
			types.KindInvalidParameters,
			"cycle %d is %s, not Closed",
			id,
			c.Status,
		)
	}
	if t.balance < returns {
		return Cycle{}, types.NewDomainError(
			types.KindInsufficientBalance,
			"treasury balance %s of club %d cannot cover returns %s",
			t.balance,
			club,
			returns,
		)
	}
	entitlements := make(map[types.AccountId]*Entitlement, len(entry.totals))
	var distributed types.Amount
	for account, contributed := range entry.totals {
		share, err := types.MulDiv(uint64(returns), uint64(contributed), uint64(c.TotalContributions))
		if err != nil {
			return Cycle{}, err
		}
		entitlements[account] = &Entitlement{
			ClubId:      club,
			CycleId:     id,
			Account:     account,
			Contributed: contributed,
			Amount:      types.Amount(share),
		}
		distributed += types.Amount(share)
	}
	if distributed > returns {
		return Cycle{}, types.NewInvariantError(
			"cycle %d entitlements %s exceed returns %s",
			id,
			distributed,
			returns,
		)
	}
	entry.entitlements = entitlements
	c.Returns = returns
	c.Distributed = distributed
	c.Residual = returns - distributed
	c.Status = CycleDistributed
	c.DistributedAt = now
	t.balance -= distributed
	return *c, nil
}

// ClaimReturns pays the fixed entitlement of a member at most once
func (e *Engine) ClaimReturns(
	club types.ClubId,
	id types.CycleId,
	account types.AccountId,
	now types.BlockNumber,
	funds Funds,
) (Entitlement, error) {
	_, entry, err := e.lookupCycle(club, id)
	if err != nil {
		return Entitlement{}, err
	}
	c := &entry.cycle
	if c.Status != CycleDistributed {
		return Entitlement{}, types.NewDomainError(
			types.KindInvalidParameters,
			"cycle %d is %s, not Distributed",
			id,
			c.Status,
		)
	}
	ent, ok := entry.entitlements[account]
	if !ok {
		return Entitlement{}, types.NewDomainError(
			types.KindNoContribution,
			"%s did not contribute to cycle %d",
			account,
			id,
		)
	}
	if ent.Claimed {
		return Entitlement{}, types.NewDomainError(
			types.KindAlreadyClaimed,
			"%s already claimed cycle %d at block %d",
			account,
			id,
			ent.ClaimedAt,
		)
	}
	claimed, ok := c.Claimed.CheckedAdd(ent.Amount)
	if !ok || claimed > c.Distributed {
		return Entitlement{}, types.NewInvariantError(
			"claims on cycle %d exceed distributed %s",
			id,
			c.Distributed,
		)
	}
	if err := funds.CanCredit(account, ent.Amount); err != nil {
		return Entitlement{}, err
	}
	if err := funds.Credit(account, ent.Amount); err != nil {
		return Entitlement{}, err
	}
	ent.Claimed = true
	ent.ClaimedAt = now
	c.Claimed = claimed
	return *ent, nil
}

func (e *Engine) Cycle(club types.ClubId, id types.CycleId) (Cycle, error) {
	_, entry, err := e.lookupCycle(club, id)
	if err != nil {
		return Cycle{}, err
	}
	return entry.cycle, nil
}

// ActiveCycle returns the open cycle of a club, if any
func (e *Engine) ActiveCycle(club types.ClubId) (Cycle, bool) {
	t, ok := e.clubs[club]
	if !ok || t.activeCycle == 0 {
		return Cycle{}, false
	}
	return t.cycles[t.activeCycle].cycle, true
}

func (e *Engine) Cycles(club types.ClubId) []Cycle {
	t, ok := e.clubs[club]
	if !ok {
		return []Cycle{}
	}
	ret := make([]Cycle, 0, len(t.cycles))
	for _, entry := range t.cycles {
		ret = append(ret, entry.cycle)
	}
	slices.SortFunc(ret, func(a, b Cycle) int {
		return cmp.Compare(a.Id, b.Id)
	})
	return ret
}

// Contributions returns the contributions of a cycle in arrival order
func (e *Engine) Contributions(club types.ClubId, id types.CycleId) ([]Contribution, error) {
	_, entry, err := e.lookupCycle(club, id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(entry.contributions), nil
}

// Entitlement returns the entitlement of a member in a distributed cycle
func (e *Engine) Entitlement(
	club types.ClubId,
	id types.CycleId,
	account types.AccountId,
) (Entitlement, error) {
	_, entry, err := e.lookupCycle(club, id)
	if err != nil {
		return Entitlement{}, err
	}
	if entry.cycle.Status != CycleDistributed {
		return Entitlement{}, types.NewDomainError(
			types.KindInvalidParameters,
			"cycle %d is %s, not Distributed",
			id,
			entry.cycle.Status,
		)
	}
	ent, ok := entry.entitlements[account]
	if !ok {
		return Entitlement{}, types.NewDomainError(
			types.KindNoContribution,
			"%s did not contribute to cycle %d",
			account,
			id,
		)
	}
	return *ent, nil
}

// Entitlements returns every entitlement of a cycle ordered by account
func (e *Engine) Entitlements(club types.ClubId, id types.CycleId) ([]Entitlement, error) {
	_, entry, err := e.lookupCycle(club, id)
	if err != nil {
		return nil, err
	}
	ret := make([]Entitlement, 0, len(entry.entitlements))
	for _, ent := range entry.entitlements {
		ret = append(ret, *ent)
	}
	slices.SortFunc(ret, func(a, b Entitlement) int {
		return strings.Compare(string(a.Account), string(b.Account))
	})
	return ret, nil
}
