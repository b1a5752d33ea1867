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
	"cmp"
	"errors"
	"fmt"
	"maps"
	"math/bits"
	"slices"
	"strings"

	"github.com/ikubchain/clubledger/types"
)

const (
	DefaultProposalDeposit               types.Amount = 1000
	DefaultMaxVotingDuration             uint64       = 100000
	DefaultMaxActiveProposalsPerClub                  = 100
	DefaultMaxActiveProposalsPerProposer              = 10
	DefaultEmergencySupermajority        uint8        = 67
)

type Config struct {
	ProposalDeposit               types.Amount
	MaxVotingDuration             uint64
	MaxActiveProposalsPerClub     int
	MaxActiveProposalsPerProposer int
	EmergencySupermajority        uint8
	ConvictionTable               ConvictionTable
}

func DefaultConfig() Config {
	return Config{
		ProposalDeposit:               DefaultProposalDeposit,
		MaxVotingDuration:             DefaultMaxVotingDuration,
		MaxActiveProposalsPerClub:     DefaultMaxActiveProposalsPerClub,
		MaxActiveProposalsPerProposer: DefaultMaxActiveProposalsPerProposer,
		EmergencySupermajority:        DefaultEmergencySupermajority,
		ConvictionTable:               DefaultConvictionTable,
	}
}

func (c Config) Validate() error {
	if c.MaxVotingDuration == 0 {
		return errors.New("max voting duration must be positive")
	}
	if c.MaxActiveProposalsPerClub <= 0 || c.MaxActiveProposalsPerProposer <= 0 {
		return errors.New("active proposal limits must be positive")
	}
	if c.EmergencySupermajority == 0 || c.EmergencySupermajority > 100 {
		return fmt.Errorf(
			"emergency supermajority %d is outside 1..100",
			c.EmergencySupermajority,
		)
	}
	if err := c.ConvictionTable.Validate(); err != nil {
		return err
	}
	return nil
}

// Funds is the balance view used to hold deposits, quadratic costs and
// conviction stakes
type Funds interface {
	Free(types.AccountId) types.Amount
	Reserve(types.AccountId, types.Amount) error
	Unreserve(types.AccountId, types.Amount) error
	Slash(types.AccountId, types.Amount) error
}

// Membership answers club membership questions
type Membership interface {
	IsActiveMember(types.ClubId, types.AccountId) bool
	ActiveMembers(types.ClubId) []types.AccountId
}

type proposalEntry struct {
	proposal Proposal
	votes    map[types.AccountId]*Vote
}

type clubBook struct {
	nextId    types.ProposalId
	proposals map[types.ProposalId]*proposalEntry
	delegates map[types.AccountId]types.AccountId
	active    int
	activeBy  map[types.AccountId]int
}

// convictionLock is a stake still held after its proposal finalized
type convictionLock struct {
	account  types.AccountId
	amount   types.Amount
	unlockAt types.BlockNumber
}

// Engine owns every proposal, vote and delegation. It is not safe for
// concurrent use. Every method validates fully before it mutates anything, so
// a returned DomainError means nothing changed.
type Engine struct {
	config Config
	clubs  map[types.ClubId]*clubBook
	locks  []convictionLock
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid governance config: %w", err)
	}
	return &Engine{
		config: cfg,
		clubs:  make(map[types.ClubId]*clubBook),
	}, nil
}

func (e *Engine) Config() Config {
	return e.config
}

func (e *Engine) bookFor(club types.ClubId) *clubBook {
	book, ok := e.clubs[club]
	if !ok {
		book = &clubBook{
			nextId:    1,
			proposals: make(map[types.ProposalId]*proposalEntry),
			delegates: make(map[types.AccountId]types.AccountId),
			activeBy:  make(map[types.AccountId]int),
		}
		e.clubs[club] = book
	}
	return book
}

func (e *Engine) lookup(
	club types.ClubId,
	id types.ProposalId,
) (*clubBook, *proposalEntry, error) {
	book, ok := e.clubs[club]
	if ok {
		if entry, ok := book.proposals[id]; ok {
			return book, entry, nil
		}
	}
	return nil, nil, types.NewDomainError(
		types.KindNotFound,
		"proposal %d does not exist in club %d",
		id,
		club,
	)
}

func (e *Engine) validateCreate(req CreateRequest) error {
	if !req.Type.Valid() {
		return types.NewDomainError(types.KindInvalidParameters, "unknown proposal type %d", req.Type)
	}
	if !req.Mechanism.Valid() {
		return types.NewDomainError(types.KindInvalidParameters, "unknown voting mechanism %d", req.Mechanism)
	}
	if strings.TrimSpace(req.Title) == "" {
		return types.NewDomainError(types.KindInvalidParameters, "title must not be empty")
	}
	if len(req.Title) > MaxTitleLength {
		return types.NewDomainError(types.KindInvalidParameters, "title exceeds %d bytes", MaxTitleLength)
	}
	if len(req.Description) > MaxDescriptionLength {
		return types.NewDomainError(
			types.KindInvalidParameters,
			"description exceeds %d bytes",
			MaxDescriptionLength,
		)
	}
	if req.Threshold < 1 || req.Threshold > 100 {
		return types.NewDomainError(
			types.KindInvalidParameters,
			"threshold %d is outside 1..100",
			req.Threshold,
		)
	}
	if req.Duration < 1 || req.Duration > e.config.MaxVotingDuration {
		return types.NewDomainError(
			types.KindInvalidParameters,
			"duration %d is outside 1..%d",
			req.Duration,
			e.config.MaxVotingDuration,
		)
	}
	if action := req.TreasuryAction; action != nil {
		if req.Type != ProposalTypeInvestment {
			return types.NewDomainError(
				types.KindInvalidParameters,
				"treasury actions are only allowed on Investment proposals",
			)
		}
		if !action.Kind.Valid() {
			return types.NewDomainError(types.KindInvalidParameters, "unknown treasury action %d", action.Kind)
		}
		if action.Kind == TreasuryActionCloseCycle &&
			(action.Period != nil || action.MinimumContribution != nil) {
			return types.NewDomainError(
				types.KindInvalidParameters,
				"CloseCycle takes no parameters",
			)
		}
		if action.Period != nil && *action.Period == 0 {
			return types.NewDomainError(types.KindInvalidParameters, "cycle period must be positive")
		}
	}
	return nil
}

// Create opens a new Active proposal and reserves the deposit from the
// proposer. Membership is checked by the caller.
func (e *Engine) Create(
	club types.ClubId,
	proposer types.AccountId,
	req CreateRequest,
	now types.BlockNumber,
	funds Funds,
) (Proposal, error) {
	if err := e.validateCreate(req); err != nil {
		return Proposal{}, err
	}
	if book, ok := e.clubs[club]; ok {
		if book.active >= e.config.MaxActiveProposalsPerClub {
			return Proposal{}, types.NewDomainError(
				types.KindInvalidParameters,
				"club %d already has %d active proposals",
				club,
				book.active,
			)
		}
		if book.activeBy[proposer] >= e.config.MaxActiveProposalsPerProposer {
			return Proposal{}, types.NewDomainError(
				types.KindInvalidParameters,
				"%s already has %d active proposals",
				proposer,
				book.activeBy[proposer],
			)
		}
	}
	votingEnd, carry := bits.Add64(uint64(now), req.Duration, 0)
	if carry != 0 {
		return Proposal{}, types.NewDomainError(types.KindInvalidParameters, "voting end overflows")
	}
	if err := funds.Reserve(proposer, e.config.ProposalDeposit); err != nil {
		return Proposal{}, err
	}
	book := e.bookFor(club)
	id := book.nextId
	book.nextId++
	p := Proposal{
		Id:          id,
		ClubId:      club,
		Proposer:    proposer,
		Type:        req.Type,
		Mechanism:   req.Mechanism,
		Title:       req.Title,
		Description: req.Description,
		Deposit:     e.config.ProposalDeposit,
		CreatedAt:   now,
		VotingEnd:   types.BlockNumber(votingEnd),
		Threshold:   req.Threshold,
		Status:      StatusActive,
	}
	if req.Mechanism == MechanismConviction {
		p.ConvictionVersion = e.config.ConvictionTable.Version
	}
	if req.TreasuryAction != nil {
		action := copyTreasuryAction(req.TreasuryAction)
		p.TreasuryAction = action
	}
	book.proposals[id] = &proposalEntry{
		proposal: p,
		votes:    make(map[types.AccountId]*Vote),
	}
	book.active++
	book.activeBy[proposer]++
	return cloneProposal(p), nil
}

// Vote records or replaces the vote of a member. Conviction votes cannot be
// replaced once cast.
func (e *Engine) Vote(
	club types.ClubId,
	id types.ProposalId,
	voter types.AccountId,
	req VoteRequest,
	now types.BlockNumber,
	funds Funds,
	members Membership,
) (Vote, error) {
	_, entry, err := e.lookup(club, id)
	if err != nil {
		return Vote{}, err
	}
	p := &entry.proposal
	if p.Status != StatusActive {
		return Vote{}, types.NewDomainError(
			types.KindProposalNotActive,
			"proposal %d is %s",
			id,
			p.Status,
		)
	}
	if now >= p.VotingEnd {
		return Vote{}, types.NewDomainError(
			types.KindVotingClosed,
			"voting on proposal %d ended at block %d",
			id,
			p.VotingEnd,
		)
	}
	if !members.IsActiveMember(club, voter) {
		return Vote{}, types.NewDomainError(
			types.KindNotAMember,
			"%s is not an active member of club %d",
			voter,
			club,
		)
	}
	if !req.Choice.Valid() {
		return Vote{}, types.NewDomainError(types.KindInvalidParameters, "unknown vote choice %d", req.Choice)
	}
	prev := entry.votes[voter]
	if prev != nil && p.Mechanism == MechanismConviction {
		return Vote{}, types.NewDomainError(
			types.KindInvalidParameters,
			"conviction vote of %s on proposal %d is locked",
			voter,
			id,
		)
	}
	v := Vote{
		ClubId:     club,
		ProposalId: id,
		Voter:      voter,
		Choice:     req.Choice,
		CastAt:     now,
	}
	// reserveDelta > 0 reserves more, releaseDelta > 0 releases held funds
	var reserveDelta, releaseDelta types.Amount
	switch p.Mechanism {
	case MechanismSimpleMajority, MechanismDelegated:
		v.Weight = 1
	case MechanismQuadratic:
		if req.Votes == 0 {
			return Vote{}, types.NewDomainError(types.KindInvalidParameters, "quadratic vote count must be positive")
		}
		hi, cost := bits.Mul64(req.Votes, req.Votes)
		if hi != 0 {
			return Vote{}, types.NewDomainError(
				types.KindInvalidParameters,
				"cost of %d votes overflows",
				req.Votes,
			)
		}
		var held types.Amount
		if prev != nil {
			held = prev.Cost
		}
		budget := funds.Free(voter).SaturatingAdd(held)
		if types.Amount(cost) > budget {
			return Vote{}, types.NewDomainError(
				types.KindInsufficientBalance,
				"%d votes cost %d but %s can spend %s",
				req.Votes,
				cost,
				voter,
				budget,
			)
		}
		v.Votes = req.Votes
		v.Cost = types.Amount(cost)
		v.Weight = req.Votes
		if v.Cost >= held {
			reserveDelta = v.Cost - held
		} else {
			releaseDelta = held - v.Cost
		}
	case MechanismConviction:
		free := funds.Free(voter)
		stake := free
		if req.Stake != nil {
			stake = *req.Stake
		}
		if stake == 0 {
			return Vote{}, types.NewDomainError(types.KindInvalidParameters, "conviction stake must be positive")
		}
		if stake > free {
			return Vote{}, types.NewDomainError(
				types.KindInsufficientBalance,
				"stake %s exceeds free balance %s of %s",
				stake,
				free,
				voter,
			)
		}
		weight, err := e.config.ConvictionTable.Lookup(req.LockBlocks).Weight(stake)
		if err != nil {
			return Vote{}, err
		}
		if weight == 0 {
			return Vote{}, types.NewDomainError(
				types.KindInvalidParameters,
				"stake %s at lock %d carries no conviction weight",
				stake,
				req.LockBlocks,
			)
		}
		unlockAt, carry := bits.Add64(uint64(now), req.LockBlocks, 0)
		if carry != 0 {
			return Vote{}, types.NewDomainError(types.KindInvalidParameters, "lock end overflows")
		}
		v.Stake = stake
		v.LockBlocks = req.LockBlocks
		v.UnlockAt = types.BlockNumber(unlockAt)
		v.Weight = weight
		reserveDelta = stake
	default:
		return Vote{}, types.NewInvariantError("proposal %d has unknown mechanism %d", id, p.Mechanism)
	}
	tally := p.Tally
	if prev != nil {
		if err := tally.sub(prev.Choice, prev.Weight); err != nil {
			return Vote{}, err
		}
	}
	if err := tally.add(v.Choice, v.Weight); err != nil {
		return Vote{}, err
	}
	// Funds move last so that a failure here leaves nothing behind
	if reserveDelta > 0 {
		if err := funds.Reserve(voter, reserveDelta); err != nil {
			return Vote{}, err
		}
	}
	if releaseDelta > 0 {
		if err := funds.Unreserve(voter, releaseDelta); err != nil {
			return Vote{}, err
		}
	}
	p.Tally = tally
	if prev == nil {
		p.VoteCount++
	}
	entry.votes[voter] = &v
	return v, nil
}

// SetDelegate points member's delegated weight at another member. Any edge
// that would close a delegation cycle is rejected.
func (e *Engine) SetDelegate(
	club types.ClubId,
	member types.AccountId,
	to types.AccountId,
	members Membership,
) error {
	for _, account := range []types.AccountId{member, to} {
		if !members.IsActiveMember(club, account) {
			return types.NewDomainError(
				types.KindNotAMember,
				"%s is not an active member of club %d",
				account,
				club,
			)
		}
	}
	if member == to {
		return types.NewDomainError(types.KindDelegationCycle, "%s cannot delegate to itself", member)
	}
	var delegates map[types.AccountId]types.AccountId
	if book, ok := e.clubs[club]; ok {
		delegates = book.delegates
	}
	cur := to
	for range len(delegates) + 1 {
		if cur == member {
			return types.NewDomainError(
				types.KindDelegationCycle,
				"delegating %s to %s closes a cycle",
				member,
				to,
			)
		}
		next, ok := delegates[cur]
		if !ok {
			break
		}
		cur = next
	}
	e.bookFor(club).delegates[member] = to
	return nil
}

func (e *Engine) ClearDelegate(club types.ClubId, member types.AccountId) error {
	book, ok := e.clubs[club]
	if !ok {
		return types.NewDomainError(types.KindNotFound, "%s has no delegate in club %d", member, club)
	}
	if _, ok := book.delegates[member]; !ok {
		return types.NewDomainError(types.KindNotFound, "%s has no delegate in club %d", member, club)
	}
	delete(book.delegates, member)
	return nil
}

// Delegate returns the direct delegate of a member
func (e *Engine) Delegate(club types.ClubId, member types.AccountId) (types.AccountId, bool) {
	book, ok := e.clubs[club]
	if !ok {
		return "", false
	}
	to, ok := book.delegates[member]
	return to, ok
}

// Cancel withdraws an Active proposal with no votes and refunds the deposit.
// Only the proposer may cancel.
func (e *Engine) Cancel(
	club types.ClubId,
	id types.ProposalId,
	caller types.AccountId,
	now types.BlockNumber,
	funds Funds,
) (Proposal, error) {
	book, entry, err := e.lookup(club, id)
	if err != nil {
		return Proposal{}, err
	}
	p := &entry.proposal
	if p.Proposer != caller {
		return Proposal{}, types.NewDomainError(
			types.KindUnauthorized,
			"only %s may cancel proposal %d",
			p.Proposer,
			id,
		)
	}
	if p.Status != StatusActive {
		return Proposal{}, types.NewDomainError(
			types.KindProposalNotActive,
			"proposal %d is %s",
			id,
			p.Status,
		)
	}
	if p.VoteCount > 0 {
		return Proposal{}, types.NewDomainError(
			types.KindInvalidParameters,
			"proposal %d already has %d votes",
			id,
			p.VoteCount,
		)
	}
	if err := funds.Unreserve(p.Proposer, p.Deposit); err != nil {
		return Proposal{}, err
	}
	p.Status = StatusCancelled
	p.FinalizedAt = now
	book.retire(p.Proposer)
	return cloneProposal(*p), nil
}

// Finalize resolves a proposal. Terminal proposals are returned unchanged.
func (e *Engine) Finalize(
	club types.ClubId,
	id types.ProposalId,
	now types.BlockNumber,
	funds Funds,
	members Membership,
) (Outcome, error) {
	book, entry, err := e.lookup(club, id)
	if err != nil {
		return Outcome{}, err
	}
	p := &entry.proposal
	if p.Status.Terminal() {
		return Outcome{Proposal: cloneProposal(*p)}, nil
	}
	final, err := e.resolveTally(book, entry, members)
	if err != nil {
		return Outcome{}, err
	}
	var status ProposalStatus
	switch {
	case now < p.VotingEnd:
		if !e.emergencyPass(p, final, members) {
			return Outcome{}, types.NewDomainError(
				types.KindVotingNotEnded,
				"voting on proposal %d ends at block %d",
				id,
				p.VotingEnd,
			)
		}
		status = StatusPassed
	case p.VoteCount == 0:
		status = StatusExpired
	case MeetsThreshold(final, p.Threshold):
		status = StatusPassed
	default:
		status = StatusRejected
	}
	ret := Outcome{
		Changed: true,
		Voters:  make(map[types.AccountId]bool, len(entry.votes)),
		Touched: []types.AccountId{p.Proposer},
	}
	if status == StatusRejected {
		if err := funds.Slash(p.Proposer, p.Deposit); err != nil {
			return Outcome{}, err
		}
		ret.Forfeited = p.Deposit
	} else {
		if err := funds.Unreserve(p.Proposer, p.Deposit); err != nil {
			return Outcome{}, err
		}
	}
	for _, v := range sortedVotes(entry.votes) {
		ret.Voters[v.Voter] = true
		switch {
		case v.Cost > 0:
			if err := funds.Unreserve(v.Voter, v.Cost); err != nil {
				return Outcome{}, err
			}
			ret.Touched = append(ret.Touched, v.Voter)
		case v.Stake > 0 && v.UnlockAt <= now:
			if err := funds.Unreserve(v.Voter, v.Stake); err != nil {
				return Outcome{}, err
			}
			ret.Touched = append(ret.Touched, v.Voter)
		case v.Stake > 0:
			e.locks = append(e.locks, convictionLock{
				account:  v.Voter,
				amount:   v.Stake,
				unlockAt: v.UnlockAt,
			})
		}
	}
	p.Status = status
	p.Tally = final
	p.FinalizedAt = now
	book.retire(p.Proposer)
	ret.Proposal = cloneProposal(*p)
	return ret, nil
}

// emergencyPass allows an Emergency proposal to pass before its voting end
// once aye weight reaches the supermajority of the active member count
func (e *Engine) emergencyPass(p *Proposal, final Tally, members Membership) bool {
	if p.Type != ProposalTypeEmergency {
		return false
	}
	if p.Mechanism != MechanismSimpleMajority && p.Mechanism != MechanismDelegated {
		return false
	}
	active := uint64(len(members.ActiveMembers(p.ClubId)))
	if active == 0 {
		return false
	}
	ayeHi, ayeLo := bits.Mul64(final.Aye, 100)
	required := active * uint64(e.config.EmergencySupermajority)
	if ayeHi == 0 && ayeLo < required {
		return false
	}
	return MeetsThreshold(final, p.Threshold)
}

// ReleaseLocks frees conviction stakes whose lock has expired. It returns the
// accounts whose balances changed.
func (e *Engine) ReleaseLocks(now types.BlockNumber, funds Funds) ([]types.AccountId, error) {
	if len(e.locks) == 0 {
		return nil, nil
	}
	var touched []types.AccountId
	kept := e.locks[:0]
	for _, lock := range e.locks {
		if lock.unlockAt > now {
			kept = append(kept, lock)
			continue
		}
		if err := funds.Unreserve(lock.account, lock.amount); err != nil {
			return nil, err
		}
		touched = append(touched, lock.account)
	}
	e.locks = kept
	return touched, nil
}

// PendingLocks returns the number of conviction stakes still held after
// their proposal finalized
func (e *Engine) PendingLocks() int {
	return len(e.locks)
}

// SetEnactment records the result of enacting a passed proposal's treasury
// action
func (e *Engine) SetEnactment(club types.ClubId, id types.ProposalId, result string) error {
	_, entry, err := e.lookup(club, id)
	if err != nil {
		return err
	}
	if entry.proposal.Status != StatusPassed {
		return types.NewInvariantError("enacting proposal %d with status %s", id, entry.proposal.Status)
	}
	entry.proposal.Enactment = result
	return nil
}

// Delegations returns a copy of the delegate edges of a club
func (e *Engine) Delegations(club types.ClubId) map[types.AccountId]types.AccountId {
	book, ok := e.clubs[club]
	if !ok {
		return map[types.AccountId]types.AccountId{}
	}
	return maps.Clone(book.delegates)
}

// Tally returns the current tally snapshot with delegation resolved
func (e *Engine) Tally(
	club types.ClubId,
	id types.ProposalId,
	members Membership,
) (Tally, error) {
	book, entry, err := e.lookup(club, id)
	if err != nil {
		return Tally{}, err
	}
	if entry.proposal.Status.Terminal() {
		return entry.proposal.Tally, nil
	}
	return e.resolveTally(book, entry, members)
}

func (e *Engine) resolveTally(
	book *clubBook,
	entry *proposalEntry,
	members Membership,
) (Tally, error) {
	if entry.proposal.Mechanism != MechanismDelegated {
		return entry.proposal.Tally, nil
	}
	return resolveDelegated(
		entry.votes,
		book.delegates,
		members.ActiveMembers(entry.proposal.ClubId),
	)
}

func (e *Engine) Proposal(club types.ClubId, id types.ProposalId) (Proposal, error) {
	_, entry, err := e.lookup(club, id)
	if err != nil {
		return Proposal{}, err
	}
	return cloneProposal(entry.proposal), nil
}

// Proposals returns every proposal of a club ordered by id
func (e *Engine) Proposals(club types.ClubId) []Proposal {
	book, ok := e.clubs[club]
	if !ok {
		return []Proposal{}
	}
	ret := make([]Proposal, 0, len(book.proposals))
	for _, entry := range book.proposals {
		ret = append(ret, cloneProposal(entry.proposal))
	}
	slices.SortFunc(ret, func(a, b Proposal) int {
		return cmp.Compare(a.Id, b.Id)
	})
	return ret
}

// Votes returns the recorded votes of a proposal ordered by voter
func (e *Engine) Votes(club types.ClubId, id types.ProposalId) ([]Vote, error) {
	_, entry, err := e.lookup(club, id)
	if err != nil {
		return nil, err
	}
	return sortedVotes(entry.votes), nil
}

func (b *clubBook) retire(proposer types.AccountId) {
	b.active--
	b.activeBy[proposer]--
	if b.activeBy[proposer] <= 0 {
		delete(b.activeBy, proposer)
	}
}

func sortedVotes(votes map[types.AccountId]*Vote) []Vote {
	ret := make([]Vote, 0, len(votes))
	for _, v := range votes {
		ret = append(ret, *v)
	}
	slices.SortFunc(ret, func(a, b Vote) int {
		return strings.Compare(string(a.Voter), string(b.Voter))
	})
	return ret
}

func copyTreasuryAction(a *TreasuryAction) *TreasuryAction {
	if a == nil {
		return nil
	}
	ret := &TreasuryAction{Kind: a.Kind}
	if a.Period != nil {
		period := *a.Period
		ret.Period = &period
	}
	if a.MinimumContribution != nil {
		minimum := *a.MinimumContribution
		ret.MinimumContribution = &minimum
	}
	return ret
}

func cloneProposal(p Proposal) Proposal {
	p.TreasuryAction = copyTreasuryAction(p.TreasuryAction)
	return p
}
