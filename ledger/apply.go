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

package ledger

import (
	"fmt"

	"github.com/ikubchain/clubledger/database/models"
	"github.com/ikubchain/clubledger/disputes"
	"github.com/ikubchain/clubledger/event"
	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/types"
)

type pendingEvent struct {
	Type event.EventType
	Data any
}

// applyContext is the scope of one action. Handlers validate through the
// engines, which never mutate on a DomainError, and mark what they touched.
type applyContext struct {
	data   *ledgerData
	config *LedgerStateConfig
	caller types.AccountId
	dirty  *dirtySet
	events []pendingEvent
	// unchanged marks a successful no-op, which is neither logged nor
	// published
	unchanged bool
	// replay is set while rebuilding state from the action log
	replay bool
}

func newApplyContext(
	data *ledgerData,
	config *LedgerStateConfig,
	caller types.AccountId,
) *applyContext {
	return &applyContext{
		data:   data,
		config: config,
		caller: caller,
		dirty:  newDirtySet(),
	}
}

func (c *applyContext) emit(eventType event.EventType, data any) {
	c.events = append(c.events, pendingEvent{Type: eventType, Data: data})
}

// requireCreator allows cycle management only to the founder of a club
func (c *applyContext) requireCreator(id types.ClubId) error {
	cl, err := c.data.clubs.Club(id)
	if err != nil {
		return err
	}
	if cl.Creator != c.caller {
		return types.NewDomainError(
			types.KindUnauthorized,
			"only the creator of club %d may manage its cycles",
			id,
		)
	}
	return nil
}

func (p *createClubParams) actionType() ActionType { return ActionCreateClub }

func (p *createClubParams) apply(c *applyContext) (any, error) {
	cl, err := c.data.clubs.Create(c.caller, p.Name, p.Description, c.data.block)
	if err != nil {
		return nil, err
	}
	c.dirty.club(cl.Id)
	c.dirty.member(cl.Id, c.caller)
	return cl, nil
}

func (p *joinClubParams) actionType() ActionType { return ActionJoinClub }

func (p *joinClubParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	m, err := c.data.clubs.Join(id, c.caller, c.data.block)
	if err != nil {
		return nil, err
	}
	c.dirty.club(id)
	c.dirty.member(id, c.caller)
	return m, nil
}

func (p *leaveClubParams) actionType() ActionType { return ActionLeaveClub }

func (p *leaveClubParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	m, err := c.data.clubs.Leave(id, c.caller)
	if err != nil {
		return nil, err
	}
	c.dirty.club(id)
	c.dirty.member(id, c.caller)
	return m, nil
}

func (p *deactivateClubParams) actionType() ActionType { return ActionDeactivateClub }

func (p *deactivateClubParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	cl, err := c.data.clubs.Deactivate(id, c.caller)
	if err != nil {
		return nil, err
	}
	c.dirty.club(id)
	return cl, nil
}

func (p *endowParams) actionType() ActionType { return ActionEndow }

func (p *endowParams) apply(c *applyContext) (any, error) {
	// The authority may change between runs, stored endowments stay valid
	if !c.replay && c.config.EndowAuthority != "" && c.caller != c.config.EndowAuthority {
		return nil, types.NewDomainError(
			types.KindUnauthorized,
			"only %s may endow accounts",
			c.config.EndowAuthority,
		)
	}
	account := types.AccountId(p.Account)
	if err := account.Validate(); err != nil {
		return nil, err
	}
	amount := types.Amount(p.Amount)
	if err := types.RequirePositive("endowment", amount); err != nil {
		return nil, err
	}
	issued, ok := c.data.issued.CheckedAdd(amount)
	if !ok {
		return nil, types.NewDomainError(
			types.KindInvalidParameters,
			"total issuance overflows",
		)
	}
	if err := c.data.balances.CanCredit(account, amount); err != nil {
		return nil, err
	}
	if err := c.data.balances.Credit(account, amount); err != nil {
		return nil, err
	}
	c.data.issued = issued
	c.dirty.account(account)
	return c.data.balances.Get(account), nil
}

func (p *advanceBlocksParams) actionType() ActionType { return ActionAdvanceBlocks }

func (p *advanceBlocksParams) apply(c *applyContext) (any, error) {
	if p.Blocks == 0 {
		return nil, types.NewDomainError(
			types.KindInvalidParameters,
			"block count must be positive",
		)
	}
	next := c.data.block + types.BlockNumber(p.Blocks)
	if next < c.data.block {
		return nil, types.NewDomainError(
			types.KindInvalidParameters,
			"block number overflows",
		)
	}
	prev := c.data.block
	c.data.block = next
	touched, err := c.data.governance.ReleaseLocks(next, c.data.balances)
	if err != nil {
		return nil, err
	}
	c.dirty.account(touched...)
	c.emit(BlockEventType, BlockEvent{Previous: prev, Block: next})
	return next, nil
}

func (p *createProposalParams) actionType() ActionType { return ActionCreateProposal }

func (p *createProposalParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.data.clubs.RequireMember(id, c.caller); err != nil {
		return nil, err
	}
	req := governance.CreateRequest{
		Type:        governance.ProposalType(p.Type),
		Mechanism:   governance.VotingMechanism(p.Mechanism),
		Title:       p.Title,
		Description: p.Description,
		Threshold:   p.Threshold,
		Duration:    p.Duration,
	}
	if p.ActionKind != nil {
		req.TreasuryAction = &governance.TreasuryAction{
			Kind:                governance.TreasuryActionKind(*p.ActionKind),
			Period:              optionalUint64(p.Period),
			MinimumContribution: optionalAmount(p.Minimum),
		}
	}
	prop, err := c.data.governance.Create(id, c.caller, req, c.data.block, c.data.balances)
	if err != nil {
		return nil, err
	}
	c.dirty.proposal(id, prop.Id)
	c.dirty.account(c.caller)
	return prop, nil
}

func (p *voteParams) actionType() ActionType { return ActionVote }

func (p *voteParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	proposalId := types.ProposalId(p.ProposalId)
	req := governance.VoteRequest{
		Choice:     governance.VoteChoice(p.Choice),
		Votes:      p.Votes,
		Stake:      optionalAmount(p.Stake),
		LockBlocks: p.LockBlocks,
	}
	v, err := c.data.governance.Vote(
		id,
		proposalId,
		c.caller,
		req,
		c.data.block,
		c.data.balances,
		c.data.clubs,
	)
	if err != nil {
		return nil, err
	}
	c.dirty.vote(id, proposalId, c.caller)
	c.dirty.proposal(id, proposalId)
	c.dirty.account(c.caller)
	return v, nil
}

func (p *setDelegateParams) actionType() ActionType { return ActionSetDelegate }

func (p *setDelegateParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.data.governance.SetDelegate(id, c.caller, types.AccountId(p.To), c.data.clubs); err != nil {
		return nil, err
	}
	c.dirty.delegation(id, c.caller)
	return struct{}{}, nil
}

func (p *clearDelegateParams) actionType() ActionType { return ActionClearDelegate }

func (p *clearDelegateParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.data.governance.ClearDelegate(id, c.caller); err != nil {
		return nil, err
	}
	c.dirty.delegation(id, c.caller)
	return struct{}{}, nil
}

func (p *cancelProposalParams) actionType() ActionType { return ActionCancelProposal }

func (p *cancelProposalParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	prop, err := c.data.governance.Cancel(
		id,
		types.ProposalId(p.ProposalId),
		c.caller,
		c.data.block,
		c.data.balances,
	)
	if err != nil {
		return nil, err
	}
	c.dirty.proposal(id, prop.Id)
	c.dirty.account(prop.Proposer)
	return prop, nil
}

func (p *finalizeProposalParams) actionType() ActionType { return ActionFinalizeProposal }

func (p *finalizeProposalParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	proposalId := types.ProposalId(p.ProposalId)
	out, err := c.data.governance.Finalize(
		id,
		proposalId,
		c.data.block,
		c.data.balances,
		c.data.clubs,
	)
	if err != nil {
		return nil, err
	}
	if !out.Changed {
		c.unchanged = true
		return out.Proposal, nil
	}
	c.dirty.proposal(id, proposalId)
	c.dirty.account(out.Touched...)
	if out.Forfeited > 0 {
		if err := c.data.treasury.Forfeit(id, out.Forfeited); err != nil {
			return nil, err
		}
		c.dirty.treasury(id)
	}
	passed := out.Proposal.Status == governance.StatusPassed
	if passed && out.Proposal.TreasuryAction != nil {
		if err := c.enact(out.Proposal); err != nil {
			return nil, err
		}
	}
	changed := c.data.clubs.RecordProposalResolved(
		id,
		out.Proposal.Proposer,
		out.Proposal.CreatedAt,
		passed,
		out.Voters,
	)
	c.dirty.member(id, changed...)
	prop, err := c.data.governance.Proposal(id, proposalId)
	if err != nil {
		return nil, types.NewInvariantError("finalized proposal %d vanished: %s", proposalId, err)
	}
	c.emit(ProposalFinalizedEventType, ProposalFinalizedEvent{
		Proposal:  prop,
		Forfeited: out.Forfeited,
	})
	return prop, nil
}

// enact runs the treasury action of a passed Investment proposal. A domain
// failure does not undo the vote, it is recorded as the enactment result.
func (c *applyContext) enact(prop governance.Proposal) error {
	action := prop.TreasuryAction
	var result string
	switch action.Kind {
	case governance.TreasuryActionOpenCycle:
		cycle, err := c.data.treasury.OpenCycle(
			prop.ClubId,
			action.Period,
			action.MinimumContribution,
			c.data.block,
		)
		if err != nil {
			if types.IsInvariant(err) {
				return err
			}
			result = "failed: " + err.Error()
			break
		}
		c.dirty.cycle(prop.ClubId, cycle.Id)
		result = fmt.Sprintf("opened cycle %d", cycle.Id)
	case governance.TreasuryActionCloseCycle:
		cycle, err := c.data.treasury.CloseCycle(prop.ClubId, c.data.block)
		if err != nil {
			if types.IsInvariant(err) {
				return err
			}
			result = "failed: " + err.Error()
			break
		}
		c.dirty.cycle(prop.ClubId, cycle.Id)
		result = fmt.Sprintf("closed cycle %d", cycle.Id)
	default:
		return types.NewInvariantError("unknown treasury action %d", action.Kind)
	}
	return c.data.governance.SetEnactment(prop.ClubId, prop.Id, result)
}

func (p *openCycleParams) actionType() ActionType { return ActionOpenCycle }

func (p *openCycleParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.data.clubs.RequireActive(id); err != nil {
		return nil, err
	}
	if err := c.requireCreator(id); err != nil {
		return nil, err
	}
	cycle, err := c.data.treasury.OpenCycle(
		id,
		optionalUint64(p.Period),
		optionalAmount(p.Minimum),
		c.data.block,
	)
	if err != nil {
		return nil, err
	}
	c.dirty.cycle(id, cycle.Id)
	return cycle, nil
}

func (p *contributeParams) actionType() ActionType { return ActionContribute }

func (p *contributeParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.data.clubs.RequireMember(id, c.caller); err != nil {
		return nil, err
	}
	amount := types.Amount(p.Amount)
	contribution, err := c.data.treasury.Contribute(
		id,
		c.caller,
		amount,
		c.data.block,
		c.data.balances,
	)
	if err != nil {
		return nil, err
	}
	row := models.ContributionToModel(contribution)
	c.dirty.contributions = append(c.dirty.contributions, &row)
	c.dirty.cycle(id, contribution.CycleId)
	c.dirty.treasury(id)
	c.dirty.account(c.caller)
	c.dirty.member(id, c.data.clubs.RecordContribution(id, c.caller, amount)...)
	return contribution, nil
}

func (p *closeCycleParams) actionType() ActionType { return ActionCloseCycle }

func (p *closeCycleParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.requireCreator(id); err != nil {
		return nil, err
	}
	cycle, err := c.data.treasury.CloseCycle(id, c.data.block)
	if err != nil {
		return nil, err
	}
	c.dirty.cycle(id, cycle.Id)
	return cycle, nil
}

func (p *distributeReturnsParams) actionType() ActionType { return ActionDistributeReturns }

func (p *distributeReturnsParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.requireCreator(id); err != nil {
		return nil, err
	}
	cycle, err := c.data.treasury.DistributeReturns(
		id,
		types.CycleId(p.CycleId),
		types.Amount(p.Returns),
		c.data.block,
	)
	if err != nil {
		return nil, err
	}
	ents, err := c.data.treasury.Entitlements(id, cycle.Id)
	if err != nil {
		return nil, types.NewInvariantError("distributed cycle %d has no entitlements: %s", cycle.Id, err)
	}
	for _, ent := range ents {
		c.dirty.entitlement(id, cycle.Id, ent.Account)
	}
	c.dirty.cycle(id, cycle.Id)
	c.dirty.treasury(id)
	c.emit(CycleDistributedEventType, CycleDistributedEvent{Cycle: cycle})
	return cycle, nil
}

func (p *claimReturnsParams) actionType() ActionType { return ActionClaimReturns }

func (p *claimReturnsParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	cycleId := types.CycleId(p.CycleId)
	ent, err := c.data.treasury.ClaimReturns(
		id,
		cycleId,
		c.caller,
		c.data.block,
		c.data.balances,
	)
	if err != nil {
		return nil, err
	}
	c.dirty.entitlement(id, cycleId, c.caller)
	c.dirty.cycle(id, cycleId)
	c.dirty.account(c.caller)
	return ent, nil
}

func (p *depositTreasuryParams) actionType() ActionType { return ActionDepositTreasury }

func (p *depositTreasuryParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.data.clubs.RequireMember(id, c.caller); err != nil {
		return nil, err
	}
	if err := c.data.treasury.Deposit(id, c.caller, types.Amount(p.Amount), c.data.balances); err != nil {
		return nil, err
	}
	c.dirty.treasury(id)
	c.dirty.account(c.caller)
	return c.data.treasury.Balance(id), nil
}

func (p *requestWithdrawalParams) actionType() ActionType { return ActionRequestWithdrawal }

func (p *requestWithdrawalParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.data.clubs.RequireMember(id, c.caller); err != nil {
		return nil, err
	}
	w, err := c.data.treasury.RequestWithdrawal(
		id,
		c.caller,
		types.AccountId(p.Recipient),
		types.Amount(p.Amount),
		p.Delay,
		c.data.block,
	)
	if err != nil {
		return nil, err
	}
	c.dirty.withdrawal(id, w.Id)
	return w, nil
}

func (p *approveWithdrawalParams) actionType() ActionType { return ActionApproveWithdrawal }

func (p *approveWithdrawalParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.data.clubs.RequireMember(id, c.caller); err != nil {
		return nil, err
	}
	w, err := c.data.treasury.ApproveWithdrawal(id, types.WithdrawalId(p.WithdrawalId), c.caller)
	if err != nil {
		return nil, err
	}
	c.dirty.withdrawal(id, w.Id)
	return w, nil
}

func (p *executeWithdrawalParams) actionType() ActionType { return ActionExecuteWithdrawal }

// Any caller may execute an approved withdrawal once it unlocks
func (p *executeWithdrawalParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	w, err := c.data.treasury.ExecuteWithdrawal(
		id,
		types.WithdrawalId(p.WithdrawalId),
		c.data.block,
		c.data.balances,
	)
	if err != nil {
		return nil, err
	}
	c.dirty.withdrawal(id, w.Id)
	c.dirty.treasury(id)
	c.dirty.account(w.Recipient)
	return w, nil
}

func (p *cancelWithdrawalParams) actionType() ActionType { return ActionCancelWithdrawal }

func (p *cancelWithdrawalParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	w, err := c.data.treasury.CancelWithdrawal(id, types.WithdrawalId(p.WithdrawalId), c.caller)
	if err != nil {
		return nil, err
	}
	c.dirty.withdrawal(id, w.Id)
	return w, nil
}

// mediator is the account that steers the disputes of a club, its founder
func (c *applyContext) mediator(id types.ClubId) (types.AccountId, error) {
	cl, err := c.data.clubs.Club(id)
	if err != nil {
		return "", err
	}
	return cl.Creator, nil
}

func (p *openDisputeParams) actionType() ActionType { return ActionOpenDispute }

func (p *openDisputeParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.data.clubs.RequireMember(id, c.caller); err != nil {
		return nil, err
	}
	d, err := c.data.disputes.Open(
		id,
		c.caller,
		types.AccountId(p.Subject),
		p.Description,
		c.data.block,
		c.data.clubs,
	)
	if err != nil {
		return nil, err
	}
	c.dirty.dispute(id, d.Id)
	return d, nil
}

func (p *submitEvidenceParams) actionType() ActionType { return ActionSubmitEvidence }

func (p *submitEvidenceParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.data.clubs.RequireMember(id, c.caller); err != nil {
		return nil, err
	}
	disputeId := types.DisputeId(p.DisputeId)
	ev, err := c.data.disputes.SubmitEvidence(id, disputeId, c.caller, p.Description, c.data.block)
	if err != nil {
		return nil, err
	}
	row := models.DisputeEvidenceToModel(ev)
	c.dirty.evidence = append(c.dirty.evidence, &row)
	c.dirty.dispute(id, disputeId)
	return ev, nil
}

func (p *voteOnDisputeParams) actionType() ActionType { return ActionVoteOnDispute }

func (p *voteOnDisputeParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.data.clubs.RequireMember(id, c.caller); err != nil {
		return nil, err
	}
	disputeId := types.DisputeId(p.DisputeId)
	v, err := c.data.disputes.Vote(
		id,
		disputeId,
		c.caller,
		disputes.VoteChoice(p.Choice),
		c.data.block,
	)
	if err != nil {
		return nil, err
	}
	row := models.DisputeVoteToModel(v)
	c.dirty.disputeVotes = append(c.dirty.disputeVotes, &row)
	c.dirty.dispute(id, disputeId)
	return v, nil
}

func (p *escalateDisputeParams) actionType() ActionType { return ActionEscalateDispute }

func (p *escalateDisputeParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.data.clubs.RequireActive(id); err != nil {
		return nil, err
	}
	mediator, err := c.mediator(id)
	if err != nil {
		return nil, err
	}
	d, err := c.data.disputes.Escalate(id, types.DisputeId(p.DisputeId), c.caller, mediator)
	if err != nil {
		return nil, err
	}
	c.dirty.dispute(id, d.Id)
	return d, nil
}

func (p *resolveDisputeParams) actionType() ActionType { return ActionResolveDispute }

func (p *resolveDisputeParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	if err := c.data.clubs.RequireMember(id, c.caller); err != nil {
		return nil, err
	}
	d, err := c.data.disputes.Resolve(id, types.DisputeId(p.DisputeId), c.data.block)
	if err != nil {
		return nil, err
	}
	c.dirty.dispute(id, d.Id)
	c.emit(DisputeResolvedEventType, DisputeResolvedEvent{Dispute: d})
	return d, nil
}

func (p *closeDisputeParams) actionType() ActionType { return ActionCloseDispute }

// The parties may close a dispute after leaving the club
func (p *closeDisputeParams) apply(c *applyContext) (any, error) {
	id := types.ClubId(p.ClubId)
	mediator, err := c.mediator(id)
	if err != nil {
		return nil, err
	}
	d, err := c.data.disputes.Close(
		id,
		types.DisputeId(p.DisputeId),
		c.caller,
		mediator,
		c.data.block,
	)
	if err != nil {
		return nil, err
	}
	c.dirty.dispute(id, d.Id)
	return d, nil
}
