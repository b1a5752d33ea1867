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

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/google/uuid"

	"github.com/ikubchain/clubledger/types"
)

// ActionType names a mutating ledger operation. It is stored in every action
// record, so existing values must never change.
type ActionType string

const (
	ActionCreateClub        ActionType = "CreateClub"
	ActionJoinClub          ActionType = "JoinClub"
	ActionLeaveClub         ActionType = "LeaveClub"
	ActionDeactivateClub    ActionType = "DeactivateClub"
	ActionEndow             ActionType = "Endow"
	ActionAdvanceBlocks     ActionType = "AdvanceBlocks"
	ActionCreateProposal    ActionType = "CreateProposal"
	ActionVote              ActionType = "Vote"
	ActionSetDelegate       ActionType = "SetDelegate"
	ActionClearDelegate     ActionType = "ClearDelegate"
	ActionCancelProposal    ActionType = "CancelProposal"
	ActionFinalizeProposal  ActionType = "FinalizeProposal"
	ActionOpenCycle         ActionType = "OpenContributionCycle"
	ActionContribute        ActionType = "Contribute"
	ActionCloseCycle        ActionType = "CloseCycle"
	ActionDistributeReturns ActionType = "DistributeReturns"
	ActionClaimReturns      ActionType = "ClaimReturns"
	ActionDepositTreasury   ActionType = "DepositTreasury"
	ActionRequestWithdrawal ActionType = "RequestWithdrawal"
	ActionApproveWithdrawal ActionType = "ApproveWithdrawal"
	ActionExecuteWithdrawal ActionType = "ExecuteWithdrawal"
	ActionCancelWithdrawal  ActionType = "CancelWithdrawal"
	ActionOpenDispute       ActionType = "OpenDispute"
	ActionSubmitEvidence    ActionType = "SubmitEvidence"
	ActionVoteOnDispute     ActionType = "VoteOnDispute"
	ActionEscalateDispute   ActionType = "EscalateDispute"
	ActionResolveDispute    ActionType = "ResolveDispute"
	ActionCloseDispute      ActionType = "CloseDispute"
)

// actionParams are the typed arguments of one action. Implementations are
// CBOR encoded as arrays into the action record.
type actionParams interface {
	actionType() ActionType
	apply(*applyContext) (any, error)
}

// paramsFactory returns an empty params value for decoding a stored record
var paramsFactory = map[ActionType]func() actionParams{
	ActionCreateClub:        func() actionParams { return &createClubParams{} },
	ActionJoinClub:          func() actionParams { return &joinClubParams{} },
	ActionLeaveClub:         func() actionParams { return &leaveClubParams{} },
	ActionDeactivateClub:    func() actionParams { return &deactivateClubParams{} },
	ActionEndow:             func() actionParams { return &endowParams{} },
	ActionAdvanceBlocks:     func() actionParams { return &advanceBlocksParams{} },
	ActionCreateProposal:    func() actionParams { return &createProposalParams{} },
	ActionVote:              func() actionParams { return &voteParams{} },
	ActionSetDelegate:       func() actionParams { return &setDelegateParams{} },
	ActionClearDelegate:     func() actionParams { return &clearDelegateParams{} },
	ActionCancelProposal:    func() actionParams { return &cancelProposalParams{} },
	ActionFinalizeProposal:  func() actionParams { return &finalizeProposalParams{} },
	ActionOpenCycle:         func() actionParams { return &openCycleParams{} },
	ActionContribute:        func() actionParams { return &contributeParams{} },
	ActionCloseCycle:        func() actionParams { return &closeCycleParams{} },
	ActionDistributeReturns: func() actionParams { return &distributeReturnsParams{} },
	ActionClaimReturns:      func() actionParams { return &claimReturnsParams{} },
	ActionDepositTreasury:   func() actionParams { return &depositTreasuryParams{} },
	ActionRequestWithdrawal: func() actionParams { return &requestWithdrawalParams{} },
	ActionApproveWithdrawal: func() actionParams { return &approveWithdrawalParams{} },
	ActionExecuteWithdrawal: func() actionParams { return &executeWithdrawalParams{} },
	ActionCancelWithdrawal:  func() actionParams { return &cancelWithdrawalParams{} },
	ActionOpenDispute:       func() actionParams { return &openDisputeParams{} },
	ActionSubmitEvidence:    func() actionParams { return &submitEvidenceParams{} },
	ActionVoteOnDispute:     func() actionParams { return &voteOnDisputeParams{} },
	ActionEscalateDispute:   func() actionParams { return &escalateDisputeParams{} },
	ActionResolveDispute:    func() actionParams { return &resolveDisputeParams{} },
	ActionCloseDispute:      func() actionParams { return &closeDisputeParams{} },
}

type createClubParams struct {
	cbor.StructAsArray
	Name        string
	Description string
}

type joinClubParams struct {
	cbor.StructAsArray
	ClubId uint64
}

type leaveClubParams struct {
	cbor.StructAsArray
	ClubId uint64
}

type deactivateClubParams struct {
	cbor.StructAsArray
	ClubId uint64
}

type endowParams struct {
	cbor.StructAsArray
	Account string
	Amount  uint64
}

type advanceBlocksParams struct {
	cbor.StructAsArray
	Blocks uint64
}

type createProposalParams struct {
	cbor.StructAsArray
	ClubId      uint64
	Type        uint8
	Mechanism   uint8
	Title       string
	Description string
	Threshold   uint8
	Duration    uint64
	// Treasury action, only for Investment proposals
	ActionKind *uint8
	Period     *uint64
	Minimum    *uint64
}

type voteParams struct {
	cbor.StructAsArray
	ClubId     uint64
	ProposalId uint64
	Choice     uint8
	Votes      uint64
	Stake      *uint64
	LockBlocks uint64
}

type setDelegateParams struct {
	cbor.StructAsArray
	ClubId uint64
	To     string
}

type clearDelegateParams struct {
	cbor.StructAsArray
	ClubId uint64
}

type cancelProposalParams struct {
	cbor.StructAsArray
	ClubId     uint64
	ProposalId uint64
}

type finalizeProposalParams struct {
	cbor.StructAsArray
	ClubId     uint64
	ProposalId uint64
}

type openCycleParams struct {
	cbor.StructAsArray
	ClubId  uint64
	Period  *uint64
	Minimum *uint64
}

type contributeParams struct {
	cbor.StructAsArray
	ClubId uint64
	Amount uint64
}

type closeCycleParams struct {
	cbor.StructAsArray
	ClubId uint64
}

type distributeReturnsParams struct {
	cbor.StructAsArray
	ClubId  uint64
	CycleId uint64
	Returns uint64
}

type claimReturnsParams struct {
	cbor.StructAsArray
	ClubId  uint64
	CycleId uint64
}

type depositTreasuryParams struct {
	cbor.StructAsArray
	ClubId uint64
	Amount uint64
}

type requestWithdrawalParams struct {
	cbor.StructAsArray
	ClubId    uint64
	Recipient string
	Amount    uint64
	Delay     uint64
}

type approveWithdrawalParams struct {
	cbor.StructAsArray
	ClubId       uint64
	WithdrawalId uint64
}

type executeWithdrawalParams struct {
	cbor.StructAsArray
	ClubId       uint64
	WithdrawalId uint64
}

type cancelWithdrawalParams struct {
	cbor.StructAsArray
	ClubId       uint64
	WithdrawalId uint64
}

type openDisputeParams struct {
	cbor.StructAsArray
	ClubId      uint64
	Subject     string
	Description string
}

type submitEvidenceParams struct {
	cbor.StructAsArray
	ClubId      uint64
	DisputeId   uint64
	Description string
}

type voteOnDisputeParams struct {
	cbor.StructAsArray
	ClubId    uint64
	DisputeId uint64
	Choice    uint8
}

type escalateDisputeParams struct {
	cbor.StructAsArray
	ClubId    uint64
	DisputeId uint64
}

type resolveDisputeParams struct {
	cbor.StructAsArray
	ClubId    uint64
	DisputeId uint64
}

type closeDisputeParams struct {
	cbor.StructAsArray
	ClubId    uint64
	DisputeId uint64
}

// actionRecord is the envelope stored in the action log
type actionRecord struct {
	cbor.StructAsArray
	Id     []byte
	Type   string
	Caller string
	Block  uint64
	Params []byte
}

// pendingAction is an action waiting in the apply queue
type pendingAction struct {
	id     uuid.UUID
	caller types.AccountId
	params actionParams
	result chan actionResult
}

type actionResult struct {
	value any
	err   error
}

func encodeActionRecord(
	id uuid.UUID,
	caller types.AccountId,
	block types.BlockNumber,
	params actionParams,
) ([]byte, error) {
	paramsCbor, err := cbor.Encode(params)
	if err != nil {
		return nil, fmt.Errorf("encode %s params: %w", params.actionType(), err)
	}
	rec := actionRecord{
		Id:     id[:],
		Type:   string(params.actionType()),
		Caller: string(caller),
		Block:  uint64(block),
		Params: paramsCbor,
	}
	ret, err := cbor.Encode(&rec)
	if err != nil {
		return nil, fmt.Errorf("encode action record: %w", err)
	}
	return ret, nil
}

// decodedAction is a stored action ready to be applied again
type decodedAction struct {
	id     uuid.UUID
	caller types.AccountId
	block  types.BlockNumber
	params actionParams
}

func decodeActionRecord(data []byte) (decodedAction, error) {
	var rec actionRecord
	if _, err := cbor.Decode(data, &rec); err != nil {
		return decodedAction{}, fmt.Errorf("decode action record: %w", err)
	}
	id, err := uuid.FromBytes(rec.Id)
	if err != nil {
		return decodedAction{}, fmt.Errorf("decode action id: %w", err)
	}
	factory, ok := paramsFactory[ActionType(rec.Type)]
	if !ok {
		return decodedAction{}, fmt.Errorf("unknown action type %q", rec.Type)
	}
	params := factory()
	if _, err := cbor.Decode(rec.Params, params); err != nil {
		return decodedAction{}, fmt.Errorf("decode %s params: %w", rec.Type, err)
	}
	return decodedAction{
		id:     id,
		caller: types.AccountId(rec.Caller),
		block:  types.BlockNumber(rec.Block),
		params: params,
	}, nil
}

func optionalUint64(v *uint64) *uint64 {
	if v == nil {
		return nil
	}
	ret := *v
	return &ret
}

func optionalAmount(v *uint64) *types.Amount {
	if v == nil {
		return nil
	}
	ret := types.Amount(*v)
	return &ret
}

func amountPtr(v *types.Amount) *uint64 {
	if v == nil {
		return nil
	}
	ret := uint64(*v)
	return &ret
}
