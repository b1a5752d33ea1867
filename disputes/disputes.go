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

package disputes

import (
	"cmp"
	"slices"

	"github.com/ikubchain/clubledger/types"
)

const (
	MaxDescriptionLength = 1024
	MaxEvidenceLength    = 2048
)

// Membership answers whether an account may take part in a club dispute
type Membership interface {
	IsActiveMember(types.ClubId, types.AccountId) bool
}

type disputeEntry struct {
	dispute  Dispute
	evidence []Evidence
	votes    []Vote
}

type clubDisputes struct {
	next     types.DisputeId
	disputes map[types.DisputeId]*disputeEntry
}

// Engine owns the disputes of every club. It is not safe for concurrent
// use. Every operation validates fully before mutating, so a DomainError
// means nothing changed.
type Engine struct {
	clubs map[types.ClubId]*clubDisputes
}

func NewEngine() *Engine {
	return &Engine{
		clubs: make(map[types.ClubId]*clubDisputes),
	}
}

func (e *Engine) lookup(club types.ClubId, id types.DisputeId) (*disputeEntry, error) {
	if c, ok := e.clubs[club]; ok {
		if entry, ok := c.disputes[id]; ok {
			return entry, nil
		}
	}
	return nil, types.NewDomainError(
		types.KindNotFound,
		"dispute %d does not exist in club %d",
		id,
		club,
	)
}

func checkText(name string, text string, limit int) error {
	if text == "" {
		return types.NewDomainError(types.KindInvalidParameters, "%s must not be empty", name)
	}
	if len(text) > limit {
		return types.NewDomainError(
			types.KindInvalidParameters,
			"%s exceeds %d bytes",
			name,
			limit,
		)
	}
	return nil
}

func notOpen(d *Dispute, what string) error {
	return types.NewDomainError(
		types.KindDisputeNotOpen,
		"dispute %d is %s and takes no %s",
		d.Id,
		d.Status,
		what,
	)
}

// Open raises a dispute of initiator against subject. Both must be active
// members of the club.
func (e *Engine) Open(
	club types.ClubId,
	initiator types.AccountId,
	subject types.AccountId,
	description string,
	now types.BlockNumber,
	members Membership,
) (Dispute, error) {
	if err := subject.Validate(); err != nil {
		return Dispute{}, err
	}
	if subject == initiator {
		return Dispute{}, types.NewDomainError(
			types.KindInvalidParameters,
			"%s cannot open a dispute against themselves",
			initiator,
		)
	}
	if !members.IsActiveMember(club, subject) {
		return Dispute{}, types.NewDomainError(
			types.KindNotAMember,
			"%s is not an active member of club %d",
			subject,
			club,
		)
	}
	if err := checkText("dispute description", description, MaxDescriptionLength); err != nil {
		return Dispute{}, err
	}
	c, ok := e.clubs[club]
	if !ok {
		c = &clubDisputes{
			next:     1,
			disputes: make(map[types.DisputeId]*disputeEntry),
		}
		e.clubs[club] = c
	}
	entry := &disputeEntry{
		dispute: Dispute{
			Id:          c.next,
			ClubId:      club,
			Initiator:   initiator,
			Subject:     subject,
			Description: description,
			Status:      StatusOpen,
			CreatedAt:   now,
		},
	}
	c.disputes[c.next] = entry
	c.next++
	return entry.dispute, nil
}

// SubmitEvidence attaches the one statement an account may give
func (e *Engine) SubmitEvidence(
	club types.ClubId,
	id types.DisputeId,
	submitter types.AccountId,
	description string,
	now types.BlockNumber,
) (Evidence, error) {
	entry, err := e.lookup(club, id)
	if err != nil {
		return Evidence{}, err
	}
	if !entry.dispute.Status.acceptsEvidence() {
		return Evidence{}, notOpen(&entry.dispute, "evidence")
	}
	if slices.ContainsFunc(entry.evidence, func(ev Evidence) bool { return ev.Submitter == submitter }) {
		return Evidence{}, types.NewDomainError(
			types.KindInvalidParameters,
			"%s already submitted evidence for dispute %d",
			submitter,
			id,
		)
	}
	if err := checkText("evidence", description, MaxEvidenceLength); err != nil {
		return Evidence{}, err
	}
	ev := Evidence{
		ClubId:      club,
		DisputeId:   id,
		Submitter:   submitter,
		Description: description,
		SubmittedAt: now,
	}
	entry.evidence = append(entry.evidence, ev)
	entry.dispute.EvidenceCount++
	return ev, nil
}

// Vote records one vote per member. The parties of a dispute do not vote
// on it.
func (e *Engine) Vote(
	club types.ClubId,
	id types.DisputeId,
	voter types.AccountId,
	choice VoteChoice,
	now types.BlockNumber,
) (Vote, error) {
	if !choice.Valid() {
		return Vote{}, types.NewDomainError(types.KindInvalidParameters, "unknown vote choice %d", choice)
	}
	entry, err := e.lookup(club, id)
	if err != nil {
		return Vote{}, err
	}
	d := &entry.dispute
	if !d.Status.acceptsVotes() {
		return Vote{}, notOpen(d, "votes")
	}
	if voter == d.Initiator || voter == d.Subject {
		return Vote{}, types.NewDomainError(
			types.KindUnauthorized,
			"%s is a party to dispute %d",
			voter,
			id,
		)
	}
	if slices.ContainsFunc(entry.votes, func(v Vote) bool { return v.Voter == voter }) {
		return Vote{}, types.NewDomainError(
			types.KindInvalidParameters,
			"%s already voted on dispute %d",
			voter,
			id,
		)
	}
	v := Vote{
		ClubId:    club,
		DisputeId: id,
		Voter:     voter,
		Choice:    choice,
		CastAt:    now,
	}
	entry.votes = append(entry.votes, v)
	switch choice {
	case ChoiceFavorInitiator:
		d.FavorInitiator++
	case ChoiceFavorSubject:
		d.FavorSubject++
	case ChoiceAbstain:
		d.Abstain++
	}
	return v, nil
}

// Escalate moves a dispute from Open to InMediation and from there to
// InArbitration. Only the mediator may escalate.
func (e *Engine) Escalate(
	club types.ClubId,
	id types.DisputeId,
	caller types.AccountId,
	mediator types.AccountId,
) (Dispute, error) {
	entry, err := e.lookup(club, id)
	if err != nil {
		return Dispute{}, err
	}
	if caller != mediator {
		return Dispute{}, types.NewDomainError(
			types.KindUnauthorized,
			"only %s may escalate disputes in club %d",
			mediator,
			club,
		)
	}
	d := &entry.dispute
	switch d.Status {
	case StatusOpen:
		d.Status = StatusInMediation
	case StatusInMediation:
		d.Status = StatusInArbitration
	default:
		return Dispute{}, notOpen(d, "escalation")
	}
	return *d, nil
}

// Resolve decides a dispute by its votes. A tie favors the subject.
func (e *Engine) Resolve(
	club types.ClubId,
	id types.DisputeId,
	now types.BlockNumber,
) (Dispute, error) {
	entry, err := e.lookup(club, id)
	if err != nil {
		return Dispute{}, err
	}
	d := &entry.dispute
	if !d.Status.acceptsVotes() {
		return Dispute{}, notOpen(d, "resolution")
	}
	if len(entry.votes) == 0 {
		return Dispute{}, types.NewDomainError(
			types.KindInvalidParameters,
			"dispute %d has no votes",
			id,
		)
	}
	d.Winner = d.Subject
	if d.FavorInitiator > d.FavorSubject {
		d.Winner = d.Initiator
	}
	d.Status = StatusResolved
	d.ResolvedAt = now
	return *d, nil
}

// Close ends a dispute. The initiator may withdraw one that is not resolved
// yet. A resolved dispute may be closed by either party or the mediator.
func (e *Engine) Close(
	club types.ClubId,
	id types.DisputeId,
	caller types.AccountId,
	mediator types.AccountId,
	now types.BlockNumber,
) (Dispute, error) {
	entry, err := e.lookup(club, id)
	if err != nil {
		return Dispute{}, err
	}
	d := &entry.dispute
	switch d.Status {
	case StatusClosed:
		return Dispute{}, notOpen(d, "closing")
	case StatusResolved:
		if caller != d.Initiator && caller != d.Subject && caller != mediator {
			return Dispute{}, types.NewDomainError(
				types.KindUnauthorized,
				"%s may not close dispute %d",
				caller,
				id,
			)
		}
	default:
		if caller != d.Initiator {
			return Dispute{}, types.NewDomainError(
				types.KindUnauthorized,
				"only %s may withdraw dispute %d",
				d.Initiator,
				id,
			)
		}
	}
	d.Status = StatusClosed
	d.ClosedAt = now
	return *d, nil
}

func (e *Engine) Dispute(club types.ClubId, id types.DisputeId) (Dispute, error) {
	entry, err := e.lookup(club, id)
	if err != nil {
		return Dispute{}, err
	}
	return entry.dispute, nil
}

// Disputes returns the disputes of a club in id order
func (e *Engine) Disputes(club types.ClubId) []Dispute {
	c, ok := e.clubs[club]
	if !ok {
		return []Dispute{}
	}
	ret := make([]Dispute, 0, len(c.disputes))
	for _, entry := range c.disputes {
		ret = append(ret, entry.dispute)
	}
	slices.SortFunc(ret, func(a, b Dispute) int {
		return cmp.Compare(a.Id, b.Id)
	})
	return ret
}

// Evidence returns the statements of a dispute in submission order
func (e *Engine) Evidence(club types.ClubId, id types.DisputeId) ([]Evidence, error) {
	entry, err := e.lookup(club, id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(entry.evidence), nil
}

func (e *Engine) EvidenceOf(
	club types.ClubId,
	id types.DisputeId,
	submitter types.AccountId,
) (Evidence, error) {
	entry, err := e.lookup(club, id)
	if err != nil {
		return Evidence{}, err
	}
	for _, ev := range entry.evidence {
		if ev.Submitter == submitter {
			return ev, nil
		}
	}
	return Evidence{}, types.NewDomainError(
		types.KindNotFound,
		"%s has no evidence on dispute %d",
		submitter,
		id,
	)
}

// Votes returns the votes of a dispute in casting order
func (e *Engine) Votes(club types.ClubId, id types.DisputeId) ([]Vote, error) {
	entry, err := e.lookup(club, id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(entry.votes), nil
}

func (e *Engine) VoteOf(
	club types.ClubId,
	id types.DisputeId,
	voter types.AccountId,
) (Vote, error) {
	entry, err := e.lookup(club, id)
	if err != nil {
		return Vote{}, err
	}
	for _, v := range entry.votes {
		if v.Voter == voter {
			return v, nil
		}
	}
	return Vote{}, types.NewDomainError(
		types.KindNotFound,
		"%s has not voted on dispute %d",
		voter,
		id,
	)
}
