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
	"errors"
	"fmt"
)

// ErrorKind identifies the category of a rejected operation
type ErrorKind string

const (
	KindInvalidParameters   ErrorKind = "InvalidParameters"
	KindNotAMember          ErrorKind = "NotAMember"
	KindProposalNotActive   ErrorKind = "ProposalNotActive"
	KindVotingClosed        ErrorKind = "VotingClosed"
	KindInsufficientBalance ErrorKind = "InsufficientBalance"
	KindDelegationCycle     ErrorKind = "DelegationCycle"
	KindCycleAlreadyOpen    ErrorKind = "CycleAlreadyOpen"
	KindCycleClosed         ErrorKind = "CycleClosed"
	KindBelowMinimum        ErrorKind = "BelowMinimum"
	KindAlreadyClaimed      ErrorKind = "AlreadyClaimed"
	KindNoContribution      ErrorKind = "NoContribution"
	KindNotFound            ErrorKind = "NotFound"
	KindVotingNotEnded      ErrorKind = "VotingNotEnded"
	KindClubInactive        ErrorKind = "ClubInactive"
	KindUnauthorized        ErrorKind = "Unauthorized"
	KindDisputeNotOpen      ErrorKind = "DisputeNotOpen"
)

// DomainError is returned when an operation is rejected by a business rule.
// A rejected operation never changes state.
type DomainError struct {
	Kind       ErrorKind
	Constraint string
}

func (e *DomainError) Error() string {
	if e.Constraint == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Constraint)
}

// Is matches any DomainError sentinel of the same kind
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Constraint == ""
}

var (
	ErrInvalidParameters   = &DomainError{Kind: KindInvalidParameters}
	ErrNotAMember          = &DomainError{Kind: KindNotAMember}
	ErrProposalNotActive   = &DomainError{Kind: KindProposalNotActive}
	ErrVotingClosed        = &DomainError{Kind: KindVotingClosed}
	ErrInsufficientBalance = &DomainError{Kind: KindInsufficientBalance}
	ErrDelegationCycle     = &DomainError{Kind: KindDelegationCycle}
	ErrCycleAlreadyOpen    = &DomainError{Kind: KindCycleAlreadyOpen}
	ErrCycleClosed         = &DomainError{Kind: KindCycleClosed}
	ErrBelowMinimum        = &DomainError{Kind: KindBelowMinimum}
	ErrAlreadyClaimed      = &DomainError{Kind: KindAlreadyClaimed}
	ErrNoContribution      = &DomainError{Kind: KindNoContribution}
	ErrNotFound            = &DomainError{Kind: KindNotFound}
	ErrVotingNotEnded      = &DomainError{Kind: KindVotingNotEnded}
	ErrClubInactive        = &DomainError{Kind: KindClubInactive}
	ErrUnauthorized        = &DomainError{Kind: KindUnauthorized}
	ErrDisputeNotOpen      = &DomainError{Kind: KindDisputeNotOpen}
)

// NewDomainError builds a DomainError with a formatted constraint description
func NewDomainError(kind ErrorKind, format string, args ...any) *DomainError {
	return &DomainError{
		Kind:       kind,
		Constraint: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of a DomainError anywhere in the chain
func KindOf(err error) (ErrorKind, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind, true
	}
	return "", false
}

// InvariantError signals a broken internal invariant. It is never the result of
// bad input and the ledger stops accepting mutations after seeing one.
type InvariantError struct {
	Message string
	Err     error
}

func (e *InvariantError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invariant violation: %s: %s", e.Message, e.Err)
	}
	return "invariant violation: " + e.Message
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// NewInvariantError builds an InvariantError with a formatted message
func NewInvariantError(format string, args ...any) *InvariantError {
	return &InvariantError{
		Message: fmt.Sprintf(format, args...),
	}
}

// IsInvariant reports whether err carries an InvariantError
func IsInvariant(err error) bool {
	var invErr *InvariantError
	return errors.As(err, &invErr)
}
