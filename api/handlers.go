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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/internal/version"
	"github.com/ikubchain/clubledger/ledger"
	"github.com/ikubchain/clubledger/types"
)

const (
	// AccountHeader carries the caller identity. It is verified upstream.
	AccountHeader = "X-Account"

	maxBodySize = 1 << 20
)

// writeJSON writes a JSON response with the given status
// code.
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(
	w http.ResponseWriter,
	status int,
	errStr string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      errStr,
		Message:    message,
	})
}

// errorStatus maps a domain error kind to its HTTP status
func errorStatus(kind types.ErrorKind) int {
	switch kind {
	case types.KindNotFound, types.KindNoContribution:
		return http.StatusNotFound
	case types.KindUnauthorized, types.KindNotAMember:
		return http.StatusForbidden
	case types.KindInvalidParameters, types.KindBelowMinimum:
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

// writeLedgerError writes the response for an error returned by the ledger
func (a *Api) writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *types.DomainError
	switch {
	case errors.As(err, &domainErr):
		writeError(w, errorStatus(domainErr.Kind), string(domainErr.Kind), domainErr.Constraint)
	case types.IsInvariant(err):
		a.logger.Error(
			"ledger invariant violation",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "InvariantViolation", err.Error())
	case errors.Is(err, ledger.ErrLedgerClosed),
		errors.Is(err, ledger.ErrNoActionLog),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Unavailable", err.Error())
	default:
		a.logger.Error(
			"request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}

func writeBadRequest(w http.ResponseWriter, format string, args ...any) {
	writeError(
		w,
		http.StatusBadRequest,
		string(types.KindInvalidParameters),
		fmt.Sprintf(format, args...),
	)
}

// caller returns the account from the X-Account header, or writes an error
func caller(w http.ResponseWriter, r *http.Request) (types.AccountId, bool) {
	account := types.AccountId(r.Header.Get(AccountHeader))
	if account == "" {
		writeError(
			w,
			http.StatusUnauthorized,
			string(types.KindUnauthorized),
			AccountHeader+" header is required",
		)
		return "", false
	}
	if err := account.Validate(); err != nil {
		writeBadRequest(w, "invalid %s header: %s", AccountHeader, err)
		return "", false
	}
	return account, true
}

// decodeBody reads a JSON request body into v, or writes an error
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeBadRequest(w, "request body is required")
			return false
		}
		var domainErr *types.DomainError
		if errors.As(err, &domainErr) {
			writeError(w, errorStatus(domainErr.Kind), string(domainErr.Kind), domainErr.Constraint)
			return false
		}
		writeBadRequest(w, "invalid request body: %s", err)
		return false
	}
	return true
}

func pathUint64(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	raw := r.PathValue(name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeBadRequest(w, "%s %q is not a valid id", name, raw)
		return 0, false
	}
	return v, true
}

func pathClub(w http.ResponseWriter, r *http.Request) (types.ClubId, bool) {
	v, ok := pathUint64(w, r, "club")
	return types.ClubId(v), ok
}

func pathAccount(w http.ResponseWriter, r *http.Request) (types.AccountId, bool) {
	account := types.AccountId(r.PathValue("account"))
	if err := account.Validate(); err != nil {
		writeBadRequest(w, "invalid account: %s", err)
		return "", false
	}
	return account, true
}

// ayeShare returns floor(aye/(aye+nay)) to 4 decimal places
func ayeShare(t governance.Tally) string {
	aye := decimal.NewFromUint64(t.Aye)
	decisive := aye.Add(decimal.NewFromUint64(t.Nay))
	if decisive.IsZero() {
		return decimal.Zero.StringFixed(4)
	}
	basisPoints, _ := aye.Shift(4).QuoRem(decisive, 0)
	return basisPoints.Shift(-4).StringFixed(4)
}

func tallyResponse(t governance.Tally, threshold uint8) TallyResponse {
	return TallyResponse{
		Aye:      t.Aye,
		Nay:      t.Nay,
		Abstain:  t.Abstain,
		AyeShare: ayeShare(t),
		Passing:  governance.MeetsThreshold(t, threshold),
	}
}

// handleRoot handles GET / and returns API metadata.
func (a *Api) handleRoot(
	w http.ResponseWriter,
	r *http.Request,
) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, string(types.KindNotFound), "no route for "+r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, RootResponse{
		Name:    "clubledger",
		Version: version.GetVersionString(),
	})
}

// handleHealth reports unhealthy once the ledger has halted
func (a *Api) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	resp := HealthResponse{
		IsHealthy: true,
		Seq:       a.ledger.Seq(),
		Block:     uint64(a.ledger.CurrentBlock()),
	}
	status := http.StatusOK
	if err := a.ledger.Halted(); err != nil {
		resp.IsHealthy = false
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (a *Api) handleCurrentBlock(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, BlockResponse{Block: a.ledger.CurrentBlock()})
}

func (a *Api) handleAdvanceBlocks(w http.ResponseWriter, r *http.Request) {
	account, ok := caller(w, r)
	if !ok {
		return
	}
	var req AdvanceBlocksRequest
	if !decodeBody(w, r, &req) {
		return
	}
	block, err := a.ledger.AdvanceBlocks(r.Context(), account, req.Blocks)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BlockResponse{Block: block})
}

// handleActions pages through the action log. The after parameter is the
// last sequence the client has seen.
func (a *Api) handleActions(w http.ResponseWriter, r *http.Request) {
	params, err := ParsePagination(r)
	if err != nil {
		writeBadRequest(w, "%s", err)
		return
	}
	var after uint64
	if raw := r.URL.Query().Get("after"); raw != "" {
		after, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeBadRequest(w, "after %q is not a sequence number", raw)
			return
		}
	}
	actions, err := a.ledger.Actions(after, params.Count)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	ret := make([]ActionResponse, 0, len(actions))
	for _, action := range actions {
		ret = append(ret, ActionResponse{
			Seq:    action.Seq,
			Id:     action.ActionId,
			Type:   action.Type,
			Caller: action.Caller,
			Block:  action.Block,
		})
	}
	writeJSON(w, http.StatusOK, ret)
}
