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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ikubchain/clubledger/club"
	"github.com/ikubchain/clubledger/governance"
	"github.com/ikubchain/clubledger/ledger"
	"github.com/ikubchain/clubledger/treasury"
	"github.com/ikubchain/clubledger/types"
)

func newTestApi(t *testing.T) (*Api, *ledger.LedgerState) {
	t.Helper()
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{})
	require.NoError(t, err)
	return New(ApiConfig{ListenAddress: ":0"}, ls, nil), ls
}

// do sends a request through the API routes. A string body is sent as is.
func do(
	t *testing.T,
	a *Api,
	method string,
	path string,
	account string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		buf, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if account != "" {
		req.Header.Set(AccountHeader, account)
	}
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var ret T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&ret))
	return ret
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
}

func requireError(
	t *testing.T,
	w *httptest.ResponseRecorder,
	status int,
	kind types.ErrorKind,
) {
	t.Helper()
	requireStatus(t, w, status)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, status, resp.StatusCode)
	assert.Equal(t, string(kind), resp.Error)
	assert.NotEmpty(t, resp.Message)
}

// setupClub endows alice, bob and carol and puts them in club 1
func setupClub(t *testing.T, a *Api) {
	t.Helper()
	for _, account := range []string{"alice", "bob", "carol"} {
		w := do(t, a, http.MethodPost, "/api/v0/accounts/"+account+"/endow", account,
			`{"amount":"100000"}`)
		requireStatus(t, w, http.StatusOK)
	}
	w := do(t, a, http.MethodPost, "/api/v0/clubs", "alice",
		CreateClubRequest{Name: "Alpha", Description: "first club"})
	requireStatus(t, w, http.StatusCreated)
	cl := decode[club.Club](t, w)
	require.Equal(t, types.ClubId(1), cl.Id)
	for _, account := range []string{"bob", "carol"} {
		w := do(t, a, http.MethodPost, "/api/v0/clubs/1/join", account, nil)
		requireStatus(t, w, http.StatusOK)
	}
}

func TestStartStop(t *testing.T) {
	_, ls := newTestApi(t)
	defer ls.Close()
	a := New(ApiConfig{ListenAddress: "127.0.0.1:0"}, ls, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx))

	a.mu.Lock()
	assert.NotNil(t, a.httpServer)
	a.mu.Unlock()
	assert.NotEqual(t, "127.0.0.1:0", a.Addr())

	resp, err := http.Get("http://" + a.Addr() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	err = a.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")

	stopCtx, stopCancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer stopCancel()
	require.NoError(t, a.Stop(stopCtx))

	a.mu.Lock()
	assert.Nil(t, a.httpServer)
	a.mu.Unlock()
}

func TestHandleRoot(t *testing.T) {
	defer goleak.VerifyNone(t)
	a, ls := newTestApi(t)
	defer ls.Close()

	w := do(t, a, http.MethodGet, "/", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decode[RootResponse](t, w)
	assert.Equal(t, "clubledger", resp.Name)
	assert.NotEmpty(t, resp.Version)

	w = do(t, a, http.MethodGet, "/api/v0/nothing", "", nil)
	requireError(t, w, http.StatusNotFound, types.KindNotFound)
}

func TestHandleHealth(t *testing.T) {
	defer goleak.VerifyNone(t)
	a, ls := newTestApi(t)
	defer ls.Close()
	setupClub(t, a)

	w := do(t, a, http.MethodGet, "/health", "", nil)
	requireStatus(t, w, http.StatusOK)
	resp := decode[HealthResponse](t, w)
	assert.True(t, resp.IsHealthy)
	assert.Equal(t, ls.Seq(), resp.Seq)
	assert.Empty(t, resp.Error)
}

func TestMissingAccountHeader(t *testing.T) {
	defer goleak.VerifyNone(t)
	a, ls := newTestApi(t)
	defer ls.Close()

	w := do(t, a, http.MethodPost, "/api/v0/clubs", "",
		CreateClubRequest{Name: "Alpha"})
	requireError(t, w, http.StatusUnauthorized, types.KindUnauthorized)
	assert.Empty(t, ls.Clubs())

	w = do(t, a, http.MethodPost, "/api/v0/clubs", strings.Repeat("x", 65),
		CreateClubRequest{Name: "Alpha"})
	requireError(t, w, http.StatusBadRequest, types.KindInvalidParameters)
}

func TestBlockAdvance(t *testing.T) {
	defer goleak.VerifyNone(t)
	a, ls := newTestApi(t)
	defer ls.Close()

	w := do(t, a, http.MethodPost, "/api/v0/block/advance", "alice",
		AdvanceBlocksRequest{Blocks: 7})
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, types.BlockNumber(7), decode[BlockResponse](t, w).Block)

	w = do(t, a, http.MethodGet, "/api/v0/block", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, types.BlockNumber(7), decode[BlockResponse](t, w).Block)
}

func TestAmountsAreDecimalStrings(t *testing.T) {
	defer goleak.VerifyNone(t)
	a, ls := newTestApi(t)
	defer ls.Close()

	w := do(t, a, http.MethodPost, "/api/v0/accounts/alice/endow", "alice",
		`{"amount":"18446744073709551615"}`)
	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `"free":"18446744073709551615"`)

	// Numbers are refused so that no client rounds through a float
	w = do(t, a, http.MethodPost, "/api/v0/accounts/bob/endow", "bob",
		`{"amount":100}`)
	requireError(t, w, http.StatusBadRequest, types.KindInvalidParameters)

	w = do(t, a, http.MethodPost, "/api/v0/accounts/bob/endow", "bob",
		`{"amount":"-5"}`)
	requireError(t, w, http.StatusBadRequest, types.KindInvalidParameters)

	w = do(t, a, http.MethodGet, "/api/v0/accounts/bob", "", nil)
	requireStatus(t, w, http.StatusOK)
	resp := decode[BalanceResponse](t, w)
	assert.Equal(t, types.Amount(0), resp.Free)
}

func TestRequestValidation(t *testing.T) {
	defer goleak.VerifyNone(t)
	a, ls := newTestApi(t)
	defer ls.Close()
	setupClub(t, a)

	testDefs := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{
			name:   "missing body",
			method: http.MethodPost,
			path:   "/api/v0/clubs",
		},
		{
			name:   "unknown field",
			method: http.MethodPost,
			path:   "/api/v0/clubs",
			body:   `{"name":"Beta","color":"red"}`,
		},
		{
			name:   "bad club id",
			method: http.MethodPost,
			path:   "/api/v0/clubs/abc/join",
		},
		{
			name:   "missing proposal type",
			method: http.MethodPost,
			path:   "/api/v0/clubs/1/proposals",
			body:   `{"mechanism":"SimpleMajority","title":"x","threshold":50,"duration":10}`,
		},
		{
			name:   "unknown mechanism",
			method: http.MethodPost,
			path:   "/api/v0/clubs/1/proposals",
			body:   `{"type":"Operational","mechanism":"Lottery","title":"x","threshold":50,"duration":10}`,
		},
		{
			name:   "zero threshold",
			method: http.MethodPost,
			path:   "/api/v0/clubs/1/proposals",
			body:   `{"type":"Operational","mechanism":"SimpleMajority","title":"x","threshold":0,"duration":10}`,
		},
		{
			name:   "missing choice",
			method: http.MethodPost,
			path:   "/api/v0/clubs/1/proposals/1/votes",
			body:   `{}`,
		},
		{
			name:   "bad pagination",
			method: http.MethodGet,
			path:   "/api/v0/clubs?count=abc",
		},
		{
			name:   "bad action sequence",
			method: http.MethodGet,
			path:   "/api/v0/actions?after=-1",
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			seq := ls.Seq()
			w := do(t, a, testDef.method, testDef.path, "alice", testDef.body)
			requireError(t, w, http.StatusBadRequest, types.KindInvalidParameters)
			assert.Equal(t, seq, ls.Seq())
		})
	}
}

func TestDomainErrorMapping(t *testing.T) {
	defer goleak.VerifyNone(t)
	a, ls := newTestApi(t)
	defer ls.Close()
	setupClub(t, a)
	w := do(t, a, http.MethodPost, "/api/v0/clubs/1/proposals", "alice", `{
		"type": "Operational",
		"mechanism": "SimpleMajority",
		"title": "Buy coffee",
		"threshold": 50,
		"duration": 10
	}`)
	requireStatus(t, w, http.StatusCreated)

	testDefs := []struct {
		name    string
		method  string
		path    string
		account string
		body    any
		status  int
		kind    types.ErrorKind
	}{
		{
			name:    "unknown club",
			method:  http.MethodPost,
			path:    "/api/v0/clubs/9/join",
			account: "dave",
			status:  http.StatusNotFound,
			kind:    types.KindNotFound,
		},
		{
			name:   "unknown proposal",
			method: http.MethodGet,
			path:   "/api/v0/clubs/1/proposals/9",
			status: http.StatusNotFound,
			kind:   types.KindNotFound,
		},
		{
			name:    "non-member vote",
			method:  http.MethodPost,
			path:    "/api/v0/clubs/1/proposals/1/votes",
			account: "dave",
			body:    `{"choice":"Aye"}`,
			status:  http.StatusForbidden,
			kind:    types.KindNotAMember,
		},
		{
			name:    "cancel by another member",
			method:  http.MethodPost,
			path:    "/api/v0/clubs/1/proposals/1/cancel",
			account: "bob",
			status:  http.StatusForbidden,
			kind:    types.KindUnauthorized,
		},
		{
			name:    "join twice",
			method:  http.MethodPost,
			path:    "/api/v0/clubs/1/join",
			account: "bob",
			status:  http.StatusBadRequest,
			kind:    types.KindInvalidParameters,
		},
		{
			name:    "finalize early",
			method:  http.MethodPost,
			path:    "/api/v0/clubs/1/proposals/1/finalize",
			account: "bob",
			status:  http.StatusConflict,
			kind:    types.KindVotingNotEnded,
		},
		{
			name:    "delegate to self",
			method:  http.MethodPut,
			path:    "/api/v0/clubs/1/delegate",
			account: "bob",
			body:    DelegateRequest{To: "bob"},
			status:  http.StatusConflict,
			kind:    types.KindDelegationCycle,
		},
		{
			name:    "contribute without cycle",
			method:  http.MethodPost,
			path:    "/api/v0/clubs/1/cycles/active/contributions",
			account: "bob",
			body:    `{"amount":"1000"}`,
			status:  http.StatusConflict,
			kind:    types.KindCycleClosed,
		},
		{
			name:   "no active cycle",
			method: http.MethodGet,
			path:   "/api/v0/clubs/1/cycles/active",
			status: http.StatusNotFound,
			kind:   types.KindNotFound,
		},
		{
			name:    "overdrawn deposit",
			method:  http.MethodPost,
			path:    "/api/v0/clubs/1/treasury/deposit",
			account: "carol",
			body:    `{"amount":"100001"}`,
			status:  http.StatusConflict,
			kind:    types.KindInsufficientBalance,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			seq := ls.Seq()
			w := do(t, a, testDef.method, testDef.path, testDef.account, testDef.body)
			requireError(t, w, testDef.status, testDef.kind)
			assert.Equal(t, seq, ls.Seq())
		})
	}
}

func TestProposalFlow(t *testing.T) {
	defer goleak.VerifyNone(t)
	a, ls := newTestApi(t)
	defer ls.Close()
	setupClub(t, a)

	w := do(t, a, http.MethodPost, "/api/v0/clubs/1/proposals", "alice", `{
		"type": "Operational",
		"mechanism": "SimpleMajority",
		"title": "Buy coffee",
		"threshold": 60,
		"duration": 10
	}`)
	requireStatus(t, w, http.StatusCreated)
	prop := decode[governance.Proposal](t, w)
	assert.Equal(t, governance.StatusActive, prop.Status)
	assert.Equal(t, governance.DefaultProposalDeposit, prop.Deposit)

	for account, choice := range map[string]string{
		"alice": "Aye",
		"bob":   "Aye",
		"carol": "Nay",
	} {
		w := do(t, a, http.MethodPost, "/api/v0/clubs/1/proposals/1/votes", account,
			fmt.Sprintf(`{"choice":%q}`, choice))
		requireStatus(t, w, http.StatusOK)
		v := decode[governance.Vote](t, w)
		assert.Equal(t, uint64(1), v.Weight)
	}

	w = do(t, a, http.MethodGet, "/api/v0/clubs/1/proposals/1/tally", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `"aye":"2"`)
	tally := decode[TallyResponse](t, w)
	assert.Equal(t, uint64(2), tally.Aye)
	assert.Equal(t, uint64(1), tally.Nay)
	assert.Equal(t, "0.6666", tally.AyeShare)
	assert.True(t, tally.Passing)

	w = do(t, a, http.MethodGet, "/api/v0/clubs/1/proposals/1/votes", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Len(t, decode[[]governance.Vote](t, w), 3)

	w = do(t, a, http.MethodPost, "/api/v0/block/advance", "alice",
		AdvanceBlocksRequest{Blocks: 10})
	requireStatus(t, w, http.StatusOK)
	w = do(t, a, http.MethodPost, "/api/v0/clubs/1/proposals/1/finalize", "carol", nil)
	requireStatus(t, w, http.StatusOK)
	prop = decode[governance.Proposal](t, w)
	assert.Equal(t, governance.StatusPassed, prop.Status)

	w = do(t, a, http.MethodGet, "/api/v0/accounts/alice", "", nil)
	requireStatus(t, w, http.StatusOK)
	bal := decode[BalanceResponse](t, w)
	assert.Equal(t, types.Amount(100_000), bal.Free)
	assert.Equal(t, types.Amount(0), bal.Reserved)

	w = do(t, a, http.MethodGet, "/api/v0/clubs/1/members/alice", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, uint64(1), decode[club.Member](t, w).ProposalsPassed)

	w = do(t, a, http.MethodGet, "/api/v0/clubs/1/proposals?order=desc", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "1", w.Header().Get("X-Pagination-Count-Total"))
	assert.Len(t, decode[[]governance.Proposal](t, w), 1)
}

func TestDelegation(t *testing.T) {
	defer goleak.VerifyNone(t)
	a, ls := newTestApi(t)
	defer ls.Close()
	setupClub(t, a)

	w := do(t, a, http.MethodPut, "/api/v0/clubs/1/delegate", "carol",
		DelegateRequest{To: "bob"})
	requireStatus(t, w, http.StatusNoContent)
	w = do(t, a, http.MethodPut, "/api/v0/clubs/1/delegate", "bob",
		DelegateRequest{To: "carol"})
	requireError(t, w, http.StatusConflict, types.KindDelegationCycle)

	w = do(t, a, http.MethodGet, "/api/v0/clubs/1/delegations", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(
		t,
		map[types.AccountId]types.AccountId{"carol": "bob"},
		decode[map[types.AccountId]types.AccountId](t, w),
	)

	w = do(t, a, http.MethodDelete, "/api/v0/clubs/1/delegate", "carol", nil)
	requireStatus(t, w, http.StatusNoContent)
	w = do(t, a, http.MethodGet, "/api/v0/clubs/1/delegations", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Empty(t, decode[map[types.AccountId]types.AccountId](t, w))
}

func TestTreasuryFlow(t *testing.T) {
	defer goleak.VerifyNone(t)
	a, ls := newTestApi(t)
	defer ls.Close()
	setupClub(t, a)

	w := do(t, a, http.MethodPost, "/api/v0/clubs/1/cycles", "bob", `{}`)
	requireError(t, w, http.StatusForbidden, types.KindUnauthorized)
	w = do(t, a, http.MethodPost, "/api/v0/clubs/1/cycles", "alice", `{}`)
	requireStatus(t, w, http.StatusCreated)
	cycle := decode[treasury.Cycle](t, w)
	assert.Equal(t, types.CycleId(1), cycle.Id)
	assert.Equal(t, treasury.CycleOpen, cycle.Status)
	w = do(t, a, http.MethodPost, "/api/v0/clubs/1/cycles", "alice", `{}`)
	requireError(t, w, http.StatusConflict, types.KindCycleAlreadyOpen)

	w = do(t, a, http.MethodPost, "/api/v0/clubs/1/cycles/active/contributions", "bob",
		`{"amount":"500"}`)
	requireError(t, w, http.StatusBadRequest, types.KindBelowMinimum)
	for account, amount := range map[string]string{"alice": "3000", "bob": "1000"} {
		w := do(t, a, http.MethodPost, "/api/v0/clubs/1/cycles/active/contributions", account,
			fmt.Sprintf(`{"amount":%q}`, amount))
		requireStatus(t, w, http.StatusCreated)
	}
	w = do(t, a, http.MethodGet, "/api/v0/clubs/1/cycles/active", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, types.Amount(4000), decode[treasury.Cycle](t, w).TotalContributions)
	w = do(t, a, http.MethodGet, "/api/v0/clubs/1/cycles/1/contributions", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Len(t, decode[[]treasury.Contribution](t, w), 2)

	w = do(t, a, http.MethodPost, "/api/v0/clubs/1/cycles/active/close", "alice", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, treasury.CycleClosed, decode[treasury.Cycle](t, w).Status)

	w = do(t, a, http.MethodPost, "/api/v0/clubs/1/cycles/1/distribute", "alice",
		`{"returns":"2000"}`)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, treasury.CycleDistributed, decode[treasury.Cycle](t, w).Status)
	w = do(t, a, http.MethodGet, "/api/v0/clubs/1/treasury", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, types.Amount(2000), decode[TreasuryResponse](t, w).Balance)

	w = do(t, a, http.MethodGet, "/api/v0/clubs/1/cycles/1/entitlements/alice", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, types.Amount(1500), decode[treasury.Entitlement](t, w).Amount)

	w = do(t, a, http.MethodPost, "/api/v0/clubs/1/cycles/1/claim", "bob", nil)
	requireStatus(t, w, http.StatusOK)
	ent := decode[treasury.Entitlement](t, w)
	assert.Equal(t, types.Amount(500), ent.Amount)
	assert.True(t, ent.Claimed)
	w = do(t, a, http.MethodPost, "/api/v0/clubs/1/cycles/1/claim", "bob", nil)
	requireError(t, w, http.StatusConflict, types.KindAlreadyClaimed)
	w = do(t, a, http.MethodPost, "/api/v0/clubs/1/cycles/1/claim", "carol", nil)
	requireError(t, w, http.StatusNotFound, types.KindNoContribution)

	w = do(t, a, http.MethodGet, "/api/v0/accounts/bob", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, types.Amount(99_500), decode[BalanceResponse](t, w).Free)
}

func TestWithdrawalFlow(t *testing.T) {
	defer goleak.VerifyNone(t)
	a, ls := newTestApi(t)
	defer ls.Close()
	setupClub(t, a)

	w := do(t, a, http.MethodPost, "/api/v0/clubs/1/treasury/deposit", "alice",
		`{"amount":"5000"}`)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, types.Amount(5000), decode[TreasuryResponse](t, w).Balance)

	w = do(t, a, http.MethodPost, "/api/v0/clubs/1/withdrawals", "alice", `{
		"recipient": "dave",
		"amount": "1000",
		"delay": 5
	}`)
	requireStatus(t, w, http.StatusCreated)
	withdrawal := decode[treasury.Withdrawal](t, w)
	assert.Equal(t, types.WithdrawalId(1), withdrawal.Id)
	assert.Equal(t, []types.AccountId{"alice"}, withdrawal.Signatures)

	w = do(t, a, http.MethodPost, "/api/v0/clubs/1/withdrawals/1/approve", "alice", nil)
	requireError(t, w, http.StatusBadRequest, types.KindInvalidParameters)
	for _, account := range []string{"bob", "carol"} {
		w := do(t, a, http.MethodPost, "/api/v0/clubs/1/withdrawals/1/approve", account, nil)
		requireStatus(t, w, http.StatusOK)
	}
	w = do(t, a, http.MethodGet, "/api/v0/clubs/1/withdrawals/1", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, treasury.WithdrawalApproved, decode[treasury.Withdrawal](t, w).Status)

	w = do(t, a, http.MethodPost, "/api/v0/block/advance", "alice",
		AdvanceBlocksRequest{Blocks: 5})
	requireStatus(t, w, http.StatusOK)
	w = do(t, a, http.MethodPost, "/api/v0/clubs/1/withdrawals/1/execute", "dave", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, treasury.WithdrawalExecuted, decode[treasury.Withdrawal](t, w).Status)

	w = do(t, a, http.MethodGet, "/api/v0/accounts/dave", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, types.Amount(1000), decode[BalanceResponse](t, w).Free)
	w = do(t, a, http.MethodGet, "/api/v0/clubs/1/withdrawals", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Len(t, decode[[]treasury.Withdrawal](t, w), 1)
}

func TestActionsWithoutDatabase(t *testing.T) {
	defer goleak.VerifyNone(t)
	a, ls := newTestApi(t)
	defer ls.Close()

	w := do(t, a, http.MethodGet, "/api/v0/actions", "", nil)
	requireStatus(t, w, http.StatusServiceUnavailable)
	assert.Equal(t, "Unavailable", decode[ErrorResponse](t, w).Error)
}

func TestClosedLedger(t *testing.T) {
	defer goleak.VerifyNone(t)
	a, ls := newTestApi(t)
	require.NoError(t, ls.Close())

	w := do(t, a, http.MethodPost, "/api/v0/clubs", "alice",
		CreateClubRequest{Name: "Alpha"})
	requireStatus(t, w, http.StatusServiceUnavailable)
}

func TestAyeShare(t *testing.T) {
	testDefs := []struct {
		tally    governance.Tally
		expected string
	}{
		{tally: governance.Tally{}, expected: "0.0000"},
		{tally: governance.Tally{Abstain: 4}, expected: "0.0000"},
		{tally: governance.Tally{Aye: 1}, expected: "1.0000"},
		{tally: governance.Tally{Aye: 2, Nay: 1}, expected: "0.6666"},
		{tally: governance.Tally{Aye: 1, Nay: 2}, expected: "0.3333"},
		{tally: governance.Tally{Aye: 67, Nay: 33, Abstain: 9}, expected: "0.6700"},
		{
			tally:    governance.Tally{Aye: 1<<64 - 1, Nay: 1<<64 - 1},
			expected: "0.5000",
		},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.expected, ayeShare(testDef.tally), "tally %+v", testDef.tally)
	}
}

func TestErrorStatus(t *testing.T) {
	testDefs := map[types.ErrorKind]int{
		types.KindNotFound:            http.StatusNotFound,
		types.KindNoContribution:      http.StatusNotFound,
		types.KindUnauthorized:        http.StatusForbidden,
		types.KindNotAMember:          http.StatusForbidden,
		types.KindInvalidParameters:   http.StatusBadRequest,
		types.KindBelowMinimum:        http.StatusBadRequest,
		types.KindInsufficientBalance: http.StatusConflict,
		types.KindVotingClosed:        http.StatusConflict,
		types.KindClubInactive:        http.StatusConflict,
		types.KindDisputeNotOpen:      http.StatusConflict,
	}
	for kind, status := range testDefs {
		assert.Equal(t, status, errorStatus(kind), "kind %s", kind)
	}
}
