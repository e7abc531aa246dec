package handler

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"duesgate/internal/dues/handler/mocks"
	"duesgate/internal/fhe"
	id "duesgate/pkg/domain"
	dErrors "duesgate/pkg/domain-errors"
	"duesgate/pkg/testutil"
)

type DuesHandlerSuite struct {
	suite.Suite
	caller id.PrincipalID
	member id.MemberID
}

func (s *DuesHandlerSuite) SetupSuite() {
	caller, err := id.ParsePrincipalID("8a7b2c1d-0e3f-4a5b-8c9d-0e1f2a3b4c5d")
	require.NoError(s.T(), err)
	member, err := id.ParseMemberID("1f2e3d4c-5b6a-4978-8796-a5b4c3d2e1f0")
	require.NoError(s.T(), err)
	s.caller = caller
	s.member = member
}

func TestDuesHandlerSuite(t *testing.T) {
	suite.Run(t, new(DuesHandlerSuite))
}

func newTestHandler(t *testing.T) (*Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(mockService, logger, nil, nil), mockService
}

// authenticate attaches the caller principal and the member URL param the
// router would provide.
func (s *DuesHandlerSuite) authenticate(req *http.Request) *http.Request {
	req = testutil.WithPrincipal(req, s.caller.String())
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("member", s.member.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func (s *DuesHandlerSuite) memberPath(suffix string) string {
	return "/v1/members/" + s.member.String() + suffix
}

func testHandleID(b byte) fhe.HandleID {
	var h fhe.HandleID
	for i := range h {
		h[i] = b
	}
	return h
}

func paidThroughBody(ciphertext, proof []byte) paidThroughRequest {
	return paidThroughRequest{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		Proof:      base64.StdEncoding.EncodeToString(proof),
	}
}

func (s *DuesHandlerSuite) TestHandlePaidThroughCreated() {
	handler, mockService := newTestHandler(s.T())
	handle := testHandleID(0xA1)
	att := fhe.AttestedCiphertext{Ciphertext: []byte("ct"), Proof: []byte("pf")}
	mockService.EXPECT().
		RegisterOrUpdate(gomock.Any(), s.caller, s.member, att).
		Return(handle, true, nil)

	req := s.authenticate(testutil.NewJSONRequest(s.T(), http.MethodPost, s.memberPath("/paid-through"), paidThroughBody(att.Ciphertext, att.Proof)))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handlePaidThrough), req)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[handleResponse](s.T(), rr)
	s.Equal(handle.String(), resp.Handle)
	s.True(resp.Created)
}

func (s *DuesHandlerSuite) TestHandlePaidThroughMergeReturnsOK() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().
		RegisterOrUpdate(gomock.Any(), s.caller, s.member, gomock.Any()).
		Return(testHandleID(0xB2), false, nil)

	req := s.authenticate(testutil.NewJSONRequest(s.T(), http.MethodPost, s.memberPath("/paid-through"), paidThroughBody([]byte("ct"), []byte("pf"))))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handlePaidThrough), req)

	testutil.AssertStatusOK(s.T(), rr)
}

func (s *DuesHandlerSuite) TestHandlePaidThroughProofInvalid() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().
		RegisterOrUpdate(gomock.Any(), s.caller, s.member, gomock.Any()).
		Return(fhe.HandleID{}, false, dErrors.New(dErrors.CodeProofInvalid, "attestation did not verify"))

	req := s.authenticate(testutil.NewJSONRequest(s.T(), http.MethodPost, s.memberPath("/paid-through"), paidThroughBody([]byte("ct"), []byte("bad"))))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handlePaidThrough), req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "proof_invalid")
}

func (s *DuesHandlerSuite) TestHandlePaidThroughMissingFields() {
	handler, _ := newTestHandler(s.T())

	req := s.authenticate(testutil.NewJSONRequest(s.T(), http.MethodPost, s.memberPath("/paid-through"), paidThroughRequest{}))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handlePaidThrough), req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation")
}

func (s *DuesHandlerSuite) TestHandlePaidThroughUnauthorizedRole() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().
		RegisterOrUpdate(gomock.Any(), s.caller, s.member, gomock.Any()).
		Return(fhe.HandleID{}, false, dErrors.New(dErrors.CodeUnauthorized, "operation requires the owner or treasurer role"))

	req := s.authenticate(testutil.NewJSONRequest(s.T(), http.MethodPost, s.memberPath("/paid-through"), paidThroughBody([]byte("ct"), []byte("pf"))))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handlePaidThrough), req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "unauthorized")
}

func (s *DuesHandlerSuite) TestHandleStatusPrivate() {
	handler, mockService := newTestHandler(s.T())
	handle := testHandleID(0xC3)
	mockService.EXPECT().
		CheckStatusPrivate(gomock.Any(), s.caller, s.member).
		Return(handle, nil)

	req := s.authenticate(testutil.NewRequest(s.T(), http.MethodPost, s.memberPath("/status/private")))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleStatusPrivate), req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[statusResponse](s.T(), rr)
	s.Equal(handle.String(), resp.Handle)
	s.Equal("private", resp.Visibility)
}

func (s *DuesHandlerSuite) TestHandleStatusPublicUnregistered() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().
		CheckStatusPublic(gomock.Any(), s.caller, s.member).
		Return(fhe.HandleID{}, dErrors.New(dErrors.CodeNotRegistered, "member is not registered"))

	req := s.authenticate(testutil.NewRequest(s.T(), http.MethodPost, s.memberPath("/status/public")))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleStatusPublic), req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_registered")
}

func (s *DuesHandlerSuite) TestHandleStatusBudgetExhausted() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().
		CheckStatusPrivate(gomock.Any(), s.caller, s.member).
		Return(fhe.HandleID{}, dErrors.New(dErrors.CodeResourceExhausted, "operation budget exceeded"))

	req := s.authenticate(testutil.NewRequest(s.T(), http.MethodPost, s.memberPath("/status/private")))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleStatusPrivate), req)

	testutil.AssertStatus(s.T(), rr, http.StatusTooManyRequests)
}

func (s *DuesHandlerSuite) TestHandleSetGraceDays() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().
		SetGraceDays(gomock.Any(), s.caller, uint32(14)).
		Return(nil)

	req := s.authenticate(testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/config/grace-days", graceDaysRequest{Days: 14}))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleSetGraceDays), req)

	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}

func (s *DuesHandlerSuite) TestHandleSetTreasurer() {
	handler, mockService := newTestHandler(s.T())
	treasurer, err := id.ParsePrincipalID(uuid.NewString())
	require.NoError(s.T(), err)
	mockService.EXPECT().
		SetTreasurer(gomock.Any(), s.caller, treasurer).
		Return(nil)

	req := s.authenticate(testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/roles/treasurer", roleRequest{Principal: treasurer.String()}))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleSetTreasurer), req)

	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}

func (s *DuesHandlerSuite) TestHandleSetTreasurerRejectsMalformedPrincipal() {
	handler, _ := newTestHandler(s.T())

	req := s.authenticate(testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/roles/treasurer", roleRequest{Principal: "not-a-uuid"}))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleSetTreasurer), req)

	testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)
}

func (s *DuesHandlerSuite) TestHandleTransferOwnershipForbidden() {
	handler, mockService := newTestHandler(s.T())
	next, err := id.ParsePrincipalID(uuid.NewString())
	require.NoError(s.T(), err)
	mockService.EXPECT().
		TransferOwnership(gomock.Any(), s.caller, next).
		Return(dErrors.New(dErrors.CodeUnauthorized, "operation requires the owner role"))

	req := s.authenticate(testutil.NewJSONRequest(s.T(), http.MethodPut, "/v1/roles/owner", roleRequest{Principal: next.String()}))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleTransferOwnership), req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "unauthorized")
}

func (s *DuesHandlerSuite) TestHandleReset() {
	handler, mockService := newTestHandler(s.T())
	handle := testHandleID(0xD4)
	mockService.EXPECT().
		ResetMember(gomock.Any(), s.caller, s.member).
		Return(handle, nil)

	req := s.authenticate(testutil.NewRequest(s.T(), http.MethodPost, s.memberPath("/reset")))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleReset), req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[handleResponse](s.T(), rr)
	s.Equal(handle.String(), resp.Handle)
}

func (s *DuesHandlerSuite) TestHandleGetHandleUnregistered() {
	handler, mockService := newTestHandler(s.T())
	mockService.EXPECT().
		PaidThroughHandle(gomock.Any(), s.member).
		Return(fhe.HandleID{}, false, nil)

	req := s.authenticate(testutil.NewRequest(s.T(), http.MethodGet, s.memberPath("/paid-through/handle")))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleGetHandle), req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_registered")
}

func (s *DuesHandlerSuite) TestHandleGetHandle() {
	handler, mockService := newTestHandler(s.T())
	handle := testHandleID(0xE5)
	mockService.EXPECT().
		PaidThroughHandle(gomock.Any(), s.member).
		Return(handle, true, nil)

	req := s.authenticate(testutil.NewRequest(s.T(), http.MethodGet, s.memberPath("/paid-through/handle")))
	rr := testutil.DoRequest(http.HandlerFunc(handler.handleGetHandle), req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[handleResponse](s.T(), rr)
	s.Equal(handle.String(), resp.Handle)
}
