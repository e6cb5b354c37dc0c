package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"rtidesk/internal/drafting"
	"rtidesk/internal/drafting/mocks"
	"rtidesk/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	generator *mocks.MockGenerator
	router    http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.generator = mocks.NewMockGenerator(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := drafting.New(s.generator, drafting.WithLogger(logger))
	s.router = s.routerFor(New(svc, logger))
}

func (s *HandlerSuite) routerFor(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func generateBody() map[string]string {
	return map[string]string{
		"applicantName":    "Asha Patil",
		"applicantAddress": "12 MG Road, Pune",
		"authorityName":    "PIO, Public Works Department",
		"authorityAddress": "Shivajinagar, Pune",
		"query":            "Expenditure on road repairs in ward 12",
		"language":         "English",
	}
}

func (s *HandlerSuite) TestGenerate() {
	s.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("**To** the PIO", nil)

	rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ai/generate-rti", generateBody()))
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	body := testutil.Decode[map[string]string](s.T(), rr)
	s.Equal("To the PIO", body["rtiApplication"])
}

func (s *HandlerSuite) TestGenerateErrors() {
	s.Run("missing fields are 400", func() {
		payload := generateBody()
		delete(payload, "query")
		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ai/generate-rti", payload))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("generator failure is 500", func() {
		s.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("boom"))
		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ai/generate-rti", generateBody()))
		body := testutil.AssertError(s.T(), rr, http.StatusInternalServerError, "generation_error")
		s.Equal("Failed to generate RTI content", body.Message)
		s.Empty(body.Detail)
	})

	s.Run("malformed body is 400", func() {
		rr := testutil.Serve(s.router, testutil.NewRawRequest(http.MethodPost, "/ai/generate-rti", `not json`))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *HandlerSuite) TestMissingKeyIsConfigurationError() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := s.routerFor(New(drafting.New(nil, drafting.WithLogger(logger)), logger, WithDetailedErrors(true)))

	rr := testutil.Serve(router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ai/generate-rti", generateBody()))
	body := testutil.AssertError(s.T(), rr, http.StatusInternalServerError, "configuration_error")
	s.Contains(body.Detail, "Gemini API key is not configured")
}

func (s *HandlerSuite) TestSuggest() {
	s.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return(`{"department":"Public Works Department","pioDesignation":"Executive Engineer","explanation":"Roads."}`, nil)

	rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ai/suggest", map[string]string{"subject": "Roads", "details": "ward 12"}))
	s.Require().Equal(http.StatusOK, rr.Code)
	got := testutil.Decode[drafting.Suggestion](s.T(), rr)
	s.Equal("Executive Engineer", got.PIODesignation)

	s.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("I think PWD.", nil)
	rr = testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ai/suggest", map[string]string{"subject": "Roads"}))
	testutil.AssertError(s.T(), rr, http.StatusInternalServerError, "parse_error")
}

func (s *HandlerSuite) TestReview() {
	s.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("Improved letter", nil)
	rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ai/review", map[string]string{"content": "Dear PIO", "language": "bengali"}))
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal("Improved letter", testutil.Decode[map[string]string](s.T(), rr)["content"])

	rr = testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ai/review", map[string]string{"content": "Dear PIO", "language": "Latin"}))
	testutil.AssertError(s.T(), rr, http.StatusBadRequest, "validation_error")
}

func (s *HandlerSuite) TestRateLimitMiddlewareWraps() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	router := s.routerFor(New(drafting.New(s.generator, drafting.WithLogger(logger)), logger, WithRateLimit(deny)))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ai/review", map[string]string{"content": "x"}))
	s.Equal(http.StatusTooManyRequests, rr.Code)
}
