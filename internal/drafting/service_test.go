package drafting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"rtidesk/internal/drafting/mocks"
	id "rtidesk/pkg/domain"
	dErrors "rtidesk/pkg/domain-errors"
)

//go:generate mockgen -source=generator.go -destination=mocks/mocks.go -package=mocks Generator
type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	generator *mocks.MockGenerator
	metrics   *Metrics
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.generator = mocks.NewMockGenerator(ctrl)
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.ctx = context.Background()
	s.service = New(s.generator,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
}

func draftRequest() DraftRequest {
	return DraftRequest{
		ApplicantName:    "Asha Patil",
		ApplicantAddress: "12 MG Road, Pune",
		AuthorityName:    "PIO, Public Works Department",
		AuthorityAddress: "Shivajinagar, Pune",
		Query:            "Expenditure on road repairs in ward 12 during 2025",
		Language:         "Hindi",
	}
}

func (s *ServiceSuite) TestDraft() {
	s.Run("embeds every field and strips markdown", func() {
		req := draftRequest()
		s.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, prompt string) (string, error) {
			for _, want := range []string{req.ApplicantName, req.ApplicantAddress, req.AuthorityName, req.AuthorityAddress, req.Query, "Hindi", "RTI Act, 2005"} {
				s.Contains(prompt, want)
			}
			return "# To the PIO\n\n**Subject:** Request under *RTI Act*, 2005\n## Details\nPlease provide the records.", nil
		})

		text, err := s.service.Draft(s.ctx, req)
		s.Require().NoError(err)
		s.NotContains(text, "*")
		s.NotContains(text, "#")
		s.Contains(text, "Subject: Request under RTI Act, 2005")
		s.True(strings.HasPrefix(text, "To the PIO"))
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.Generations.WithLabelValues(opDraft, "ok")))
	})

	s.Run("validation happens before the generator is called", func() {
		req := draftRequest()
		req.Query = "  "
		req.AuthorityAddress = ""
		_, err := s.service.Draft(s.ctx, req)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
		de, _ := dErrors.As(err)
		s.Equal([]string{"authorityAddress", "query"}, de.Fields)
	})

	s.Run("rejects unsupported language", func() {
		req := draftRequest()
		req.Language = "Latin"
		_, err := s.service.Draft(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("wraps generator failure", func() {
		cause := errors.New("upstream 503")
		s.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", cause).Times(1)
		_, err := s.service.Draft(s.ctx, draftRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeGeneration))
		s.ErrorIs(err, cause)
	})

	s.Run("empty output is a generation error", func() {
		s.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("  \n ", nil)
		_, err := s.service.Draft(s.ctx, draftRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeGeneration))
	})

	s.Run("output made only of markdown is a generation error", func() {
		s.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("## **", nil)
		_, err := s.service.Draft(s.ctx, draftRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeGeneration))
	})
}

func (s *ServiceSuite) TestMissingGeneratorIsConfigurationError() {
	svc := New(nil, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	_, err := svc.Draft(s.ctx, draftRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))

	_, err = svc.SuggestDepartmentAndPIO(s.ctx, "Road repairs", "ward 12")
	s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))

	_, err = svc.Review(s.ctx, "Dear PIO", id.LanguageEnglish)
	s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))
}

func (s *ServiceSuite) TestTimeoutIsGenerationError() {
	svc := New(s.generator, WithTimeout(10*time.Millisecond), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := svc.Draft(s.ctx, draftRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeGeneration))
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *ServiceSuite) TestSuggest() {
	s.Run("parses fenced json", func() {
		s.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, prompt string) (string, error) {
			s.Contains(prompt, "Subject: Road repairs")
			s.Contains(prompt, "pioDesignation")
			return "```json\n{\"department\":\"Public Works Department\",\"pioDesignation\":\"Executive Engineer\",\"explanation\":\"Roads are maintained by PWD.\"}\n```", nil
		})
		got, err := s.service.SuggestDepartmentAndPIO(s.ctx, "Road repairs", "ward 12")
		s.Require().NoError(err)
		s.Equal(Suggestion{Department: "Public Works Department", PIODesignation: "Executive Engineer", Explanation: "Roads are maintained by PWD."}, got)
	})

	failures := map[string]string{
		"prose":        "The Public Works Department is responsible.",
		"extra key":    `{"department":"PWD","pioDesignation":"EE","explanation":"x","confidence":0.9}`,
		"missing key":  `{"department":"PWD","pioDesignation":"EE"}`,
		"empty value":  `{"department":"","pioDesignation":"EE","explanation":"x"}`,
		"trailing doc": `{"department":"PWD","pioDesignation":"EE","explanation":"x"} {"department":"other"}`,
	}
	for name, raw := range failures {
		s.Run("parse error for "+name, func() {
			s.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(raw, nil)
			_, err := s.service.SuggestDepartmentAndPIO(s.ctx, "Road repairs", "ward 12")
			s.True(dErrors.HasCode(err, dErrors.CodeParse), "got %v", err)
		})
	}

	s.Run("requires some input", func() {
		_, err := s.service.SuggestDepartmentAndPIO(s.ctx, " ", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestReview() {
	s.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, prompt string) (string, error) {
		s.Contains(prompt, "Dear PIO, please share the records.")
		s.Contains(prompt, "in Tamil")
		return "**Improved:** Dear Public Information Officer, under Section 6(1) of the RTI Act, 2005...", nil
	})

	text, err := s.service.Review(s.ctx, "Dear PIO, please share the records.", id.LanguageTamil)
	s.Require().NoError(err)
	s.Equal("Improved: Dear Public Information Officer, under Section 6(1) of the RTI Act, 2005...", text)

	_, err = s.service.Review(s.ctx, "   ", id.LanguageTamil)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestPlainText(t *testing.T) {
	cases := map[string]string{
		"# Heading\nbody":            "Heading\nbody",
		"  ### Deep heading":         "Deep heading",
		"**bold** and *italic*":      "bold and italic",
		"Section #5, item * 3":       "Section 5, item  3",
		"no markdown at all":         "no markdown at all",
		"\n\n  padded output  \n\n":  "padded output",
	}
	for in, want := range cases {
		got := PlainText(in)
		if got != want {
			t.Errorf("PlainText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDraftRequestSubject(t *testing.T) {
	req := draftRequest()
	req.Query = strings.Repeat("q", 80)
	want := "RTI Application by Asha Patil regarding " + strings.Repeat("q", 50) + "..."
	if got := req.Subject(); got != want {
		t.Errorf("Subject() = %q, want %q", got, want)
	}
}
