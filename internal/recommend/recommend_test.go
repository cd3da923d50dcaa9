package recommend_test

//go:generate mockgen -source=recommend.go -destination=mocks/mocks.go -package=mocks Generator,Cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"librarycard/internal/card"
	"librarycard/internal/recommend"
	"librarycard/internal/recommend/mocks"
)

const generatedJSON = `{
  "recommendations": [
    {"course": "BSc in Astronomy", "reason": "Builds on physics fundamentals.", "semester": "1st"}
  ],
  "message": "Astronomy courses to consider"
}`

type EngineSuite struct {
	suite.Suite
	ctrl  *gomock.Controller
	gen   *mocks.MockGenerator
	cache *mocks.MockCache
	ctx   context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.gen = mocks.NewMockGenerator(s.ctrl)
	s.cache = mocks.NewMockCache(s.ctrl)
	s.ctx = context.Background()
}

func (s *EngineSuite) TestKnownDepartmentUsesStaticTable() {
	engine := recommend.NewEngine(recommend.WithGenerator(s.gen))

	res := engine.Recommend(s.ctx, "Physics")

	s.Equal(recommend.SourceStatic, res.Source)
	s.Equal("Here are some recommended courses for Physics", res.Message)
	s.Equal([]card.CourseRecommendation{
		{Course: "BSc in Physics", Reason: "BSc in Physics is a popular choice in the Physics department.", Semester: "1st"},
		{Course: "MSc in Physics", Reason: "MSc in Physics is a popular choice in the Physics department.", Semester: "3rd"},
	}, res.Recommendations)
	s.Empty(res.Notes)
}

func (s *EngineSuite) TestUnknownDepartmentWithoutBackend() {
	res := recommend.NewEngine().Recommend(s.ctx, "Nonexistent Department")

	s.Equal(recommend.SourceFallback, res.Source)
	s.Require().Len(res.Recommendations, 1)
	s.Equal("General course in Nonexistent Department", res.Recommendations[0].Course)
	s.Equal("This is a general recommendation as the suggestion service is not configured.", res.Recommendations[0].Reason)
	s.Equal("Suggestions are limited because the suggestion service is not configured.", res.Message)
}

func (s *EngineSuite) TestGeneratedSuggestionsReturnedVerbatim() {
	s.gen.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, prompt string) (string, error) {
		s.Contains(prompt, "Astrophysics")
		return generatedJSON, nil
	})
	engine := recommend.NewEngine(recommend.WithGenerator(s.gen))

	res := engine.Recommend(s.ctx, "Astrophysics")

	s.Equal(recommend.SourceGenerated, res.Source)
	s.Equal("Astronomy courses to consider", res.Message)
	s.Equal([]card.CourseRecommendation{
		{Course: "BSc in Astronomy", Reason: "Builds on physics fundamentals.", Semester: "1st"},
	}, res.Recommendations)
}

func (s *EngineSuite) TestBackendErrorFallsBack() {
	s.gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("quota exceeded"))
	engine := recommend.NewEngine(recommend.WithGenerator(s.gen))

	res := engine.Recommend(s.ctx, "Astrophysics")

	s.assertFallback(res, "Astrophysics")
	s.Require().Len(res.Notes, 1)
	s.Contains(res.Notes[0], "quota exceeded")
}

func (s *EngineSuite) TestMalformedOutputFallsBack() {
	for _, out := range []string{
		"Sure! Astronomy is great.",
		`{"recommendations": [], "message": "none"}`,
		`{"recommendations": [{"course": "X", "reason": "y"}], "message": "m", "extra": 1}`,
		`{"recommendations": [{"course": "", "reason": "y"}], "message": "m"}`,
	} {
		s.gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(out, nil)
		res := recommend.NewEngine(recommend.WithGenerator(s.gen)).Recommend(s.ctx, "Astrophysics")
		s.assertFallback(res, "Astrophysics")
	}
}

func (s *EngineSuite) TestBackendTimeoutFallsBack() {
	s.gen.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	engine := recommend.NewEngine(recommend.WithGenerator(s.gen), recommend.WithTimeout(10*time.Millisecond))

	res := engine.Recommend(s.ctx, "Astrophysics")

	s.assertFallback(res, "Astrophysics")
	s.Contains(res.Notes[0], "timed out")
}

func (s *EngineSuite) TestCachedSuggestionsSkipBackend() {
	engine := recommend.NewEngine(
		recommend.WithGenerator(s.gen),
		recommend.WithCache(recommend.NewLRUCache(8, time.Minute)),
	)
	s.gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(generatedJSON, nil).Times(1)

	first := engine.Recommend(s.ctx, "Astrophysics")
	second := engine.Recommend(s.ctx, "  astrophysics ")

	s.Equal(recommend.SourceGenerated, first.Source)
	s.Equal(recommend.SourceCached, second.Source)
	s.Equal(first.Suggestions, second.Suggestions)
}

func (s *EngineSuite) TestFailuresAreNotCached() {
	engine := recommend.NewEngine(recommend.WithGenerator(s.gen), recommend.WithCache(s.cache))
	s.cache.EXPECT().Get(gomock.Any(), "astrophysics").Return(recommend.Suggestions{}, false, nil)
	s.gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("unavailable"))

	res := engine.Recommend(s.ctx, "Astrophysics")
	s.Equal(recommend.SourceFallback, res.Source)
}

func (s *EngineSuite) TestCacheErrorsDoNotBlockGeneration() {
	engine := recommend.NewEngine(recommend.WithGenerator(s.gen), recommend.WithCache(s.cache))
	s.cache.EXPECT().Get(gomock.Any(), "astrophysics").Return(recommend.Suggestions{}, false, errors.New("connection refused"))
	s.gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(generatedJSON, nil)
	s.cache.EXPECT().Set(gomock.Any(), "astrophysics", gomock.Any()).Return(errors.New("connection refused"))

	res := engine.Recommend(s.ctx, "Astrophysics")
	s.Equal(recommend.SourceGenerated, res.Source)
}

func (s *EngineSuite) assertFallback(res recommend.Result, department string) {
	s.Equal(recommend.SourceFallback, res.Source)
	s.Require().Len(res.Recommendations, 1)
	s.Equal("General course in "+department, res.Recommendations[0].Course)
	s.Equal("This is a fallback recommendation.", res.Recommendations[0].Reason)
	s.Equal("We encountered an issue generating personalized recommendations.", res.Message)
	s.NotEmpty(res.Notes)
}
