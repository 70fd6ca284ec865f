package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fieldsync/internal/kv"
	"fieldsync/internal/session"
	"fieldsync/internal/translation/defaults"
	"fieldsync/internal/translation/models"
	"fieldsync/internal/translation/ports"
	"fieldsync/internal/translation/ports/mocks"
	dErrors "fieldsync/pkg/domain-errors"
)

type CacheSuite struct {
	suite.Suite
	kv         *kv.InMemoryStore
	session    *session.Session
	translator *mocks.MockTranslator
	cache      *Cache
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.kv = kv.NewInMemoryStore()
	s.session = session.New(s.kv)
	s.translator = mocks.NewMockTranslator(ctrl)
	s.cache = New(s.kv, s.session, s.translator, WithConcurrency(3))
}

// tamil tags each text so tests can tell translated from base strings.
func tamil(_ context.Context, text, source, target string) (string, error) {
	return "ta:" + text, nil
}

func (s *CacheSuite) assertDiff(want, got map[string]string) {
	if diff := cmp.Diff(want, got); diff != "" {
		s.Failf("dictionary mismatch", "(-want +got):\n%s", diff)
	}
}

func (s *CacheSuite) TestDownloadTranslatesEveryKey() {
	ctx := context.Background()
	s.translator.EXPECT().Translate(gomock.Any(), gomock.Any(), "en", "ta").DoAndReturn(tamil).Times(len(defaults.Keys()))

	dict, report, err := s.cache.Download(ctx, "ta")
	s.Require().NoError(err)

	want := map[string]string{}
	for k, v := range defaults.Strings() {
		want[k] = "ta:" + v
	}
	s.assertDiff(want, dict.Strings)
	s.Equal(len(want), report.Translated)
	s.Empty(report.Fallbacks)

	raw, ok, err := s.kv.Get(ctx, kv.LanguageKey("ta"))
	s.Require().NoError(err)
	s.Require().True(ok)
	var stored map[string]string
	s.Require().NoError(json.Unmarshal([]byte(raw), &stored))
	s.assertDiff(want, stored)

	s.Equal("ta", s.cache.ActiveLanguage(ctx))
}

func (s *CacheSuite) TestDownloadFallsBackPerKey() {
	ctx := context.Background()
	s.translator.EXPECT().Translate(gomock.Any(), gomock.Any(), "en", "ta").
		DoAndReturn(func(ctx context.Context, text, source, target string) (string, error) {
			switch text {
			case "Welcome":
				return "", ports.NewTranslateError(ports.ReasonUnavailable, errors.New("503"))
			case "Profile":
				return "  ", nil
			}
			return tamil(ctx, text, source, target)
		}).AnyTimes()

	dict, report, err := s.cache.Download(ctx, "ta")
	s.Require().NoError(err)

	s.Equal("Welcome", dict.Strings["welcome"])
	s.Equal("Profile", dict.Strings["profile"])
	s.Equal("ta:Referrals", dict.Strings["referrals"])
	s.ElementsMatch([]models.Result{
		models.Fallback("welcome", "Welcome", ports.ReasonUnavailable),
		models.Fallback("profile", "Profile", ports.ReasonEmpty),
	}, report.Fallbacks)
	s.Equal(report.Total-2, report.Translated)
}

func (s *CacheSuite) TestDownloadWithEveryKeyFailingEqualsBase() {
	s.translator.EXPECT().Translate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", ports.NewTranslateError(ports.ReasonTimeout, context.DeadlineExceeded)).AnyTimes()

	dict, report, err := s.cache.Download(context.Background(), "hi")
	s.Require().NoError(err)
	s.assertDiff(defaults.Strings(), dict.Strings)
	s.Equal(0, report.Translated)
	s.Len(report.Fallbacks, report.Total)
}

func (s *CacheSuite) TestDownloadStorageFailure() {
	failing := &readOnlyKV{Store: s.kv}
	cache := New(failing, s.session, s.translator)
	s.translator.EXPECT().Translate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(tamil).AnyTimes()

	_, _, err := cache.Download(context.Background(), "ta")
	s.True(dErrors.HasCode(err, dErrors.CodePersistence))
	s.Equal("en", s.cache.ActiveLanguage(context.Background()), "pointer untouched when the dictionary was not stored")
}

func (s *CacheSuite) TestDownloadCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.translator.EXPECT().Translate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", context.Canceled).AnyTimes()

	_, _, err := s.cache.Download(ctx, "ta")
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	_, ok, _ := s.kv.Get(context.Background(), kv.LanguageKey("ta"))
	s.False(ok)
}

func (s *CacheSuite) TestResolve() {
	ctx := context.Background()

	s.Run("nothing selected resolves to base", func() {
		dict := s.cache.Resolve(ctx, "")
		s.Equal("en", dict.Code)
		s.assertDiff(defaults.Strings(), dict.Strings)
	})

	s.Run("missing keys are filled from base", func() {
		s.Require().NoError(s.kv.Set(ctx, kv.LanguageKey("ta"), `{"welcome":"வரவேற்பு"}`))
		dict := s.cache.Resolve(ctx, "ta")
		s.Equal("ta", dict.Code)
		s.Equal("வரவேற்பு", dict.Strings["welcome"])
		s.Equal("Village / Area", dict.Strings["village"])
		s.Len(dict.Strings, len(defaults.Keys()))
	})

	s.Run("empty code uses selected language", func() {
		s.Require().NoError(s.session.SetSelectedLanguage(ctx, "ta"))
		s.Equal("வரவேற்பு", s.cache.Resolve(ctx, "").Strings["welcome"])
	})

	s.Run("corrupt entry resolves to base", func() {
		s.Require().NoError(s.kv.Set(ctx, kv.LanguageKey("kn"), "<<<"))
		s.assertDiff(defaults.Strings(), s.cache.Resolve(ctx, "kn").Strings)
	})

	s.Run("never-downloaded language resolves to base", func() {
		s.assertDiff(defaults.Strings(), s.cache.Resolve(ctx, "fr").Strings)
	})
}

func (s *CacheSuite) TestActivate() {
	ctx := context.Background()

	s.Run("base language only moves the pointer", func() {
		dict, err := s.cache.Activate(ctx, "en")
		s.Require().NoError(err)
		s.Equal("en", dict.Code)
		s.Equal("en", s.cache.ActiveLanguage(ctx))
	})

	s.Run("uncached language downloads once", func() {
		s.translator.EXPECT().Translate(gomock.Any(), gomock.Any(), "en", "ta").DoAndReturn(tamil).Times(len(defaults.Keys()))
		dict, err := s.cache.Activate(ctx, "ta")
		s.Require().NoError(err)
		s.Equal("ta:Welcome", dict.Strings["welcome"])

		_, err = s.cache.Activate(ctx, "en")
		s.Require().NoError(err)

		dict, err = s.cache.Activate(ctx, " TA ")
		s.Require().NoError(err)
		s.Equal("ta:Welcome", dict.Strings["welcome"])
		s.Equal("ta", s.cache.ActiveLanguage(ctx))
	})

	s.Run("empty code", func() {
		_, err := s.cache.Activate(ctx, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

type readOnlyKV struct {
	kv.Store
}

func (r *readOnlyKV) Set(_ context.Context, key, _ string) error {
	if strings.HasPrefix(key, "lang_") {
		return errors.New("read-only filesystem")
	}
	return nil
}
