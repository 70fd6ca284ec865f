package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"fieldsync/internal/kv"
	"fieldsync/internal/profile/models"
	"fieldsync/internal/session"
	dErrors "fieldsync/pkg/domain-errors"
	"fieldsync/pkg/platform/audit"
	auditmemory "fieldsync/pkg/platform/audit/store/memory"
)

type ProfileServiceSuite struct {
	suite.Suite
	kv      *kv.InMemoryStore
	session *session.Session
	audit   *auditmemory.InMemoryStore
	service *Service
}

func TestProfileServiceSuite(t *testing.T) {
	suite.Run(t, new(ProfileServiceSuite))
}

func (s *ProfileServiceSuite) SetupTest() {
	s.kv = kv.NewInMemoryStore()
	s.session = session.New(s.kv)
	s.audit = auditmemory.NewInMemoryStore()
	s.service = New(s.kv, s.session, WithAuditPublisher(s.audit))
}

func asha(id string) models.ASHAProfile {
	return models.ASHAProfile{
		Name:    "Selvi",
		AshaID:  id,
		Age:     "34",
		Gender:  "Female",
		Phone:   "9000000001",
		Village: "Melur",
	}
}

func (s *ProfileServiceSuite) TestRegisterSignsIn() {
	ctx := context.Background()
	_, err := s.service.Register(ctx, asha("ASHA-1"))
	s.Require().NoError(err)

	user, err := s.session.CurrentUser(ctx)
	s.Require().NoError(err)
	s.Equal("ASHA-1", user)

	current, err := s.service.Current(ctx)
	s.Require().NoError(err)
	s.Equal("Selvi", current.Name)

	events, err := s.audit.ListByAction(ctx, audit.ActionProfileRegistered)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *ProfileServiceSuite) TestRegisterValidation() {
	p := asha("ASHA-1")
	p.Village = ""
	p.Phone = " "
	_, err := s.service.Register(context.Background(), p)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(err.Error(), "phone, village")
}

func (s *ProfileServiceSuite) TestLogin() {
	ctx := context.Background()

	s.Run("unknown worker", func() {
		_, err := s.service.Login(ctx, "ASHA-404")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		user, err := s.session.CurrentUser(ctx)
		s.Require().NoError(err)
		s.Empty(user)
	})

	s.Run("switches current worker", func() {
		_, err := s.service.Register(ctx, asha("ASHA-1"))
		s.Require().NoError(err)
		second := asha("ASHA-2")
		second.Name = "Kavitha"
		_, err = s.service.Register(ctx, second)
		s.Require().NoError(err)

		p, err := s.service.Login(ctx, "ASHA-1")
		s.Require().NoError(err)
		s.Equal("Selvi", p.Name)
		current, err := s.service.Current(ctx)
		s.Require().NoError(err)
		s.Equal("ASHA-1", current.AshaID)
	})

	s.Run("empty id", func() {
		_, err := s.service.Login(ctx, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ProfileServiceSuite) TestCurrentWithoutSignIn() {
	_, err := s.service.Current(context.Background())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ProfileServiceSuite) TestSaveKeepsID() {
	ctx := context.Background()
	_, err := s.service.Register(ctx, asha("ASHA-1"))
	s.Require().NoError(err)

	update := asha("")
	update.Village = "Kottampatti"
	saved, err := s.service.Save(ctx, update)
	s.Require().NoError(err)
	s.Equal("ASHA-1", saved.AshaID)
	s.Equal("Kottampatti", saved.Village)

	_, err = s.service.Save(ctx, asha("ASHA-9"))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ProfileServiceSuite) TestPHC() {
	ctx := context.Background()
	_, err := s.service.PHC(ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.SavePHC(ctx, models.PHCProfile{FullName: "Dr. Rani"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	want := models.PHCProfile{
		FullName:    "Dr. Rani",
		PhcID:       "PHC-12",
		Designation: "Medical Officer",
		Phone:       "9000000002",
		AreaCovered: "Melur block",
	}
	_, err = s.service.SavePHC(ctx, want)
	s.Require().NoError(err)
	got, err := s.service.PHC(ctx)
	s.Require().NoError(err)
	s.Equal(want, *got)
}

func (s *ProfileServiceSuite) TestUnreadableProfile() {
	ctx := context.Background()
	s.Require().NoError(s.kv.Set(ctx, kv.ASHAProfileKey("ASHA-1"), "not json"))
	_, err := s.service.Login(ctx, "ASHA-1")
	s.True(dErrors.HasCode(err, dErrors.CodePersistence))
}
