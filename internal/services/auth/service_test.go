package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/jeopardyze-client/internal/dependencies/mocks"
	"github.com/mcoot/jeopardyze-client/internal/model"
	"github.com/mcoot/jeopardyze-client/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = New(s.clock, s.random, Config{BcryptCost: bcrypt.MinCost}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) register(username, email string) *Registration {
	reg, err := s.service.Register(s.ctx, RegisterInput{Username: username, Email: email, Password: "hunter22"})
	s.Require().NoError(err)
	return reg
}

func (s *ServiceSuite) registerVerified(username, email string) *model.Player {
	reg := s.register(username, email)
	player, err := s.service.VerifyEmail(s.ctx, email, reg.Code)
	s.Require().NoError(err)
	return player
}

// CreateGuest tests

func (s *ServiceSuite) TestCreateGuest() {
	s.random.QueueString("k3x9qa")

	player, err := s.service.CreateGuest(s.ctx)
	s.Require().NoError(err)

	s.Equal(model.PlayerTypeGuest, player.Type)
	s.Equal("Guest_k3x9qa", player.DisplayName)
	s.NotZero(player.ID)
}

func (s *ServiceSuite) TestCreateGuestAllocatesDistinctIDs() {
	first, _ := s.service.CreateGuest(s.ctx)
	second, _ := s.service.CreateGuest(s.ctx)

	s.NotEqual(first.ID, second.ID)
}

// Register tests

func (s *ServiceSuite) TestRegisterIssuesCode() {
	s.random.QueueString("123456")

	reg := s.register("alice", "alice@example.com")

	s.Equal("alice@example.com", reg.Email)
	s.Equal("123456", reg.Code)
}

func (s *ServiceSuite) TestRegisterAgainResendsCode() {
	s.random.QueueString("111111", "222222")
	s.register("alice", "alice@example.com")

	reg := s.register("alice", "alice@example.com")
	s.Equal("222222", reg.Code)

	_, err := s.service.VerifyEmail(s.ctx, "alice@example.com", "111111")
	s.ErrorIs(err, ErrInvalidCode)
	_, err = s.service.VerifyEmail(s.ctx, "alice@example.com", "222222")
	s.NoError(err)
}

func (s *ServiceSuite) TestRegisterVerifiedEmailFails() {
	s.registerVerified("alice", "alice@example.com")

	_, err := s.service.Register(s.ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "x"})
	s.ErrorIs(err, ErrEmailExists)
}

func (s *ServiceSuite) TestRegisterTakenUsernameFails() {
	s.register("alice", "alice@example.com")

	_, err := s.service.Register(s.ctx, RegisterInput{Username: "Alice", Email: "other@example.com", Password: "x"})
	s.ErrorIs(err, ErrUsernameExists)
}

func (s *ServiceSuite) TestRegisterConvertsGuest() {
	guest, _ := s.service.CreateGuest(s.ctx)

	reg, err := s.service.Register(s.ctx, RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter22", GuestID: &guest.ID,
	})
	s.Require().NoError(err)

	user, err := s.service.VerifyEmail(s.ctx, reg.Email, reg.Code)
	s.Require().NoError(err)
	s.Equal(guest.ID, user.ID)
	s.Equal(model.PlayerTypeUser, user.Type)
	s.Equal("alice", user.DisplayName)
}

func (s *ServiceSuite) TestRegisterUnknownGuestAllocatesNewPlayer() {
	unknown := model.PlayerID(999)

	reg, err := s.service.Register(s.ctx, RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter22", GuestID: &unknown,
	})
	s.Require().NoError(err)

	user, err := s.service.VerifyEmail(s.ctx, reg.Email, reg.Code)
	s.Require().NoError(err)
	s.NotEqual(unknown, user.ID)
}

// VerifyEmail tests

func (s *ServiceSuite) TestVerifyEmailUnknownUser() {
	_, err := s.service.VerifyEmail(s.ctx, "nobody@example.com", "000000")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *ServiceSuite) TestVerifyEmailExpiredCode() {
	reg := s.register("alice", "alice@example.com")
	s.clock.Advance(11 * time.Minute)

	_, err := s.service.VerifyEmail(s.ctx, reg.Email, reg.Code)
	s.ErrorIs(err, ErrInvalidCode)
}

func (s *ServiceSuite) TestVerifyEmailCodeIsSingleUse() {
	reg := s.register("alice", "alice@example.com")
	_, err := s.service.VerifyEmail(s.ctx, reg.Email, reg.Code)
	s.Require().NoError(err)

	_, err = s.service.VerifyEmail(s.ctx, reg.Email, reg.Code)
	s.ErrorIs(err, ErrInvalidCode)
}

// Login tests

func (s *ServiceSuite) TestLoginByUsernameAndEmail() {
	user := s.registerVerified("alice", "alice@example.com")

	byName, err := s.service.Login(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)
	s.Equal(user.ID, byName.ID)

	byEmail, err := s.service.Login(s.ctx, "ALICE@example.com", "hunter22")
	s.Require().NoError(err)
	s.Equal(user.ID, byEmail.ID)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	s.registerVerified("alice", "alice@example.com")

	_, err := s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "x")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnverified() {
	s.register("alice", "alice@example.com")

	_, err := s.service.Login(s.ctx, "alice", "hunter22")
	s.ErrorIs(err, ErrNotVerified)
}

// GetPlayer tests

func (s *ServiceSuite) TestGetPlayerNotFound() {
	_, err := s.service.GetPlayer(s.ctx, 42)
	s.ErrorIs(err, ErrPlayerNotFound)
}

func (s *ServiceSuite) TestGetPlayerReturnsCopy() {
	guest, _ := s.service.CreateGuest(s.ctx)
	guest.DisplayName = "mutated"

	stored, err := s.service.GetPlayer(s.ctx, guest.ID)
	s.Require().NoError(err)
	s.NotEqual("mutated", stored.DisplayName)
}
