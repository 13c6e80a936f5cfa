package service

import (
	"os"
	"strings"

	"study_planner_backend/internal/config"
	"study_planner_backend/internal/model"
	"study_planner_backend/internal/repository"
	"study_planner_backend/internal/util"
	"study_planner_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the part of the user repository the services read.
type UserStore interface {
	FindByID(id uint) (*model.User, error)
	FindByLoginID(loginID string) (*model.User, error)
	FindMentees(mentorID uint) ([]model.User, error)
	Upsert(user *model.User) error
}

var _ UserStore = (*repository.UserRepository)(nil)

type AuthService struct {
	UserRepo UserStore
	Cfg      *config.Config
}

func NewAuthService(userRepo UserStore, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

// SessionUser 로그인 응답과 세션 확인 응답의 본문
type SessionUser struct {
	UserID   string         `json:"userId"`
	LoginID  string         `json:"loginId"`
	Role     model.UserRole `json:"role"`
	Username string         `json:"username"`
	MentorID string         `json:"mentorId,omitempty"`
}

func sessionOf(user *model.User) *SessionUser {
	s := &SessionUser{
		UserID:   util.FormatID(user.ID),
		LoginID:  user.LoginID,
		Role:     user.Role,
		Username: user.Username,
	}
	if user.MentorID != nil {
		s.MentorID = util.FormatID(*user.MentorID)
	}
	return s
}

// Login checks the credentials and issues a session token.
func (s *AuthService) Login(loginID, password string) (string, *SessionUser, error) {
	user, err := s.UserRepo.FindByLoginID(strings.TrimSpace(loginID))
	if err != nil {
		if repository.IsNotFound(err) {
			return "", nil, util.ErrUserNotFound
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrWrongPassword
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	logger.Log.Info("User logged in", zap.String("loginId", user.LoginID), zap.String("role", string(user.Role)))
	return token, sessionOf(user), nil
}

// Session resolves the token owner again so deleted accounts lose access.
func (s *AuthService) Session(claims *util.Claims) (*SessionUser, error) {
	if claims == nil {
		return nil, util.ErrSessionExpired
	}
	user, err := s.UserRepo.FindByID(claims.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrSessionExpired
		}
		return nil, err
	}
	return sessionOf(user), nil
}

// SeedUsers upserts the demo accounts mentor1 and mentee1, mentee1 being
// supervised by mentor1.
func (s *AuthService) SeedUsers() error {
	menteePassword := envOr("SEED_PASSWORD_MENTEE", "mentee1234")
	mentorPassword := envOr("SEED_PASSWORD_MENTOR", "mentor1234")

	mentorHash, err := bcrypt.GenerateFromPassword([]byte(mentorPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	mentor := &model.User{
		LoginID:  "mentor1",
		Username: "멘토1",
		Role:     model.Mentor,
		Password: string(mentorHash),
	}
	if err := s.UserRepo.Upsert(mentor); err != nil {
		return err
	}
	// upsert 후에는 ID 가 채워지지 않을 수 있어 다시 조회한다
	mentor, err = s.UserRepo.FindByLoginID("mentor1")
	if err != nil {
		return err
	}

	menteeHash, err := bcrypt.GenerateFromPassword([]byte(menteePassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	mentee := &model.User{
		LoginID:  "mentee1",
		Username: "멘티1",
		Role:     model.Mentee,
		Password: string(menteeHash),
		MentorID: &mentor.ID,
	}
	if err := s.UserRepo.Upsert(mentee); err != nil {
		return err
	}

	logger.Log.Info("Seed users upserted", zap.Strings("loginIds", []string{"mentor1", "mentee1"}))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
