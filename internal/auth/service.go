package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"portfoliobuilder/internal/model"
	"portfoliobuilder/pkg/logger"
	"portfoliobuilder/pkg/metrics"
	"portfoliobuilder/pkg/util"
)

const (
	MinPasswordLength = 8
	// bcrypt 只接受 72 字节以内的密码
	MaxPasswordBytes = 72
)

// Result authenticate 的结果。Success 为 false 时 Error 是可以展示给用户的信息。
type Result struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	User    *model.User `json:"user,omitempty"`
	Token   string      `json:"token,omitempty"`

	// Err 原始错误，供调用方用 errors.Is 判断
	Err error `json:"-"`
}

type Service struct {
	strategy  Strategy
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewService(strategy Strategy, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		strategy:  strategy,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// StrategyName 当前使用的策略
func (s *Service) StrategyName() string {
	return s.strategy.Name()
}

// Authenticate 登录或注册，成功时签发 JWT
func (s *Service) Authenticate(ctx context.Context, email, password string, mode Mode) *Result {
	log := logger.WithTrace(ctx, s.logger)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateCredentials(email, password, mode, s.strategy.Name()); err != nil {
		metrics.IncrementAuthAttempt(string(mode), s.strategy.Name(), "rejected")
		return failure(err)
	}

	u, err := s.strategy.Authenticate(ctx, email, password, mode)
	if err != nil {
		status := "failed"
		if !isUserError(err) {
			status = "error"
			log.Error("Authentication failed",
				zap.String("mode", string(mode)),
				zap.String("strategy", s.strategy.Name()),
				zap.Error(err),
			)
		}
		metrics.IncrementAuthAttempt(string(mode), s.strategy.Name(), status)
		return failure(err)
	}

	token, err := util.GenerateJWT(u.ID, u.Role, s.jwtSecret, s.tokenTTL)
	if err != nil {
		log.Error("Failed to sign token", zap.Int("user_id", u.ID), zap.Error(err))
		metrics.IncrementAuthAttempt(string(mode), s.strategy.Name(), "error")
		return failure(err)
	}

	metrics.IncrementAuthAttempt(string(mode), s.strategy.Name(), "success")
	log.Info("User authenticated",
		zap.Int("user_id", u.ID),
		zap.String("mode", string(mode)),
		zap.String("strategy", s.strategy.Name()),
	)
	return &Result{Success: true, User: u, Token: token}
}

// ValidationError 凭证格式不合法
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validateCredentials(email, password string, mode Mode, strategy string) error {
	if mode != ModeLogin && mode != ModeRegister {
		return ErrInvalidMode
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return &ValidationError{Message: "a valid email address is required"}
	}
	if len(password) > MaxPasswordBytes {
		return &ValidationError{Message: "password must be at most 72 bytes"}
	}
	if strategy == StrategyAutoApprove {
		return nil
	}
	if password == "" {
		return &ValidationError{Message: "password is required"}
	}
	if mode == ModeRegister && len(password) < MinPasswordLength {
		return &ValidationError{Message: "password must be at least 8 characters"}
	}
	return nil
}

func isUserError(err error) bool {
	var vErr *ValidationError
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrEmailExists) ||
		errors.Is(err, ErrInvalidMode) || errors.As(err, &vErr)
}

func failure(err error) *Result {
	msg := "could not complete action"
	if isUserError(err) {
		msg = err.Error()
	}
	return &Result{Success: false, Error: msg, Err: err}
}
