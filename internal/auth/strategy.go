package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"portfoliobuilder/internal/model"
	"portfoliobuilder/internal/repository"
	"portfoliobuilder/pkg/util"
)

// Mode 认证模式
type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

// 策略名称（对应配置 auth.strategy）
const (
	StrategyReal        = "real"
	StrategyAutoApprove = "auto_approve"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = repository.ErrEmailExists
	ErrInvalidMode        = errors.New("invalid auth mode")
)

// UserStore 认证所需的用户持久化操作
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// Strategy 决定一组凭证是否能换到一个用户
type Strategy interface {
	Name() string
	Authenticate(ctx context.Context, email, password string, mode Mode) (*model.User, error)
}

// NewStrategy 根据配置选择策略，空字符串视为 real
func NewStrategy(name string, users UserStore) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyReal:
		return NewRealStrategy(users), nil
	case StrategyAutoApprove:
		return NewAutoApproveStrategy(users), nil
	default:
		return nil, fmt.Errorf("unknown auth strategy %q", name)
	}
}

// RealStrategy 使用 bcrypt 校验密码
type RealStrategy struct {
	users UserStore
}

func NewRealStrategy(users UserStore) *RealStrategy {
	return &RealStrategy{users: users}
}

func (s *RealStrategy) Name() string { return StrategyReal }

func (s *RealStrategy) Authenticate(ctx context.Context, email, password string, mode Mode) (*model.User, error) {
	switch mode {
	case ModeRegister:
		return register(ctx, s.users, email, password)
	case ModeLogin:
		u, err := s.users.FindByEmail(ctx, email)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		if err != nil {
			return nil, err
		}
		if !util.CheckPassword(password, u.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
		return u, nil
	default:
		return nil, ErrInvalidMode
	}
}

// AutoApproveStrategy 不校验密码：用户存在就放行，不存在就创建。只用于本地调试。
type AutoApproveStrategy struct {
	users UserStore
}

func NewAutoApproveStrategy(users UserStore) *AutoApproveStrategy {
	return &AutoApproveStrategy{users: users}
}

func (s *AutoApproveStrategy) Name() string { return StrategyAutoApprove }

func (s *AutoApproveStrategy) Authenticate(ctx context.Context, email, _ string, mode Mode) (*model.User, error) {
	if mode != ModeLogin && mode != ModeRegister {
		return nil, ErrInvalidMode
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	return register(ctx, s.users, email, randomPassword())
}

func register(ctx context.Context, users UserStore, email, password string) (*model.User, error) {
	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.SplitN(email, "@", 2)[0],
	}
	if err := users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func randomPassword() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
