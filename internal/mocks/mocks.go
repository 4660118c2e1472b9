// Package mocks provides testify mock implementations of the ports.
package mocks

import (
	"context"
	"time"

	"garminbridge/internal/domain"

	"github.com/stretchr/testify/mock"
)

type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Get(ctx context.Context, userID string) (domain.Session, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Session), args.Error(1)
}

func (m *SessionRepository) Upsert(ctx context.Context, userID string, update domain.SessionUpdate) error {
	args := m.Called(ctx, userID, update)
	return args.Error(0)
}

type IdentityVerifier struct {
	mock.Mock
}

func (m *IdentityVerifier) Verify(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type MetricsProvider struct {
	mock.Mock
}

func (m *MetricsProvider) Login(ctx context.Context, creds domain.Credentials) (domain.LoginResult, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(domain.LoginResult), args.Error(1)
}

func (m *MetricsProvider) DailyReport(ctx context.Context, sess domain.Session, day time.Time) (domain.DailyReport, error) {
	args := m.Called(ctx, sess, day)
	return args.Get(0).(domain.DailyReport), args.Error(1)
}
