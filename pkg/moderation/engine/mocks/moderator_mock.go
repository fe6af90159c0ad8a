package mocks

import (
	"context"

	"github.com/campushub/modgate/pkg/moderation"
	"github.com/stretchr/testify/mock"
)

type Moderator struct {
	mock.Mock
}

func (m *Moderator) Moderate(ctx context.Context, req moderation.Request) (moderation.Verdict, error) {
	args := m.Called(ctx, req)
	v, _ := args.Get(0).(moderation.Verdict) //nolint:errcheck
	return v, args.Error(1)
}
