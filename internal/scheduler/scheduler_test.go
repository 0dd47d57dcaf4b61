package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAll_ValidExpressions(t *testing.T) {
	s := NewScheduler(context.Background(), nil)
	require.NoError(t, s.RegisterAll("0 30 16 * * 1-5", "0 0 10-16 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 2)
}

func TestRegisterAll_InvalidExpression(t *testing.T) {
	s := NewScheduler(context.Background(), nil)
	assert.Error(t, s.RegisterAll("not a cron", "0 0 10-16 * * 1-5"))
	assert.Error(t, s.RegisterAll("0 30 16 * * 1-5", "also wrong"))
}
