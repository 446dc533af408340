package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/charlesng35/studentms/pkg/logger"
)

func TestLogGatewaysRecordDispatch(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger.Replace(zap.New(core))
	t.Cleanup(func() { logger.Replace(nil) })

	require.NoError(t, NewLogSMSGateway(" STUDENTMS ").SendSMS(context.Background(), "+15550100", "hello"))
	require.NoError(t, NewLogPushGateway("app-1").Push(context.Background(), 9, "Exam", "Room 4"))

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "sms dispatched", entries[0].Message)
	require.Equal(t, "STUDENTMS", entries[0].ContextMap()["sender_id"])
	require.Equal(t, "push dispatched", entries[1].Message)
	require.EqualValues(t, 9, entries[1].ContextMap()["recipient_id"])
}
