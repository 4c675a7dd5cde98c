package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNATSAlertPublisherDisabledWithoutConnection(t *testing.T) {
	publisher := NewNATSAlertPublisher(nil, "campus.similarity.flagged")
	require.IsType(t, noopAlertPublisher{}, publisher)
	require.NoError(t, publisher.PublishSimilarityAlert(context.Background(), SimilarityAlert{AssignmentID: 1}))
}

func TestThrottledAlertPublisherLimitsPerAssignment(t *testing.T) {
	inner := &recordingAlerts{}
	publisher := NewThrottledAlertPublisher(inner, time.Hour)
	ctx := context.Background()

	require.NoError(t, publisher.PublishSimilarityAlert(ctx, SimilarityAlert{AssignmentID: 1}))
	require.ErrorIs(t, publisher.PublishSimilarityAlert(ctx, SimilarityAlert{AssignmentID: 1}), ErrAlertThrottled)
	require.NoError(t, publisher.PublishSimilarityAlert(ctx, SimilarityAlert{AssignmentID: 2}))
	require.Len(t, inner.alerts, 2)

	require.Same(t, inner, NewThrottledAlertPublisher(inner, 0))
}
