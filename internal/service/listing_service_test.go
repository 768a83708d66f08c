package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRatingRejectsOutOfRangeStars(t *testing.T) {
	svc := NewListingService(nil, nil, nil, nil, nil)
	for _, stars := range []int{0, -1, 6, 100} {
		_, err := svc.ApplyRating(context.Background(), 1, stars)
		require.Error(t, err, "stars=%d", stars)
		ve, ok := AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_RATING", ve.Code)
	}
}

func TestPublishInvalidationWithoutWriterIsNoop(t *testing.T) {
	svc := NewListingService(nil, nil, nil, nil, nil)
	// Must not panic when the broker is not configured.
	svc.PublishInvalidation(context.Background(), InvalidationEvent{ListingID: 1, Category: "salon"})
}
