package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestPublishReview_KeysByMenuItem(t *testing.T) {
	writer := &recordingWriter{}
	producer := NewProducer(writer)

	err := producer.PublishReview(context.Background(), ReviewEvent{
		Type:       TypeReviewAdded,
		ReviewID:   "r-1",
		MenuItemID: "m-9",
		Rating:     4,
		Timestamp:  time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)
	assert.Equal(t, "m-9", string(writer.messages[0].Key))

	var decoded ReviewEvent
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	assert.Equal(t, TypeReviewAdded, decoded.Type)
	assert.Equal(t, 4, decoded.Rating)
}

func TestPublishOrder_PropagatesWriterError(t *testing.T) {
	producer := NewProducer(&recordingWriter{err: errors.New("broker down")})
	err := producer.PublishOrder(context.Background(), OrderEvent{Type: TypeOrderCreated, OrderID: "o-1"})
	assert.EqualError(t, err, "broker down")
}
