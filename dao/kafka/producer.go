package kafka

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

type keyedContent struct {
	key     string
	content any
}

func writeMessages(ctx context.Context, writer *kafka.Writer, _type int8, contents []keyedContent) (err error) {
	msgs := make([]kafka.Message, 0, len(contents))
	for _, c := range contents {
		val, err := json.Marshal(Message{Type: _type, Data: c.content})
		if err != nil {
			return errors.Wrap(err, "kafka-producer:writeMessages: Marshal")
		}
		msgs = append(msgs, kafka.Message{Key: []byte(c.key), Value: val})
	}

	for i := 0; i < KafkaProducerRetryTime; i++ {
		err = writer.WriteMessages(ctx, msgs...)
		if err == nil || ctx.Err() != nil {
			break
		}
	}
	return errors.Wrap(err, "kafka-producer:writeMessages: WriteMessages")
}
