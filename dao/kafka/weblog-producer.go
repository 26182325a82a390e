package kafka

import (
	"context"
	"eum/models"

	"github.com/pkg/errors"
)

// WebLogSink publishes analytics events to the weblog topic.
type WebLogSink struct{}

func (WebLogSink) Send(ctx context.Context, logs []*models.WebLog) error {
	if webLogWriter == nil {
		return errors.New("kafka-producer:WebLogSink: kafka is not initialized")
	}
	contents := make([]keyedContent, 0, len(logs))
	for _, l := range logs {
		contents = append(contents, keyedContent{key: l.SessionID, content: l})
	}
	return errors.Wrap(writeMessages(ctx, webLogWriter, TypeWebLog, contents), "kafka-producer:WebLogSink.Send")
}
