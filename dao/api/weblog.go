package api

import (
	"context"
	"eum/models"
	"net/http"

	"github.com/pkg/errors"
)

const pathLogs = "/logs"

func (c *Client) SendLogs(ctx context.Context, logs []*models.WebLog) error {
	if len(logs) == 0 {
		return nil
	}
	_, err := c.sendJSON(ctx, http.MethodPost, pathLogs, logs)
	return errors.Wrap(err, "api:SendLogs: sendJSON")
}
