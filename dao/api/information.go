package api

import (
	"context"
	"eum/models"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

const pathInformation = "/information"

func (c *Client) GetInformationList(ctx context.Context, category string, page, size int) (*models.InformationPage, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page-1))
	q.Set("size", strconv.Itoa(size))
	if category != "" && category != models.AllValue {
		q.Set("category", category)
	}

	data, err := c.get(ctx, pathInformation, q)
	if err != nil {
		return nil, errors.Wrap(err, "api:GetInformationList: get")
	}
	res, err := normalizeInformationPage(data, page, size)
	return res, errors.Wrap(err, "api:GetInformationList: normalizeInformationPage")
}

func (c *Client) GetInformation(ctx context.Context, id int64) (*models.InformationPost, error) {
	data, err := c.get(ctx, idPath(pathInformation, id), nil)
	if err != nil {
		return nil, errors.Wrap(err, "api:GetInformation: get")
	}
	o, err := decodeObject(data)
	if err != nil {
		return nil, errors.Wrap(err, "api:GetInformation: decodeObject")
	}
	return normalizeInformation(o), nil
}

// ToggleBookmark flips the bookmark of an information post on the backend.
func (c *Client) ToggleBookmark(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodPost, idPath(pathInformation, id), nil, nil, "")
	return errors.Wrap(err, "api:ToggleBookmark: do")
}
