package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/memo-service/internal/repository"
	"github.com/maxviazov/memo-service/internal/service"
)

func invalidField(field, msg string) error {
	return service.NewInvalidInputError([]service.FieldError{{Field: field, Message: msg}})
}

// queryInt64 reads an optional integer query parameter.
func queryInt64(c *gin.Context, key string) (int64, bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, true, invalidField(key, "must be an integer")
	}
	return v, true, nil
}

func pathID(c *gin.Context, key string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil {
		return 0, invalidField(key, "must be an integer")
	}
	return v, nil
}

// pageRequest builds a repository page request from page, size and repeated
// sort=prop[,dir] parameters.
func pageRequest(c *gin.Context) (repository.PageRequest, error) {
	number, err := queryInt(c, "page")
	if err != nil {
		return repository.PageRequest{}, err
	}
	size, err := queryInt(c, "size")
	if err != nil {
		return repository.PageRequest{}, err
	}
	var orders []repository.Order
	for _, raw := range c.QueryArray("sort") {
		o, err := repository.ParseOrder(raw)
		if err != nil {
			return repository.PageRequest{}, err
		}
		orders = append(orders, o)
	}
	return repository.NewPageRequest(number, size, repository.By(orders...))
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", repository.ErrInvalidPage, key)
	}
	return v, nil
}

// pageResponse is the JSON shape of a repository page.
type pageResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	IsFirst    bool  `json:"is_first"`
}

func toPageResponse[T any](p repository.Page[T]) pageResponse[T] {
	return pageResponse[T]{
		Items:      p.Items,
		Total:      p.Total,
		Page:       p.Number,
		Size:       p.Size,
		TotalPages: p.TotalPages(),
		HasNext:    p.HasNext(),
		IsFirst:    p.IsFirst(),
	}
}
