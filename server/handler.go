package server

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/keyset/config"
	"github.com/ncobase/keyset/log"
	"github.com/ncobase/keyset/net/resp"
	"github.com/ncobase/keyset/paging"
	"github.com/ncobase/keyset/types"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// Source opens queries on named collections.
type Source interface {
	Query(ctx context.Context, name string, filter bson.M) (paging.Query[bson.M], error)
	Health(ctx context.Context) error
}

// Handler serves pages of collections over HTTP.
type Handler struct {
	src    Source
	conf   *config.Paging
	logger *log.Logger
}

// NewHandler creates a handler paging src with the defaults of conf.
func NewHandler(src Source, conf *config.Paging, logger *log.Logger) *Handler {
	if conf == nil {
		conf = &config.Paging{SortKey: paging.DefaultSortKey, DefaultLimit: paging.DefaultLimit}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Handler{src: src, conf: conf, logger: logger}
}

// RegisterRoutes registers the handler routes on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/healthz", h.Health)
	r.GET("/collections/:name", h.List)
}

// List handles GET /collections/:name.
//
// Query parameters:
//   - sort: sort expression such as "-createdAt,_id"
//   - limit: page size
//   - next: token of the previous page
//   - fields: comma separated pagination fields
//   - filter: extended JSON filter
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	f := bson.M{}
	if raw := c.Query("filter"); raw != "" {
		if err := bson.UnmarshalExtJSON([]byte(raw), false, &f); err != nil {
			resp.BadRequest(c.Writer, "invalid filter", err.Error())
			return
		}
	}

	sort, err := types.ParseSort(c.Query("sort"))
	if err != nil {
		resp.BadRequest(c.Writer, "invalid sort", err.Error())
		return
	}

	var limit int64
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.ParseInt(raw, 10, 64); err != nil {
			resp.BadRequest(c.Writer, "invalid limit", err.Error())
			return
		}
	}

	q, err := h.src.Query(ctx, name, f)
	if err != nil {
		resp.Error(c.Writer, err)
		return
	}
	q.SetSort(sort)
	q.SetLimit(limit)

	p, err := paging.NewContext(ctx, q, &paging.Options[bson.M]{
		PaginationFields: splitFields(c.Query("fields")),
		Next:             c.Query("next"),
		StrictOrder:      h.conf.StrictOrder,
		SortKey:          h.conf.SortKey,
		DefaultLimit:     int64(h.conf.DefaultLimit),
		MaxLimit:         int64(h.conf.MaxLimit),
		Logger:           h.logger,
	})
	if err != nil {
		h.logger.EntryWithFields(ctx, logrus.Fields{"collection": name}).Warnf("invalid page request: %v", err)
		resp.Error(c.Writer, err)
		return
	}

	res, err := p.Exec(ctx)
	if err != nil {
		h.logger.EntryWithFields(ctx, logrus.Fields{"collection": name}).Errorf("failed to load page: %v", err)
		resp.Error(c.Writer, err)
		return
	}

	resp.Success(c.Writer, res)
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	if err := h.src.Health(c.Request.Context()); err != nil {
		h.logger.Errorf(c.Request.Context(), "health check failed: %v", err)
		resp.ServerError(c.Writer, "unhealthy")
		return
	}
	resp.Success(c.Writer, map[string]string{"status": "healthy"})
}

func splitFields(raw string) []string {
	if raw == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
