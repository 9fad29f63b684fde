package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/memo-service/internal/model"
	"github.com/maxviazov/memo-service/internal/repository"
	"github.com/maxviazov/memo-service/internal/service"
	"github.com/maxviazov/memo-service/pkg/response"
)

type MemoHandler struct {
	svc service.MemoService
}

func NewMemoHandler(svc service.MemoService) *MemoHandler { return &MemoHandler{svc: svc} }

func (h *MemoHandler) Register(r *gin.RouterGroup) {
	g := r.Group(memosPath)
	{
		g.POST("", h.create)
		g.POST("/seed", h.seed)
		g.GET("", h.list)
		g.DELETE("", h.deleteLessThan)
		g.GET("/:"+memoIDParam, h.getByID)
		g.PUT("/:"+memoIDParam, h.update)
		g.DELETE("/:"+memoIDParam, h.delete)
	}
	// Raw rows live under their own prefix so they never collide with /:memo_id.
	r.GET(rawMemosPath, h.raw)
}

type textRequest struct {
	Text string `json:"text"`
}

type seedRequest struct {
	Count int `json:"count"`
}

func (h *MemoHandler) create(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput) // не расшифровываем внутренние детали парсинга
		return
	}
	memo, err := h.svc.CreateMemo(c.Request.Context(), req.Text)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, memo)
}

func (h *MemoHandler) seed(c *gin.Context) {
	var req seedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	memos, err := h.svc.SeedDummies(c.Request.Context(), req.Count)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, memos)
}

func (h *MemoHandler) getByID(c *gin.Context) {
	id, err := pathID(c, memoIDParam)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	memo, err := h.svc.GetMemo(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, memo)
}

// list dispatches on the filters present: from+to selects a range, after
// selects a tail, nothing selects everything.
func (h *MemoHandler) list(c *gin.Context) {
	p, err := pageRequest(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	from, hasFrom, err := queryInt64(c, "from")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	to, hasTo, err := queryInt64(c, "to")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	after, hasAfter, err := queryInt64(c, "after")
	if err != nil {
		response.WriteError(c, err)
		return
	}

	ctx := c.Request.Context()
	var res repository.Page[model.Memo]
	switch {
	case hasFrom != hasTo:
		response.WriteError(c, invalidField("from", "from and to must be given together"))
		return
	case hasFrom && hasAfter:
		response.WriteError(c, invalidField("after", "cannot be combined with from/to"))
		return
	case hasFrom:
		res, err = h.svc.FindRange(ctx, from, to, p)
	case hasAfter:
		res, err = h.svc.FindAfter(ctx, after, p)
	default:
		res, err = h.svc.ListMemos(ctx, p)
	}
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, toPageResponse(res))
}

func (h *MemoHandler) update(c *gin.Context) {
	id, err := pathID(c, memoIDParam)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	n, err := h.svc.UpdateText(c.Request.Context(), id, req.Text)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"updated": n})
}

func (h *MemoHandler) delete(c *gin.Context) {
	id, err := pathID(c, memoIDParam)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if err := h.svc.DeleteMemo(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MemoHandler) deleteLessThan(c *gin.Context) {
	lt, ok, err := queryInt64(c, "lt")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if !ok {
		response.WriteError(c, invalidField("lt", "is required"))
		return
	}
	n, err := h.svc.DeleteLessThan(c.Request.Context(), lt)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"deleted": n})
}

func (h *MemoHandler) raw(c *gin.Context) {
	after, hasAfter, err := queryInt64(c, "after")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	ctx := c.Request.Context()
	if !hasAfter {
		rows, err := h.svc.RawScan(ctx)
		if err != nil {
			response.WriteError(c, err)
			return
		}
		response.WriteData(c, http.StatusOK, rows)
		return
	}
	p, err := pageRequest(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.svc.ScanAfter(ctx, after, p)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, toPageResponse(res))
}
