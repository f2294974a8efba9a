package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/alexanderramin/goaltree/internal/contract"
	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/gateway"
	"github.com/alexanderramin/goaltree/internal/repository"
	"github.com/gin-gonic/gin"
)

type handler struct {
	deps Deps
}

func (h *handler) gateway(c *gin.Context) (*gateway.Local, bool) {
	p, ok := GetPrincipal(c)
	if !ok {
		abortUnauthorized(c, "not authenticated")
		return nil, false
	}
	return gateway.NewLocal(h.deps.DB, h.deps.UoW, p), true
}

// list handles GET /progressBars[?owner=<id>|all=true].
func (h *handler) list(c *gin.Context) {
	gw, ok := h.gateway(c)
	if !ok {
		return
	}
	scope := gateway.Scope{OwnerID: c.Query("owner")}
	if all := c.Query("all"); all != "" {
		v, err := strconv.ParseBool(all)
		if err != nil {
			writeError(c, fmt.Errorf("all=%q: %w", all, domain.ErrInvariantViolation))
			return
		}
		scope.All = v
	}
	tree, err := gw.LoadTree(c.Request.Context(), scope)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromTree(tree))
}

// create handles POST /progressBars. A missing id is allocated here.
func (h *handler) create(c *gin.Context) {
	gw, ok := h.gateway(c)
	if !ok {
		return
	}
	var body contract.Entity
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, fmt.Errorf("request body: %v: %w", err, domain.ErrInvariantViolation))
		return
	}
	if body.ID == "" {
		body.ID = h.deps.NewID()
	}
	e, err := body.ToDomain()
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	res, err := gw.PersistAdd(ctx, body.ParentID, e)
	if err != nil {
		writeError(c, err)
		return
	}
	out := contract.FromEntity(e, body.ParentID)
	out.ID, out.Version = res.ID, res.Version
	if e.Kind == domain.KindGoal {
		ref, err := repository.NewSQLiteEntityRepo(h.deps.DB).Lookup(ctx, res.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		out.OwnerID = ref.OwnerID
	}
	c.JSON(http.StatusCreated, out)
}

// update handles PUT /progressBars/:id.
func (h *handler) update(c *gin.Context) {
	gw, ok := h.gateway(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var body contract.Entity
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, fmt.Errorf("request body: %v: %w", err, domain.ErrInvariantViolation))
		return
	}
	if body.ID != "" && body.ID != id {
		writeError(c, fmt.Errorf("body id %q does not match path id %q: %w", body.ID, id, domain.ErrInvariantViolation))
		return
	}
	body.ID = id
	e, err := body.ToDomain()
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := gw.PersistEdit(c.Request.Context(), e)
	if err != nil {
		writeError(c, err)
		return
	}
	out := contract.FromEntity(e, body.ParentID)
	out.Version = res.Version
	c.JSON(http.StatusOK, out)
}

// remove handles DELETE /progressBars/:id. Goals go with their subtree.
func (h *handler) remove(c *gin.Context) {
	gw, ok := h.gateway(c)
	if !ok {
		return
	}
	if _, err := gw.PersistDelete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	status, code := contract.StatusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, contract.ErrorResponse{Error: err.Error(), Code: code})
}
