package sim

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TableHandler serves the Table API record endpoints.
type TableHandler struct {
	store *Store
	log   *logrus.Logger
}

// NewTableHandler creates a TableHandler over the given store.
func NewTableHandler(store *Store, log *logrus.Logger) *TableHandler {
	return &TableHandler{store: store, log: log}
}

// Query handles GET /api/now/table/:table.
func (h *TableHandler) Query(c *gin.Context) {
	table := c.Param("table")
	rows, err := h.store.Rows(table)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid table", err.Error())
		return
	}

	query, err := ParseQuery(c.Query("sysparm_query"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}

	limit := 0
	if v := c.Query("sysparm_limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			respondError(c, http.StatusBadRequest, "Invalid limit", "sysparm_limit must be a non-negative integer")
			return
		}
	}

	var fields []string
	if v := c.Query("sysparm_fields"); v != "" {
		fields = strings.Split(v, ",")
	}
	displayAll := c.Query("sysparm_display_value") == "all"

	result := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		if !query.Match(r.raw) {
			continue
		}
		result = append(result, shapeRow(r, fields, displayAll))
		if limit > 0 && len(result) == limit {
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// shapeRow projects a row onto the requested fields and display mode.
func shapeRow(r row, fields []string, displayAll bool) map[string]any {
	if fields == nil {
		for f := range r.raw {
			fields = append(fields, f)
		}
	}

	out := make(map[string]any, len(fields))
	for _, f := range fields {
		raw, ok := r.raw[f]
		if !ok {
			continue
		}
		if displayAll {
			out[f] = gin.H{"value": raw, "display_value": r.display[f]}
		} else {
			out[f] = raw
		}
	}
	return out
}

// createRequest is the POST body for both tables; unknown fields are ignored.
type createRequest struct {
	Name   string `json:"name"`
	Class  string `json:"sys_class_name"`
	Parent string `json:"parent"`
	Child  string `json:"child"`
	Type   string `json:"type"`
}

// Create handles POST /api/now/table/:table. The write surface exists so
// tests and demos can build topologies; it is not a CMDB write model.
func (h *TableHandler) Create(c *gin.Context) {
	table := c.Param("table")

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	switch table {
	case "cmdb_ci":
		ci, err := h.store.AddCI(req.Name, req.Class)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid record", err.Error())
			return
		}
		h.log.WithFields(logrus.Fields{"table": table, "sys_id": ci.SysID}).Debug("record created")
		c.JSON(http.StatusCreated, gin.H{"result": gin.H{
			"sys_id":         ci.SysID,
			"name":           ci.Name,
			"sys_class_name": ci.Class,
		}})
	case "cmdb_rel_ci":
		rel, err := h.store.AddRel(req.Parent, req.Child, req.Type)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, ErrNoSuchCI) {
				status = http.StatusNotFound
			}
			respondError(c, status, "Invalid record", err.Error())
			return
		}
		h.log.WithFields(logrus.Fields{"table": table, "sys_id": rel.SysID}).Debug("record created")
		c.JSON(http.StatusCreated, gin.H{"result": gin.H{
			"sys_id": rel.SysID,
			"parent": rel.ParentID,
			"child":  rel.ChildID,
			"type":   rel.TypeID,
		}})
	default:
		respondError(c, http.StatusBadRequest, "Invalid table", "unknown table "+table)
	}
}
