package tables

import (
	"context"
	"errors"
	"strings"

	"gridsync/core/logger"
	"gridsync/core/middleware/rayid"
	"gridsync/core/reconcile"
	"gridsync/core/syncerr"
	"gridsync/core/table"
	"gridsync/core/utils"
	"gridsync/feature/dbsource"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// maxRuns caps GET /tables/{worksheet}/runs.
const maxRuns = 500

// CreateWorksheetRequest is the body of POST /tables/worksheets.
type CreateWorksheetRequest struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

// WriteRequest is the body of POST /tables/{worksheet}/write.
type WriteRequest struct {
	table.Document
	Comment string `json:"comment"`
}

// RestoreRequest is the body of POST /tables/{worksheet}/restore.
type RestoreRequest struct {
	// Key selects the snapshot. Empty restores the newest one.
	Key    string `json:"key"`
	DryRun bool   `json:"dry_run"`
}

// PushRequest is the body of POST /tables/{worksheet}/push.
type PushRequest struct {
	Table   string   `json:"table"`
	Index   string   `json:"index"`
	Columns []string `json:"columns"`
	Limit   int      `json:"limit"`
	Augment bool     `json:"augment"`
	DryRun  bool     `json:"dry_run"`
}

// Handler handles HTTP requests for tables.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, logger: service.logger}
}

// RegisterRoutes registers the tables routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/tables")
	group.Get("/", h.HandleReadMany)
	group.Get("/worksheets", h.HandleListWorksheets)
	group.Post("/worksheets", h.HandleCreateWorksheet)
	group.Get("/:worksheet", h.HandleRead)
	group.Post("/:worksheet/write", h.HandleWrite)
	group.Post("/:worksheet/update", h.HandleUpdate)
	group.Post("/:worksheet/push", h.HandlePush)
	group.Get("/:worksheet/snapshots", h.HandleSnapshots)
	group.Post("/:worksheet/restore", h.HandleRestore)
	group.Get("/:worksheet/runs", h.HandleRuns)
}

// HandleListWorksheets lists the worksheets of the spreadsheet.
// @Summary List Worksheets
// @Tags tables
// @Produce json
// @Success 200 {object} map[string][]string "Worksheet names"
// @Failure 502 {object} map[string]string "Remote Error"
// @Router /tables/worksheets [get]
func (h *Handler) HandleListWorksheets(c *fiber.Ctx) error {
	names, err := h.service.ListWorksheets(c.Context())
	if err != nil {
		return h.fail(c, "List worksheets failed", err)
	}
	return c.JSON(fiber.Map{"worksheets": names})
}

// HandleCreateWorksheet creates a worksheet.
// @Summary Create Worksheet
// @Tags tables
// @Accept json
// @Produce json
// @Param request body CreateWorksheetRequest true "Worksheet"
// @Success 201 {object} map[string]string "Created"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /tables/worksheets [post]
func (h *Handler) HandleCreateWorksheet(c *fiber.Ctx) error {
	var req CreateWorksheetRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "a worksheet name is required"})
	}
	if err := h.service.CreateWorksheet(c.Context(), req.Name, req.Rows, req.Cols); err != nil {
		return h.fail(c, "Create worksheet failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"worksheet": req.Name})
}

// HandleRead returns the table stored in a worksheet.
// @Summary Read Table
// @Tags tables
// @Produce json
// @Param worksheet path string true "Worksheet name"
// @Param columns query string false "Comma separated columns"
// @Param index query string false "Index column"
// @Success 200 {object} table.Document "Table"
// @Failure 422 {object} map[string]string "Schema Error"
// @Failure 502 {object} map[string]string "Remote Error"
// @Router /tables/{worksheet} [get]
func (h *Handler) HandleRead(c *fiber.Ctx) error {
	t, err := h.service.Read(c.Context(), c.Params("worksheet"), readOptions(c))
	if err != nil {
		return h.fail(c, "Read failed", err)
	}
	return c.JSON(t)
}

// HandleReadMany reads several worksheets concurrently.
// @Summary Read Tables
// @Tags tables
// @Produce json
// @Param worksheets query string true "Comma separated worksheet names"
// @Success 200 {object} map[string]table.Document "Tables by worksheet"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /tables [get]
func (h *Handler) HandleReadMany(c *fiber.Ctx) error {
	names := splitQuery(c.Query("worksheets"))
	if len(names) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "worksheets query parameter is required"})
	}
	tables, err := h.service.ReadMany(c.Context(), names, readOptions(c))
	if err != nil {
		return h.fail(c, "Read failed", err)
	}
	return c.JSON(tables)
}

// HandleWrite writes a table into an empty region of a worksheet.
// @Summary Write Table
// @Tags tables
// @Accept json
// @Produce json
// @Param worksheet path string true "Worksheet name"
// @Param request body WriteRequest true "Table and optional comment"
// @Success 201 {object} map[string]any "Written"
// @Failure 409 {object} map[string]string "Write Conflict"
// @Router /tables/{worksheet}/write [post]
func (h *Handler) HandleWrite(c *fiber.Ctx) error {
	var req WriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid table: " + err.Error()})
	}
	t, err := table.FromDocument(req.Document)
	if err != nil {
		return h.fail(c, "Invalid table", err)
	}

	worksheet := h.service.Worksheet(c.Params("worksheet"))
	if err := h.service.Write(h.ctx(c), worksheet, t, req.Comment); err != nil {
		return h.fail(c, "Write failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"worksheet": worksheet, "rows": t.Len()})
}

// HandleUpdate reconciles a worksheet with the posted table.
// @Summary Update Table
// @Tags tables
// @Accept json
// @Produce json
// @Param worksheet path string true "Worksheet name"
// @Param augment query bool false "Only fill empty cells and append rows"
// @Param dry_run query bool false "Plan without writing"
// @Param columns query string false "Comma separated columns"
// @Param request body table.Document true "Desired table"
// @Success 200 {object} UpdateResult "Update result"
// @Failure 409 {object} map[string]string "Write Conflict"
// @Failure 422 {object} map[string]string "Schema Error"
// @Router /tables/{worksheet}/update [post]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	var doc table.Document
	if err := c.BodyParser(&doc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid table: " + err.Error()})
	}
	desired, err := table.FromDocument(doc)
	if err != nil {
		return h.fail(c, "Invalid table", err)
	}

	result, err := h.service.Update(h.ctx(c), c.Params("worksheet"), desired, UpdateRequest{
		Columns: splitQuery(c.Query("columns")),
		Augment: utils.ParseFlag(c.Query("augment")),
		DryRun:  utils.ParseFlag(c.Query("dry_run")),
	})
	if err != nil {
		return h.fail(c, "Update failed", err)
	}
	return c.JSON(result)
}

// HandlePush reconciles a worksheet with a table loaded from the database.
// @Summary Push Database Table
// @Tags tables
// @Accept json
// @Produce json
// @Param worksheet path string true "Worksheet name"
// @Param request body PushRequest true "Source table"
// @Success 200 {object} UpdateResult "Update result"
// @Failure 501 {object} map[string]string "No Database"
// @Router /tables/{worksheet}/push [post]
func (h *Handler) HandlePush(c *fiber.Ctx) error {
	var req PushRequest
	if err := c.BodyParser(&req); err != nil || req.Table == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "a source table is required"})
	}
	result, err := h.service.Push(h.ctx(c), c.Params("worksheet"),
		dbsource.Query{Table: req.Table, Index: req.Index, Columns: req.Columns, Limit: req.Limit},
		UpdateRequest{Augment: req.Augment, DryRun: req.DryRun})
	if err != nil {
		return h.fail(c, "Push failed", err)
	}
	return c.JSON(result)
}

// HandleSnapshots lists archived snapshots of a worksheet.
// @Summary List Snapshots
// @Tags tables
// @Produce json
// @Param worksheet path string true "Worksheet name"
// @Success 200 {object} map[string][]archive.Snapshot "Snapshots, newest first"
// @Failure 501 {object} map[string]string "No Archive"
// @Router /tables/{worksheet}/snapshots [get]
func (h *Handler) HandleSnapshots(c *fiber.Ctx) error {
	snaps, err := h.service.Snapshots(c.Context(), c.Params("worksheet"))
	if err != nil {
		return h.fail(c, "List snapshots failed", err)
	}
	return c.JSON(fiber.Map{"snapshots": snaps})
}

// HandleRestore reconciles a worksheet with an archived snapshot.
// @Summary Restore Snapshot
// @Tags tables
// @Accept json
// @Produce json
// @Param worksheet path string true "Worksheet name"
// @Param request body RestoreRequest false "Snapshot key"
// @Success 200 {object} UpdateResult "Update result"
// @Failure 501 {object} map[string]string "No Archive"
// @Router /tables/{worksheet}/restore [post]
func (h *Handler) HandleRestore(c *fiber.Ctx) error {
	var req RestoreRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	result, err := h.service.Restore(h.ctx(c), c.Params("worksheet"), req.Key, req.DryRun)
	if err != nil {
		return h.fail(c, "Restore failed", err)
	}
	return c.JSON(result)
}

// HandleRuns lists recent synchronization runs of a worksheet.
// @Summary List Sync Runs
// @Tags tables
// @Produce json
// @Param worksheet path string true "Worksheet name"
// @Param limit query int false "Maximum number of runs"
// @Success 200 {object} map[string][]dbsource.SyncRun "Runs, newest first"
// @Failure 501 {object} map[string]string "No Database"
// @Router /tables/{worksheet}/runs [get]
func (h *Handler) HandleRuns(c *fiber.Ctx) error {
	runs, err := h.service.Runs(c.Context(), c.Params("worksheet"), utils.ParseLimit(c.Query("limit"), maxRuns))
	if err != nil {
		return h.fail(c, "List runs failed", err)
	}
	return c.JSON(fiber.Map{"runs": runs})
}

// ctx returns the request context carrying the ray id.
func (h *Handler) ctx(c *fiber.Ctx) context.Context {
	return WithRayID(c.Context(), rayid.Get(c))
}

// fail logs err and writes it with the status matching its kind.
func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := StatusFor(err)
	l := logger.WithRayID(h.logger, c)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err))
	}

	body := fiber.Map{"error": err.Error()}
	if kind := syncerr.KindOf(err); kind != "" {
		body["kind"] = kind
	}
	return c.Status(status).JSON(body)
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	switch syncerr.KindOf(err) {
	case syncerr.KindSchema, syncerr.KindSchemaMismatch, syncerr.KindIndex:
		return fiber.StatusUnprocessableEntity
	case syncerr.KindWriteConflict:
		return fiber.StatusConflict
	case syncerr.KindRemote:
		return fiber.StatusBadGateway
	}
	switch {
	case errors.Is(err, reconcile.ErrPlanConsumed):
		return fiber.StatusConflict
	case errors.Is(err, ErrArchiveDisabled), errors.Is(err, ErrSourceDisabled), errors.Is(err, ErrJournalDisabled):
		return fiber.StatusNotImplemented
	}
	return fiber.StatusInternalServerError
}

func readOptions(c *fiber.Ctx) reconcile.ReadOptions {
	return reconcile.ReadOptions{
		IndexColumn: c.Query("index"),
		Columns:     splitQuery(c.Query("columns")),
	}
}

func splitQuery(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
