package transaction

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/identity"
	"github.com/Additional-Code/orderdesk/internal/presentation/http/response"
	repo "github.com/Additional-Code/orderdesk/internal/repository/transaction"
	service "github.com/Additional-Code/orderdesk/internal/service/transaction"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/orderdesk/transport/http/transaction")

// maxBodyBytes caps create and update payloads.
const maxBodyBytes = 1 << 20

const orderDateLayout = "2006-01-02"

// bulkActions maps URL segments onto service actions.
var bulkActions = map[string]service.Action{
	"delete":       service.ActionDelete,
	"restore":      service.ActionRestore,
	"force-delete": service.ActionForceDelete,
}

// Handler exposes transaction endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a transaction Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/transactions")
	g.GET("", h.list)
	g.GET("/schema", h.schema)
	g.GET("/draft", h.draft)
	g.POST("", h.create)
	g.POST("/bulk/:action", h.bulk)
	g.GET("/:id", h.getByID)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.softDelete)
	g.DELETE("/:id/force", h.forceDelete)
	g.POST("/:id/restore", h.restore)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	query, err := listQuery(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "transactions.list", trace.WithAttributes(
		attribute.String("transaction.trashed", string(query.Trashed)),
	))
	defer span.End()

	page, err := h.svc.List(ctx, query)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(page.Items).WithPagination(page.Total, page.Page, page.PerPage, page.Pages).Build()
}

func (h *Handler) schema(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "transactions.schema")
	defer span.End()

	schema, err := h.svc.Schema(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(schema).Build()
}

func (h *Handler) draft(c echo.Context) error {
	draft := h.svc.Draft()
	return response.New(c).WithData(dto.TransactionDraft{
		Status:       draft.Status.String(),
		ProductCount: draft.ProductCount,
		AcrylicMM:    draft.AcrylicMM,
		OrderDate:    draft.OrderDate.Format(orderDateLayout),
	}).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	trashed, err := trashedParam(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "transactions.getByID", trace.WithAttributes(attribute.Int64("transaction.id", id)))
	defer span.End()

	txn, err := h.svc.Get(ctx, id, trashed)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(h.svc.Present(txn)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	body, err := readBody(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	in, err := service.ParseCreateInput(body)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "transactions.create")
	defer span.End()

	txn, err := h.svc.Create(ctx, caller(c), in)
	if err != nil {
		return b.WithError(err).Build()
	}
	span.SetAttributes(attribute.Int64("transaction.id", txn.ID))

	return b.WithStatus(http.StatusCreated).WithData(h.svc.Present(txn)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	body, err := readBody(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	in, err := service.ParseUpdateInput(body)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "transactions.update", trace.WithAttributes(attribute.Int64("transaction.id", id)))
	defer span.End()

	txn, err := h.svc.Update(ctx, id, in)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(h.svc.Present(txn)).Build()
}

func (h *Handler) softDelete(c echo.Context) error {
	return h.lifecycle(c, service.ActionDelete)
}

func (h *Handler) forceDelete(c echo.Context) error {
	return h.lifecycle(c, service.ActionForceDelete)
}

func (h *Handler) restore(c echo.Context) error {
	b := response.New(c)

	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "transactions.restore", trace.WithAttributes(attribute.Int64("transaction.id", id)))
	defer span.End()

	if err := h.svc.Restore(ctx, caller(c), id); err != nil {
		return b.WithError(err).Build()
	}
	txn, err := h.svc.Get(ctx, id, repo.WithTrashed)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(h.svc.Present(txn)).Build()
}

func (h *Handler) lifecycle(c echo.Context, action service.Action) error {
	b := response.New(c)

	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "transactions."+string(action), trace.WithAttributes(attribute.Int64("transaction.id", id)))
	defer span.End()

	switch action {
	case service.ActionForceDelete:
		err = h.svc.ForceDelete(ctx, caller(c), id)
	default:
		err = h.svc.SoftDelete(ctx, caller(c), id)
	}
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.ActionResult{ID: id, Action: string(action)}).Build()
}

// bulk answers 200 when every id succeeded and 207 otherwise; the body tells
// denials, missing ids and failures apart.
func (h *Handler) bulk(c echo.Context) error {
	b := response.New(c)

	action, ok := bulkActions[c.Param("action")]
	if !ok {
		return b.WithError(errorbank.NotFound("unknown bulk action", errorbank.WithDetail("action", c.Param("action")))).Build()
	}
	var req dto.BulkRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "transactions.bulk", trace.WithAttributes(
		attribute.String("transaction.action", string(action)),
		attribute.Int("transaction.requested", len(req.IDs)),
	))
	defer span.End()

	result, err := h.svc.Bulk(ctx, caller(c), action, req.IDs)
	if err != nil {
		return b.WithError(err).Build()
	}

	status := http.StatusOK
	if result.Outcome() != service.OutcomeAll {
		status = http.StatusMultiStatus
	}
	return b.WithStatus(status).WithData(result.Response()).Build()
}

func caller(c echo.Context) *identity.Identity {
	id, ok := identity.FromContext(c.Request().Context())
	if !ok {
		return nil
	}
	return &id
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithDetail("id", c.Param("id")))
	}
	return id, nil
}

func trashedParam(c echo.Context) (repo.Trashed, error) {
	trashed, err := repo.ParseTrashed(c.QueryParam("trashed"))
	if err != nil {
		return "", errorbank.Invalid(map[string]string{"trashed": "must be one of none, only, with"})
	}
	return trashed, nil
}

func listQuery(c echo.Context) (service.ListQuery, error) {
	problems := map[string]string{}

	trashed, err := repo.ParseTrashed(c.QueryParam("trashed"))
	if err != nil {
		problems["trashed"] = "must be one of none, only, with"
	}
	page := intParam(c, "page", problems)
	perPage := intParam(c, "per_page", problems)

	if len(problems) > 0 {
		return service.ListQuery{}, errorbank.Invalid(problems)
	}
	return service.ListQuery{
		Trashed:   trashed,
		Search:    c.QueryParam("search"),
		Sort:      c.QueryParam("sort"),
		Direction: c.QueryParam("direction"),
		Page:      page,
		PerPage:   perPage,
	}, nil
}

func intParam(c echo.Context, name string, problems map[string]string) int {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		problems[name] = "must be a positive integer"
		return 0
	}
	return n
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		return nil, errorbank.BadRequest("unable to read request body", errorbank.WithCause(err))
	}
	if len(body) > maxBodyBytes {
		return nil, errorbank.BadRequest("request body too large")
	}
	return body, nil
}
