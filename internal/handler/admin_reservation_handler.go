package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"bakery/internal/config"
	"bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/tealeg/xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminReservationHandler struct {
	uc *usecase.AdminReservationUsecase
}

func NewAdminReservationHandler(uc *usecase.AdminReservationUsecase) *AdminReservationHandler {
	return &AdminReservationHandler{uc: uc}
}

func (h *AdminReservationHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := adminGroup(e, cfg, userRepo)

	admin.GET("/reservations", h.list)
	admin.PATCH("/reservations/:id/status", h.updateStatus)
	admin.DELETE("/reservations/:id", h.delete)

	admin.GET("/attendance", h.attendance)
	admin.GET("/attendance/export", h.exportAttendance)
}

func (h *AdminReservationHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "Página inválida")
	}
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return badRequest(c, "Límite inválido")
	}
	customerID, ok := queryInt64Ptr(c, "customer_id")
	if !ok {
		return badRequest(c, "customer_id inválido")
	}
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), usecase.AdminReservationListInput{
		Page:       page,
		Limit:      limit,
		Status:     c.QueryParam("status"),
		CustomerID: customerID,
		From:       from,
		To:         to,
		Sort:       c.QueryParam("sort"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminReservationHandler) updateStatus(c echo.Context) error {
	reservationID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "ID inválido")
	}

	var req usecase.AdminUpdateReservationStatusInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Cuerpo de la solicitud inválido")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.SetGroupStatus(c.Request().Context(), adminID, reservationID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminReservationHandler) delete(c echo.Context) error {
	reservationID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "ID inválido")
	}
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	deleted, err := h.uc.DeleteGroup(c.Request().Context(), adminID, reservationID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Reserva eliminada",
		"deleted": deleted,
	})
}

func (h *AdminReservationHandler) attendance(c echo.Context) error {
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.AttendanceReport(c.Request().Context(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 1グループ1行
func (h *AdminReservationHandler) exportAttendance(c echo.Context) error {
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}

	rep, err := h.uc.AttendanceReport(c.Request().Context(), from, to)
	if err != nil {
		return writeError(c, err)
	}

	file, err := buildAttendanceSheet(rep)
	if err != nil {
		return writeError(c, err)
	}

	name := fmt.Sprintf("asistencia_%s_%s.xlsx", rep.From, rep.To)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	c.Response().Header().Set(echo.HeaderContentType, xlsxContentType)
	c.Response().WriteHeader(http.StatusOK)
	return file.Write(c.Response())
}

func buildAttendanceSheet(rep usecase.AttendanceReport) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Asistencia")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, h := range []string{"Fecha", "Hora", "Cliente", "Correo", "Productos", "Estado", "Total"} {
		header.AddCell().SetValue(h)
	}

	for _, g := range rep.Groups {
		row := sheet.AddRow()
		row.AddCell().SetValue(g.ReservationDate)
		row.AddCell().SetValue(g.ReservationTime)
		row.AddCell().SetValue(g.Customer.FullName)
		row.AddCell().SetValue(g.Customer.Email)
		row.AddCell().SetValue(groupItemSummary(g))
		row.AddCell().SetValue(string(g.Status))
		row.AddCell().SetValue(g.TotalAmountCombined.StringFixed(2))
	}

	// 集計
	summary := sheet.AddRow()
	summary.AddCell().SetValue("Tasa de asistencia")
	summary.AddCell().SetValue(rep.AttendanceRate)

	return file, nil
}

func groupItemSummary(g usecase.ReservationGroup) string {
	parts := make([]string, 0, len(g.Items))
	for _, it := range g.Items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.ProductName, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

// from / to クエリ
func dateRange(c echo.Context) (*time.Time, *time.Time, error) {
	from, err := usecase.ParseDateParam(c.QueryParam("from"))
	if err != nil {
		return nil, nil, err
	}
	to, err := usecase.ParseDateParam(c.QueryParam("to"))
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
