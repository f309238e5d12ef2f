package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"edupay/internal/services"
)

// TransactionHandler serves the joined order/status views
type TransactionHandler struct {
	transactions *services.TransactionService
}

func NewTransactionHandler(transactions *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

func listParamsFromQuery(c echo.Context) services.ListParams {
	p := services.ListParams{Page: 1, Limit: 10}
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	p.Sort = c.QueryParam("sort")
	p.Order = c.QueryParam("order")
	return p
}

// GetAllTransactions lists all transactions, paginated
func (h *TransactionHandler) GetAllTransactions(c echo.Context) error {
	rows, pagination, err := h.transactions.List(c.Request().Context(), listParamsFromQuery(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch transactions")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"results": len(rows),
		"data": map[string]interface{}{
			"transactions": rows,
			"pagination":   pagination,
		},
	})
}

// GetTransactionsBySchool lists transactions for one school
func (h *TransactionHandler) GetTransactionsBySchool(c echo.Context) error {
	schoolID, err := strconv.ParseUint(c.Param("schoolId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid school ID")
	}

	params := listParamsFromQuery(c)
	params.SchoolID = uint(schoolID)

	rows, pagination, err := h.transactions.List(c.Request().Context(), params)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch transactions")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"results": len(rows),
		"data": map[string]interface{}{
			"transactions": rows,
			"pagination":   pagination,
		},
	})
}

// TransactionStatus returns the settlement state of one order. A
// missing order and an order without a ledger entry are reported as
// different conditions.
func (h *TransactionHandler) TransactionStatus(c echo.Context) error {
	customOrderID := c.Param("customOrderId")
	if customOrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "customOrderId is required")
	}

	view, err := h.transactions.StatusOf(c.Request().Context(), customOrderID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Transaction not found")
		case errors.Is(err, services.ErrStatusNotFound):
			return echo.NewHTTPError(http.StatusNotFound, services.ErrStatusNotFound.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch transaction status")
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}
