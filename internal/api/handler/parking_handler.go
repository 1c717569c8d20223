package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkledger/internal/domain"
	"parkledger/internal/service"
)

type ParkingHandler struct {
	ledger service.ParkingLedger
}

func NewParkingHandler(ledger service.ParkingLedger) *ParkingHandler {
	return &ParkingHandler{ledger: ledger}
}

// POST /api/parking/entry
func (h *ParkingHandler) RecordEntry(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	var dto domain.RecordEntryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.ledger.RecordEntry(c.Request.Context(), dto, identity)
	if err != nil {
		respondError(c, err, "error recording entry")
		return
	}
	c.JSON(http.StatusCreated, session)
}

// POST /api/parking/exit
func (h *ParkingHandler) RecordExit(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	var dto domain.RecordExitDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.ledger.RecordExit(c.Request.Context(), dto, identity)
	if err != nil {
		respondError(c, err, "error recording exit")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/parking/active
func (h *ParkingHandler) ListActive(c *gin.Context) {
	active, err := h.ledger.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err, "error fetching active parkings")
		return
	}
	c.JSON(http.StatusOK, active)
}

// GET /api/parking/history
func (h *ParkingHandler) ListHistory(c *gin.Context) {
	history, err := h.ledger.ListHistory(c.Request.Context())
	if err != nil {
		respondError(c, err, "error fetching parking history")
		return
	}
	c.JSON(http.StatusOK, history)
}

// GET /api/parking/vehicle/:vehicleNumber
func (h *ParkingHandler) GetActiveByVehicle(c *gin.Context) {
	session, err := h.ledger.FindActiveByVehicle(c.Request.Context(), c.Param("vehicleNumber"))
	if err != nil {
		respondError(c, err, "error fetching parking details")
		return
	}
	c.JSON(http.StatusOK, session)
}

// GET /api/reports/summary
func (h *ParkingHandler) Summary(c *gin.Context) {
	summary, err := h.ledger.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err, "error fetching reports")
		return
	}
	c.JSON(http.StatusOK, summary)
}
