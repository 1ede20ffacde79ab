package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PNRStatus returns the booking view for a PNR.
func (h Handler) PNRStatus(c *gin.Context) {
	d, err := h.pnr(c).Status(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// ETicketPDF returns the e-ticket of a PNR (inline).
func (h Handler) ETicketPDF(c *gin.Context) {
	pdfBytes, filename, err := h.docs(c).GenerateETicket(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
