package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	bookingdomain "github.com/sponsorloop/sponsorloop/internal/booking/domain"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
)

type createBookingRequest struct {
	WriterID string `json:"writer_id"`
	SlotDate string `json:"slot_date"`
	bookingdomain.AdContent
}

type rejectBookingRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) CreateBooking(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	slotDate, err := time.Parse(dateOnlyLayout, strings.TrimSpace(req.SlotDate))
	if err != nil {
		AbortWithError(c, newValidationError("slot_date", "invalid_date", "use YYYY-MM-DD"))
		return
	}

	result, err := s.bookingSvc.Reserve(c.Request.Context(), identity, bookingdomain.ReserveRequest{
		WriterID:  strings.TrimSpace(req.WriterID),
		SlotDate:  slotDate,
		AdContent: req.AdContent,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (s *Server) GetBookingByID(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	detail, err := s.bookingSvc.GetByID(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (s *Server) ListSponsorBookings(c *gin.Context) {
	s.listBookings(c, s.bookingSvc.ListForSponsor)
}

func (s *Server) ListWriterBookings(c *gin.Context) {
	s.listBookings(c, s.bookingSvc.ListForWriter)
}

func (s *Server) listBookings(c *gin.Context, list func(ctx context.Context, identity authdomain.Identity, filter bookingdomain.ListFilter, page pagination.Params) (pagination.Page[bookingdomain.Detail], error)) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	filter, err := bookingFilterFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	page, err := bindPagination(c)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := list(c.Request.Context(), identity, filter, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) ListUpcomingBookings(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	bookings, err := s.bookingSvc.UpcomingForWriter(c.Request.Context(), identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (s *Server) UpdateBookingAdContent(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var content bookingdomain.AdContent
	if err := c.ShouldBindJSON(&content); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.bookingSvc.UpdateAdContent(c.Request.Context(), identity, c.Param("id"), content)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) ApproveBooking(c *gin.Context) {
	s.transitionBooking(c, "approved", s.bookingSvc.Approve)
}

func (s *Server) PublishBooking(c *gin.Context) {
	s.transitionBooking(c, "published", s.bookingSvc.Publish)
}

func (s *Server) CancelBooking(c *gin.Context) {
	s.transitionBooking(c, "cancelled", s.bookingSvc.Cancel)
}

func (s *Server) RejectBooking(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req rejectBookingRequest
	// Reject allows an empty body; the reason is optional.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.bookingSvc.Reject(c.Request.Context(), identity, c.Param("id"), strings.TrimSpace(req.Reason)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

func (s *Server) transitionBooking(c *gin.Context, status string, transition func(ctx context.Context, identity authdomain.Identity, id string) error) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := transition(c.Request.Context(), identity, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}
