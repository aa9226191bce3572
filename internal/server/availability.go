package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const defaultAvailabilityWeeks = 8

func (s *Server) GetWriterAvailability(c *gin.Context) {
	weeks, err := availabilityWeeks(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.availabilitySvc.ForWriter(c.Request.Context(), c.Param("id"), weeks)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) GetAvailabilityBySlug(c *gin.Context) {
	weeks, err := availabilityWeeks(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.availabilitySvc.ForSlug(c.Request.Context(), c.Param("slug"), weeks)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) GetSlotAvailability(c *gin.Context) {
	writerID, err := snowflake.ParseString(c.Param("id"))
	if err != nil || writerID == 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid writer id"))
		return
	}

	date, err := time.Parse(dateOnlyLayout, c.Param("date"))
	if err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "use YYYY-MM-DD"))
		return
	}

	available, err := s.availabilitySvc.IsSlotAvailable(c.Request.Context(), writerID, date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":      date.Format(dateOnlyLayout),
		"available": available,
	})
}

func availabilityWeeks(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("weeks"))
	if raw == "" {
		return defaultAvailabilityWeeks, nil
	}
	weeks, err := parseOptionalInt(raw)
	if err != nil || weeks == nil {
		return 0, newValidationError("weeks", "invalid_weeks", "weeks must be a number")
	}
	return *weeks, nil
}
