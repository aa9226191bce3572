package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	sponsordomain "github.com/sponsorloop/sponsorloop/internal/sponsor/domain"
)

func (s *Server) CreateSponsor(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req sponsordomain.CreateSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	profile, err := s.sponsorSvc.Create(c.Request.Context(), identity, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

func (s *Server) GetMySponsor(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	profile, err := s.sponsorSvc.GetByUser(c.Request.Context(), identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (s *Server) UpdateMySponsor(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req sponsordomain.UpdateSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	current, err := s.sponsorSvc.GetByUser(c.Request.Context(), identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	profile, err := s.sponsorSvc.Update(c.Request.Context(), identity, current.ID.String(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
