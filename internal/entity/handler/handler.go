package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pacific-clothing/personnel-api/internal/entity"
	"github.com/pacific-clothing/personnel-api/pkg/logger"
	"github.com/pacific-clothing/personnel-api/pkg/metrics"
)

// Register mounts the CRUD surface for one entity descriptor under
// /{collection}. The same handler logic serves every entity; descriptors
// differ only in schema, protection flag and update strategy.
//
// Stage order per request: authorization gate (mutations on protected
// entities) -> identifier decoding -> payload validation -> repository.
// Each stage short-circuits straight to the error response; the repository
// is never reached with a malformed id or payload.
func Register(r gin.IRouter, desc entity.Descriptor, repo entity.Repository, gate gin.HandlerFunc) {
	g := r.Group("/" + desc.Collection)
	g.Use(func(c *gin.Context) {
		c.Next()
		metrics.ObserveRequest(desc.Collection, c.Request.Method, c.Writer.Status())
	})

	g.GET("", list(desc, repo))
	g.GET("/:id", get(desc, repo))

	mutate := g.Group("")
	if desc.Protected && gate != nil {
		mutate.Use(gate)
	}
	mutate.POST("", create(desc, repo))
	mutate.PUT("/:id", update(desc, repo))
	mutate.PATCH("/:id", update(desc, repo))
	mutate.DELETE("/:id", remove(desc, repo))
}

func list(desc entity.Descriptor, repo entity.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := repo.List(c.Request.Context())
		if err != nil {
			respondError(c, desc, err)
			return
		}
		c.JSON(http.StatusOK, docs)
	}
}

func get(desc entity.Descriptor, repo entity.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := entity.DecodeID(c.Param("id"))
		if err != nil {
			respondError(c, desc, err)
			return
		}
		doc, err := repo.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, desc, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

func create(desc entity.Descriptor, repo entity.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload map[string]interface{}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		value, err := entity.Validate(desc.Schema, payload, entity.ModeCreate)
		if err != nil {
			respondError(c, desc, err)
			return
		}
		id, err := repo.Create(c.Request.Context(), value)
		if err != nil {
			respondError(c, desc, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id.Hex()})
	}
}

func update(desc entity.Descriptor, repo entity.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := entity.DecodeID(c.Param("id"))
		if err != nil {
			respondError(c, desc, err)
			return
		}
		var payload map[string]interface{}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		// legacy entities take a full payload and are replaced wholesale;
		// current entities take a sparse payload and are merged
		if desc.Update == entity.UpdateReplace {
			value, err := entity.Validate(desc.Schema, payload, entity.ModeCreate)
			if err != nil {
				respondError(c, desc, err)
				return
			}
			if err := repo.Replace(c.Request.Context(), id, value); err != nil {
				respondError(c, desc, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": desc.Name + " updated"})
			return
		}

		partial, err := entity.Validate(desc.Schema, payload, entity.ModeUpdate)
		if err != nil {
			respondError(c, desc, err)
			return
		}
		outcome, err := repo.Merge(c.Request.Context(), id, partial)
		if err != nil {
			respondError(c, desc, err)
			return
		}
		if outcome == entity.OutcomeNoChange {
			c.JSON(http.StatusOK, gin.H{"message": desc.Name + " unchanged"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": desc.Name + " updated"})
	}
}

func remove(desc entity.Descriptor, repo entity.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := entity.DecodeID(c.Param("id"))
		if err != nil {
			respondError(c, desc, err)
			return
		}
		if err := repo.Delete(c.Request.Context(), id); err != nil {
			respondError(c, desc, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// respondError maps every failure to exactly one (status, message) pair.
// Store-level detail is logged, never returned to the caller.
func respondError(c *gin.Context, desc entity.Descriptor, err error) {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, entity.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": desc.Name + " not found"})
	default:
		logger.Errorf("%s: store error: %v", desc.Collection, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
