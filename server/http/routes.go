package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/georocket/georocket-go/ingest"
	"github.com/georocket/georocket-go/store"
	"github.com/google/uuid"
	"github.com/yaoapp/kun/log"
)

// requestIDHeader carries a per-request correlation id generated by
// requestID, echoed back to the client and used in log lines.
const requestIDHeader = "X-Request-Id"

// requestID stamps every request with a UUID so a single ingest or
// retrieve call can be traced through the logs.
func requestID(c *gin.Context) {
	id := uuid.NewString()
	c.Set("request_id", id)
	c.Header(requestIDHeader, id)
	c.Next()
}

// Router builds the gin.Engine carrying the ingest and retrieval routes
// backed by st.
func Router(st store.Store) *gin.Engine {
	router := gin.New()
	router.Use(requestID)
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("[Server] %s panic recovered: %v", c.GetString("request_id"), recovered)
		c.String(http.StatusInternalServerError, "internal error")
	}))

	router.POST("/chunks", ingestHandler(st))
	router.GET("/chunks/:name", retrieveHandler(st))
	return router
}

// ingestHandler accepts a raw XML body, streams it through the ingest
// pipeline and reports how many first-level chunks were stored.
func ingestHandler(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := ingest.Ingest(c.Request.Context(), c.Request.Body, st)
		if err != nil {
			writeIngestError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"message": "Accepted file - indexing in progress",
			"chunks":  len(result.ChunkNames),
		})
	}
}

// retrieveHandler streams a previously ingested chunk back out by name.
func retrieveHandler(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		r, size, err := st.Get(c.Request.Context(), name)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		defer r.Close()

		c.Header("Content-Length", strconv.FormatInt(size, 10))
		c.Status(http.StatusOK)
		if _, err := io.Copy(c.Writer, r); err != nil {
			log.Warn("[Server] streaming chunk %s: %s", name, err.Error())
		}
	}
}

func writeIngestError(c *gin.Context, err error) {
	var parseErr *ingest.ParseError
	var invalidErr *ingest.InvalidArgument
	var ioErr *ingest.IoError

	switch {
	case errors.Is(err, ingest.ErrCancelled):
		// the client is already gone; nothing to write back.
		return

	case errors.As(err, &parseErr):
		c.String(http.StatusBadRequest, "Could not parse XML: %s", parseErr.Error())

	case errors.As(err, &invalidErr):
		c.String(http.StatusBadRequest, "Invalid request: %s", invalidErr.Error())

	case errors.As(err, &ioErr):
		log.Error("[Server] ingest io error: %s", ioErr.Error())
		c.String(http.StatusInternalServerError, "Could not read request body")

	default:
		log.Error("[Server] ingest failed: %s", err.Error())
		c.String(http.StatusInternalServerError, "Could not store chunk")
	}
}

func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.String(http.StatusNotFound, "Not found")

	default:
		log.Error("[Server] retrieve failed: %s", err.Error())
		c.String(http.StatusInternalServerError, "Could not read chunk")
	}
}
