package cli

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Bempong-Sylvester-Obese/AI-credit-score-program/pkg/data"
	"github.com/Bempong-Sylvester-Obese/AI-credit-score-program/pkg/feature"
	"github.com/Bempong-Sylvester-Obese/AI-credit-score-program/pkg/predict"
)

const maxUploadBytes = 10 << 20

func makeRouter(db *sql.DB, svc *predict.Service, token string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = maxUploadBytes

	r.GET("/", metaHandler)
	r.GET("/health", healthHandler(db))

	api := r.Group("/api", bearerAuth(token))
	api.POST("/predict", predictHandler(svc))
	api.GET("/predictions", predictionsHandler(db))
	api.GET("/predictions/history", scoreHistoryHandler(db))
	api.GET("/predictions/latest", latestPredictionHandler(db))
	api.GET("/profile", getProfileHandler(db))
	api.PUT("/profile", saveProfileHandler(db))

	return r
}

func bearerAuth(token string) gin.HandlerFunc {
	if token == "" {
		slog.Warn("no API token configured, API endpoints are unauthenticated")
		return func(c *gin.Context) {}
	}
	return func(c *gin.Context) {
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing bearer token"})
			return
		}
		c.Next()
	}
}

func metaHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "creditscore",
		"version": version,
	})
}

func healthHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := data.GetDataState(db)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "up", "data": state})
	}
}

func predictHandler(svc *predict.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
			return
		}

		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("opening upload: %v", err)})
			return
		}
		defer f.Close()

		customerID := c.Query("customer")
		all := c.Query("all") == "true"

		out, err := svc.PredictCSV(c.Request.Context(), f, fh.Filename, customerID, all)
		if err != nil {
			status, msg := predictErrorStatus(err, customerID)
			c.JSON(status, gin.H{"error": msg})
			return
		}

		c.JSON(http.StatusOK, out)
	}
}

// predictErrorStatus maps pipeline errors to HTTP codes: bad input is the
// caller's fault, classifier faults are ours.
func predictErrorStatus(err error, customerID string) (int, string) {
	var schemaErr *feature.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		return http.StatusBadRequest, schemaErr.Error()
	case errors.Is(err, feature.ErrEmptyInput):
		return http.StatusBadRequest, err.Error()
	case customerID != "" && strings.Contains(err.Error(), "not found"):
		return http.StatusNotFound, err.Error()
	default:
		slog.Error("prediction failed", "error", err)
		return http.StatusInternalServerError, "prediction failed"
	}
}

func predictionsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryInt(c, "limit", queryResultLimitDefault)
		offset := queryInt(c, "offset", 0)

		list, err := data.GetPredictions(db, limit, offset)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func scoreHistoryHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := data.GetScoreHistory(db, queryInt(c, "limit", queryResultLimitDefault))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func latestPredictionHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := data.GetLatestPrediction(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no predictions yet"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func getProfileHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := data.GetProfile(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no profile saved"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func saveProfileHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p data.Profile
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid profile body: %v", err)})
			return
		}
		if err := data.SaveProfile(db, &p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, &p)
	}
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
