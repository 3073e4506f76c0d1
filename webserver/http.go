package webserver

import (
	"context"
	"net/http"
	"time"

	"sentinel/store"
	"sentinel/types"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	ginlogrus "github.com/toorop/gin-logrus"
)

var (
	json   = jsoniter.ConfigCompatibleWithStandardLibrary
	logger = log.New()
)

// Stats is what /stats reports on besides the store
type Stats interface {
	Operators() int
	PendingReviews() int
	Outcomes() map[string]int // finished reviews by final state
}

// API return
func apiReturn(c *gin.Context, statusCode int, done bool, reason interface{}, context interface{}) {
	if reason == "" {
		reason = nil
	}

	var ret = gin.H{"done": done, "reason": reason}
	if context != nil {
		ret["ctx"] = context
	}
	c.Header("Content-Type", "application/json")
	body, err := json.MarshalToString(ret)
	if err != nil {
		body, _ = json.MarshalToString(gin.H{"done": false, "reason": "Internal server error: " + err.Error()})
		statusCode = 500
	}
	c.String(statusCode, body)
}

func apiData(c *gin.Context, v interface{}) {
	body, err := json.MarshalToString(v)
	if err != nil {
		apiReturn(c, 500, false, "Internal server error: "+err.Error(), nil)
		return
	}
	c.Header("Content-Type", "application/json")
	c.String(200, body)
}

// Router builds the status api. It only ever reads
func Router(s store.Store, stats Stats) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(ginlogrus.Logger(logger), gin.Recovery())

	r.NoRoute(func(c *gin.Context) {
		apiReturn(c, 404, false, "Not Found", nil)
	})
	router := r.Group("/sentinel")

	router.GET("/ping", func(c *gin.Context) {
		apiReturn(c, 200, true, nil, nil)
	})

	router.GET("/servers", func(c *gin.Context) {
		regs, err := s.ListRegistrations(c.Request.Context())
		if err != nil {
			log.Error(err)
			apiReturn(c, 500, false, "Could not list servers", nil)
			return
		}
		if regs == nil {
			regs = []types.ServerRegistration{}
		}
		apiData(c, regs)
	})

	router.GET("/servers/:id", func(c *gin.Context) {
		reg, err := s.GetRegistration(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, types.ErrInvalidID):
			apiReturn(c, 400, false, "Server id must be a number", nil)
		case errors.Is(err, types.ErrNotFound):
			apiReturn(c, 404, false, "Server not registered", nil)
		case err != nil:
			log.Error(err)
			apiReturn(c, 500, false, "Could not fetch server", nil)
		default:
			apiData(c, reg)
		}
	})

	router.GET("/stats", func(c *gin.Context) {
		apiData(c, gin.H{
			"operators":       stats.Operators(),
			"pending_reviews": stats.PendingReviews(),
			"outcomes":        stats.Outcomes(),
		})
	})

	return r
}

// Webserver is a running status api
type Webserver struct {
	srv *http.Server
}

// StartWebserver serves Router on addr in the background
func StartWebserver(addr string, s store.Store, stats Stats) *Webserver {
	w := &Webserver{
		srv: &http.Server{
			Addr:              addr,
			Handler:           Router(s, stats),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	go func() {
		log.Info("Status api listening on ", addr)
		if err := w.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Status api stopped: ", err)
		}
	}()
	return w
}

func (w *Webserver) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return w.srv.Shutdown(ctx)
}
