// Package monitoring reports unexpected failures to Sentry. Every method is a
// no-op when no DSN is configured.
package monitoring

import (
	"fmt"
	"log"
	"time"

	"github.com/abpira/accounts/shared/middleware"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

type Reporter struct {
	initialized bool
}

// New initializes the global Sentry client. An empty dsn yields a disabled
// Reporter, as does an initialization failure.
func New(dsn, environment string) *Reporter {
	if dsn == "" {
		log.Println("SENTRY_DSN not set, Sentry disabled")
		return &Reporter{}
	}
	if environment == "" {
		environment = "development"
	}
	return newReporter(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
}

func newReporter(opts sentry.ClientOptions) *Reporter {
	if err := sentry.Init(opts); err != nil {
		log.Printf("Sentry initialization failed: %v", err)
		return &Reporter{}
	}
	log.Println("Sentry initialized successfully")
	return &Reporter{initialized: true}
}

// CaptureException sends err without request context, for failures outside
// an HTTP request such as event processing.
func (r *Reporter) CaptureException(err error) {
	if !r.initialized {
		return
	}
	sentry.CaptureException(err)
}

// Capture sends err tagged with the handler name, request path and request ID.
func (r *Reporter) Capture(c *gin.Context, handler string, err error) {
	if !r.initialized {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("handler", handler)
		scope.SetTag("path", c.Request.URL.Path)
		scope.SetLevel(sentry.LevelError)
		if reqID := middleware.GetRequestID(c); reqID != "" {
			scope.SetTag("request_id", reqID)
		}
		sentry.CaptureException(err)
	})
}

// CapturePanic has the signature middleware.Recovery expects.
func (r *Reporter) CapturePanic(c *gin.Context, recovered any) {
	r.Capture(c, "panic", fmt.Errorf("panic: %v", recovered))
}

func (r *Reporter) Flush(timeout time.Duration) bool {
	if !r.initialized {
		return true
	}
	return sentry.Flush(timeout)
}

// Close flushes buffered events.
func (r *Reporter) Close() {
	r.Flush(2 * time.Second)
}
