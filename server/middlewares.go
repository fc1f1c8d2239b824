package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/obiesoto/herald/server/auth"
	"github.com/obiesoto/herald/server/models"
)

var (
	redColor    = color.New(color.FgRed).SprintFunc()
	yellowColor = color.New(color.FgYellow).SprintFunc()
	greenColor  = color.New(color.FgGreen).SprintFunc()
)

type ResponseWriterWithStatus struct {
	http.ResponseWriter
	Status int
}

func (r *ResponseWriterWithStatus) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		responseWriter := &ResponseWriterWithStatus{
			ResponseWriter: w,
			Status:         200,
		}

		defer func() {
			responseStatus := greenColor(responseWriter.Status)
			if responseWriter.Status >= 400 {
				responseStatus = redColor(responseWriter.Status)
			}

			logg.Infof("%v %v %v %v",
				r.Method,
				r.RequestURI,
				responseStatus,
				yellowColor(fmt.Sprintf("[%v]", time.Since(start))))
		}()

		next.ServeHTTP(responseWriter, r)
	})
}

func initialContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "application/json")

		requestID := uuid.NewString()
		w.Header().Add("X-Request-Id", requestID)

		ctx := context.WithValue(r.Context(), RequestContextKey("requestID"), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminOnly gates a handler behind the session cookie. Only users with
// the admin role get through; everyone else sees the same 403 so the
// gate leaks nothing about which accounts exist.
func (app *App) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := app.sessionUser(r)
		if err != nil || !user.IsAdmin() {
			writeError(w, "Unauthorized. Admin access required.", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), RequestContextKey("currentUserID"), user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (app *App) sessionUser(r *http.Request) (*models.User, error) {
	cookie, err := r.Cookie("token")
	if err != nil {
		return nil, err
	}

	claims, err := auth.DecodeSessionToken(cookie.Value, []byte(app.config.Herald.SessionSecret))
	if err != nil {
		return nil, err
	}

	user, err := models.FindUserBy("id", claims.Subject)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func currentUserID(r *http.Request) uint {
	id, _ := r.Context().Value(RequestContextKey("currentUserID")).(uint)
	return id
}
