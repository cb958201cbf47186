package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a site handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		Convey("When registering the site handler", func() {
			Register(ctx, mux)

			Convey("Then / should redirect to the dashboard", func() {
				req := httptest.NewRequest("GET", "/", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusFound)
				So(w.Header().Get("Location"), ShouldEqual, DashboardPath)
			})

			Convey("And /dashboard should serve the page with a run control", func() {
				req := httptest.NewRequest("GET", "/dashboard", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Body.String(), ShouldContainSubstring, `id="run-again"`)
				So(w.Body.String(), ShouldContainSubstring, `id="summary-table"`)
				So(w.Body.String(), ShouldContainSubstring, `id="detail-table"`)
			})

			Convey("And /assets/ should serve the dashboard script", func() {
				req := httptest.NewRequest("GET", "/assets/dashboard.js", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "/api/report")
			})

			Convey("And it should not handle unknown paths", func() {
				req := httptest.NewRequest("GET", "/some-asset", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("And /dashboard should reject writes", func() {
				req := httptest.NewRequest("POST", "/dashboard", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestSiteMiddleware(t *testing.T) {
	Convey("Given a middleware that records endpoints", t, func() {
		var seen []string
		mw := func(next http.HandlerFunc, endpoint string) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				seen = append(seen, endpoint)
				next(w, r)
			}
		}
		mux := http.NewServeMux()
		Register(context.Background(), mux, WithMiddleware(mw))

		Convey("When the dashboard is requested", func() {
			mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/dashboard", nil))

			Convey("Then the middleware sees the route name", func() {
				So(seen, ShouldResemble, []string{"dashboard"})
			})
		})
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		ctx := context.Background()

		Convey("When registering the site handler", func() {
			Convey("Then it should panic", func() {
				So(func() {
					Register(ctx, nil)
				}, ShouldPanic)
			})
		})
	})
}
