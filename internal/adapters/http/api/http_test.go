package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	repository "github.com/mrdon/kioskd/internal/adapters/repository"
	"github.com/mrdon/kioskd/internal/domain/model"
	"github.com/mrdon/kioskd/internal/domain/types"
	"github.com/mrdon/kioskd/internal/playback"
	"github.com/mrdon/kioskd/pkg/logger"
	"github.com/mrdon/kioskd/pkg/metrics"
)

func init() {
	logger.Init()
}

type fakeDeps struct {
	current    types.Current
	currentErr error
	slides     []types.SlideSummary
	enqueued   []playback.Event
	reject     bool
}

func (f *fakeDeps) Enqueue(_ context.Context, e playback.Event) bool {
	if f.reject {
		return false
	}
	f.enqueued = append(f.enqueued, e)
	return true
}

func (f *fakeDeps) Current(_ context.Context) (types.Current, error) {
	return f.current, f.currentErr
}

func (f *fakeDeps) Slides(_ context.Context) []types.SlideSummary {
	return f.slides
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestServer(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps, fakeStats{}).Register(context.Background(), mux)
	return mux
}

// manualCommandCount reads the command counter for one label off the
// metrics registry, defaulting to 0 when the series does not exist yet.
func manualCommandCount(command string) float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return 0
	}
	for _, family := range families {
		if family.GetName() != "kioskd_rotation_manual_commands_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "command" && label.GetValue() == command {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestCurrentEndpoint(t *testing.T) {
	Convey("Given a server with a displayed slide", t, func() {
		deps := &fakeDeps{
			current: types.Current{
				Index:  3,
				Paused: false,
				Slide:  model.Slide{Kind: model.KindFact, Key: "fact:river-city", Title: "River City"},
			},
		}
		mux := newTestServer(deps)

		Convey("GET /current returns the slide", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/current", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)

			var got types.Current
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.Index, ShouldEqual, 3)
			So(got.Slide.Title, ShouldEqual, "River City")
		})

		Convey("POST /current is rejected", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/current", nil))

			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	Convey("Given a server before the first display", t, func() {
		deps := &fakeDeps{currentErr: repository.ErrNoSlide}
		mux := newTestServer(deps)

		Convey("GET /current returns 404", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/current", nil))

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSlidesEndpoint(t *testing.T) {
	Convey("Given a populated server", t, func() {
		deps := &fakeDeps{
			slides: []types.SlideSummary{
				{Index: 0, Kind: "business", Title: "Bittersweet Cafe", Slug: "bittersweet-cafe", Weight: 2},
				{Index: 1, Kind: "fact", Title: "Founded 1778", Slug: "founded-1778", Weight: 1},
			},
		}
		mux := newTestServer(deps)

		Convey("GET /slides lists the population", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slides", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)

			var got slidesResponse
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.Count, ShouldEqual, 2)
			So(got.Slides[0].Slug, ShouldEqual, "bittersweet-cafe")
		})
	})

	Convey("Given an empty population", t, func() {
		mux := newTestServer(&fakeDeps{})

		Convey("GET /slides returns an empty list, not null", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slides", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"slides":[]`)
		})
	})
}

func TestCommandsEndpoint(t *testing.T) {
	Convey("Given a server accepting commands", t, func() {
		deps := &fakeDeps{}
		mux := newTestServer(deps)

		post := func(body string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/commands", bytes.NewBufferString(body))
			mux.ServeHTTP(rec, req)
			return rec
		}

		Convey("toggle_pause enqueues a TogglePause event", func() {
			rec := post(`{"command":"toggle_pause"}`)

			So(rec.Code, ShouldEqual, http.StatusAccepted)
			So(deps.enqueued, ShouldHaveLength, 1)
			So(deps.enqueued[0], ShouldHaveSameTypeAs, playback.TogglePause{})
		})

		Convey("next enqueues a ManualNext event", func() {
			rec := post(`{"command":"next"}`)

			So(rec.Code, ShouldEqual, http.StatusAccepted)
			So(deps.enqueued[0], ShouldHaveSameTypeAs, playback.ManualNext{})
		})

		Convey("previous enqueues a ManualPrevious event", func() {
			rec := post(`{"command":"previous"}`)

			So(rec.Code, ShouldEqual, http.StatusAccepted)
			So(deps.enqueued[0], ShouldHaveSameTypeAs, playback.ManualPrevious{})
		})

		Convey("accepting a command does not bump the command counter", func() {
			// The counter belongs to the state machine transition; the
			// handler only enqueues, so counting here would double-count
			// every accepted command.
			before := manualCommandCount("next")

			rec := post(`{"command":"next"}`)

			So(rec.Code, ShouldEqual, http.StatusAccepted)
			So(manualCommandCount("next"), ShouldEqual, before)
		})

		Convey("an unknown command is rejected", func() {
			rec := post(`{"command":"reboot"}`)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(deps.enqueued, ShouldBeEmpty)
		})

		Convey("a malformed body is rejected", func() {
			rec := post(`{not json`)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})

	Convey("Given a server under backpressure", t, func() {
		deps := &fakeDeps{reject: true}
		mux := newTestServer(deps)

		Convey("commands are rejected with 429", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/commands", bytes.NewBufferString(`{"command":"next"}`))
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
		})
	})
}

func TestTokenEndpoint(t *testing.T) {
	Convey("Given a server managing the navigation token", t, func() {
		deps := &fakeDeps{}
		mux := newTestServer(deps)

		Convey("PUT /token enqueues TokenSet", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/token", bytes.NewBufferString(`{"token":"bittersweet-cafe"}`))
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusAccepted)
			So(deps.enqueued, ShouldHaveLength, 1)
			set, ok := deps.enqueued[0].(playback.TokenSet)
			So(ok, ShouldBeTrue)
			So(set.Token, ShouldEqual, "bittersweet-cafe")
		})

		Convey("PUT /token with an empty token is rejected", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/token", bytes.NewBufferString(`{"token":""}`))
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(deps.enqueued, ShouldBeEmpty)
		})

		Convey("DELETE /token enqueues TokenCleared", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/token", nil))

			So(rec.Code, ShouldEqual, http.StatusAccepted)
			So(deps.enqueued[0], ShouldHaveSameTypeAs, playback.TokenCleared{})
		})

		Convey("GET /token is rejected", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token", nil))

			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given a running server", t, func() {
		mux := newTestServer(&fakeDeps{})

		Convey("GET /healthz reports ok", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("GET /stats returns provider statistics", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("GET /metrics exposes the Prometheus registry", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}
