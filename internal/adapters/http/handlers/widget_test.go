package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testimonialhq/widget-service/internal/adapters/http/dto"
	"github.com/testimonialhq/widget-service/internal/adapters/store/memstore"
	"github.com/testimonialhq/widget-service/internal/app"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newWidgetRouter(t *testing.T) (*gin.Engine, *app.WidgetService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var idSeq int
	clock := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	service := app.NewWidgetService(app.WidgetServiceConfig{
		Repository: memstore.New(),
		Logger:     logger,
		Now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
		NewID: func() string {
			idSeq++
			return fmt.Sprintf("id-%03d", idSeq)
		},
	})

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewWidgetHandler(service).RegisterWidgetRoutes(api)

	return engine, service
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	engine.ServeHTTP(w, req)

	return w
}

func decodeWidget(t *testing.T, w *httptest.ResponseRecorder) dto.WidgetResponse {
	t.Helper()

	var resp dto.WidgetResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	return resp
}

func TestCreateWidget(t *testing.T) {
	engine, _ := newWidgetRouter(t)

	t.Run("creates widget with defaults", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/widgets", `{"name":"Homepage"}`)

		require.Equal(t, http.StatusCreated, w.Code)

		resp := decodeWidget(t, w)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "Homepage", resp.Name)
		assert.Empty(t, resp.Testimonials)
		assert.Equal(t, "light", resp.Settings.Theme)
		assert.True(t, resp.Settings.ShowNavigation)
		assert.Equal(t, 5000, resp.Settings.SlideInterval)
		assert.Equal(t, 3, resp.Settings.TestimonialsPerPage)
	})

	t.Run("applies settings overrides", func(t *testing.T) {
		body := `{"name":"Dark auto","settings":{"theme":"dark","autoSlide":true,"slideInterval":8000}}`
		w := doJSON(t, engine, http.MethodPost, "/api/v1/widgets", body)

		require.Equal(t, http.StatusCreated, w.Code)

		resp := decodeWidget(t, w)
		assert.Equal(t, "dark", resp.Settings.Theme)
		assert.True(t, resp.Settings.AutoSlide)
		assert.Equal(t, 8000, resp.Settings.SlideInterval)
		assert.True(t, resp.Settings.ShowPagination, "unset settings keep defaults")
	})

	t.Run("rejects missing name", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/widgets", `{}`)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, dto.ErrorCodeValidation, resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "name")
	})

	t.Run("rejects invalid settings", func(t *testing.T) {
		body := `{"name":"Bad","settings":{"theme":"sepia"}}`
		w := doJSON(t, engine, http.MethodPost, "/api/v1/widgets", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetWidget(t *testing.T) {
	engine, _ := newWidgetRouter(t)

	created := decodeWidget(t, doJSON(t, engine, http.MethodPost, "/api/v1/widgets", `{"name":"Landing"}`))

	t.Run("returns existing widget", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/widgets/"+created.ID, "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, created.ID, decodeWidget(t, w).ID)
	})

	t.Run("returns 404 for unknown id", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/widgets/nope", "")

		require.Equal(t, http.StatusNotFound, w.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, dto.ErrorCodeNotFound, resp.Error.Code)
	})
}

func TestListWidgets(t *testing.T) {
	engine, _ := newWidgetRouter(t)

	for i := 1; i <= 3; i++ {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/widgets", fmt.Sprintf(`{"name":"Widget %d"}`, i))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("returns newest first", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/widgets", "")

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.PaginatedResponse[dto.WidgetResponse]
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Items, 3)
		assert.Equal(t, "Widget 3", resp.Items[0].Name)
		assert.Equal(t, "Widget 1", resp.Items[2].Name)
		assert.False(t, resp.HasMore)
	})

	t.Run("paginates with cursor", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/widgets?limit=2", "")

		require.Equal(t, http.StatusOK, w.Code)

		var first dto.PaginatedResponse[dto.WidgetResponse]
		require.NoError(t, json.NewDecoder(w.Body).Decode(&first))
		require.Len(t, first.Items, 2)
		assert.True(t, first.HasMore)
		require.NotEmpty(t, first.NextCursor)

		w = doJSON(t, engine, http.MethodGet, "/api/v1/widgets?limit=2&cursor="+first.NextCursor, "")

		require.Equal(t, http.StatusOK, w.Code)

		var second dto.PaginatedResponse[dto.WidgetResponse]
		require.NoError(t, json.NewDecoder(w.Body).Decode(&second))
		require.Len(t, second.Items, 1)
		assert.Equal(t, "Widget 1", second.Items[0].Name)
		assert.False(t, second.HasMore)
	})

	t.Run("invalid cursor starts from the top", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodGet, "/api/v1/widgets?cursor=not-base64!", "")

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.PaginatedResponse[dto.WidgetResponse]
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp.Items, 3)
	})
}

func TestUpdateWidget(t *testing.T) {
	engine, _ := newWidgetRouter(t)

	created := decodeWidget(t, doJSON(t, engine, http.MethodPost, "/api/v1/widgets", `{"name":"Original"}`))

	t.Run("renames and patches settings", func(t *testing.T) {
		body := `{"name":"Renamed","settings":{"theme":"dark"}}`
		w := doJSON(t, engine, http.MethodPatch, "/api/v1/widgets/"+created.ID, body)

		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeWidget(t, w)
		assert.Equal(t, "Renamed", resp.Name)
		assert.Equal(t, "dark", resp.Settings.Theme)
		assert.Equal(t, 3, resp.Settings.TestimonialsPerPage, "unpatched settings keep their values")
		assert.True(t, resp.UpdatedAt.After(created.UpdatedAt))
	})

	t.Run("returns 404 for unknown widget", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPatch, "/api/v1/widgets/nope", `{"name":"X"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteWidget(t *testing.T) {
	engine, _ := newWidgetRouter(t)

	created := decodeWidget(t, doJSON(t, engine, http.MethodPost, "/api/v1/widgets", `{"name":"Doomed"}`))

	w := doJSON(t, engine, http.MethodDelete, "/api/v1/widgets/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/widgets/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, engine, http.MethodDelete, "/api/v1/widgets/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddTestimonial(t *testing.T) {
	engine, _ := newWidgetRouter(t)

	created := decodeWidget(t, doJSON(t, engine, http.MethodPost, "/api/v1/widgets", `{"name":"Reviews"}`))
	base := "/api/v1/widgets/" + created.ID + "/testimonials"

	t.Run("prepends new testimonials", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, base, `{"name":"Alice","content":"Great product","rating":5}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, engine, http.MethodPost, base, `{"name":"Bob","content":"Works well","rating":4}`)
		require.Equal(t, http.StatusCreated, w.Code)

		resp := decodeWidget(t, w)
		require.Len(t, resp.Testimonials, 2)
		assert.Equal(t, "Bob", resp.Testimonials[0].Name)
		assert.Equal(t, "Alice", resp.Testimonials[1].Name)
		assert.NotEmpty(t, resp.Testimonials[0].ID)
	})

	t.Run("rejects rating out of range", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, base, `{"name":"Eve","content":"meh","rating":9}`)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Contains(t, resp.Error.Details, "rating")
	})

	t.Run("rejects non-post original url", func(t *testing.T) {
		body := `{"name":"Eve","content":"x","originalUrl":"https://example.com/not-a-tweet"}`
		w := doJSON(t, engine, http.MethodPost, base, body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 404 for unknown widget", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/widgets/nope/testimonials", `{"name":"A","content":"x"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateTestimonial(t *testing.T) {
	engine, _ := newWidgetRouter(t)

	created := decodeWidget(t, doJSON(t, engine, http.MethodPost, "/api/v1/widgets", `{"name":"Reviews"}`))
	base := "/api/v1/widgets/" + created.ID + "/testimonials"

	withTestimonial := decodeWidget(t, doJSON(t, engine, http.MethodPost, base, `{"name":"Alice","content":"Good","rating":3}`))
	testimonialID := withTestimonial.Testimonials[0].ID

	t.Run("patches fields and keeps the rest", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPatch, base+"/"+testimonialID, `{"rating":5}`)

		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeWidget(t, w)
		require.Len(t, resp.Testimonials, 1)
		assert.Equal(t, 5, resp.Testimonials[0].Rating)
		assert.Equal(t, "Alice", resp.Testimonials[0].Name)
		assert.Equal(t, "Good", resp.Testimonials[0].Content)
	})

	t.Run("returns 404 for unknown testimonial", func(t *testing.T) {
		w := doJSON(t, engine, http.MethodPatch, base+"/nope", `{"rating":1}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRemoveTestimonial(t *testing.T) {
	engine, _ := newWidgetRouter(t)

	created := decodeWidget(t, doJSON(t, engine, http.MethodPost, "/api/v1/widgets", `{"name":"Reviews"}`))
	base := "/api/v1/widgets/" + created.ID + "/testimonials"

	withTestimonial := decodeWidget(t, doJSON(t, engine, http.MethodPost, base, `{"name":"Alice","content":"Good"}`))
	testimonialID := withTestimonial.Testimonials[0].ID

	w := doJSON(t, engine, http.MethodDelete, base+"/"+testimonialID, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeWidget(t, w).Testimonials)

	w = doJSON(t, engine, http.MethodDelete, base+"/"+testimonialID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
