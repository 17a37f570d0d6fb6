package serve

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"admarket/internal/domain"
	"admarket/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(categories categoryReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.WidgetCORS())
	NewHandler(NewService(categories, "https://ads.example.com", nil), nil).RegisterRoutes(r)
	return r
}

func servableCategory() *domain.Category {
	sel := domain.AdSelection{WebsiteID: 7, Approved: true}
	sel.SetCategoryIDs([]int64{3})
	return &domain.Category{
		ID:        3,
		WebsiteID: 7,
		SelectedAds: []domain.Ad{{
			ID:           11,
			BusinessName: `Bob's "Best" Bikes`,
			ImageURL:     "https://cdn.example.com/bikes.png",
			TargetURL:    "https://bikes.example.com",
			Confirmed:    true,
			Selections:   []domain.AdSelection{sel},
		}},
	}
}

func TestDisplayRendersFragment(t *testing.T) {
	r := newTestRouter(&stubCategories{category: servableCategory()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ads/display?categoryId=3", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Body.String(), "https://ads.example.com/ads/11/go")
	assert.Contains(t, w.Body.String(), "Bob&#39;s &#34;Best&#34; Bikes", "ad text is escaped")
	assert.NotContains(t, w.Body.String(), `Bob's "Best"`)
}

func TestDisplayJSONP(t *testing.T) {
	r := newTestRouter(&stubCategories{category: servableCategory()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ads/display?categoryId=3&callback=admarket.render", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/javascript")
	body := w.Body.String()
	assert.True(t, len(body) > 0)
	assert.Contains(t, body, "admarket.render({")
	assert.Contains(t, body, `"ad_id":11`)
	assert.Contains(t, body, ");")
}

func TestDisplayRejectsHostileCallbackName(t *testing.T) {
	r := newTestRouter(&stubCategories{category: servableCategory()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ads/display?categoryId=3&callback=alert(1)//", nil)
	r.ServeHTTP(w, req)

	// Bad callback names fall back to the plain fragment.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.NotContains(t, w.Body.String(), "alert(1)")
}

func TestDisplayAlwaysSucceeds(t *testing.T) {
	r := newTestRouter(&stubCategories{err: gormNotFound{}})

	for _, path := range []string{
		"/ads/display",
		"/ads/display?categoryId=abc",
		"/ads/display?categoryId=999",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), "admarket-slot", path)
		assert.NotContains(t, w.Body.String(), "admarket-ad", path)
	}
}

func TestDisplayEmptyJSONP(t *testing.T) {
	r := newTestRouter(&stubCategories{err: gormNotFound{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ads/display?categoryId=999&callback=cb", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `cb({"ads":[]});`, w.Body.String())
}

type gormNotFound struct{}

func (gormNotFound) Error() string { return "record not found" }
