package serve

import (
	"encoding/json"
	"html/template"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
)

// fragmentTmpl renders the embeddable slot. html/template escapes every
// field, so hostile ad content cannot inject markup into the host page.
var fragmentTmpl = template.Must(template.New("fragment").Parse(`<div class="admarket-slot">
{{- range . }}
  <a class="admarket-ad" href="{{ .ClickURL }}" target="_blank" rel="noopener sponsored">
    <img src="{{ .ImageURL }}" alt="{{ .BusinessName }}">
    <span>{{ .BusinessName }}</span>
  </a>
{{- end }}
</div>
`))

// callbackPattern keeps JSONP callback names to plain JS identifiers with
// optional dots (namespaced callbacks). Anything else is treated as absent.
var callbackPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(format string, args ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ads/display", h.Display)
}

// Display godoc
// @Summary Serve the ads for a category slot
// @Description Returns an embeddable HTML fragment, or callback(json) when a JSONP callback is given. Always 200: bad input degrades to an empty slot.
// @Tags serve
// @Produce html
// @Param categoryId query int true "Category ID"
// @Param callback query string false "JSONP callback name"
// @Success 200 {string} string
// @Router /ads/display [get]
func (h *Handler) Display(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Query("categoryId"), 10, 64)
	if err != nil {
		categoryID = 0 // resolves to the empty set
	}

	ads := h.service.Resolve(c.Request.Context(), categoryID)

	if callback := c.Query("callback"); callback != "" && callbackPattern.MatchString(callback) {
		h.writeJSONP(c, callback, ads)
		return
	}
	h.writeFragment(c, ads)
}

func (h *Handler) writeJSONP(c *gin.Context, callback string, ads []ServableAd) {
	body, err := json.Marshal(DisplayPayload{Ads: ads})
	if err != nil {
		body = []byte(`{"ads":[]}`)
	}
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", []byte(callback+"("+string(body)+");"))
}

func (h *Handler) writeFragment(c *gin.Context, ads []ServableAd) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := fragmentTmpl.Execute(c.Writer, ads); err != nil {
		h.loggerf("level=error msg=fragment_render_failed err=%v", err)
	}
}
