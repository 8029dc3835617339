package web

import (
	"database/sql"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hpungsan/skuloc/internal/config"
	"github.com/hpungsan/skuloc/internal/errors"
	"github.com/hpungsan/skuloc/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleLookup handles GET /lookup: the SKU lookup form and its results.
func (h *Handlers) HandleLookup(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("skus")
	sort := r.URL.Query().Get("sort")
	if sort == "" {
		sort = h.cfg.DefaultSort
	}

	data := LookupPageData{
		PageData: h.renderer.page("Lookup", "lookup"),
		Query:    query,
		Sort:     sort,
		Help:     h.renderer.help,
	}

	skus := ops.SplitSKUs(query)
	data.HasQuery = len(skus) > 0

	if data.HasQuery {
		result, err := ops.Lookup(r.Context(), h.db, ops.LookupInput{SKUs: skus, Sort: sort})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Result = result
		data.Sort = result.Sort

		if wantsJSON(r) {
			renderJSON(w, http.StatusOK, result)
			return
		}
	} else {
		recent, err := ops.Recent(r.Context(), h.db, ops.RecentInput{})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Recent = recent.Items
	}

	// If htmx targets #results, render only the results fragment
	if r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "lookup", "lookup-results", data)
		return
	}

	h.renderer.renderPage(w, r, "lookup", data)
}

// HandleLocations handles GET /locations: browse stored records.
func (h *Handlers) HandleLocations(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	loc := r.URL.Query().Get("location")

	result, err := ops.List(r.Context(), h.db, ops.ListInput{
		Prefix:   prefix,
		Location: loc,
		Limit:    parseIntParam(r, "limit", 50),
		Offset:   parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	stats, err := ops.Stats(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "locations", LocationsPageData{
		PageData:   h.renderer.page("Locations", "locations"),
		Items:      result.Items,
		Pagination: result.Pagination,
		Prefix:     prefix,
		Location:   loc,
		Stats:      stats,
		Notice:     r.URL.Query().Get("notice"),
	})
}

// HandleSet handles POST /locations: store a location by hand.
func (h *Handlers) HandleSet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result, err := ops.Set(r.Context(), h.db, ops.SetInput{
		SKU:      r.FormValue("sku"),
		Location: r.FormValue("location"),
		Source:   "web",
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		renderJSON(w, status, result)
		return
	}

	verb := "Updated"
	if result.Created {
		verb = "Added"
	}
	notice := verb + " " + result.Record.SKU + " at " + result.Record.Location

	// HTMX request: return HTML fragment
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="notice">` + template.HTMLEscapeString(notice) + `</div>`))
		return
	}

	// Default: redirect back to the browser filtered to the SKU
	q := url.Values{"prefix": {result.Record.SKU}, "notice": {notice}}
	http.Redirect(w, r, "/locations?"+q.Encode(), http.StatusSeeOther)
}

// HandleDelete handles DELETE /locations/{sku}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sku := r.PathValue("sku")
	if sku == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("sku is required"))
		return
	}

	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{SKU: sku})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/locations")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/locations", http.StatusSeeOther)
}

// HandleClear handles POST /locations/clear: delete every record.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result, err := ops.Clear(r.Context(), h.db, ops.ClearInput{Confirm: r.FormValue("confirm") == "true"})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	notice := "Cleared " + plural(result.Cleared, "record")

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="notice">` + template.HTMLEscapeString(notice) + `</div>`))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/locations?"+url.Values{"notice": {notice}}.Encode(), http.StatusSeeOther)
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := ops.Stats(r.Context(), h.db)
	if err != nil {
		renderJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.renderer.version,
		"records": stats.Records,
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
