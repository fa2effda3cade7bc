package web

import (
	"database/sql"
	"net/http"

	"github.com/hpungsan/tangent/internal/config"
	"github.com/hpungsan/tangent/internal/errors"
	"github.com/hpungsan/tangent/internal/ops"
)

// Handlers holds dependencies for web handlers. The viewer serves one
// primary document, fixed at server construction.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	docPath  string
	renderer *Renderer
}

// HandleList renders the annotation list page, including the invariant audit.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	listing, err := ops.List(h.db, h.cfg, ops.ListInput{Path: h.docPath})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	check, err := ops.Check(h.db, h.cfg, ops.CheckInput{Path: h.docPath})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Tangents",
			Version: h.renderer.version,
			DocPath: h.docPath,
		},
		Entries: listing.Entries,
		Doors:   listing.Doors,
		Check:   check,
	})
}

// HandleDetail renders one annotation with its content as markdown.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("portal id is required"))
		return
	}

	result, err := ops.Lookup(h.db, h.cfg, ops.LookupInput{Path: h.docPath, PortalID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   "Tangent " + id,
			Version: h.renderer.version,
			DocPath: h.docPath,
		},
		Entry:        result.Entry,
		RenderedHTML: renderMarkdown(result.Entry.Content),
	})
}

// HandlePurge removes withdrawn entries and redirects back to the list.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if _, err := ops.Purge(h.db, h.cfg, ops.PurgeInput{Path: h.docPath}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/annotations", http.StatusSeeOther)
}
