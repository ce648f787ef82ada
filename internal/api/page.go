package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChaseRain/carouselgen/internal/api/templates"
	"github.com/ChaseRain/carouselgen/internal/catalog"
	"github.com/ChaseRain/carouselgen/internal/service/session"
	"github.com/ChaseRain/carouselgen/pkg/errors"
)

// PageData feeds templates.PageName.
type PageData struct {
	SessionID  string
	Form       session.Form
	Palette    PaletteView
	Palettes   []PaletteView
	Intentions []string
	Phase      string
	Loading    bool
	Slides     []SlideView
	Warning    string
	Error      string
	Notice     string
	Exporting  bool
	ArchiveURL string
}

func (h *Handler) Page(c *gin.Context) {
	ctl := h.sessionFromCookie(c)
	c.HTML(http.StatusOK, templates.PageName, pageData(ctl.Snapshot(), ""))
}

// SubmitForm handles the page's generate button. The request blocks until the
// run settles, then redirects back to the page.
func (h *Handler) SubmitForm(c *gin.Context) {
	ctl := h.sessionFromCookie(c)
	form := session.Form{
		Topic:          c.PostForm("topic"),
		Username:       c.PostForm("username"),
		Intention:      c.PostForm("intention"),
		Palette:        c.PostForm("palette"),
		GenerateImages: c.PostForm("generate_images") != "",
	}

	if _, err := ctl.Submit(runContext(c), form, nil); err != nil {
		switch code := errors.CodeOf(err); code {
		case errors.ErrCodeValidation, errors.ErrCodeRunInProgress, errors.ErrCodeRateLimited:
			snap := ctl.Snapshot()
			snap.Form = form
			c.HTML(statusFor(code), templates.PageName, pageData(snap, errors.MessageOf(err)))
			return
		}
		// fatal outcomes are part of the session state and shown after the redirect
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// SubmitAppearance restyles the current deck without regenerating it.
func (h *Handler) SubmitAppearance(c *gin.Context) {
	ctl := h.sessionFromCookie(c)
	if err := ctl.SetAppearance(c.PostForm("username"), c.PostForm("palette")); err != nil {
		snap := ctl.Snapshot()
		c.HTML(statusFor(errors.CodeOf(err)), templates.PageName, pageData(snap, errors.MessageOf(err)))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) sessionFromCookie(c *gin.Context) *session.Controller {
	id, _ := c.Cookie(h.cookieName)
	ctl := h.sessions.GetOrCreate(id)
	if ctl.ID() != id {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.cookieName, ctl.ID(), 0, "/", "", false, true)
	}
	return ctl
}

func pageData(snap session.Snapshot, notice string) PageData {
	phase := snap.State.Phase()
	return PageData{
		SessionID:  snap.ID,
		Form:       snap.Form,
		Palette:    paletteView(snap.Palette),
		Palettes:   paletteViews(),
		Intentions: catalog.Intentions(),
		Phase:      string(phase),
		Loading:    phase == session.PhaseLoading,
		Slides:     slideViews(snap.ID, snap.State.Deck),
		Warning:    snap.State.Warning,
		Error:      snap.State.Error,
		Notice:     notice,
		Exporting:  snap.Exporting,
		ArchiveURL: "/v1/sessions/" + snap.ID + "/archive",
	}
}
