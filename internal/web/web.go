// Package web renders the few server-side pages the gateway guards: login,
// the dashboard shell and the OAuth error page.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/frahmantamala/business-management/internal/auth"
	"github.com/frahmantamala/business-management/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

type Link struct {
	Href  string
	Label string
}

var DashboardLinks = []Link{
	{Href: "/api/v1/personnel", Label: "Nhân sự"},
	{Href: "/api/v1/projects", Label: "Dự án"},
	{Href: "/api/v1/pyc", Label: "Phiếu yêu cầu"},
	{Href: "/api/v1/dntt", Label: "Đề nghị thanh toán"},
	{Href: "/api/v1/notifications", Label: "Thông báo"},
	{Href: "/api/v1/reference", Label: "Danh mục hệ thống"},
}

// NameResolver turns an email into a display name.
type NameResolver interface {
	Name(email string) string
}

type Pages struct {
	names NameResolver
	pages map[string]*template.Template
}

func NewPages(names NameResolver) (*Pages, error) {
	p := &Pages{names: names, pages: map[string]*template.Template{}}
	for _, name := range []string{"login", "dashboard", "auth_error"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		p.pages[name] = t
	}
	return p, nil
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	var buf bytes.Buffer
	if err := p.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.From(r.Context()).Error("Web: render failed", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Login also serves "/" for anonymous visitors; the gateway redirects
// signed-in users away from both.
func (p *Pages) Login(w http.ResponseWriter, r *http.Request) {
	next := auth.SafeNext(r.URL.Query().Get("next"), "/dashboard")
	p.render(w, r, http.StatusOK, "login", map[string]any{
		"Title": "Đăng nhập",
		"Next":  next,
	})
}

func (p *Pages) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	name := user.Email
	if p.names != nil {
		name = p.names.Name(user.Email)
	}
	p.render(w, r, http.StatusOK, "dashboard", map[string]any{
		"Title": "Bảng điều khiển",
		"Name":  name,
		"Links": DashboardLinks,
	})
}

func (p *Pages) AuthError(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusUnauthorized, "auth_error", map[string]any{
		"Title": "Lỗi đăng nhập",
	})
}
