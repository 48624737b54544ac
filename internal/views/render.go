package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

// DefaultDeviceID is shown on the dashboard when no device_id is given
const DefaultDeviceID = "Multi-Sensor Profundidade"

var pagesTmpl *template.Template

// loadTemplatesFromFS loads page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	pagesTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	return err
}

// LoadTemplates loads embedded page templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// PageData is the view model shared by the static pages
type PageData struct {
	Title string
}

// DashboardData is the view model for the dashboard page
type DashboardData struct {
	DeviceID     string
	DepthLabels  []string
	RecentWindow int
}

var errNotLoaded = errors.New("page templates not loaded: call views.LoadTemplates during startup")

// RenderIndex renders the access page
func RenderIndex(w io.Writer) error {
	if pagesTmpl == nil {
		return errNotLoaded
	}
	return pagesTmpl.ExecuteTemplate(w, "index.html", &PageData{Title: "SoilSense"})
}

// RenderMap renders the sensor map page
func RenderMap(w io.Writer) error {
	if pagesTmpl == nil {
		return errNotLoaded
	}
	return pagesTmpl.ExecuteTemplate(w, "mapa.html", &PageData{Title: "SoilSense - Mapa"})
}

// RenderDashboard renders the live dashboard for one device
func RenderDashboard(w io.Writer, data *DashboardData) error {
	if pagesTmpl == nil {
		return errNotLoaded
	}
	if data.DeviceID == "" {
		data.DeviceID = DefaultDeviceID
	}
	return pagesTmpl.ExecuteTemplate(w, "dashboard.html", data)
}
