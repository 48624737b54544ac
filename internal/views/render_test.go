package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadTemplates_success(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
	if pagesTmpl == nil {
		t.Fatal("LoadTemplates() left pagesTmpl nil")
	}
}

func TestLoadTemplates_failure_sub(t *testing.T) {
	prev := pagesTmpl
	t.Cleanup(func() { pagesTmpl = prev })

	if err := loadTemplatesFromFS(fstest.MapFS{}, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS) = nil; want error")
	}
}

func TestLoadTemplates_failure_parse(t *testing.T) {
	prev := pagesTmpl
	t.Cleanup(func() { pagesTmpl = prev })

	badFS := fstest.MapFS{
		"templates/index.html":         {Data: []byte("{{ .")},
		"templates/partials/head.html": {Data: []byte("")},
	}
	if err := loadTemplatesFromFS(badFS, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(badFS) = nil; want error")
	}
}

func TestRender_notLoaded(t *testing.T) {
	prev := pagesTmpl
	pagesTmpl = nil
	t.Cleanup(func() { pagesTmpl = prev })

	var buf bytes.Buffer
	if err := RenderIndex(&buf); err == nil || !strings.Contains(err.Error(), "not loaded") {
		t.Errorf("RenderIndex() = %v; want not loaded error", err)
	}
	if err := RenderDashboard(&buf, &DashboardData{}); err == nil {
		t.Error("RenderDashboard() = nil; want error when templates not loaded")
	}
}

func TestRenderPages(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v", err)
	}

	var buf bytes.Buffer
	if err := RenderIndex(&buf); err != nil {
		t.Fatalf("RenderIndex() = %v", err)
	}
	if !strings.Contains(buf.String(), `href="/mapa"`) {
		t.Error("index page should link to the map")
	}

	buf.Reset()
	if err := RenderMap(&buf); err != nil {
		t.Fatalf("RenderMap() = %v", err)
	}
	if !strings.Contains(buf.String(), `action="/dashboard"`) {
		t.Error("map page should submit to the dashboard")
	}
}

func TestRenderDashboard(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v", err)
	}

	tests := []struct {
		name     string
		deviceID string
		want     string
	}{
		{name: "default device", deviceID: "", want: DefaultDeviceID},
		{name: "explicit device", deviceID: "sensor-7", want: "sensor-7"},
		{name: "escaped", deviceID: "<b>x</b>", want: "&lt;b&gt;x&lt;/b&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := RenderDashboard(&buf, &DashboardData{
				DeviceID:     tt.deviceID,
				DepthLabels:  []string{"0,3 m", "0,8 m", "1,5 m", "2,0 m", "2,5 m"},
				RecentWindow: 30,
			})
			if err != nil {
				t.Fatalf("RenderDashboard() = %v", err)
			}
			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("dashboard missing %q", tt.want)
			}
			if !strings.Contains(out, `id="depth-4"`) {
				t.Error("dashboard should render a card per depth")
			}
			if !strings.Contains(out, "/api/dados_atuais") {
				t.Error("dashboard should poll the current reading endpoint")
			}
		})
	}
}
