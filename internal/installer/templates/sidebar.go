package templates

import (
	"html"

	"github.com/louisbranch/lodestar/internal/installer/frame"
	"github.com/louisbranch/lodestar/internal/platform/branding"
)

// SidebarSections builds the localized side panel link blob. Chunks are
// delimited by "----" lines, matching the frame's portal split convention.
func SidebarSections(loc Localizer) string {
	return `<a href="https://lodestar.example">` + html.EscapeString(T(loc, "Project home")) + `</a>` +
		"\n----\n" +
		`<a href="https://lodestar.example/support">` + html.EscapeString(T(loc, "Get support")) + `</a>`
}

// DocHeading returns the localized heading for the documentation portal.
func DocHeading(loc Localizer) string {
	return T(loc, "Documentation")
}

// DocLinks returns the fixed installer documentation links.
func DocLinks(loc Localizer) []frame.DocLink {
	return []frame.DocLink{
		{Label: T(loc, "Read me"), URL: branding.DocReadme},
		{Label: T(loc, "Release notes"), URL: branding.DocReleaseNotes},
		{Label: T(loc, "License"), URL: branding.DocLicense},
		{Label: T(loc, "Upgrading"), URL: branding.DocUpgrade},
	}
}
