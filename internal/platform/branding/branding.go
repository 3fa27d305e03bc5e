// Package branding centralizes product naming and installer documentation links.
package branding

// AppName is the product display name used in page titles and chrome.
const AppName = "Lodestar"

// Documentation links rendered in the installer side panel. Paths are
// relative to the distribution root served by the installer.
const (
	DocReadme       = "/docs/README"
	DocReleaseNotes = "/docs/RELEASE-NOTES"
	DocLicense      = "/docs/LICENSE"
	DocUpgrade      = "/docs/UPGRADE"
)
