// Package assets resolves stylesheet and script URLs for installer pages.
package assets

import (
	"path"
	"strings"
)

const defaultSkin = "lodestar"

// Resolver maps skin-relative asset names to servable URLs.
//
// The installer serves its static tree under BasePath; pages receive the
// resolved URLs as opaque strings and never consult the resolver themselves.
type Resolver struct {
	// BasePath is the URL prefix for the static asset tree.
	BasePath string
	// Skin selects the style directory under BasePath.
	Skin string
}

// NewResolver returns a resolver rooted at basePath for the given skin.
// Empty arguments fall back to "/assets" and the default skin.
func NewResolver(basePath, skin string) Resolver {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		basePath = "/assets"
	}
	skin = strings.TrimSpace(skin)
	if skin == "" {
		skin = defaultSkin
	}
	return Resolver{BasePath: basePath, Skin: skin}
}

// StyleLink returns the URL of the skin stylesheet bundle.
func (r Resolver) StyleLink() string {
	return path.Join(r.BasePath, "skins", r.Skin, "install.css")
}

// ScriptLinks returns the script URLs included on every installer page.
func (r Resolver) ScriptLinks() []string {
	return []string{
		path.Join(r.BasePath, "js", "install.js"),
	}
}
