// Package static embeds the installer asset tree.
package static

import "embed"

// FS holds the installer skins and scripts, served under the assets prefix.
//
//go:embed skins js
var FS embed.FS
