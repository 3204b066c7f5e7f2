// Package pkgbuild renders the Arch packaging recipe and drives makepkg.
package pkgbuild

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"text/template"

	"github.com/aurmate/claudepkg/internal/release"
)

// Error variables for template errors
var (
	// ErrMissingPkgver is returned when a PKGBUILD has no pkgver line to rewrite
	ErrMissingPkgver = errors.New("PKGBUILD has no pkgver line")
)

// Recipe holds the fields substituted into the PKGBUILD and .SRCINFO.
type Recipe struct {
	// PkgName is the Arch package name, e.g. "claude-desktop-bin"
	PkgName string
	// Version is the upstream version being packaged
	Version release.Version
	// PkgRel is the Arch package revision, starts at 1 per upstream version
	PkgRel int
	// InstallerURL is the upstream Windows installer URL for the version
	InstallerURL string
	// SHA256 is the installer checksum; "SKIP" when not pinned
	SHA256 string
}

// pkgbuildTemplate is the recipe for repackaging the Windows installer.
// The heavy lifting (7z extraction, asar repack, icon conversion) runs as
// external tools inside the package functions, not in Go.
var pkgbuildTemplate = template.Must(template.New("PKGBUILD").Parse(`# Maintainer: claudepkg bot
pkgname={{.PkgName}}
pkgver={{.Version}}
pkgrel={{.PkgRel}}
pkgdesc="Claude Desktop for Linux, repackaged from the Windows installer"
arch=('x86_64')
url="https://claude.ai/download"
license=('custom')
depends=('electron' 'nodejs')
makedepends=('p7zip' 'asar' 'icoutils' 'imagemagick')
source=("AnthropicClaude-{{.Version}}-full.nupkg::{{.InstallerURL}}")
sha256sums=('{{.SHA256}}')

prepare() {
    7z x -y "AnthropicClaude-{{.Version}}-full.nupkg" -o"extract"
}

build() {
    cd extract/lib/net45/resources
    asar extract app.asar "$srcdir/app"
}

package() {
    install -dm755 "$pkgdir/usr/lib/$pkgname"
    cp -r "$srcdir/app/." "$pkgdir/usr/lib/$pkgname/"
    install -Dm644 "$srcdir/$pkgname.desktop" -t "$pkgdir/usr/share/applications" || true
}
`))

// srcinfoTemplate mirrors the PKGBUILD metadata for the AUR index.
var srcinfoTemplate = template.Must(template.New(".SRCINFO").Parse(`pkgbase = {{.PkgName}}
	pkgdesc = Claude Desktop for Linux, repackaged from the Windows installer
	pkgver = {{.Version}}
	pkgrel = {{.PkgRel}}
	url = https://claude.ai/download
	arch = x86_64
	license = custom
	makedepends = p7zip
	makedepends = asar
	makedepends = icoutils
	makedepends = imagemagick
	depends = electron
	depends = nodejs
	source = AnthropicClaude-{{.Version}}-full.nupkg::{{.InstallerURL}}
	sha256sums = {{.SHA256}}

pkgname = {{.PkgName}}
`))

// RenderPKGBUILD renders the PKGBUILD for the recipe.
func RenderPKGBUILD(r *Recipe) ([]byte, error) {
	return renderTemplate(pkgbuildTemplate, r)
}

// RenderSrcinfo renders the .SRCINFO for the recipe.
func RenderSrcinfo(r *Recipe) ([]byte, error) {
	return renderTemplate(srcinfoTemplate, r)
}

func renderTemplate(t *template.Template, r *Recipe) ([]byte, error) {
	if r.SHA256 == "" {
		r.SHA256 = "SKIP"
	}
	if r.PkgRel == 0 {
		r.PkgRel = 1
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", t.Name(), err)
	}
	return buf.Bytes(), nil
}

// pkgverRegex and pkgrelRegex match the version lines of an existing PKGBUILD
var (
	pkgverRegex = regexp.MustCompile(`(?m)^pkgver=.*$`)
	pkgrelRegex = regexp.MustCompile(`(?m)^pkgrel=.*$`)
)

// BumpVersion rewrites pkgver and pkgrel in an existing PKGBUILD file, for
// repos that maintain a hand-edited recipe instead of the built-in template.
// pkgrel below 1 is treated as 1, the value of a fresh upstream version.
func BumpVersion(path string, v release.Version, pkgrel int) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if !pkgverRegex.Match(content) {
		return fmt.Errorf("%w: %s", ErrMissingPkgver, path)
	}

	if pkgrel < 1 {
		pkgrel = 1
	}

	updated := pkgverRegex.ReplaceAll(content, []byte("pkgver="+v.String()))
	updated = pkgrelRegex.ReplaceAll(updated, []byte(fmt.Sprintf("pkgrel=%d", pkgrel)))

	return os.WriteFile(path, updated, 0644)
}
