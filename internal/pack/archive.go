package pack

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"mcmovie/internal/fileutil"
	"mcmovie/internal/services"
)

// Archive entry paths.
const (
	TextureEntry    = "movie/" + TexturePath + ".png"
	DescriptorEntry = "movie/" + TexturePath + ".json"
	ServerFormEntry = "movie/ui/server_form.json"
	ManifestEntry   = "manifest.json"
)

// Bundle is everything that goes into one archive.
type Bundle struct {
	Name string
	// Texture streams the encoded sprite sheet PNG.
	Texture    func(io.Writer) error
	Descriptor []byte
	ServerForm []byte
	Manifest   []byte
	// Modified stamps every entry. Zero uses the current time.
	Modified time.Time
}

// WriteArchive writes b as a zip archive to w. The texture is stored as-is
// since PNG data is already compressed; JSON entries are deflated.
func WriteArchive(w io.Writer, b Bundle) error {
	if b.Texture == nil {
		return services.Wrap(services.ErrPackaging, "packaging", "archive", "missing texture", nil)
	}
	modified := b.Modified
	if modified.IsZero() {
		modified = time.Now()
	}

	zw := zip.NewWriter(w)
	entry := func(name string, method uint16) (io.Writer, error) {
		return zw.CreateHeader(&zip.FileHeader{Name: name, Method: method, Modified: modified})
	}

	tw, err := entry(TextureEntry, zip.Store)
	if err != nil {
		return services.Wrap(services.ErrPackaging, "packaging", "archive", TextureEntry, err)
	}
	if err := b.Texture(tw); err != nil {
		return err
	}
	for _, item := range []struct {
		name string
		data []byte
	}{
		{DescriptorEntry, b.Descriptor},
		{ServerFormEntry, b.ServerForm},
		{ManifestEntry, b.Manifest},
	} {
		if len(item.data) == 0 {
			return services.Wrap(services.ErrPackaging, "packaging", "archive", "empty "+item.name, nil)
		}
		ew, err := entry(item.name, zip.Deflate)
		if err != nil {
			return services.Wrap(services.ErrPackaging, "packaging", "archive", item.name, err)
		}
		if _, err := ew.Write(item.data); err != nil {
			return services.Wrap(services.ErrPackaging, "packaging", "archive", item.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return services.Wrap(services.ErrPackaging, "packaging", "archive", "finalize", err)
	}
	return nil
}

// WriteFile writes the archive to dir/<name>.mcpack, replacing any previous
// build atomically. It returns the archive path and size.
func WriteFile(dir string, b Bundle) (string, int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, services.Wrap(services.ErrPackaging, "packaging", "output dir", dir, err)
	}
	path := filepath.Join(dir, ArchiveName(b.Name))
	size, err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WriteArchive(w, b)
	})
	if err != nil {
		if services.Kind(err) != "unknown" {
			return "", 0, err
		}
		return "", 0, services.Wrap(services.ErrPackaging, "packaging", "write", fmt.Sprintf("archive %s", path), err)
	}
	return path, size, nil
}
