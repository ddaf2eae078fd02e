// Package export renders engine output for file-based consumers:
// JSON coverage and difference reports, and an xz-compressed tar
// snapshot carrying a content-hash manifest so consumers can verify
// what they received.
package export

import (
	"archive/tar"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/h9-tec/qiraat-engine/core/qiraat"
)

// Snapshot file names inside the archive.
const (
	ManifestName    = "manifest.json"
	CoverageName    = "coverage.json"
	DifferencesName = "differences.json"
)

// WriteCoverageJSON renders a coverage report as indented JSON.
func WriteCoverageJSON(w io.Writer, report *qiraat.CoverageReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode coverage report: %w", err)
	}
	return nil
}

// WriteDifferencesJSON renders a difference list as indented JSON.
func WriteDifferencesJSON(w io.Writer, diffs []qiraat.Difference) error {
	if diffs == nil {
		diffs = []qiraat.Difference{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(diffs); err != nil {
		return fmt.Errorf("encode differences: %w", err)
	}
	return nil
}

// Manifest describes a snapshot archive: which run produced it, when,
// and the blake3 hash of every file it carries.
type Manifest struct {
	RunID     string            `json:"run_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Hashes    map[string]string `json:"hashes"`
}

// Snapshot is the content bundled into one archive.
type Snapshot struct {
	RunID       string
	Coverage    *qiraat.CoverageReport
	Differences []qiraat.Difference
}

// WriteSnapshot packs the snapshot into a .tar.xz archive at path.
// The manifest goes first so consumers can stream-verify.
func WriteSnapshot(path string, snap Snapshot) error {
	files := make(map[string][]byte, 2)

	if snap.Coverage != nil {
		data, err := json.Marshal(snap.Coverage)
		if err != nil {
			return fmt.Errorf("encode coverage: %w", err)
		}
		files[CoverageName] = data
	}
	diffs := snap.Differences
	if diffs == nil {
		diffs = []qiraat.Difference{}
	}
	data, err := json.Marshal(diffs)
	if err != nil {
		return fmt.Errorf("encode differences: %w", err)
	}
	files[DifferencesName] = data

	manifest := Manifest{
		RunID:     snap.RunID,
		CreatedAt: time.Now().UTC(),
		Hashes:    make(map[string]string, len(files)),
	}
	for name, content := range files {
		sum := blake3.Sum256(content)
		manifest.Hashes[name] = hex.EncodeToString(sum[:])
	}
	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	xzw, err := xz.NewWriter(f)
	if err != nil {
		return fmt.Errorf("create xz writer: %w", err)
	}
	tw := tar.NewWriter(xzw)

	if err := writeTarFile(tw, ManifestName, manifestData); err != nil {
		return err
	}
	for _, name := range []string{CoverageName, DifferencesName} {
		content, ok := files[name]
		if !ok {
			continue
		}
		if err := writeTarFile(tw, name, content); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	if err := xzw.Close(); err != nil {
		return fmt.Errorf("close xz: %w", err)
	}
	return f.Close()
}

func writeTarFile(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{
		Name: name,
		Mode: 0o644,
		Size: int64(len(data)),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write tar header %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("write tar entry %s: %w", name, err)
	}
	return nil
}

// ReadSnapshot opens an archive, verifies every file against the
// manifest, and returns the manifest with the file contents. A hash
// mismatch or a file missing from the manifest is an error.
func ReadSnapshot(path string) (*Manifest, map[string][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return nil, nil, fmt.Errorf("create xz reader: %w", err)
	}
	tr := tar.NewReader(xzr)

	var manifest *Manifest
	files := make(map[string][]byte)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read tar: %w", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, nil, fmt.Errorf("read tar entry %s: %w", hdr.Name, err)
		}
		if hdr.Name == ManifestName {
			var m Manifest
			if err := json.Unmarshal(data, &m); err != nil {
				return nil, nil, fmt.Errorf("decode manifest: %w", err)
			}
			manifest = &m
			continue
		}
		files[hdr.Name] = data
	}
	if manifest == nil {
		return nil, nil, fmt.Errorf("archive %s has no %s", path, ManifestName)
	}

	for name, content := range files {
		want, ok := manifest.Hashes[name]
		if !ok {
			return nil, nil, fmt.Errorf("file %s missing from manifest", name)
		}
		sum := blake3.Sum256(content)
		if got := hex.EncodeToString(sum[:]); got != want {
			return nil, nil, fmt.Errorf("file %s hash mismatch: got %s, manifest says %s", name, got, want)
		}
	}
	return manifest, files, nil
}
