package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"sidebyside/internal/dataprocessing"
)

// FileInfo represents information about a discovered survey export
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// SurveyPair is a primary and a secondary export of the same well.
type SurveyPair struct {
	Well      string
	Primary   FileInfo
	Secondary FileInfo
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindSurveyFiles lists the files in dir the parsers can read, oldest first.
// Office lock files (~$name.xlsx) are skipped.
func (d *Discovery) FindSurveyFiles(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if _, err := dataprocessing.DetectKind(name); err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// PairBySource matches exports whose names carry a source tag as a separate
// token, e.g. "A-12_MWD.xlsx" and "a-12 dd.csv". The well key is the name
// without the tag token and extension, compared case-insensitively. When a
// well has several files for one tag the newest wins. Files with no tag or
// no counterpart are returned as unmatched. Pairs are sorted by well.
func PairBySource(files []FileInfo, primaryTag, secondaryTag string) ([]SurveyPair, []FileInfo) {
	type slot struct {
		well               string
		primary, secondary *FileInfo
	}
	wells := make(map[string]*slot)
	var unmatched []FileInfo

	for i := range files {
		f := files[i]
		well, tag, ok := splitSourceTag(f.Name, primaryTag, secondaryTag)
		if !ok {
			unmatched = append(unmatched, f)
			continue
		}
		key := strings.ToLower(well)
		s, exists := wells[key]
		if !exists {
			s = &slot{well: well}
			wells[key] = s
		}

		target := &s.primary
		if tag == secondaryTag {
			target = &s.secondary
		}
		if *target != nil {
			older := **target
			if f.ModTime.Before(older.ModTime) {
				older, f = f, older
			}
			unmatched = append(unmatched, older)
		}
		*target = &f
	}

	var pairs []SurveyPair
	for _, s := range wells {
		switch {
		case s.primary != nil && s.secondary != nil:
			pairs = append(pairs, SurveyPair{Well: s.well, Primary: *s.primary, Secondary: *s.secondary})
		case s.primary != nil:
			unmatched = append(unmatched, *s.primary)
		case s.secondary != nil:
			unmatched = append(unmatched, *s.secondary)
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Well < pairs[j].Well })
	sort.Slice(unmatched, func(i, j int) bool { return unmatched[i].Name < unmatched[j].Name })
	return pairs, unmatched
}

// splitSourceTag returns the well part of name and which tag it carries.
func splitSourceTag(name, primaryTag, secondaryTag string) (string, string, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	tokens := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == ' ' || r == '.' || r == '-'
	})

	var tag string
	rest := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch {
		case tag == "" && strings.EqualFold(tok, primaryTag):
			tag = primaryTag
		case tag == "" && strings.EqualFold(tok, secondaryTag):
			tag = secondaryTag
		default:
			rest = append(rest, tok)
		}
	}
	if tag == "" || len(rest) == 0 {
		return "", "", false
	}
	return strings.Join(rest, "-"), tag, true
}
