package client

import (
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxItems caps how many photos a single listing can carry.
const MaxItems = 20

const previewEdge = 160

// PendingItem is one selected photo awaiting upload. Its preview thumbnail
// is an explicitly managed resource: acquired on Add, released exactly once
// on Remove or Clear.
type PendingItem struct {
	ID   string
	Path string
	Name string

	previewPath string
	released    bool
}

// Preview returns the path of the item's thumbnail, or "" when no preview
// could be generated.
func (p *PendingItem) Preview() string {
	return p.previewPath
}

func (p *PendingItem) release() {
	if p.released {
		return
	}
	p.released = true
	if p.previewPath != "" {
		_ = os.Remove(p.previewPath)
	}
}

// Selection holds the user's ordered photo picks.
type Selection struct {
	items      []*PendingItem
	previewDir string
	log        *zap.Logger
}

func NewSelection(log *zap.Logger) (*Selection, error) {
	dir, err := os.MkdirTemp("", "lister-previews-")
	if err != nil {
		return nil, err
	}
	return &Selection{
		previewDir: dir,
		log:        log,
	}, nil
}

// Add appends each readable image file as a pending item. Non-image files
// are skipped, and anything past the 20-item cap is silently dropped. It
// returns the items actually added.
func (s *Selection) Add(paths ...string) []*PendingItem {
	var added []*PendingItem
	for _, path := range paths {
		if len(s.items) >= MaxItems {
			break
		}

		mt, err := mimetype.DetectFile(path)
		if err != nil || !isImageType(mt) {
			s.log.Warn("Skipping non-image file", zap.String("path", path))
			continue
		}

		item := &PendingItem{
			ID:   uuid.NewString(),
			Path: path,
			Name: filepath.Base(path),
		}
		item.previewPath = s.writePreview(path, item.ID)

		s.items = append(s.items, item)
		added = append(added, item)
	}
	return added
}

// Remove deletes the matching item and releases its preview.
func (s *Selection) Remove(id string) bool {
	for i, item := range s.items {
		if item.ID == id {
			item.release()
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Reorder moves the item identified by fromID to the position currently
// held by toID. Missing or equal ids are a no-op.
func (s *Selection) Reorder(fromID, toID string) {
	if fromID == toID {
		return
	}
	from, to := s.indexOf(fromID), s.indexOf(toID)
	if from < 0 || to < 0 {
		return
	}

	item := s.items[from]
	s.items = append(s.items[:from], s.items[from+1:]...)

	rest := make([]*PendingItem, 0, len(s.items)+1)
	rest = append(rest, s.items[:to]...)
	rest = append(rest, item)
	rest = append(rest, s.items[to:]...)
	s.items = rest
}

// Clear removes and releases every item.
func (s *Selection) Clear() {
	for _, item := range s.items {
		item.release()
	}
	s.items = nil
}

// Items returns the current selection in order.
func (s *Selection) Items() []*PendingItem {
	out := make([]*PendingItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Selection) Len() int {
	return len(s.items)
}

func (s *Selection) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// writePreview generates the item's thumbnail. Previews are cosmetic, so a
// failure leaves the item without one instead of rejecting it.
func (s *Selection) writePreview(path, id string) string {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		s.log.Warn("Failed to build preview", zap.String("path", path), zap.Error(err))
		return ""
	}

	thumb := imaging.Fit(img, previewEdge, previewEdge, imaging.Box)
	out := filepath.Join(s.previewDir, id+".jpg")
	if err := imaging.Save(thumb, out, imaging.JPEGQuality(70)); err != nil {
		s.log.Warn("Failed to save preview", zap.String("path", out), zap.Error(err))
		return ""
	}
	return out
}

func isImageType(mt *mimetype.MIME) bool {
	return mt.Is("image/jpeg") || mt.Is("image/png") || mt.Is("image/webp")
}
