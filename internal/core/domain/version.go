package domain

import (
	"sort"
	"time"
)

// Version is one upload event in a document's lineage.
// Versions are never mutated after creation.
type Version struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document"`
	VersionNumber int       `json:"version_number"`
	BlobKey       string    `json:"file"`
	CreatedByID   *string   `json:"created_by_id,omitempty"`
	CreatedBy     *string   `json:"created_by"` // Username, nil once the creator is deleted
	CreatedAt     time.Time `json:"created_at"`
}

// NewVersion describes a version to be appended to a document
type NewVersion struct {
	ID          string
	DocumentID  string
	BlobKey     string
	CreatedByID string
	CreatedAt   time.Time
}

// NextVersionNumber returns the number the next version of a document receives:
// one above the highest remaining number, starting at 1. Gaps left by deleted
// versions are never filled, but once the highest version is deleted its
// number is handed out again.
func NextVersionNumber(versions []*Version) int {
	highest := 0
	for _, v := range versions {
		if v.VersionNumber > highest {
			highest = v.VersionNumber
		}
	}
	return highest + 1
}

// SortVersions orders versions newest first
func SortVersions(versions []*Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].VersionNumber > versions[j].VersionNumber
	})
}

// VersionDeletion is the outcome of planning a version delete
type VersionDeletion struct {
	Victim *Version
	// NewCurrentID is set when the victim was current and another version takes over
	NewCurrentID *string
}

// PlanVersionDeletion decides what deleting versionID from a document implies.
// A document always keeps at least one version. When the current version goes,
// the remaining version with the highest number becomes current.
func PlanVersionDeletion(doc *Document, versions []*Version, versionID string) (*VersionDeletion, error) {
	var victim *Version
	for _, v := range versions {
		if v.ID == versionID {
			victim = v
			break
		}
	}
	if victim == nil || victim.DocumentID != doc.ID {
		return nil, ErrNotFound
	}

	if len(versions) <= 1 {
		return nil, ErrSoleVersion
	}

	plan := &VersionDeletion{Victim: victim}
	if doc.CurrentVersionID == nil || *doc.CurrentVersionID != victim.ID {
		return plan, nil
	}

	var next *Version
	for _, v := range versions {
		if v.ID == victim.ID {
			continue
		}
		if next == nil || v.VersionNumber > next.VersionNumber {
			next = v
		}
	}
	id := next.ID
	plan.NewCurrentID = &id
	return plan, nil
}
