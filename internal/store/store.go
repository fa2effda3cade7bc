// Package store persists annotation entries keyed by portal identifier.
// Two backends implement the same reconciler interface: a delimited section
// inside the primary document, and a companion SQLite database.
package store

// Entry is one persisted annotation.
type Entry struct {
	// PortalID is the unique key, stable across edits.
	PortalID string `json:"portal_id"`

	// Content is the captured text, arbitrary length, may be multi-line.
	Content string `json:"content"`

	// Withdrawn marks an entry provisionally pulled back into the document
	// for editing. A withdrawn entry that is never recommitted is dead and
	// gets purged.
	Withdrawn bool `json:"withdrawn,omitempty"`

	// CreatedAt and UpdatedAt are Unix timestamps, for display only.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Store is the annotation reconciler. Exactly one entry exists per portal
// identifier; Upsert replaces the prior entry by key rather than appending
// a second copy.
type Store interface {
	// Upsert creates the entry for portalID or replaces it in place,
	// clearing any withdrawn flag.
	Upsert(portalID, content string) error

	// Remove deletes the entry for portalID. Removing a missing entry is
	// not an error.
	Remove(portalID string) error

	// Lookup returns the content for portalID, withdrawn or not.
	// Missing entries report a NOT_FOUND error.
	Lookup(portalID string) (string, error)

	// Withdraw flags the entry for portalID as provisionally pulled back
	// for editing, so a subsequent Upsert replaces instead of duplicating.
	Withdraw(portalID string) error

	// List returns all entries in store order.
	List() ([]Entry, error)

	// PurgeWithdrawn deletes entries left withdrawn by abandoned edit
	// sessions and returns how many were removed.
	PurgeWithdrawn() (int, error)
}
