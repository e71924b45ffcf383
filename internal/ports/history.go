package ports

// RecentInputs remembers the media files the user picked most recently.
type RecentInputs interface {
	// Add records path as the most recently used input.
	Add(path string)

	// List returns remembered inputs, most recent first.
	List() []string

	// Save persists the list.
	Save() error
}
