package domain

// GitStatus is the state of the repository a session works in. Insertions
// and deletions cover staged and unstaged changes.
type GitStatus struct {
	Branch     string
	Insertions int64
	Deletions  int64
}
