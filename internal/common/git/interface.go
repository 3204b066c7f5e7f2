package git

// Executor defines the interface for git operations against a working copy.
// This interface allows for mocking git operations in tests.
type Executor interface {
	// SetSSHCommand sets GIT_SSH_COMMAND for all subsequent invocations
	SetSSHCommand(sshCmd string)

	// Clone clones a remote repository into the working directory
	Clone(remote string) error

	// Status returns the current git status as a list of StatusEntry
	Status() ([]StatusEntry, error)

	// Add stages files for commit
	Add(paths ...string) error

	// Commit creates a git commit with the specified message and author
	Commit(message, user, email string) error

	// Push pushes commits to the remote repository
	Push() error

	// PushDryRun shows what would be pushed without actually pushing
	PushDryRun() (string, error)

	// WorkDir returns the working directory of the git repository
	WorkDir() string
}
