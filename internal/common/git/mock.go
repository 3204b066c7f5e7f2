package git

// MockRunner implements Executor for testing.
// Each method can be configured with a custom function to control behavior.
type MockRunner struct {
	CloneFunc      func(remote string) error
	StatusFunc     func() ([]StatusEntry, error)
	AddFunc        func(paths ...string) error
	CommitFunc     func(message, user, email string) error
	PushFunc       func() error
	PushDryRunFunc func() (string, error)
	workDir        string

	// SSHCommand records the last value passed to SetSSHCommand
	SSHCommand string

	// Calls records the method names invoked, in order
	Calls []string
}

// NewMockRunner creates a new MockRunner with the specified working directory
func NewMockRunner(workDir string) *MockRunner {
	return &MockRunner{
		workDir: workDir,
	}
}

// SetSSHCommand records the ssh command that would pin GIT_SSH_COMMAND
func (m *MockRunner) SetSSHCommand(sshCmd string) {
	m.Calls = append(m.Calls, "set-ssh-command")
	m.SSHCommand = sshCmd
}

// Clone clones a remote repository into the working directory
func (m *MockRunner) Clone(remote string) error {
	m.Calls = append(m.Calls, "clone")
	if m.CloneFunc != nil {
		return m.CloneFunc(remote)
	}
	return nil
}

// Status returns the current git status as a list of StatusEntry
func (m *MockRunner) Status() ([]StatusEntry, error) {
	m.Calls = append(m.Calls, "status")
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	return nil, nil
}

// Add stages files for commit
func (m *MockRunner) Add(paths ...string) error {
	m.Calls = append(m.Calls, "add")
	if m.AddFunc != nil {
		return m.AddFunc(paths...)
	}
	return nil
}

// Commit creates a git commit with the specified message and author
func (m *MockRunner) Commit(message, user, email string) error {
	m.Calls = append(m.Calls, "commit")
	if m.CommitFunc != nil {
		return m.CommitFunc(message, user, email)
	}
	return nil
}

// Push pushes commits to the remote repository
func (m *MockRunner) Push() error {
	m.Calls = append(m.Calls, "push")
	if m.PushFunc != nil {
		return m.PushFunc()
	}
	return nil
}

// PushDryRun shows what would be pushed without actually pushing
func (m *MockRunner) PushDryRun() (string, error) {
	m.Calls = append(m.Calls, "push-dry-run")
	if m.PushDryRunFunc != nil {
		return m.PushDryRunFunc()
	}
	return "", nil
}

// WorkDir returns the working directory of the git repository
func (m *MockRunner) WorkDir() string {
	return m.workDir
}

// Ensure MockRunner implements Executor interface
var _ Executor = (*MockRunner)(nil)
